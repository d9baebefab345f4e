// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/assethub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateOrganization = errors.New("an organization with this name already exists")
	ErrOrganizationNotFound  = errors.New("organization not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// row is the remote shape of an organization document.
type row struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	NameCI    string             `bson:"name_ci"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func fromRow(r row) models.Organization {
	return models.Organization{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *Store) Create(ctx context.Context, name string) (models.Organization, error) {
	now := time.Now().UTC()
	r := row{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return fromRow(r), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, ErrOrganizationNotFound
	}
	if err != nil {
		return models.Organization{}, err
	}
	return fromRow(r), nil
}

// List returns every organization in creation order.
func (s *Store) List(ctx context.Context) ([]models.Organization, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	orgs := make([]models.Organization, 0, len(rows))
	for _, r := range rows {
		orgs = append(orgs, fromRow(r))
	}
	return orgs, nil
}

// First returns the earliest-created organization, used as the fallback when
// no selection is persisted. found is false when no organizations exist.
func (s *Store) First(ctx context.Context) (models.Organization, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	var r row
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, false, nil
	}
	if err != nil {
		return models.Organization{}, false, err
	}
	return fromRow(r), true, nil
}

// UpdateName renames an organization and returns the updated record.
func (s *Store) UpdateName(ctx context.Context, id primitive.ObjectID, name string) (models.Organization, error) {
	update := bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, ErrOrganizationNotFound
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return fromRow(r), nil
}

// Delete removes an organization by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
