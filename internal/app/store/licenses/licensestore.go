// internal/app/store/licenses/licensestore.go
package licensestore

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
	ErrDuplicateLicenseName = errors.New("a license with this name already exists in the organization")
	ErrLicenseNotFound      = errors.New("license not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("licenses")}
}

type row struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	NameCI         string             `bson:"name_ci"`
	Description    *string            `bson:"description,omitempty"`
	TotalSeats     int                `bson:"total_seats"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func fromRow(r row) models.License {
	return models.License{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		TotalSeats:     r.TotalSeats,
		OrganizationID: r.OrganizationID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// NewLicense carries the fields for a license insert. Seats are created
// separately by the seat store; the license accessor owns the compound
// create.
type NewLicense struct {
	Name           string
	Description    *string
	TotalSeats     int
	OrganizationID primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, l NewLicense) (models.License, error) {
	now := time.Now().UTC()
	r := row{
		ID:             primitive.NewObjectID(),
		Name:           l.Name,
		NameCI:         text.Fold(l.Name),
		Description:    l.Description,
		TotalSeats:     l.TotalSeats,
		OrganizationID: l.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.License{}, ErrDuplicateLicenseName
		}
		return models.License{}, err
	}
	return fromRow(r), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.License, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.License{}, ErrLicenseNotFound
	}
	if err != nil {
		return models.License{}, err
	}
	return fromRow(r), nil
}

// ListByOrganization returns the organization's licenses sorted by name.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.License, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	licenses := make([]models.License, 0, len(rows))
	for _, r := range rows {
		licenses = append(licenses, fromRow(r))
	}
	return licenses, nil
}

// IDsByOrganization returns just the license ids for an organization. The
// seat store uses these to scope seat queries, since seats carry no
// organization id of their own.
func (s *Store) IDsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Update carries license changes. Nil Name/TotalSeats leave the field
// unchanged; Description is always applied (nil clears it).
type Update struct {
	Name        *string
	Description *string
	TotalSeats  *int
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.License, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.TotalSeats != nil {
		set["total_seats"] = *u.TotalSeats
	}
	if u.Description != nil {
		set["description"] = *u.Description
	} else {
		unset["description"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.License{}, ErrLicenseNotFound
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.License{}, ErrDuplicateLicenseName
		}
		return models.License{}, err
	}
	return fromRow(r), nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"organization_id": orgID})
}

// DeleteByOrganization removes every license in the organization. Callers
// delete the licenses' seats first.
func (s *Store) DeleteByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
