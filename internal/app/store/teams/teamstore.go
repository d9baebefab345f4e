// internal/app/store/teams/teamstore.go
package teamstore

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
	ErrDuplicateTeamName = errors.New("a team with this name already exists in the organization")
	ErrTeamNotFound      = errors.New("team not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

type row struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	NameCI         string             `bson:"name_ci"`
	Description    *string            `bson:"description,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func fromRow(r row) models.Team {
	return models.Team{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		OrganizationID: r.OrganizationID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// NewTeam carries the fields for a team insert.
type NewTeam struct {
	Name           string
	Description    *string
	OrganizationID primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, t NewTeam) (models.Team, error) {
	now := time.Now().UTC()
	r := row{
		ID:             primitive.NewObjectID(),
		Name:           t.Name,
		NameCI:         text.Fold(t.Name),
		Description:    t.Description,
		OrganizationID: t.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateTeamName
		}
		return models.Team{}, err
	}
	return fromRow(r), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return models.Team{}, err
	}
	return fromRow(r), nil
}

// ListByOrganization returns the organization's teams sorted by name.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Team, error) {
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
	teams := make([]models.Team, 0, len(rows))
	for _, r := range rows {
		teams = append(teams, fromRow(r))
	}
	return teams, nil
}

// Update carries team changes. Nil Name leaves the name unchanged;
// Description is always applied (nil clears it), mirroring how the edit form
// submits the whole optional field.
type Update struct {
	Name        *string
	Description *string
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Team, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
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
		return models.Team{}, ErrTeamNotFound
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateTeamName
		}
		return models.Team{}, err
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

// DeleteByOrganization removes every team in the organization. Used when the
// organization itself is deleted.
func (s *Store) DeleteByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
