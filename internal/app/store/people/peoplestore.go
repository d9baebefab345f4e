// internal/app/store/people/peoplestore.go
package peoplestore

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
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicatePersonEmail = errors.New("a person with this email already exists in the organization")
	ErrPersonNotFound       = errors.New("person not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("people")}
}

type row struct {
	ID             primitive.ObjectID  `bson:"_id"`
	Email          string              `bson:"email"`
	Name           string              `bson:"name"`
	NameCI         string              `bson:"name_ci"`
	Position       string              `bson:"position"`
	PasswordHash   *string             `bson:"password_hash,omitempty"`
	ReportsTo      *primitive.ObjectID `bson:"reports_to,omitempty"`
	TeamID         *primitive.ObjectID `bson:"team_id,omitempty"`
	OrganizationID primitive.ObjectID  `bson:"organization_id"`
	CreatedAt      time.Time           `bson:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at"`
}

// fromRow maps the remote row shape to the domain shape. The password hash
// never leaves the store.
func fromRow(r row) models.Person {
	return models.Person{
		ID:             r.ID,
		Email:          r.Email,
		Name:           r.Name,
		Position:       r.Position,
		ReportsTo:      r.ReportsTo,
		TeamID:         r.TeamID,
		OrganizationID: r.OrganizationID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// NewPerson carries the fields for a person insert. Password is optional;
// when present it is bcrypt-hashed before storage.
type NewPerson struct {
	Email          string
	Name           string
	Position       string
	Password       *string
	ReportsTo      *primitive.ObjectID
	TeamID         *primitive.ObjectID
	OrganizationID primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, p NewPerson) (models.Person, error) {
	now := time.Now().UTC()
	r := row{
		ID:             primitive.NewObjectID(),
		Email:          p.Email,
		Name:           p.Name,
		NameCI:         text.Fold(p.Name),
		Position:       p.Position,
		ReportsTo:      p.ReportsTo,
		TeamID:         p.TeamID,
		OrganizationID: p.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.Person{}, err
		}
		h := string(hash)
		r.PasswordHash = &h
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Person{}, ErrDuplicatePersonEmail
		}
		return models.Person{}, err
	}
	return fromRow(r), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Person, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Person{}, ErrPersonNotFound
	}
	if err != nil {
		return models.Person{}, err
	}
	return fromRow(r), nil
}

// ListByOrganization returns the organization's people, newest first.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Person, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	people := make([]models.Person, 0, len(rows))
	for _, r := range rows {
		people = append(people, fromRow(r))
	}
	return people, nil
}

// Update carries person changes. Nil Email/Name/Position leave the field
// unchanged. ReportsTo and TeamID are always applied: the edit form submits
// the full optional value, so nil clears the reference.
type Update struct {
	Email     *string
	Name      *string
	Position  *string
	ReportsTo *primitive.ObjectID
	TeamID    *primitive.ObjectID
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Person, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.Position != nil {
		set["position"] = *u.Position
	}
	if u.ReportsTo != nil {
		set["reports_to"] = *u.ReportsTo
	} else {
		unset["reports_to"] = ""
	}
	if u.TeamID != nil {
		set["team_id"] = *u.TeamID
	} else {
		unset["team_id"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Person{}, ErrPersonNotFound
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Person{}, ErrDuplicatePersonEmail
		}
		return models.Person{}, err
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

// ClearReportsTo removes the manager reference from everyone reporting to
// the given person. Used when that person is deleted.
func (s *Store) ClearReportsTo(ctx context.Context, personID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"reports_to": personID},
		bson.M{"$unset": bson.M{"reports_to": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ClearTeam removes the team reference from every member of the given team.
// Used when the team is deleted.
func (s *Store) ClearTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"team_id": teamID},
		bson.M{"$unset": bson.M{"team_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"organization_id": orgID})
}

// DeleteByOrganization removes every person in the organization. Used when
// the organization itself is deleted.
func (s *Store) DeleteByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
