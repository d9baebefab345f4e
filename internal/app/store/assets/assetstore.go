// internal/app/store/assets/assetstore.go
package assetstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/assethub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrAssetNotFound = errors.New("asset not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assets")}
}

type row struct {
	ID             primitive.ObjectID  `bson:"_id"`
	Name           string              `bson:"name"`
	NameCI         string              `bson:"name_ci"`
	SerialNumber   *string             `bson:"serial_number,omitempty"`
	Brand          string              `bson:"brand"`
	Value          float64             `bson:"value"`
	PersonID       *primitive.ObjectID `bson:"person_id,omitempty"`
	OrganizationID primitive.ObjectID  `bson:"organization_id"`
	AssignedAt     *time.Time          `bson:"assigned_at,omitempty"`
	CreatedAt      time.Time           `bson:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at"`
}

func fromRow(r row) models.Asset {
	return models.Asset{
		ID:             r.ID,
		Name:           r.Name,
		SerialNumber:   r.SerialNumber,
		Brand:          r.Brand,
		Value:          r.Value,
		PersonID:       r.PersonID,
		OrganizationID: r.OrganizationID,
		AssignedAt:     r.AssignedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// NewAsset carries the fields for an asset insert. Assets start unassigned;
// Assign hands them to a person afterwards.
type NewAsset struct {
	Name           string
	SerialNumber   *string
	Brand          string
	Value          float64
	OrganizationID primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, a NewAsset) (models.Asset, error) {
	now := time.Now().UTC()
	r := row{
		ID:             primitive.NewObjectID(),
		Name:           a.Name,
		NameCI:         text.Fold(a.Name),
		SerialNumber:   a.SerialNumber,
		Brand:          a.Brand,
		Value:          a.Value,
		OrganizationID: a.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Asset{}, err
	}
	return fromRow(r), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Asset, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Asset{}, ErrAssetNotFound
	}
	if err != nil {
		return models.Asset{}, err
	}
	return fromRow(r), nil
}

// ListByOrganization returns the organization's assets, newest first.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Asset, error) {
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
	assets := make([]models.Asset, 0, len(rows))
	for _, r := range rows {
		assets = append(assets, fromRow(r))
	}
	return assets, nil
}

// Update carries asset changes. Nil Name/Brand/Value leave the field
// unchanged; SerialNumber is always applied (nil clears it).
type Update struct {
	Name         *string
	SerialNumber *string
	Brand        *string
	Value        *float64
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Asset, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.Brand != nil {
		set["brand"] = *u.Brand
	}
	if u.Value != nil {
		set["value"] = *u.Value
	}
	if u.SerialNumber != nil {
		set["serial_number"] = *u.SerialNumber
	} else {
		unset["serial_number"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Asset{}, ErrAssetNotFound
	}
	if err != nil {
		return models.Asset{}, err
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

// Assign hands the asset to a person: person_id and assigned_at set together.
func (s *Store) Assign(ctx context.Context, assetID, personID primitive.ObjectID) (models.Asset, error) {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"person_id":   personID,
		"assigned_at": now,
		"updated_at":  now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": assetID}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Asset{}, ErrAssetNotFound
	}
	if err != nil {
		return models.Asset{}, err
	}
	return fromRow(r), nil
}

// Unassign takes the asset back: person_id and assigned_at cleared together.
func (s *Store) Unassign(ctx context.Context, assetID primitive.ObjectID) (models.Asset, error) {
	update := bson.M{
		"$unset": bson.M{"person_id": "", "assigned_at": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": assetID}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Asset{}, ErrAssetNotFound
	}
	if err != nil {
		return models.Asset{}, err
	}
	return fromRow(r), nil
}

// UnassignByPerson takes back every asset held by the person. Used when the
// person is deleted.
func (s *Store) UnassignByPerson(ctx context.Context, personID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"person_id": personID},
		bson.M{
			"$unset": bson.M{"person_id": "", "assigned_at": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"organization_id": orgID})
}

// DeleteByOrganization removes every asset in the organization. Used when
// the organization itself is deleted.
func (s *Store) DeleteByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountAssignedByOrganization counts assets currently handed to a person.
func (s *Store) CountAssignedByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"organization_id": orgID,
		"person_id":       bson.M{"$exists": true},
	})
}
