// internal/app/store/prefs/prefsstore.go
package prefsstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the preferences collection. Each profile has one
// preferences document; the active-organization selection lives here so it
// survives restarts.
type Store struct {
	c *mongo.Collection
}

// New creates a new preferences store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("preferences")}
}

type row struct {
	Profile        string              `bson:"_id"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty"`
	UpdatedAt      time.Time           `bson:"updated_at"`
}

// SelectedOrganization returns the persisted organization selection for the
// profile. found is false when no selection has been saved.
func (s *Store) SelectedOrganization(ctx context.Context, profile string) (primitive.ObjectID, bool, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": profile}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	if r.OrganizationID == nil {
		return primitive.NilObjectID, false, nil
	}
	return *r.OrganizationID, true, nil
}

// SetSelectedOrganization persists the selection. Uses upsert so it works
// whether the profile document exists or not.
func (s *Store) SetSelectedOrganization(ctx context.Context, profile string, orgID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"organization_id": orgID,
		"updated_at":      time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": profile}, update, opts)
	return err
}

// ClearSelectedOrganization removes the selection for the profile.
func (s *Store) ClearSelectedOrganization(ctx context.Context, profile string) error {
	update := bson.M{
		"$unset": bson.M{"organization_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": profile}, update)
	return err
}

// ClearIfSelected removes the selection from every profile that points at
// orgID. Used when the organization is deleted.
func (s *Store) ClearIfSelected(ctx context.Context, orgID primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"organization_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := s.c.UpdateMany(ctx, bson.M{"organization_id": orgID}, update)
	return err
}
