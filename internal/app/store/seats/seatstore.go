// internal/app/store/seats/seatstore.go
package seatstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/assethub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrSeatNotFound     = errors.New("seat not found")
	ErrSeatAlreadyTaken = errors.New("person already holds a seat on this license")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("seats")}
}

// row is the remote shape of a seat document. person_id and assigned_at are
// written together and cleared together, never one without the other.
type row struct {
	ID         primitive.ObjectID  `bson:"_id"`
	LicenseID  primitive.ObjectID  `bson:"license_id"`
	Code       *string             `bson:"code,omitempty"`
	PersonID   *primitive.ObjectID `bson:"person_id,omitempty"`
	AssignedAt *time.Time          `bson:"assigned_at,omitempty"`
	CreatedAt  time.Time           `bson:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at"`
}

func fromRow(r row) models.Seat {
	return models.Seat{
		ID:         r.ID,
		LicenseID:  r.LicenseID,
		Code:       r.Code,
		PersonID:   r.PersonID,
		AssignedAt: r.AssignedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// NewSeat carries the fields for one seat insert.
type NewSeat struct {
	LicenseID primitive.ObjectID
	Code      *string
}

// CreateMany inserts the given seats in order, all unassigned.
func (s *Store) CreateMany(ctx context.Context, seats []NewSeat) ([]models.Seat, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(seats))
	rows := make([]row, 0, len(seats))
	for i, ns := range seats {
		r := row{
			ID:        primitive.NewObjectID(),
			LicenseID: ns.LicenseID,
			Code:      ns.Code,
			// Spread creation instants so "by creation order" is stable.
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			UpdatedAt: now,
		}
		rows = append(rows, r)
		docs = append(docs, r)
	}
	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	out := make([]models.Seat, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Seat, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Seat{}, ErrSeatNotFound
	}
	if err != nil {
		return models.Seat{}, err
	}
	return fromRow(r), nil
}

// ListByLicenses returns all seats belonging to the given licenses in
// creation order. Callers scope seats to an organization by passing the
// organization's license ids.
func (s *Store) ListByLicenses(ctx context.Context, licenseIDs []primitive.ObjectID) ([]models.Seat, error) {
	if len(licenseIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"license_id": bson.M{"$in": licenseIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	seats := make([]models.Seat, 0, len(rows))
	for _, r := range rows {
		seats = append(seats, fromRow(r))
	}
	return seats, nil
}

// HasSeatOnLicense reports whether the person already occupies a seat of the
// given license.
func (s *Store) HasSeatOnLicense(ctx context.Context, licenseID, personID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"license_id": licenseID, "person_id": personID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Assign occupies a seat: person_id and assigned_at are set together. A
// non-nil code also relabels the seat; nil leaves the label untouched.
func (s *Store) Assign(ctx context.Context, seatID, personID primitive.ObjectID, code *string) (models.Seat, error) {
	now := time.Now().UTC()
	set := bson.M{
		"person_id":   personID,
		"assigned_at": now,
		"updated_at":  now,
	}
	if code != nil {
		set["code"] = *code
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": seatID}, bson.M{"$set": set}, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Seat{}, ErrSeatNotFound
	}
	if err != nil {
		return models.Seat{}, err
	}
	return fromRow(r), nil
}

// Unassign frees a seat: person_id and assigned_at are cleared together.
func (s *Store) Unassign(ctx context.Context, seatID primitive.ObjectID) (models.Seat, error) {
	update := bson.M{
		"$unset": bson.M{"person_id": "", "assigned_at": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": seatID}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Seat{}, ErrSeatNotFound
	}
	if err != nil {
		return models.Seat{}, err
	}
	return fromRow(r), nil
}

// UnassignByPerson frees every seat held by the person. Used when the person
// is deleted so no seat keeps a dangling reference.
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

// DeleteByLicense removes every seat of a license. Used by license deletion
// (seats first, then the license).
func (s *Store) DeleteByLicense(ctx context.Context, licenseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"license_id": licenseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByLicenses removes every seat of the given licenses. Used when an
// organization and all of its licenses go away at once.
func (s *Store) DeleteByLicenses(ctx context.Context, licenseIDs []primitive.ObjectID) (int64, error) {
	if len(licenseIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"license_id": bson.M{"$in": licenseIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountAvailableByLicenses counts unassigned seats across the given licenses.
func (s *Store) CountAvailableByLicenses(ctx context.Context, licenseIDs []primitive.ObjectID) (int64, error) {
	if len(licenseIDs) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{
		"license_id": bson.M{"$in": licenseIDs},
		"person_id":  bson.M{"$exists": false},
	})
}
