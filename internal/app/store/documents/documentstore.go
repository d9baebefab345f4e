// internal/app/store/documents/documentstore.go
package documentstore

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

var ErrDocumentNotFound = errors.New("document not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("documents")}
}

type row struct {
	ID             primitive.ObjectID  `bson:"_id"`
	Name           string              `bson:"name"`
	Filename       string              `bson:"filename"`
	FileURL        string              `bson:"file_url"`
	PersonID       *primitive.ObjectID `bson:"person_id,omitempty"`
	OrganizationID primitive.ObjectID  `bson:"organization_id"`
	UploadedAt     time.Time           `bson:"uploaded_at"`
}

func fromRow(r row) models.Document {
	return models.Document{
		ID:             r.ID,
		Name:           r.Name,
		Filename:       r.Filename,
		FileURL:        r.FileURL,
		PersonID:       r.PersonID,
		OrganizationID: r.OrganizationID,
		UploadedAt:     r.UploadedAt,
	}
}

// NewDocument carries the fields for a document insert.
type NewDocument struct {
	Name           string
	Filename       string
	FileURL        string
	PersonID       *primitive.ObjectID
	OrganizationID primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, d NewDocument) (models.Document, error) {
	r := row{
		ID:             primitive.NewObjectID(),
		Name:           d.Name,
		Filename:       d.Filename,
		FileURL:        d.FileURL,
		PersonID:       d.PersonID,
		OrganizationID: d.OrganizationID,
		UploadedAt:     time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Document{}, err
	}
	return fromRow(r), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var r row
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return models.Document{}, err
	}
	return fromRow(r), nil
}

// ListByOrganization returns the organization's documents, newest first.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, fromRow(r))
	}
	return docs, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AssignToPerson links a document to a person; a nil personID detaches it.
func (s *Store) AssignToPerson(ctx context.Context, id primitive.ObjectID, personID *primitive.ObjectID) (models.Document, error) {
	var update bson.M
	if personID != nil {
		update = bson.M{"$set": bson.M{"person_id": *personID}}
	} else {
		update = bson.M{"$unset": bson.M{"person_id": ""}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r row
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return models.Document{}, err
	}
	return fromRow(r), nil
}

// ClearPerson detaches every document linked to the person. Used when the
// person is deleted; the files themselves stay with the organization.
func (s *Store) ClearPerson(ctx context.Context, personID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"person_id": personID},
		bson.M{"$unset": bson.M{"person_id": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteByOrganization removes every document in the organization. Used when
// the organization itself is deleted.
func (s *Store) DeleteByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
