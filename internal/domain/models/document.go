// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a file record attached to an organization and optionally to a
// person (contracts, handbooks, signed agreements).
type Document struct {
	ID             primitive.ObjectID  `json:"id"`
	Name           string              `json:"name"`
	Filename       string              `json:"filename"`
	FileURL        string              `json:"fileUrl"`
	PersonID       *primitive.ObjectID `json:"personId,omitempty"`
	OrganizationID primitive.ObjectID  `json:"organizationId"`
	UploadedAt     time.Time           `json:"uploadedAt"`
}
