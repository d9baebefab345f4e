// internal/domain/models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset is a physical asset tracked per organization, optionally assigned to
// a person. PersonID and AssignedAt obey the same pairing invariant as Seat.
type Asset struct {
	ID             primitive.ObjectID  `json:"id"`
	Name           string              `json:"name"`
	SerialNumber   *string             `json:"serialNumber,omitempty"`
	Brand          string              `json:"brand"`
	Value          float64             `json:"value"`
	PersonID       *primitive.ObjectID `json:"personId,omitempty"`
	OrganizationID primitive.ObjectID  `json:"organizationId"`
	AssignedAt     *time.Time          `json:"assignedAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// Assigned reports whether the asset is handed out to a person.
func (a Asset) Assigned() bool {
	return a.PersonID != nil
}
