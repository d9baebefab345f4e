// internal/domain/models/person.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Person is a member of an organization.
//
// ReportsTo is a self-reference forming a forest (no cycles); TeamID links the
// person to at most one team. Optional fields are pointers so "absent" is
// representable without empty-string sentinels.
type Person struct {
	ID             primitive.ObjectID  `json:"id"`
	Email          string              `json:"email"`
	Name           string              `json:"name"`
	Position       string              `json:"position"`
	ReportsTo      *primitive.ObjectID `json:"reportsTo,omitempty"`
	TeamID         *primitive.ObjectID `json:"teamId,omitempty"`
	OrganizationID primitive.ObjectID  `json:"organizationId"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}
