// internal/domain/models/license.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// License is a software license owning exactly TotalSeats Seat records,
// created together with the license.
type License struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	TotalSeats     int                `json:"totalSeats"`
	OrganizationID primitive.ObjectID `json:"organizationId"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}
