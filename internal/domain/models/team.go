// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team groups people within an organization. Membership lives on Person
// (team_id); Team stores no back-collection.
type Team struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	OrganizationID primitive.ObjectID `json:"organizationId"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}
