// internal/domain/models/seat.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Seat is one assignable unit of a License.
//
// Invariant: PersonID and AssignedAt are either both set or both nil. A seat
// is never observable with exactly one of them present.
type Seat struct {
	ID         primitive.ObjectID  `json:"id"`
	LicenseID  primitive.ObjectID  `json:"licenseId"`
	Code       *string             `json:"code,omitempty"`
	PersonID   *primitive.ObjectID `json:"personId,omitempty"`
	AssignedAt *time.Time          `json:"assignedAt,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// Assigned reports whether the seat is occupied.
func (s Seat) Assigned() bool {
	return s.PersonID != nil
}
