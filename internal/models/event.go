package models

import (
	"time"

	"github.com/google/uuid"
)

// Event statuses.
const (
	EventInProgress = "IN_PROGRESS"
	EventCompleted  = "COMPLETED"
	EventUpcoming   = "UPCOMING"
	EventOnHold     = "ON_HOLD"
)

// Event is a company-owned operational event. Soft-deleted events
// (DeletedAt set) are excluded from every listing and count.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID uuid.UUID  `json:"company_id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
