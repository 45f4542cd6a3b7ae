package models

import (
	"time"

	"github.com/google/uuid"
)

// Incident statuses and request approval states.
const (
	IncidentOpen     = "OPEN"
	IncidentResolved = "RESOLVED"

	RequestApproved = "approved"
	RequestDenied   = "denied"
)

// Incident is a recorded occurrence within an event. It may reference an
// incident type, a department, and any number of divisions (through
// incident_multiple_divisions). Those references block unlink/delete of the
// referenced taxonomy entities.
type Incident struct {
	ID             uuid.UUID  `json:"id"`
	EventID        uuid.UUID  `json:"event_id"`
	CompanyID      uuid.UUID  `json:"company_id"`
	IncidentTypeID *uuid.UUID `json:"incident_type_id,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	RequestStatus  *string    `json:"request_status,omitempty"`
	CreatedBy      *uuid.UUID `json:"created_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DivisionIDs    []uuid.UUID `json:"division_ids,omitempty"`
}
