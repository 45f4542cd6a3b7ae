package models

import (
	"time"

	"github.com/google/uuid"
)

// Export statuses.
const (
	ExportPending   = "pending"
	ExportCompleted = "completed"
	ExportFailed    = "failed"
)

// ExportLog records one report export run (who asked, what, outcome).
type ExportLog struct {
	ID           uuid.UUID  `json:"id"`
	EventID      uuid.UUID  `json:"event_id"`
	RequestedBy  *uuid.UUID `json:"requested_by,omitempty"`
	ReportType   string     `json:"report_type"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	FileURL      string     `json:"file_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
