package models

import (
	"time"

	"github.com/google/uuid"
)

// Company categories. CategoryStandard is enforced for root companies.
const (
	CategoryStandard = "STANDARD"
	CategoryDemo     = "DEMO"
)

// Company represents a tenant. A company with a nil ParentID is a root
// company; sub-companies reference their root via ParentID (tree depth 2).
type Company struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Category    string     `json:"category"`
	RegionID    *uuid.UUID `json:"region_id,omitempty"`
	DemoCompany bool       `json:"demo_company"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsRoot reports whether this company has no parent.
func (c *Company) IsRoot() bool { return c.ParentID == nil }
