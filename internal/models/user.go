package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/roles"
)

// User is an account on the platform. The company role lives in
// UserCompanyRole, not on the user itself.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCompanyRole binds a user to a company with a role and optional region
// scope. One row per (user, company).
type UserCompanyRole struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	CompanyID uuid.UUID    `json:"company_id"`
	RoleID    roles.RoleID `json:"role_id"`
	RegionID  *uuid.UUID   `json:"region_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
