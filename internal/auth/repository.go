package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository handles user and company-role persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an auth repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, email, password_hash, full_name, created_at, updated_at FROM users WHERE id = $1`
	var u models.User
	err := r.db.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, email, password_hash, full_name, created_at, updated_at FROM users WHERE email = $1`
	var u models.User
	err := r.db.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, full_name, created_at, updated_at`
	var u models.User
	err := r.db.QueryRow(ctx, q, email, passwordHash, fullName).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetCompanyRole returns the user's company role, or nil when the user has
// none.
func (r *Repository) GetCompanyRole(ctx context.Context, userID uuid.UUID) (*models.UserCompanyRole, error) {
	const q = `SELECT id, user_id, company_id, role_id, region_id, created_at
		FROM user_company_roles WHERE user_id = $1`
	var ucr models.UserCompanyRole
	err := r.db.QueryRow(ctx, q, userID).Scan(&ucr.ID, &ucr.UserID, &ucr.CompanyID, &ucr.RoleID, &ucr.RegionID, &ucr.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ucr, nil
}

// SetCompanyRole upserts the user's role within a company.
func (r *Repository) SetCompanyRole(ctx context.Context, userID, companyID uuid.UUID, roleID roles.RoleID, regionID *uuid.UUID) error {
	const q = `INSERT INTO user_company_roles (user_id, company_id, role_id, region_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role_id = EXCLUDED.role_id, region_id = EXCLUDED.region_id`
	_, err := r.db.Exec(ctx, q, userID, companyID, roleID, regionID)
	return err
}
