// Package divisions manages incident divisions: company-owned classifications
// that events link to and incidents reference.
package divisions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides incident division persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a divisions repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a division. Names are unique per company, case-insensitive.
func (r *Repository) Create(ctx context.Context, division *models.IncidentDivision) error {
	const q = `INSERT INTO incident_divisions (company_id, name, pinned)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, q, division.CompanyID, division.Name, division.Pinned).
		Scan(&division.ID, &division.CreatedAt, &division.UpdatedAt)
	if err != nil {
		return apperrors.TranslateUnique(err, "a division with this name already exists")
	}
	return nil
}

// GetByID loads one division.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.IncidentDivision, error) {
	const q = `SELECT id, company_id, name, pinned, created_at, updated_at
		FROM incident_divisions WHERE id = $1`
	var division models.IncidentDivision
	err := r.db.QueryRow(ctx, q, id).Scan(
		&division.ID, &division.CompanyID, &division.Name, &division.Pinned,
		&division.CreatedAt, &division.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("incident_division")
	}
	if err != nil {
		return nil, err
	}
	return &division, nil
}

// TogglePin flips the pinned flag and returns the new value.
func (r *Repository) TogglePin(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE incident_divisions SET pinned = NOT pinned, updated_at = NOW()
		WHERE id = $1
		RETURNING pinned`
	var pinned bool
	err := r.db.QueryRow(ctx, q, id).Scan(&pinned)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.NotFound("incident_division")
	}
	return pinned, err
}
