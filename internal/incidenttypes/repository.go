// Package incidenttypes manages incident types. A sub-company's type is
// linked to a core type in the root company; the core type is created lazily
// the first time a sub-company introduces the name.
package incidenttypes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides incident type persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an incident types repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a type. When the owning company is a sub-company, the
// matching core type in the root company is found or created in the same
// transaction and linked via ParentID.
func (r *Repository) Create(ctx context.Context, t *models.IncidentType) error {
	err := database.WithinTx(ctx, r.db, func(tx pgx.Tx) error {
		var rootID *uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT parent_id FROM companies WHERE id = $1`, t.CompanyID).Scan(&rootID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("company")
			}
			return err
		}
		if rootID != nil {
			coreID, err := ensureCoreType(ctx, tx, *rootID, t.Name)
			if err != nil {
				return err
			}
			t.ParentID = &coreID
		}
		const q = `INSERT INTO incident_types (company_id, name, parent_id, pinned)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`
		return tx.QueryRow(ctx, q, t.CompanyID, t.Name, t.ParentID, t.Pinned).
			Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	})
	if err != nil {
		return apperrors.TranslateUnique(err, "an incident type with this name already exists")
	}
	return nil
}

// ensureCoreType finds or creates the root company's type with the given
// name. The insert-then-select pair is safe under the per-company unique
// name index.
func ensureCoreType(ctx context.Context, tx pgx.Tx, rootCompanyID uuid.UUID, name string) (uuid.UUID, error) {
	const insertQ = `INSERT INTO incident_types (company_id, name)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	if _, err := tx.Exec(ctx, insertQ, rootCompanyID, name); err != nil {
		return uuid.Nil, err
	}
	const selectQ = `SELECT id FROM incident_types
		WHERE company_id = $1 AND LOWER(name) = LOWER($2)`
	var id uuid.UUID
	if err := tx.QueryRow(ctx, selectQ, rootCompanyID, name).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetByID loads one type.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.IncidentType, error) {
	const q = `SELECT id, company_id, name, parent_id, pinned, created_at, updated_at
		FROM incident_types WHERE id = $1`
	var t models.IncidentType
	err := r.db.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.CompanyID, &t.Name, &t.ParentID, &t.Pinned, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("incident_type")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TogglePin flips the pinned flag and returns the new value.
func (r *Repository) TogglePin(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE incident_types SET pinned = NOT pinned, updated_at = NOW()
		WHERE id = $1
		RETURNING pinned`
	var pinned bool
	err := r.db.QueryRow(ctx, q, id).Scan(&pinned)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.NotFound("incident_type")
	}
	return pinned, err
}
