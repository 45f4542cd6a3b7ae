// Package incidents records occurrences within events. Incident references
// are what the taxonomy guards protect: a division/type/department referenced
// by a live incident cannot be unlinked or deleted.
package incidents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides incident persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an incidents repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an incident and its division references in one transaction.
func (r *Repository) Create(ctx context.Context, incident *models.Incident) error {
	return database.WithinTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `INSERT INTO incidents
			(event_id, company_id, incident_type_id, department_id, description, status, request_status, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, q,
			incident.EventID, incident.CompanyID, incident.IncidentTypeID, incident.DepartmentID,
			incident.Description, incident.Status, incident.RequestStatus, incident.CreatedBy,
		).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt); err != nil {
			return err
		}
		if len(incident.DivisionIDs) == 0 {
			return nil
		}
		const divQ = `INSERT INTO incident_multiple_divisions (incident_id, incident_division_id)
			SELECT $1, division_id FROM unnest($2::uuid[]) AS division_id
			ON CONFLICT DO NOTHING`
		_, err := tx.Exec(ctx, divQ, incident.ID, incident.DivisionIDs)
		return err
	})
}

// GetByID loads one live incident with its division references.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	const q = `SELECT i.id, i.event_id, i.company_id, i.incident_type_id, i.department_id,
		i.description, i.status, i.request_status, i.created_by, i.resolved_at,
		i.created_at, i.updated_at,
		COALESCE(ARRAY_AGG(imd.incident_division_id) FILTER (WHERE imd.incident_division_id IS NOT NULL), '{}')
		FROM incidents i
		LEFT JOIN incident_multiple_divisions imd ON imd.incident_id = i.id
		WHERE i.id = $1 AND i.deleted_at IS NULL
		GROUP BY i.id`
	var incident models.Incident
	err := r.db.QueryRow(ctx, q, id).Scan(
		&incident.ID, &incident.EventID, &incident.CompanyID, &incident.IncidentTypeID,
		&incident.DepartmentID, &incident.Description, &incident.Status, &incident.RequestStatus,
		&incident.CreatedBy, &incident.ResolvedAt, &incident.CreatedAt, &incident.UpdatedAt,
		&incident.DivisionIDs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("incident")
	}
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

// ListByEvent returns the live incidents of an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Incident, error) {
	const q = `SELECT i.id, i.event_id, i.company_id, i.incident_type_id, i.department_id,
		i.description, i.status, i.request_status, i.created_by, i.resolved_at,
		i.created_at, i.updated_at,
		COALESCE(ARRAY_AGG(imd.incident_division_id) FILTER (WHERE imd.incident_division_id IS NOT NULL), '{}')
		FROM incidents i
		LEFT JOIN incident_multiple_divisions imd ON imd.incident_id = i.id
		WHERE i.event_id = $1 AND i.deleted_at IS NULL
		GROUP BY i.id
		ORDER BY i.created_at DESC`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	incidents := []models.Incident{}
	for rows.Next() {
		var incident models.Incident
		if err := rows.Scan(
			&incident.ID, &incident.EventID, &incident.CompanyID, &incident.IncidentTypeID,
			&incident.DepartmentID, &incident.Description, &incident.Status, &incident.RequestStatus,
			&incident.CreatedBy, &incident.ResolvedAt, &incident.CreatedAt, &incident.UpdatedAt,
			&incident.DivisionIDs,
		); err != nil {
			return nil, err
		}
		incidents = append(incidents, incident)
	}
	return incidents, rows.Err()
}

// Resolve marks an incident resolved and stamps resolved_at.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	const q = `UPDATE incidents
		SET status = $2, resolved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND resolved_at IS NULL
		RETURNING resolved_at`
	var incident models.Incident
	incident.ID = id
	incident.Status = models.IncidentResolved
	err := r.db.QueryRow(ctx, q, id, models.IncidentResolved).Scan(&incident.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("incident")
	}
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

// SoftDelete marks an incident deleted; it stops counting toward aggregates
// and no longer blocks unlink/delete guards.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE incidents SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("incident")
	}
	return nil
}
