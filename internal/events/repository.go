package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides event persistence. Reads exclude soft-deleted rows.
type Repository struct {
	db database.DB
}

// NewRepository creates an events repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

const eventColumns = `id, company_id, name, status, starts_at, ends_at, deleted_at, created_at, updated_at`

func scanEvent(row pgx.Row, e *models.Event) error {
	return row.Scan(
		&e.ID, &e.CompanyID, &e.Name, &e.Status,
		&e.StartsAt, &e.EndsAt, &e.DeletedAt, &e.CreatedAt, &e.UpdatedAt,
	)
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, event *models.Event) error {
	const q = `INSERT INTO events (company_id, name, status, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, q,
		event.CompanyID, event.Name, event.Status, event.StartsAt, event.EndsAt,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

// GetByID loads one live event.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND deleted_at IS NULL`
	var event models.Event
	err := scanEvent(r.db.QueryRow(ctx, q, id), &event)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("event")
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByCompany returns the live events of a company, newest first.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Update renames or reschedules a live event.
func (r *Repository) Update(ctx context.Context, event *models.Event) error {
	const q = `UPDATE events SET name = $2, starts_at = $3, ends_at = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, q, event.ID, event.Name, event.StartsAt, event.EndsAt).
		Scan(&event.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("event")
	}
	return err
}

// UpdateStatus transitions a live event's status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	const q = `UPDATE events SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, q, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("event")
	}
	return nil
}

// SoftDelete marks an event deleted; its rows stay for audit but vanish from
// every listing and aggregate.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE events SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("event")
	}
	return nil
}
