// Package exports records report export runs.
package exports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides export log persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an exports repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a pending export log row.
func (r *Repository) Create(ctx context.Context, log *models.ExportLog) error {
	const q = `INSERT INTO export_logs (event_id, requested_by, report_type, format, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	log.Status = models.ExportPending
	return r.db.QueryRow(ctx, q,
		log.EventID, log.RequestedBy, log.ReportType, log.Format, log.Status,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
}

// MarkCompleted records the delivered file URL.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, fileURL string) error {
	const q = `UPDATE export_logs SET status = $2, file_url = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, models.ExportCompleted, fileURL)
	return err
}

// MarkFailed records the failure message.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	const q = `UPDATE export_logs SET status = $2, error_message = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, models.ExportFailed, msg)
	return err
}

// GetByID loads one export log.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExportLog, error) {
	const q = `SELECT id, event_id, requested_by, report_type, format, status,
		COALESCE(file_url, ''), COALESCE(error_message, ''), created_at, updated_at
		FROM export_logs WHERE id = $1`
	var log models.ExportLog
	err := r.db.QueryRow(ctx, q, id).Scan(
		&log.ID, &log.EventID, &log.RequestedBy, &log.ReportType, &log.Format,
		&log.Status, &log.FileURL, &log.ErrorMessage, &log.CreatedAt, &log.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("export")
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByEvent returns the export history of an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.ExportLog, error) {
	const q = `SELECT id, event_id, requested_by, report_type, format, status,
		COALESCE(file_url, ''), COALESCE(error_message, ''), created_at, updated_at
		FROM export_logs WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []models.ExportLog{}
	for rows.Next() {
		var log models.ExportLog
		if err := rows.Scan(
			&log.ID, &log.EventID, &log.RequestedBy, &log.ReportType, &log.Format,
			&log.Status, &log.FileURL, &log.ErrorMessage, &log.CreatedAt, &log.UpdatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
