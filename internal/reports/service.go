package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/internal/aggregate"
	"github.com/crowdpulse/backend/internal/exports"
	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/queue"
	"github.com/crowdpulse/backend/pkg/storage"
)

var contentTypes = map[string]string{
	FormatCSV: "text/csv",
	FormatPDF: "application/pdf",
}

// Service orchestrates one export: record it, render it, deliver the file.
type Service struct {
	client  *Client
	s3      *storage.S3
	exports *exports.Repository
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewService creates a reports service.
func NewService(client *Client, s3 *storage.S3, exportsRepo *exports.Repository, q *queue.Queue, logger *zap.Logger) *Service {
	return &Service{client: client, s3: s3, exports: exportsRepo, queue: q, logger: logger}
}

// ValidFormat reports whether the requested export format is supported.
func ValidFormat(format string) bool {
	_, ok := contentTypes[format]
	return ok
}

// Export renders the table and returns the download URL. The run is recorded
// in the export log either way; a failed render marks the log failed and
// returns the error without touching any stored entities.
func (s *Service) Export(ctx context.Context, eventID uuid.UUID, requestedBy uuid.UUID, reportType, format string, columns []string, rows [][]string) (string, error) {
	log := &models.ExportLog{
		EventID:     eventID,
		RequestedBy: &requestedBy,
		ReportType:  reportType,
		Format:      format,
	}
	if err := s.exports.Create(ctx, log); err != nil {
		return "", fmt.Errorf("record export: %w", err)
	}

	url, err := s.render(ctx, log, columns, rows)
	if err != nil {
		if markErr := s.exports.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			s.logger.Warn("mark export failed", zap.String("export_id", log.ID.String()), zap.Error(markErr))
		}
		return "", err
	}
	if err := s.exports.MarkCompleted(ctx, log.ID, url); err != nil {
		s.logger.Warn("mark export completed", zap.String("export_id", log.ID.String()), zap.Error(err))
	}
	return url, nil
}

// EnqueueExport records a pending export and hands the rendering to the
// background worker. Returns the export log id for status polling.
func (s *Service) EnqueueExport(ctx context.Context, eventID uuid.UUID, requestedBy uuid.UUID, reportType, format string, columns []string, rows [][]string) (uuid.UUID, error) {
	log := &models.ExportLog{
		EventID:     eventID,
		RequestedBy: &requestedBy,
		ReportType:  reportType,
		Format:      format,
	}
	if err := s.exports.Create(ctx, log); err != nil {
		return uuid.Nil, fmt.Errorf("record export: %w", err)
	}
	err := s.queue.EnqueueReportExport(ctx, queue.ReportExportPayload{
		ExportID:   log.ID,
		EventID:    eventID,
		ReportType: reportType,
		Format:     format,
		Columns:    columns,
		Rows:       rows,
	})
	if err != nil {
		if markErr := s.exports.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			s.logger.Warn("mark export failed", zap.String("export_id", log.ID.String()), zap.Error(markErr))
		}
		return uuid.Nil, fmt.Errorf("enqueue export: %w", err)
	}
	return log.ID, nil
}

// ProcessQueued renders a previously enqueued export and records the outcome.
// Called by the background worker.
func (s *Service) ProcessQueued(ctx context.Context, payload queue.ReportExportPayload) error {
	log := &models.ExportLog{
		ID:         payload.ExportID,
		EventID:    payload.EventID,
		ReportType: payload.ReportType,
		Format:     payload.Format,
	}
	url, err := s.render(ctx, log, payload.Columns, payload.Rows)
	if err != nil {
		if markErr := s.exports.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			s.logger.Warn("mark export failed", zap.String("export_id", log.ID.String()), zap.Error(markErr))
		}
		return err
	}
	return s.exports.MarkCompleted(ctx, log.ID, url)
}

func (s *Service) render(ctx context.Context, log *models.ExportLog, columns []string, rows [][]string) (string, error) {
	result, err := s.client.Render(ctx, RenderRequest{
		Format:   log.Format,
		FileName: fmt.Sprintf("%s-%s", log.ReportType, log.ID),
		Columns:  columns,
		Rows:     rows,
	})
	if err != nil {
		return "", err
	}
	if result.URL != "" {
		return result.URL, nil
	}
	if s.s3 == nil {
		return "", fmt.Errorf("report storage not configured")
	}

	key := storage.ReportKey(log.EventID.String(), log.ID.String(), log.Format)
	if _, err := s.s3.Upload(ctx, s.s3.ReportsBucket(), key, contentTypes[log.Format],
		bytes.NewReader(result.Bytes), int64(len(result.Bytes))); err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	url, err := s.s3.GeneratePresignedDownloadURL(ctx, s.s3.ReportsBucket(), key, s.s3.PresignExpire())
	if err != nil {
		return "", fmt.Errorf("presign report: %w", err)
	}
	return url, nil
}

// ListingTable flattens listing rows into the renderer's column/row shape.
func ListingTable(rows []aggregate.Row) ([]string, [][]string) {
	columns := []string{"Name", "Staff", "Available", "Unavailable", "Incidents", "Avg Resolution (s)"}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.Name,
			fmt.Sprintf("%d", r.StaffCount),
			fmt.Sprintf("%d", r.AvailableStaffCount),
			fmt.Sprintf("%d", r.UnavailableStaffCount),
			fmt.Sprintf("%d", r.IncidentsCount),
			fmt.Sprintf("%.0f", r.ResolvedAvgTimeSec),
		}
	}
	return columns, out
}
