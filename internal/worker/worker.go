// Package worker runs the background job loop: realtime publish jobs emitted
// after mutations commit, and queued report exports.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crowdpulse/backend/internal/realtime"
	"github.com/crowdpulse/backend/internal/reports"
	"github.com/crowdpulse/backend/pkg/queue"
)

// Processor consumes jobs from the Redis queue.
type Processor struct {
	queue     *queue.Queue
	publisher realtime.RedisPublisher
	reports   *reports.Service
	logger    *zap.Logger
}

// NewProcessor creates a job processor.
func NewProcessor(q *queue.Queue, publisher realtime.RedisPublisher, reportsSvc *reports.Service, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{queue: q, publisher: publisher, reports: reportsSvc, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypePublish:
		var payload queue.PublishPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal publish payload: %w", err)
		}
		if err := p.publisher.PublishEventMessage(payload.EventID, payload.Name, payload.Body); err != nil {
			return fmt.Errorf("publish to event channel: %w", err)
		}
		return nil
	case queue.JobTypeReportExport:
		var payload queue.ReportExportPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal export payload: %w", err)
		}
		return p.reports.ProcessQueued(ctx, payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, key, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job, key); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			continue
		}
	}
}
