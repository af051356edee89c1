// Package audit delivers activity records to a sink asynchronously. A
// failed delivery retries but never blocks or rolls back the business
// operation that produced the record.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
	"github.com/coronacion-creator/colegio-api/pkg/jobs"
)

// Sink persists audit records. The Postgres implementation appends to the
// audit_logs table; tests swap in an in-memory sink.
type Sink interface {
	Append(ctx context.Context, entry *models.AuditLog) error
}

// Entry is the caller-facing shape of one auditable event.
type Entry struct {
	Actor       *string
	Action      string
	Module      string
	Description string
	Success     bool
	Metadata    interface{}
}

// Recorder fans audit entries out to the sink through a worker queue.
type Recorder struct {
	sink    Sink
	queue   *jobs.Queue
	enabled bool
	logger  *zap.Logger
}

// NewRecorder constructs a Recorder. When disabled, Record is a no-op.
func NewRecorder(sink Sink, cfg config.AuditConfig, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{sink: sink, enabled: cfg.Enabled, logger: logger}
	r.queue = jobs.NewQueue("audit", r.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return r
}

// Start launches the delivery workers.
func (r *Recorder) Start(ctx context.Context) {
	if !r.enabled {
		return
	}
	r.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (r *Recorder) Stop() {
	if !r.enabled {
		return
	}
	r.queue.Stop()
}

// Record enqueues one audit entry. Queue pressure or a stopped queue drops
// the entry with a warning; the calling operation is never affected.
func (r *Recorder) Record(entry Entry) {
	if !r.enabled {
		return
	}
	var metadata []byte
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			r.logger.Warn("audit metadata not serializable", zap.String("action", entry.Action), zap.Error(err))
		} else {
			metadata = raw
		}
	}
	log := &models.AuditLog{
		ID:          uuid.NewString(),
		Actor:       entry.Actor,
		Action:      entry.Action,
		Module:      entry.Module,
		Description: entry.Description,
		Success:     entry.Success,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.queue.Enqueue(jobs.Job{ID: log.ID, Payload: log}); err != nil {
		r.logger.Warn("audit entry dropped", zap.String("action", entry.Action), zap.Error(err))
	}
}

func (r *Recorder) deliver(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditLog)
	if !ok {
		r.logger.Error("audit job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	return r.sink.Append(ctx, entry)
}
