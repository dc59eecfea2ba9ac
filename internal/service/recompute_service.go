package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiftsense/attendance-api/internal/models"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
	"github.com/shiftsense/attendance-api/pkg/jobs"
)

const recomputeJobType = "attendance.recompute"

type batchRecomputer interface {
	ComputeBatchForDate(ctx context.Context, date time.Time) ([]models.DailyAttendanceResult, error)
	InvalidateDate(ctx context.Context, date time.Time) error
}

// RecomputeService warms the daily result cache off the request path,
// typically after a punch-sync run lands new raw punches.
type RecomputeService struct {
	queue  *jobs.Queue
	batch  batchRecomputer
	logger *zap.Logger
}

// NewRecomputeService constructs the service and its worker queue.
func NewRecomputeService(batch batchRecomputer, cfg jobs.QueueConfig, logger *zap.Logger) *RecomputeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RecomputeService{batch: batch, logger: logger}
	s.queue = jobs.NewQueue("attendance-recompute", s.handle, cfg)
	return s
}

// Start launches the queue workers.
func (s *RecomputeService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *RecomputeService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules a full-roster recompute for the date.
func (s *RecomputeService) Enqueue(date time.Time) (string, error) {
	jobID := uuid.NewString()
	err := s.queue.Enqueue(jobs.Job{
		ID:      jobID,
		Type:    recomputeJobType,
		Payload: truncateToDate(date).Format(models.DateLayout),
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue recompute")
	}
	s.logger.Info("recompute enqueued",
		zap.String("job_id", jobID),
		zap.String("date", truncateToDate(date).Format(models.DateLayout)),
		zap.Int("queue_depth", s.queue.Depth()))
	return jobID, nil
}

func (s *RecomputeService) handle(ctx context.Context, job jobs.Job) error {
	dateKey, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("recompute job %s carries unexpected payload %T", job.ID, job.Payload)
	}
	date, err := time.Parse(models.DateLayout, dateKey)
	if err != nil {
		return fmt.Errorf("recompute job %s has invalid date %q: %w", job.ID, dateKey, err)
	}
	if err := s.batch.InvalidateDate(ctx, date); err != nil {
		s.logger.Warn("recompute cache invalidation failed", zap.String("date", dateKey), zap.Error(err))
	}
	rows, err := s.batch.ComputeBatchForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("recompute batch for %s: %w", dateKey, err)
	}
	s.logger.Info("recompute completed", zap.String("date", dateKey), zap.Int("rows", len(rows)))
	return nil
}
