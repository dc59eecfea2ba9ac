package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shiftsense/attendance-api/internal/models"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
)

const defaultBatchConcurrency = 8

type rosterRepository interface {
	ListActive(ctx context.Context) ([]models.Employee, error)
}

type resultCacheRepository interface {
	ListForDate(ctx context.Context, date string) ([]models.DailyAttendanceResult, error)
	Upsert(ctx context.Context, result models.DailyAttendanceResult) error
}

type rangeComputer interface {
	ComputeRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.DailyAttendanceResult, error)
}

// BatchService fans the per-employee pipeline out across the roster for a
// single date, merged with the persisted result cache. Each employee is
// an independent task; a failure degrades that employee's row and never
// aborts the batch.
type BatchService struct {
	roster      rosterRepository
	results     resultCacheRepository
	computer    rangeComputer
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	concurrency int
	cacheTTL    time.Duration
}

// NewBatchService constructs the batch orchestrator.
func NewBatchService(roster rosterRepository, results resultCacheRepository, computer rangeComputer, cache *CacheService, metrics *MetricsService, logger *zap.Logger, concurrency int, cacheTTL time.Duration) *BatchService {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		roster:      roster,
		results:     results,
		computer:    computer,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
		cacheTTL:    cacheTTL,
	}
}

func batchCacheKey(date string) string {
	return fmt.Sprintf("attendance:daily:%s", date)
}

// ComputeBatchForDate returns exactly one result per roster member for the
// date. Cached rows are reused unless stale; missing or stale employees
// are recomputed concurrently and written back via idempotent upsert, so
// the caller never observes a placeholder.
func (s *BatchService) ComputeBatchForDate(ctx context.Context, date time.Time) ([]models.DailyAttendanceResult, error) {
	day := truncateToDate(date)
	dateKey := day.Format(models.DateLayout)

	var cached []models.DailyAttendanceResult
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, batchCacheKey(dateKey), &cached); err == nil && hit {
			return cached, nil
		}
	}

	roster, err := s.roster.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	persisted, err := s.results.ListForDate(ctx, dateKey)
	if err != nil {
		// Degrade to a full recompute rather than failing the batch.
		s.logger.Warn("result cache read failed", zap.String("date", dateKey), zap.Error(err))
		persisted = nil
	}
	byEmployee := make(map[string]models.DailyAttendanceResult, len(persisted))
	for _, row := range persisted {
		byEmployee[row.EmployeeID] = row
	}

	type task struct {
		idx int
		id  string
	}
	var pending []task
	merged := make([]models.DailyAttendanceResult, len(roster))
	for i, emp := range roster {
		if row, ok := byEmployee[emp.ID]; ok && !row.Stale() {
			merged[i] = row
			continue
		}
		pending = append(pending, task{idx: i, id: emp.ID})
	}

	if len(pending) > 0 {
		start := time.Now()
		sem := make(chan struct{}, s.concurrency)
		var wg sync.WaitGroup
		for _, t := range pending {
			wg.Add(1)
			sem <- struct{}{}
			go func(t task) {
				defer wg.Done()
				defer func() { <-sem }()
				merged[t.idx] = s.computeOne(ctx, t.id, day, dateKey, byEmployee[t.id])
			}(t)
		}
		wg.Wait()
		if s.metrics != nil {
			s.metrics.ObserveBatchCompute(len(pending), time.Since(start))
		}
	}

	// Guarantee one row per roster member regardless of task outcomes.
	for i, emp := range roster {
		if merged[i].EmployeeID == "" {
			merged[i] = absentDefault(emp.ID, dateKey)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].EmployeeID < merged[j].EmployeeID })

	if s.cache != nil {
		_ = s.cache.Set(ctx, batchCacheKey(dateKey), merged, s.cacheTTL)
	}
	return merged, nil
}

// computeOne runs the full pipeline for one employee and writes the fresh
// row back. On failure it falls back to the last cached value, then to a
// zero-hour absent row.
func (s *BatchService) computeOne(ctx context.Context, employeeID string, day time.Time, dateKey string, fallback models.DailyAttendanceResult) models.DailyAttendanceResult {
	rows, err := s.computer.ComputeRange(ctx, employeeID, day, day)
	if err != nil || len(rows) == 0 {
		s.logger.Warn("batch compute failed for employee",
			zap.String("employee_id", employeeID),
			zap.String("date", dateKey),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordComputeFailure()
		}
		if fallback.EmployeeID != "" {
			return fallback
		}
		return absentDefault(employeeID, dateKey)
	}
	row := rows[0]
	if err := s.results.Upsert(ctx, row); err != nil {
		s.logger.Warn("result cache write failed",
			zap.String("employee_id", employeeID),
			zap.String("date", dateKey),
			zap.Error(err))
	}
	return row
}

// InvalidateDate clears the response cache for a date, typically after a
// punch-sync run enqueues a recompute.
func (s *BatchService) InvalidateDate(ctx context.Context, date time.Time) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, batchCacheKey(truncateToDate(date).Format(models.DateLayout)))
}

func absentDefault(employeeID, date string) models.DailyAttendanceResult {
	return models.DailyAttendanceResult{
		EmployeeID: employeeID,
		Date:       date,
		Status:     models.StatusAbsent,
	}
}
