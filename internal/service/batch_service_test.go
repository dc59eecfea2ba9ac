package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsense/attendance-api/internal/models"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
)

type rosterStub struct {
	roster []models.Employee
	err    error
}

func (s rosterStub) ListActive(ctx context.Context) ([]models.Employee, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.roster, nil
}

type resultStoreFake struct {
	mu       sync.Mutex
	rows     []models.DailyAttendanceResult
	listErr  error
	upserted []models.DailyAttendanceResult
}

func (f *resultStoreFake) ListForDate(ctx context.Context, date string) ([]models.DailyAttendanceResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *resultStoreFake) Upsert(ctx context.Context, result models.DailyAttendanceResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, result)
	return nil
}

type computerFake struct {
	mu      sync.Mutex
	results map[string]models.DailyAttendanceResult
	errs    map[string]error
	calls   []string
}

func (f *computerFake) ComputeRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.DailyAttendanceResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, employeeID)
	f.mu.Unlock()
	if err := f.errs[employeeID]; err != nil {
		return nil, err
	}
	if res, ok := f.results[employeeID]; ok {
		return []models.DailyAttendanceResult{res}, nil
	}
	return []models.DailyAttendanceResult{absentDefault(employeeID, from.Format(models.DateLayout))}, nil
}

type memoryCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{store: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

func freshRow(employeeID, date string, status models.AttendanceStatus) models.DailyAttendanceResult {
	start := time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	return models.DailyAttendanceResult{
		EmployeeID:    employeeID,
		Date:          date,
		Status:        status,
		ExpectedStart: &start,
		ExpectedEnd:   &end,
	}
}

func TestBatchReusesFreshPersistedRows(t *testing.T) {
	roster := rosterStub{roster: []models.Employee{{ID: "emp-1"}, {ID: "emp-2"}}}
	store := &resultStoreFake{rows: []models.DailyAttendanceResult{
		freshRow("emp-1", "2025-03-03", models.StatusOnTime),
		freshRow("emp-2", "2025-03-03", models.StatusLateIn),
	}}
	computer := &computerFake{}
	svc := NewBatchService(roster, store, computer, nil, nil, nil, 4, time.Minute)

	results, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, computer.calls, "fresh rows must not trigger recompute")
}

func TestBatchRecomputesStaleRows(t *testing.T) {
	roster := rosterStub{roster: []models.Employee{{ID: "emp-1"}, {ID: "emp-2"}}}
	// emp-1 is a working status without expected times: stale.
	stale := models.DailyAttendanceResult{EmployeeID: "emp-1", Date: "2025-03-03", Status: models.StatusOnTime}
	store := &resultStoreFake{rows: []models.DailyAttendanceResult{
		stale,
		freshRow("emp-2", "2025-03-03", models.StatusLateIn),
	}}
	computer := &computerFake{results: map[string]models.DailyAttendanceResult{
		"emp-1": freshRow("emp-1", "2025-03-03", models.StatusOnTime),
	}}
	svc := NewBatchService(roster, store, computer, nil, nil, nil, 4, time.Minute)

	results, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"emp-1"}, computer.calls)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "emp-1", store.upserted[0].EmployeeID)
}

func TestBatchOneRowPerRosterMember(t *testing.T) {
	roster := rosterStub{roster: []models.Employee{{ID: "emp-1"}, {ID: "emp-2"}, {ID: "emp-3"}}}
	store := &resultStoreFake{}
	computer := &computerFake{
		results: map[string]models.DailyAttendanceResult{
			"emp-1": freshRow("emp-1", "2025-03-03", models.StatusOnTime),
		},
		errs: map[string]error{"emp-2": errors.New("compute blew up")},
	}
	svc := NewBatchService(roster, store, computer, nil, nil, nil, 2, time.Minute)

	results, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := make(map[string]models.DailyAttendanceResult)
	for _, res := range results {
		byID[res.EmployeeID] = res
	}
	assert.Equal(t, models.StatusOnTime, byID["emp-1"].Status)
	// The failed employee degrades to an absent row, never a missing one.
	assert.Equal(t, models.StatusAbsent, byID["emp-2"].Status)
	assert.Equal(t, models.StatusAbsent, byID["emp-3"].Status)
}

func TestBatchFailureFallsBackToCachedRow(t *testing.T) {
	roster := rosterStub{roster: []models.Employee{{ID: "emp-1"}}}
	stale := models.DailyAttendanceResult{EmployeeID: "emp-1", Date: "2025-03-03", Status: models.StatusLateIn}
	store := &resultStoreFake{rows: []models.DailyAttendanceResult{stale}}
	computer := &computerFake{errs: map[string]error{"emp-1": errors.New("transient")}}
	svc := NewBatchService(roster, store, computer, nil, nil, nil, 2, time.Minute)

	results, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)
	require.Len(t, results, 1)
	// Recompute failed, so the stale row is better than nothing.
	assert.Equal(t, models.StatusLateIn, results[0].Status)
}

func TestBatchResultsSortedByEmployee(t *testing.T) {
	roster := rosterStub{roster: []models.Employee{{ID: "emp-9"}, {ID: "emp-1"}, {ID: "emp-5"}}}
	store := &resultStoreFake{}
	svc := NewBatchService(roster, store, &computerFake{}, nil, nil, nil, 2, time.Minute)

	results, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "emp-1", results[0].EmployeeID)
	assert.Equal(t, "emp-5", results[1].EmployeeID)
	assert.Equal(t, "emp-9", results[2].EmployeeID)
}

func TestBatchServesFromResponseCache(t *testing.T) {
	repo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(repo, nil, time.Minute, nil, true)
	roster := rosterStub{roster: []models.Employee{{ID: "emp-1"}}}
	store := &resultStoreFake{rows: []models.DailyAttendanceResult{
		freshRow("emp-1", "2025-03-03", models.StatusOnTime),
	}}
	computer := &computerFake{}
	svc := NewBatchService(roster, store, computer, cacheSvc, nil, nil, 2, time.Minute)

	first, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)

	// Second call must come straight from Redis: break the roster to prove it.
	svc = NewBatchService(rosterStub{err: errors.New("roster down")}, store, computer, cacheSvc, nil, nil, 2, time.Minute)
	second, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
	assert.Equal(t, first[0].EmployeeID, second[0].EmployeeID)
	assert.Equal(t, first[0].Status, second[0].Status)
}

func TestBatchInvalidateDateClearsCache(t *testing.T) {
	repo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(repo, nil, time.Minute, nil, true)
	roster := rosterStub{roster: []models.Employee{{ID: "emp-1"}}}
	store := &resultStoreFake{rows: []models.DailyAttendanceResult{
		freshRow("emp-1", "2025-03-03", models.StatusOnTime),
	}}
	svc := NewBatchService(roster, store, &computerFake{}, cacheSvc, nil, nil, 2, time.Minute)

	_, err := svc.ComputeBatchForDate(context.Background(), date(2025, 3, 3))
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateDate(context.Background(), date(2025, 3, 3)))

	_, ok := repo.store[batchCacheKey("2025-03-03")]
	assert.False(t, ok)
}

func TestCacheServiceDisabledIsInert(t *testing.T) {
	svc := NewCacheService(nil, nil, time.Minute, nil, false)
	var dest []models.DailyAttendanceResult
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", dest, time.Minute))
	assert.NoError(t, svc.Invalidate(context.Background(), "k"))
}
