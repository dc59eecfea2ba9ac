package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/shiftsense/attendance-api/internal/models"
	appErrors "github.com/shiftsense/attendance-api/pkg/errors"
)

const maxAssignedPatterns = 3

const hardcodedGraceMinutes = 30

type employeeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

type patternRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.WeeklyPattern, error)
}

type exceptionRepository interface {
	ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]models.ScheduleException, error)
}

type leaveRepository interface {
	ListApproved(ctx context.Context, employeeID string, from, to time.Time) ([]models.LeaveRecord, error)
}

type punchRepository interface {
	ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]models.PunchEvent, error)
}

// AttendanceService runs the calendar -> matcher -> classifier pipeline
// for one employee over a date range. The computation is a pure function
// of its fetched inputs; all blocking happens at the repository boundary.
type AttendanceService struct {
	employees  employeeRepository
	patterns   patternRepository
	exceptions exceptionRepository
	leaves     leaveRepository
	punches    punchRepository
	engine     EngineConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the attendance computation service.
func NewAttendanceService(
	employees employeeRepository,
	patterns patternRepository,
	exceptions exceptionRepository,
	leaves leaveRepository,
	punches punchRepository,
	engine EngineConfig,
	logger *zap.Logger,
) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		employees:  employees,
		patterns:   patterns,
		exceptions: exceptions,
		leaves:     leaves,
		punches:    punches,
		engine:     engine,
		logger:     logger,
		now:        time.Now,
	}
}

// WithNow overrides the evaluation-time source. "Now" is pinned once per
// request so one computation is internally consistent; tests and
// historical reports pin it to a fixed instant.
func (s *AttendanceService) WithNow(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// ComputeRange produces exactly one DailyAttendanceResult per calendar day
// in [from, to], ascending. Missing employees and missing schedule
// assignments are terminal statuses, not errors.
func (s *AttendanceService) ComputeRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.DailyAttendanceResult, error) {
	from = truncateToDate(from)
	to = truncateToDate(to)

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return fillTerminal(employeeID, from, to, models.StatusEmployeeNotFound), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if len(emp.PatternIDs) == 0 {
		return fillTerminal(employeeID, from, to, models.StatusNoScheduleAssigned), nil
	}

	patternIDs := emp.PatternIDs
	if len(patternIDs) > maxAssignedPatterns {
		patternIDs = patternIDs[:maxAssignedPatterns]
	}
	patterns, err := s.patterns.GetByIDs(ctx, patternIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule patterns")
	}
	if len(patterns) == 0 {
		return fillTerminal(employeeID, from, to, models.StatusNoScheduleAssigned), nil
	}

	// Exceptions and leave degrade gracefully: computation proceeds as if
	// none exist, and the condition is logged for observability.
	exceptions, err := s.exceptions.ListForEmployee(ctx, employeeID, from.AddDate(0, 0, -1), to)
	if err != nil {
		s.logger.Warn("exception fetch failed, proceeding without exceptions",
			zap.String("employee_id", employeeID), zap.Error(err))
		exceptions = nil
	}
	leaves, err := s.leaves.ListApproved(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Warn("leave fetch failed, proceeding without leave",
			zap.String("employee_id", employeeID), zap.Error(err))
		leaves = nil
	}

	// One extra day of lookback for shifts starting the prior evening, and
	// two days of lookahead: an overnight shift starting on the last range
	// date ends the following local morning and its trailing match buffer
	// reaches past the next UTC midnight.
	punches, err := s.punches.ListForEmployee(ctx, employeeID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 2))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load punches")
	}

	grace := s.resolveGrace(patterns, emp)
	now := s.now().UTC()

	windows := s.engine.buildShiftWindows(from, to, patterns, exceptions)
	if len(windows) == 0 && len(exceptions) == 0 {
		return fillTerminal(employeeID, from, to, models.StatusNoScheduleAssigned), nil
	}

	groups, unmatched, traces := s.engine.matchPunches(punches, windows)
	byDate := make(map[string]models.DailyAttendanceResult)

	// Dates whose windows won punches.
	for key, g := range groups {
		byDate[key] = classifyShift(employeeID, classifierInput{
			Window:  g.Window,
			Punches: g.Punches,
			Date:    key,
			OnLeave: onLeave(leaves, key),
			Grace:   grace,
			Now:     now,
		})
	}

	// Punch-free dates still covered by a window.
	for key, w := range representativeWindows(windows) {
		if _, ok := byDate[key]; ok {
			continue
		}
		byDate[key] = classifyShift(employeeID, classifierInput{
			Window:  w,
			Date:    key,
			OnLeave: onLeave(leaves, key),
			Grace:   grace,
			Now:     now,
		})
	}

	// Unmatched punches produce fallback rows, but a window-derived result
	// always wins the date.
	for key, times := range s.groupUnmatched(unmatched) {
		if _, ok := byDate[key]; ok {
			continue
		}
		byDate[key] = punchOnlyResult(employeeID, key, times)
	}

	s.logTraces(employeeID, traces)

	results := make([]models.DailyAttendanceResult, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(models.DateLayout)
		if res, ok := byDate[key]; ok {
			res.Trace = tracesForDate(traces, res)
			results = append(results, res)
			continue
		}
		status := models.StatusAbsent
		if onLeave(leaves, key) {
			status = models.StatusOnLeave
		} else if dayOffException(exceptions, key) {
			status = models.StatusDayOff
		}
		results = append(results, models.DailyAttendanceResult{
			EmployeeID: employeeID,
			Date:       key,
			Status:     status,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

// resolveGrace walks the grace precedence chain: per-schedule override,
// organization default, legacy per-department fallback, hardcoded default.
func (s *AttendanceService) resolveGrace(patterns []models.WeeklyPattern, emp *models.Employee) time.Duration {
	for _, p := range patterns {
		if p.GraceMinutes != nil {
			return time.Duration(*p.GraceMinutes) * time.Minute
		}
	}
	if s.engine.DefaultGraceMinutes > 0 {
		return time.Duration(s.engine.DefaultGraceMinutes) * time.Minute
	}
	if emp.DepartmentGraceMinutes != nil {
		return time.Duration(*emp.DepartmentGraceMinutes) * time.Minute
	}
	return hardcodedGraceMinutes * time.Minute
}

// representativeWindows picks one window per grouping date for punch-free
// classification: a working window beats a day-off window, then the
// earlier pattern wins.
func representativeWindows(windows []models.ShiftWindow) map[string]models.ShiftWindow {
	reps := make(map[string]models.ShiftWindow)
	for _, w := range windows {
		cur, ok := reps[w.DateKey]
		if !ok || (cur.IsDayOff && !w.IsDayOff) {
			reps[w.DateKey] = w
		}
	}
	return reps
}

func (s *AttendanceService) groupUnmatched(unmatched []time.Time) map[string][]time.Time {
	byDate := make(map[string][]time.Time)
	for _, t := range unmatched {
		key := s.engine.dateKeyFor(t)
		byDate[key] = append(byDate[key], t)
	}
	return byDate
}

// punchOnlyResult covers punches with no surviving window, typically on a
// date a day-off exception cleared. They are present, never absent.
func punchOnlyResult(employeeID, date string, times []time.Time) models.DailyAttendanceResult {
	first := times[0]
	res := models.DailyAttendanceResult{
		EmployeeID: employeeID,
		Date:       date,
		Status:     models.StatusPresent,
		InTime:     &first,
	}
	if len(times) > 1 {
		last := times[len(times)-1]
		res.OutTime = &last
		res.DurationHours = round2(last.Sub(first).Hours())
		res.RegularHours = res.DurationHours
	}
	return res
}

func (s *AttendanceService) logTraces(employeeID string, traces []models.MatchTrace) {
	for _, tr := range traces {
		if tr.Unmatched {
			s.logger.Debug("punch unmatched",
				zap.String("employee_id", employeeID),
				zap.Time("punch", tr.Punch))
			continue
		}
		s.logger.Debug("punch matched",
			zap.String("employee_id", employeeID),
			zap.Time("punch", tr.Punch),
			zap.String("window", tr.WindowKey),
			zap.Int("score", tr.Score))
	}
}

func tracesForDate(traces []models.MatchTrace, res models.DailyAttendanceResult) []models.MatchTrace {
	var out []models.MatchTrace
	for _, tr := range traces {
		if tr.Unmatched {
			continue
		}
		if len(tr.WindowKey) >= len(res.Date) && tr.WindowKey[:len(res.Date)] == res.Date {
			out = append(out, tr)
		}
	}
	return out
}

func onLeave(leaves []models.LeaveRecord, date string) bool {
	for _, l := range leaves {
		if l.Covers(date) {
			return true
		}
	}
	return false
}

func dayOffException(exceptions []models.ScheduleException, date string) bool {
	for _, ex := range exceptions {
		if ex.IsDayOff && ex.Date.Format(models.DateLayout) == date {
			return true
		}
	}
	return false
}

func fillTerminal(employeeID string, from, to time.Time, status models.AttendanceStatus) []models.DailyAttendanceResult {
	var results []models.DailyAttendanceResult
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		results = append(results, models.DailyAttendanceResult{
			EmployeeID: employeeID,
			Date:       d.Format(models.DateLayout),
			Status:     status,
		})
	}
	return results
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
