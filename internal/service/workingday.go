package service

import (
	"time"

	"github.com/shiftsense/attendance-api/internal/models"
)

// EngineConfig carries the resolved organization-level settings the
// computation pipeline depends on. The caller resolves them once from
// configuration; the engine never re-derives offsets ad hoc.
type EngineConfig struct {
	// OrgOffset is the fixed organizational UTC offset local schedule
	// times are expressed in (UTC+5 in the reference deployment).
	OrgOffset time.Duration
	// DefaultGraceMinutes is the organization-wide late-in allowance,
	// overridable per pattern and, legacy, per department.
	DefaultGraceMinutes int
	// WorkingDayEnabled switches day attribution from plain UTC calendar
	// dates to configurable 24-hour working-day windows.
	WorkingDayEnabled bool
	// WorkingDayStart is the local time of day a working day begins at.
	WorkingDayStart models.TimeOfDay
}

// workingDayKey returns the calendar-date label of the working-day window
// containing the instant. A working day runs from the configured start
// time to one minute before it the next day; an instant before today's
// start belongs to yesterday's label. The start time is organization-local,
// so the instant is shifted into the local offset before comparison.
func (e EngineConfig) workingDayKey(t time.Time) string {
	local := t.Add(e.OrgOffset)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(),
		e.WorkingDayStart.Hour, e.WorkingDayStart.Minute, 0, 0, time.UTC)
	if local.Before(dayStart) {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(models.DateLayout)
}

// workingDayEndUTC returns the UTC instant at which the working day with
// the given label ends.
func (e EngineConfig) workingDayEndUTC(label string) time.Time {
	d, err := time.Parse(models.DateLayout, label)
	if err != nil {
		return time.Time{}
	}
	startLocal := time.Date(d.Year(), d.Month(), d.Day(),
		e.WorkingDayStart.Hour, e.WorkingDayStart.Minute, 0, 0, time.UTC)
	return startLocal.AddDate(0, 0, 1).Add(-e.OrgOffset)
}

// dateKeyFor attributes an instant to its grouping date: the
// organization-local calendar date, or the working-day label when that
// feature is enabled. Windows feed their actual start instant through
// here, never midnight, so a late-evening shift start lands on the
// evening's date and an overnight shift stays whole.
func (e EngineConfig) dateKeyFor(t time.Time) string {
	if e.WorkingDayEnabled {
		return e.workingDayKey(t)
	}
	return t.Add(e.OrgOffset).Format(models.DateLayout)
}
