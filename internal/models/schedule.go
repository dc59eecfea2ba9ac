package models

import "time"

// DaySegment is one weekday's local working interval within a weekly
// pattern. A nil segment, or one spanning the full day, means day off.
type DaySegment struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// IsFullDay reports whether the segment covers 00:00-23:59, the sentinel
// the device bridge uses to encode a nominal day off.
func (s DaySegment) IsFullDay() bool {
	return s.Start.Minutes() == 0 && s.End.Hour == 23 && s.End.Minute == 59
}

// FullDaySegment is the canonical day-off segment.
func FullDaySegment() DaySegment {
	return DaySegment{Start: TimeOfDay{}, End: TimeOfDay{Hour: 23, Minute: 59}}
}

// WeeklyPattern is an employee's recurring schedule: one optional segment
// per weekday, Sunday through Saturday. An employee may carry up to three
// assigned patterns at once (individual override plus department defaults);
// each may contribute a shift window on a given date.
type WeeklyPattern struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Days         [7]*DaySegment `db:"-" json:"days"`
	GraceMinutes *int           `db:"grace_minutes" json:"grace_minutes,omitempty"`
}

// SegmentFor returns the segment for the given weekday, normalising nil
// (no entry) to the full-day day-off sentinel so punches on a nominal day
// off are still captured instead of falling through unmatched.
func (p WeeklyPattern) SegmentFor(day time.Weekday) DaySegment {
	if seg := p.Days[int(day)]; seg != nil {
		return *seg
	}
	return FullDaySegment()
}

// ScheduleException is a per-date override that always wins over
// pattern-derived windows: a day off removes every window on the date, a
// custom-time pair replaces them with a single window, and a half-day-only
// exception flags existing windows without changing times.
type ScheduleException struct {
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	Date       time.Time  `db:"date" json:"date"`
	IsDayOff   bool       `db:"is_day_off" json:"is_day_off"`
	IsHalfDay  bool       `db:"is_half_day" json:"is_half_day"`
	Start      *TimeOfDay `db:"-" json:"start,omitempty"`
	End        *TimeOfDay `db:"-" json:"end,omitempty"`
}

// HasCustomTimes reports whether the exception replaces window times.
func (e ScheduleException) HasCustomTimes() bool {
	return e.Start != nil && e.End != nil
}

// ShiftWindow is one expected work period resolved to absolute UTC
// instants. Windows are derived fresh per request and never persisted.
type ShiftWindow struct {
	Key             string
	PatternID       string
	LocalStart      TimeOfDay
	LocalEnd        TimeOfDay
	StartUTC        time.Time
	EndUTC          time.Time
	CrossesMidnight bool
	IsDayOff        bool
	IsHalfDay       bool
	// DateKey groups the window and its punches onto one logical day:
	// the UTC start date, or the working-day label when that feature is on.
	DateKey string
}

// ScheduledHours returns the nominal span of the window in hours, halved
// for half days.
func (w ShiftWindow) ScheduledHours() float64 {
	h := w.EndUTC.Sub(w.StartUTC).Hours()
	if w.IsHalfDay {
		h /= 2
	}
	return h
}
