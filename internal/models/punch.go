package models

import "time"

// PunchEvent is a single timestamped device attendance event. Device
// status codes are not trusted as in/out markers: directionality is
// inferred purely from ordering within a matched group.
type PunchEvent struct {
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Timestamp  time.Time `db:"punched_at" json:"punched_at"`
}

// LeaveRecord is an approved leave span. Approved leave marks punch-free
// dates as on leave instead of absent; it never suppresses a window that
// did receive punches.
type LeaveRecord struct {
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
}

// Covers reports whether the given calendar date (YYYY-MM-DD) falls inside
// the leave span, boundaries included.
func (l LeaveRecord) Covers(date string) bool {
	return date >= l.StartDate.Format(DateLayout) && date <= l.EndDate.Format(DateLayout)
}

// DateLayout is the canonical date key format used across the engine.
const DateLayout = "2006-01-02"
