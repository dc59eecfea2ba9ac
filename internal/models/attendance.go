package models

import "time"

// AttendanceStatus is the closed set of per-day classifications.
type AttendanceStatus string

const (
	StatusOnTime             AttendanceStatus = "On-Time"
	StatusLateIn             AttendanceStatus = "Late-In"
	StatusPresent            AttendanceStatus = "Present"
	StatusHalfDay            AttendanceStatus = "Half Day"
	StatusDayOff             AttendanceStatus = "Day Off"
	StatusOnLeave            AttendanceStatus = "On Leave"
	StatusOutOfSchedule      AttendanceStatus = "Out of Schedule"
	StatusPunchOutMissing    AttendanceStatus = "Punch Out Missing"
	StatusWorkedOnDayOff     AttendanceStatus = "Worked on Day Off"
	StatusAbsent             AttendanceStatus = "Absent"
	StatusEmployeeNotFound   AttendanceStatus = "Employee Not Found"
	StatusNoScheduleAssigned AttendanceStatus = "No Schedule Assigned"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusOnTime, StatusLateIn, StatusPresent, StatusHalfDay,
		StatusDayOff, StatusOnLeave, StatusOutOfSchedule, StatusPunchOutMissing,
		StatusWorkedOnDayOff, StatusAbsent, StatusEmployeeNotFound,
		StatusNoScheduleAssigned:
		return true
	default:
		return false
	}
}

// Working reports whether the status represents an employee who was on a
// working shift that day, as opposed to absent, on leave, or unscheduled.
func (s AttendanceStatus) Working() bool {
	switch s {
	case StatusAbsent, StatusOnLeave, StatusDayOff,
		StatusEmployeeNotFound, StatusNoScheduleAssigned:
		return false
	default:
		return true
	}
}

// MatchTrace records how one punch was assigned during matching. Traces
// travel with results for logging and debugging but are not part of the
// response contract.
type MatchTrace struct {
	Punch     time.Time `json:"-"`
	WindowKey string    `json:"-"`
	Score     int       `json:"-"`
	Unmatched bool      `json:"-"`
}

// DailyAttendanceResult is the engine's output: one classification and
// hour breakdown per employee per display date.
type DailyAttendanceResult struct {
	EmployeeID    string           `db:"employee_id" json:"employee_id"`
	Date          string           `db:"date" json:"date"`
	Status        AttendanceStatus `db:"status" json:"status"`
	InTime        *time.Time       `db:"in_time" json:"in_time,omitempty"`
	OutTime       *time.Time       `db:"out_time" json:"out_time,omitempty"`
	DurationHours float64          `db:"duration_hours" json:"duration_hours"`
	RegularHours  float64          `db:"regular_hours" json:"regular_hours"`
	OvertimeHours float64          `db:"overtime_hours" json:"overtime_hours"`
	// Expected shift bounds back the batch staleness check; absent for
	// results not derived from a shift window.
	ExpectedStart *time.Time `db:"expected_start" json:"expected_start,omitempty"`
	ExpectedEnd   *time.Time `db:"expected_end" json:"expected_end,omitempty"`

	Trace []MatchTrace `db:"-" json:"-"`
}

// Stale reports whether a cached row must be recomputed: a working status
// with no expected-shift metadata means the row predates shift matching
// (or was written by the legacy sync path) and cannot be trusted.
func (r DailyAttendanceResult) Stale() bool {
	return r.Status.Working() && r.ExpectedStart == nil
}
