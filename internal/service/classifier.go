package service

import (
	"math"
	"time"

	"github.com/shiftsense/attendance-api/internal/models"
)

const (
	// overtimeBuffer keeps a shift "in progress" for a while past its
	// nominal end before the day is considered closed.
	overtimeBuffer = 2 * time.Hour
	// lastPunchGrace allows a short break before a final punch-out
	// without prematurely closing the shift.
	lastPunchGrace = 3 * time.Hour
	// completedOutAfterEnd and completedOutSettle detect a last punch
	// that already looks like a finished punch-out despite the generic
	// still-working signal.
	completedOutAfterEnd = 2 * time.Hour
	completedOutSettle   = 1 * time.Hour
	// forgottenPunchOutSpan flags an implausibly long in/out pair as a
	// forgotten punch-out.
	forgottenPunchOutSpan = 12 * time.Hour
	// scheduleBuffer is the generous window around the expected shift
	// inside which an in-punch still counts as on-schedule.
	scheduleBuffer = 2 * time.Hour
)

// classifierInput is everything needed to classify one shift window.
type classifierInput struct {
	Window  models.ShiftWindow
	Punches []time.Time // ascending; first = in, last = out
	Date    string      // display date key
	OnLeave bool
	Grace   time.Duration
	Now     time.Time
}

// classifyShift turns one shift window and its assigned punches into a
// daily attendance result.
func classifyShift(employeeID string, in classifierInput) models.DailyAttendanceResult {
	w := in.Window
	expectedStart, expectedEnd := w.StartUTC, w.EndUTC
	res := models.DailyAttendanceResult{
		EmployeeID:    employeeID,
		Date:          in.Date,
		ExpectedStart: &expectedStart,
		ExpectedEnd:   &expectedEnd,
	}

	if len(in.Punches) == 0 {
		switch {
		case in.OnLeave:
			res.Status = models.StatusOnLeave
		case w.IsDayOff:
			res.Status = models.StatusDayOff
		case w.IsHalfDay:
			res.Status = models.StatusHalfDay
		default:
			res.Status = models.StatusAbsent
		}
		return res
	}

	first := in.Punches[0]
	last := in.Punches[len(in.Punches)-1]
	res.InTime = &first

	if stillWorking(in, last) {
		res.Status = lateOrOnTime(first, expectedStart, in.Grace)
		if w.IsDayOff {
			res.Status = models.StatusWorkedOnDayOff
		}
		return res
	}

	duration := last.Sub(first)
	res.DurationHours = round2(duration.Hours())

	if duration > forgottenPunchOutSpan && last.Before(expectedEnd) {
		// The out-punch never happened; the trailing punch is noise from
		// within the shift. Keep the raw span for record-keeping but
		// withhold the out time and worked hours.
		res.Status = models.StatusPunchOutMissing
		return res
	}

	res.OutTime = &last
	switch {
	case w.IsDayOff:
		res.Status = models.StatusWorkedOnDayOff
	case w.IsHalfDay:
		res.Status = models.StatusHalfDay
	case first.Before(expectedStart.Add(-scheduleBuffer)) || first.After(expectedEnd.Add(scheduleBuffer)):
		res.Status = models.StatusOutOfSchedule
	default:
		res.Status = lateOrOnTime(first, expectedStart, in.Grace)
	}

	scheduled := w.ScheduledHours()
	worked := duration.Hours()
	if worked <= scheduled {
		res.RegularHours = round2(worked)
	} else {
		res.RegularHours = round2(scheduled)
		res.OvertimeHours = round2(worked - scheduled)
	}
	return res
}

// stillWorking decides whether the shift is in progress at evaluation
// time. The shift stays open while "now" is within the overtime buffer or
// the last punch is recent, unless that last punch already reads as a
// completed punch-out.
func stillWorking(in classifierInput, last time.Time) bool {
	end := in.Window.EndUTC
	open := !in.Now.After(end.Add(overtimeBuffer)) || in.Now.Sub(last) <= lastPunchGrace
	if !open {
		return false
	}
	if len(in.Punches) >= 2 {
		if last.After(end.Add(completedOutAfterEnd)) {
			return false
		}
		if !last.Before(end) && in.Now.Sub(last) > completedOutSettle {
			return false
		}
	}
	return true
}

func lateOrOnTime(in, expectedStart time.Time, grace time.Duration) models.AttendanceStatus {
	if in.After(expectedStart.Add(grace)) {
		return models.StatusLateIn
	}
	return models.StatusOnTime
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
