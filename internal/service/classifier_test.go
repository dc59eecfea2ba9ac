package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsense/attendance-api/internal/models"
)

// dayShift is 09:00-17:00 local resolved against UTC+5: 04:00-12:00 UTC.
func dayShift() models.ShiftWindow {
	return models.ShiftWindow{
		Key:      "2025-03-03|p1",
		StartUTC: time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC),
		DateKey:  "2025-03-03",
	}
}

func classify(w models.ShiftWindow, grace time.Duration, now time.Time, punches ...time.Time) models.DailyAttendanceResult {
	return classifyShift("emp-1", classifierInput{
		Window:  w,
		Punches: punches,
		Date:    w.DateKey,
		Grace:   grace,
		Now:     now,
	})
}

func TestClassifyOnTimeWithinGrace(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	res := classify(dayShift(), 15*time.Minute, now,
		time.Date(2025, 3, 3, 4, 10, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 12, 5, 0, 0, time.UTC))

	assert.Equal(t, models.StatusOnTime, res.Status)
	require.NotNil(t, res.InTime)
	require.NotNil(t, res.OutTime)
	assert.InDelta(t, 7.92, res.DurationHours, 0.001)
	assert.InDelta(t, 7.92, res.RegularHours, 0.001)
	assert.Zero(t, res.OvertimeHours)
}

func TestClassifyLateInBoundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	grace := 15 * time.Minute

	// Exactly at the grace limit is still on time.
	atLimit := classify(dayShift(), grace, now,
		time.Date(2025, 3, 3, 4, 15, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, models.StatusOnTime, atLimit.Status)

	// One minute past tips it.
	past := classify(dayShift(), grace, now,
		time.Date(2025, 3, 3, 4, 16, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, models.StatusLateIn, past.Status)
}

func TestClassifyOvertimeSplit(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	res := classify(dayShift(), 15*time.Minute, now,
		time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC))

	assert.InDelta(t, 10.5, res.DurationHours, 0.001)
	assert.InDelta(t, 8.0, res.RegularHours, 0.001)
	assert.InDelta(t, 2.5, res.OvertimeHours, 0.001)
}

func TestClassifyStillWorkingWithholdsHours(t *testing.T) {
	// One punch at 10:00 local against a 09:00 shift, evaluated mid-shift.
	now := time.Date(2025, 3, 3, 5, 30, 0, 0, time.UTC)
	res := classify(dayShift(), 30*time.Minute, now,
		time.Date(2025, 3, 3, 5, 0, 0, 0, time.UTC))

	assert.Equal(t, models.StatusLateIn, res.Status)
	require.NotNil(t, res.InTime)
	assert.Nil(t, res.OutTime)
	assert.Zero(t, res.DurationHours)
	assert.Zero(t, res.RegularHours)
}

func TestClassifyCompletedPairNotStillWorking(t *testing.T) {
	// Out-punch slightly past nominal end, evaluated shortly after: the
	// overtime buffer alone would keep the shift open, but the pair
	// already reads as complete.
	now := time.Date(2025, 3, 3, 13, 30, 0, 0, time.UTC)
	res := classify(dayShift(), 30*time.Minute, now,
		time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 12, 10, 0, 0, time.UTC))

	assert.Equal(t, models.StatusOnTime, res.Status)
	require.NotNil(t, res.OutTime)
	assert.InDelta(t, 8.17, res.DurationHours, 0.001)
}

func TestClassifyForgottenPunchOut(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	// A stray punch the evening before followed by one inside the shift:
	// the span is implausible and the last punch precedes the expected end.
	res := classify(dayShift(), 30*time.Minute, now,
		time.Date(2025, 3, 2, 22, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC))

	assert.Equal(t, models.StatusPunchOutMissing, res.Status)
	assert.Nil(t, res.OutTime)
	assert.InDelta(t, 13.0, res.DurationHours, 0.001)
	assert.Zero(t, res.RegularHours)
	assert.Zero(t, res.OvertimeHours)
}

func TestClassifyOutOfSchedule(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	res := classify(dayShift(), 30*time.Minute, now,
		time.Date(2025, 3, 3, 1, 30, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 5, 0, 0, 0, time.UTC))

	assert.Equal(t, models.StatusOutOfSchedule, res.Status)
}

func TestClassifyWorkedOnDayOff(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := dayShift()
	w.IsDayOff = true
	res := classify(w, 30*time.Minute, now,
		time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, models.StatusWorkedOnDayOff, res.Status)
}

func TestClassifyHalfDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := dayShift()
	w.IsHalfDay = true
	res := classify(w, 30*time.Minute, now,
		time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, models.StatusHalfDay, res.Status)
	// Scheduled hours halve, so the fifth hour counts as overtime.
	assert.InDelta(t, 4.0, res.RegularHours, 0.001)
	assert.InDelta(t, 1.0, res.OvertimeHours, 0.001)
}

func TestClassifyPunchFreeStatuses(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	absent := classify(dayShift(), 30*time.Minute, now)
	assert.Equal(t, models.StatusAbsent, absent.Status)

	leave := classifyShift("emp-1", classifierInput{
		Window: dayShift(), Date: "2025-03-03", OnLeave: true, Grace: 30 * time.Minute, Now: now,
	})
	assert.Equal(t, models.StatusOnLeave, leave.Status)

	dayOff := dayShift()
	dayOff.IsDayOff = true
	off := classify(dayOff, 30*time.Minute, now)
	assert.Equal(t, models.StatusDayOff, off.Status)

	half := dayShift()
	half.IsHalfDay = true
	halfRes := classify(half, 30*time.Minute, now)
	assert.Equal(t, models.StatusHalfDay, halfRes.Status)
}

func TestClassifyExposesExpectedTimes(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	res := classify(dayShift(), 30*time.Minute, now)
	require.NotNil(t, res.ExpectedStart)
	require.NotNil(t, res.ExpectedEnd)
	assert.Equal(t, dayShift().StartUTC, *res.ExpectedStart)
	assert.Equal(t, dayShift().EndUTC, *res.ExpectedEnd)
}
