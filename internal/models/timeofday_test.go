package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: TimeOfDay{Hour: 9, Minute: 0}},
		{in: "0900", want: TimeOfDay{Hour: 9, Minute: 0}},
		{in: "23:59", want: TimeOfDay{Hour: 23, Minute: 59}},
		{in: " 08:30 ", want: TimeOfDay{Hour: 8, Minute: 30}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "900", wantErr: true},
		{in: "", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestTimeOfDayMinutesAndString(t *testing.T) {
	tod := MustTimeOfDay("14:35")
	assert.Equal(t, 14*60+35, tod.Minutes())
	assert.Equal(t, "14:35", tod.String())
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	got := MustTimeOfDay("09:15").At(date, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 3, 9, 15, 0, 0, time.UTC), got)
}

func TestSegmentForNormalisesNilToDayOff(t *testing.T) {
	seg := &DaySegment{Start: MustTimeOfDay("09:00"), End: MustTimeOfDay("17:00")}
	p := WeeklyPattern{Days: [7]*DaySegment{nil, seg, seg, seg, seg, seg, nil}}

	assert.Equal(t, *seg, p.SegmentFor(time.Monday))
	assert.True(t, p.SegmentFor(time.Sunday).IsFullDay())
	assert.True(t, p.SegmentFor(time.Saturday).IsFullDay())
}

func TestLeaveRecordCovers(t *testing.T) {
	l := LeaveRecord{
		StartDate: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, l.Covers("2025-03-03"))
	assert.True(t, l.Covers("2025-03-05"))
	assert.False(t, l.Covers("2025-03-02"))
	assert.False(t, l.Covers("2025-03-06"))
}

func TestAttendanceStatusWorking(t *testing.T) {
	assert.True(t, StatusOnTime.Working())
	assert.True(t, StatusPunchOutMissing.Working())
	assert.False(t, StatusAbsent.Working())
	assert.False(t, StatusOnLeave.Working())
	assert.False(t, StatusDayOff.Working())
	assert.False(t, StatusNoScheduleAssigned.Working())
}

func TestDailyAttendanceResultStale(t *testing.T) {
	start := time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC)
	fresh := DailyAttendanceResult{Status: StatusOnTime, ExpectedStart: &start}
	assert.False(t, fresh.Stale())

	stale := DailyAttendanceResult{Status: StatusOnTime}
	assert.True(t, stale.Stale())

	absent := DailyAttendanceResult{Status: StatusAbsent}
	assert.False(t, absent.Stale())
}

func TestScheduledHoursHalvedForHalfDay(t *testing.T) {
	w := ShiftWindow{
		StartUTC: time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC),
	}
	assert.InDelta(t, 8.0, w.ScheduledHours(), 0.001)
	w.IsHalfDay = true
	assert.InDelta(t, 4.0, w.ScheduledHours(), 0.001)
}
