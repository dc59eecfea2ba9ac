package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shiftsense/attendance-api/internal/models"
)

// exceptionPatternID marks windows synthesised from a custom-time
// schedule exception rather than a weekly pattern.
const exceptionPatternID = "exception"

// buildShiftWindows expands weekly patterns and per-date exceptions into
// concrete UTC shift windows for [from-1day, to]. The extra lookback day
// catches overnight shifts that began the evening before the range.
func (e EngineConfig) buildShiftWindows(from, to time.Time, patterns []models.WeeklyPattern, exceptions []models.ScheduleException) []models.ShiftWindow {
	var windows []models.ShiftWindow
	for d := from.AddDate(0, 0, -1); !d.After(to); d = d.AddDate(0, 0, 1) {
		for _, p := range patterns {
			seg := p.SegmentFor(d.Weekday())
			windows = append(windows, e.buildWindow(d, seg, p.ID, false))
		}
	}
	windows = e.applyExceptions(windows, exceptions)
	sort.Slice(windows, func(i, j int) bool {
		if !windows[i].StartUTC.Equal(windows[j].StartUTC) {
			return windows[i].StartUTC.Before(windows[j].StartUTC)
		}
		return windows[i].Key < windows[j].Key
	})
	return windows
}

// buildWindow resolves one local segment on one calendar date to absolute
// UTC instants. Local times convert by subtracting the organizational
// offset; negative hours wrap to the previous UTC day naturally. A segment
// whose end does not exceed its start crosses midnight, anchoring the end
// instant to the day after the start.
func (e EngineConfig) buildWindow(date time.Time, seg models.DaySegment, patternID string, halfDay bool) models.ShiftWindow {
	startUTC := seg.Start.At(date, time.UTC).Add(-e.OrgOffset)
	endUTC := seg.End.At(date, time.UTC).Add(-e.OrgOffset)
	crosses := seg.End.Minutes() <= seg.Start.Minutes()
	if crosses {
		endUTC = endUTC.AddDate(0, 0, 1)
	}
	// A nominal day off belongs to its calendar date, not a working-day label.
	dateKey := e.dateKeyFor(startUTC)
	if seg.IsFullDay() {
		dateKey = date.Format(models.DateLayout)
	}
	return models.ShiftWindow{
		Key:             fmt.Sprintf("%s|%s", date.Format(models.DateLayout), patternID),
		PatternID:       patternID,
		LocalStart:      seg.Start,
		LocalEnd:        seg.End,
		StartUTC:        startUTC,
		EndUTC:          endUTC,
		CrossesMidnight: crosses,
		IsDayOff:        seg.IsFullDay(),
		IsHalfDay:       halfDay,
		DateKey:         dateKey,
	}
}

// applyExceptions enforces per-date overrides: day-off exceptions remove
// every window grouped on that date across all patterns, custom-time
// exceptions replace them with a single window, and half-day-only
// exceptions flag matching windows in place. Exceptions always win over
// pattern-derived windows.
func (e EngineConfig) applyExceptions(windows []models.ShiftWindow, exceptions []models.ScheduleException) []models.ShiftWindow {
	for _, ex := range exceptions {
		key := ex.Date.Format(models.DateLayout)
		switch {
		case ex.IsDayOff:
			windows = deleteByDateKey(windows, key)
		case ex.HasCustomTimes():
			windows = deleteByDateKey(windows, key)
			seg := models.DaySegment{Start: *ex.Start, End: *ex.End}
			windows = append(windows, e.buildWindow(ex.Date, seg, exceptionPatternID, ex.IsHalfDay))
		case ex.IsHalfDay:
			matched := false
			for i := range windows {
				if windows[i].DateKey == key {
					windows[i].IsHalfDay = true
					matched = true
				}
			}
			if !matched {
				// Tolerate off-by-one boundary mismatches by retrying
				// against the local calendar date of each window's start.
				for i := range windows {
					if windows[i].StartUTC.Add(e.OrgOffset).Format(models.DateLayout) == key {
						windows[i].IsHalfDay = true
					}
				}
			}
		}
	}
	return windows
}

func deleteByDateKey(windows []models.ShiftWindow, key string) []models.ShiftWindow {
	kept := windows[:0]
	for _, w := range windows {
		if w.DateKey != key {
			kept = append(kept, w)
		}
	}
	return kept
}
