package service

import (
	"sort"
	"time"

	"github.com/shiftsense/attendance-api/internal/models"
)

// Matching scores. True-window containment always beats buffer proximity,
// and the post-midnight portion of an overnight window beats everything:
// that is what resolves a 02:00 punch between "late end of yesterday's
// shift" and "early start of today's". Day-off placeholder windows rank
// below every real window's buffer so they only collect punches no real
// shift can claim.
const (
	scorePostMidnight = 20000
	scoreInWindow     = 10000
	scoreAfterBase    = 5000
	scoreBeforeBase   = 3000
	scoreDayOff       = 1000
)

const (
	matchBufferBefore = 2 * time.Hour
	matchBufferAfter  = 10 * time.Hour
)

// matchGroup collects the punches assigned to one grouping date and the
// window that won them.
type matchGroup struct {
	Window   models.ShiftWindow
	Punches  []time.Time
	topScore int
}

// matchPunches assigns each punch to the highest-scoring shift window and
// groups assignments by grouping date. Punches inside no window's buffer
// come back in the residual slice. Traces record every assignment for
// observability; they are not part of the data contract.
func (e EngineConfig) matchPunches(punches []models.PunchEvent, windows []models.ShiftWindow) (map[string]*matchGroup, []time.Time, []models.MatchTrace) {
	groups := make(map[string]*matchGroup)
	var unmatched []time.Time
	var traces []models.MatchTrace

	for _, punch := range punches {
		t := punch.Timestamp
		bestScore := 0
		bestIdx := -1
		var bestDist time.Duration
		for i, w := range windows {
			score := e.scoreWindow(t, w)
			if score <= 0 {
				continue
			}
			dist := absDuration(t.Sub(w.StartUTC))
			if score > bestScore || (score == bestScore && dist < bestDist) {
				bestScore, bestIdx, bestDist = score, i, dist
			}
		}
		if bestIdx < 0 {
			unmatched = append(unmatched, t)
			traces = append(traces, models.MatchTrace{Punch: t, Unmatched: true})
			continue
		}
		w := windows[bestIdx]
		g, ok := groups[w.DateKey]
		if !ok {
			g = &matchGroup{Window: w}
			groups[w.DateKey] = g
		}
		// Windows from different patterns can share a grouping date; the
		// window with the strongest assignment represents the day.
		if bestScore > g.topScore {
			g.Window = w
			g.topScore = bestScore
		}
		g.Punches = append(g.Punches, t)
		traces = append(traces, models.MatchTrace{Punch: t, WindowKey: w.Key, Score: bestScore})
	}

	for _, g := range groups {
		sort.Slice(g.Punches, func(i, j int) bool { return g.Punches[i].Before(g.Punches[j]) })
	}
	sort.Slice(unmatched, func(i, j int) bool { return unmatched[i].Before(unmatched[j]) })
	return groups, unmatched, traces
}

// scoreWindow rates how strongly a punch belongs to a window. Zero means
// outside the buffer entirely. Within the buffer the score decays with
// hours of distance from the window start, and punches before the window
// rank below punches trailing it.
func (e EngineConfig) scoreWindow(t time.Time, w models.ShiftWindow) int {
	start, end := w.StartUTC, w.EndUTC
	if w.IsDayOff {
		if !t.Before(start) && !t.After(end) {
			return scoreDayOff
		}
		return 0
	}
	if !t.Before(start) && !t.After(end) {
		if w.CrossesMidnight && !t.Before(e.localMidnightAfter(start)) {
			return scorePostMidnight
		}
		return scoreInWindow
	}

	bufferStart := start.Add(-matchBufferBefore)
	bufferEnd := end.Add(matchBufferAfter)
	if e.WorkingDayEnabled {
		// A late punch-out within the working day still belongs to this
		// shift even many hours past nominal end.
		if wdEnd := e.workingDayEndUTC(w.DateKey); wdEnd.After(bufferEnd) {
			bufferEnd = wdEnd
		}
	}
	if t.Before(bufferStart) || t.After(bufferEnd) {
		return 0
	}

	hoursFromStart := absDuration(t.Sub(start)).Hours()
	if t.Before(start) {
		return clampScore(scoreBeforeBase - int(hoursFromStart*100))
	}
	return clampScore(scoreAfterBase - int(hoursFromStart*100))
}

// localMidnightAfter returns the first organization-local midnight after
// t's local day start, expressed in UTC. The post-midnight rule is a
// local-clock rule: an overnight shift crosses midnight where the
// schedule is written, not where the servers run.
func (e EngineConfig) localMidnightAfter(t time.Time) time.Time {
	local := t.Add(e.OrgOffset)
	next := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Add(-e.OrgOffset)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	return s
}
