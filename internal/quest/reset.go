package quest

import (
	"time"

	"github.com/thad75/questday/internal/clock"
	"github.com/thad75/questday/internal/domain"
)

// ResetScheduler decides, per granularity, whether a quest set has crossed
// its calendar boundary since it was last generated. Granularities are
// fully independent: a daily reset never disturbs weekly quests.
type ResetScheduler struct{}

// NewResetScheduler creates a reset scheduler.
func NewResetScheduler() *ResetScheduler {
	return &ResetScheduler{}
}

// weekStart returns the most recent Monday at 00:00 in t's location.
func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	// Go's week starts on Sunday; shift so Monday is day zero.
	offset := (int(t.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// PeriodAnchor returns the canonical date string identifying the current
// period of a granularity. It doubles as the generation seed date, so
// regenerating within the same period reproduces the same quest set.
func (s *ResetScheduler) PeriodAnchor(g domain.Granularity, now time.Time) string {
	switch g {
	case domain.GranularityDaily:
		return clock.ISODate(now)
	case domain.GranularityWeekly:
		return clock.ISODate(weekStart(now))
	case domain.GranularityMonthly:
		y, m, _ := now.Date()
		return clock.ISODate(time.Date(y, m, 1, 0, 0, 0, 0, now.Location()))
	default:
		return clock.ISODate(now)
	}
}

// IsStale reports whether the granularity's quest set must be regenerated.
//
// Boundary rules are calendar comparisons, never elapsed time:
//   - daily: today differs from the last reset date
//   - weekly: the most recent Monday differs from the last reset's Monday
//   - monthly: (year, month) differs
//   - special: driven by event windows via IsSpecialStale, not this method
//
// An empty or unparsable last-reset date counts as stale (first run, or a
// state written by a newer format).
func (s *ResetScheduler) IsStale(g domain.Granularity, lastResetDate string, now time.Time) bool {
	if lastResetDate == "" {
		return true
	}
	last, err := time.ParseInLocation(clock.ISODateFormat, lastResetDate, now.Location())
	if err != nil {
		return true
	}

	switch g {
	case domain.GranularityDaily:
		return clock.ISODate(now) != clock.ISODate(last)
	case domain.GranularityWeekly:
		return !weekStart(now).Equal(weekStart(last))
	case domain.GranularityMonthly:
		ly, lm, _ := last.Date()
		ny, nm, _ := now.Date()
		return ly != ny || lm != nm
	default:
		return false
	}
}

// IsSpecialStale reports whether the special quest set needs regeneration:
// no set was ever generated, or every active special quest's event window
// has closed. An empty set retries on the daily boundary so an event window
// opening later still produces quests.
func (s *ResetScheduler) IsSpecialStale(state *domain.QuestSystemState, now time.Time) bool {
	last := state.LastResetDates[domain.GranularitySpecial]
	if last == "" {
		return true
	}
	specials := state.QuestsOf(domain.GranularitySpecial)
	if len(specials) == 0 {
		return s.IsStale(domain.GranularityDaily, last, now)
	}
	for _, q := range specials {
		if q.EndDate.After(now) {
			return false
		}
	}
	return true
}

// FutureResetDate returns the offending granularity and true when any
// recorded last-reset date lies after today - the StaleState defensive
// check against clock skew or corrupted persisted state.
func (s *ResetScheduler) FutureResetDate(state *domain.QuestSystemState, now time.Time) (domain.Granularity, bool) {
	today := clock.ISODate(now)
	for _, g := range domain.AllGranularities {
		recorded := state.LastResetDates[g]
		if recorded == "" {
			continue
		}
		// ISO date strings order lexicographically.
		if recorded > today {
			return g, true
		}
	}
	return "", false
}
