package quest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thad75/questday/internal/domain"
)

func TestPeriodAnchor(t *testing.T) {
	s := NewResetScheduler()

	tests := []struct {
		name string
		g    domain.Granularity
		now  time.Time
		want string
	}{
		{"daily is the same day", domain.GranularityDaily, time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), "2024-03-15"},
		{"weekly anchors to Monday from a Friday", domain.GranularityWeekly, time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), "2024-03-11"},
		{"weekly anchors to Monday from a Sunday", domain.GranularityWeekly, time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC), "2024-03-11"},
		{"weekly on Monday is the same day", domain.GranularityWeekly, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "2024-03-11"},
		{"monthly anchors to the first", domain.GranularityMonthly, time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), "2024-03-01"},
		{"special is the same day", domain.GranularitySpecial, time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.PeriodAnchor(tt.g, tt.now))
		})
	}
}

func TestIsStale(t *testing.T) {
	s := NewResetScheduler()

	tests := []struct {
		name      string
		g         domain.Granularity
		lastReset string
		now       time.Time
		want      bool
	}{
		{"daily same day not stale", domain.GranularityDaily, "2024-01-01", time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC), false},
		{"daily next day stale", domain.GranularityDaily, "2024-01-01", time.Date(2024, 1, 2, 0, 0, 1, 0, time.UTC), true},
		{"daily empty is stale", domain.GranularityDaily, "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"daily garbage is stale", domain.GranularityDaily, "not-a-date", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},

		// 2024-03-11 is a Monday.
		{"weekly within same week not stale", domain.GranularityWeekly, "2024-03-11", time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC), false},
		{"weekly sunday to monday stale", domain.GranularityWeekly, "2024-03-17", time.Date(2024, 3, 18, 0, 0, 1, 0, time.UTC), true},
		{"weekly mid-week reset still same week", domain.GranularityWeekly, "2024-03-13", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), false},

		{"monthly same month not stale", domain.GranularityMonthly, "2024-01-01", time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), false},
		{"monthly jan to feb stale", domain.GranularityMonthly, "2024-01-31", time.Date(2024, 2, 1, 0, 0, 1, 0, time.UTC), true},
		{"monthly same month next year stale", domain.GranularityMonthly, "2023-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsStale(tt.g, tt.lastReset, tt.now))
		})
	}
}

func TestIsSpecialStale(t *testing.T) {
	s := NewResetScheduler()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("never generated", func(t *testing.T) {
		state := domain.NewQuestSystemState()
		assert.True(t, s.IsSpecialStale(state, now))
	})

	t.Run("empty set same day not stale", func(t *testing.T) {
		state := domain.NewQuestSystemState()
		state.LastResetDates[domain.GranularitySpecial] = "2024-06-15"
		assert.False(t, s.IsSpecialStale(state, now))
	})

	t.Run("empty set retries on the next day", func(t *testing.T) {
		state := domain.NewQuestSystemState()
		state.LastResetDates[domain.GranularitySpecial] = "2024-06-01"
		assert.True(t, s.IsSpecialStale(state, now),
			"an empty special set must keep checking for newly opened windows")
	})

	t.Run("all windows closed", func(t *testing.T) {
		state := domain.NewQuestSystemState()
		state.LastResetDates[domain.GranularitySpecial] = "2024-06-01"
		state.ActiveQuests = []domain.Quest{
			{ID: "a", Granularity: domain.GranularitySpecial, EndDate: now.Add(-time.Hour)},
			{ID: "b", Granularity: domain.GranularitySpecial, EndDate: now.Add(-time.Minute)},
		}
		assert.True(t, s.IsSpecialStale(state, now))
	})

	t.Run("one window still open", func(t *testing.T) {
		state := domain.NewQuestSystemState()
		state.LastResetDates[domain.GranularitySpecial] = "2024-06-01"
		state.ActiveQuests = []domain.Quest{
			{ID: "a", Granularity: domain.GranularitySpecial, EndDate: now.Add(-time.Hour)},
			{ID: "b", Granularity: domain.GranularitySpecial, EndDate: now.Add(time.Hour)},
		}
		assert.False(t, s.IsSpecialStale(state, now))
	})
}

func TestFutureResetDate(t *testing.T) {
	s := NewResetScheduler()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	state := domain.NewQuestSystemState()
	state.LastResetDates[domain.GranularityDaily] = "2024-06-15"
	_, skewed := s.FutureResetDate(state, now)
	assert.False(t, skewed, "today is not in the future")

	state.LastResetDates[domain.GranularityWeekly] = "2024-06-16"
	g, skewed := s.FutureResetDate(state, now)
	assert.True(t, skewed)
	assert.Equal(t, domain.GranularityWeekly, g)
}
