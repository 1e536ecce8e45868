package quest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thad75/questday/internal/catalog"
	"github.com/thad75/questday/internal/clock"
	"github.com/thad75/questday/internal/domain"
)

func newTestEngine(t *testing.T, now time.Time, templates ...domain.QuestTemplate) *Engine {
	t.Helper()
	cat, err := catalog.New(templates)
	require.NoError(t, err)
	return NewEngine(cat, clock.NewFixed(now), nil)
}

func testPool() []domain.QuestTemplate {
	return []domain.QuestTemplate{
		mkTemplate("water", domain.CategoryHealth, 1, domain.GranularityDaily),
		mkTemplate("run", domain.CategoryFitness, 1, domain.GranularityDaily),
		mkTemplate("read", domain.CategoryLearning, 1, domain.GranularityDaily, domain.GranularityWeekly),
		mkTemplate("budget", domain.CategoryFinance, 1, domain.GranularityWeekly, domain.GranularityMonthly),
		mkTemplate("journal", domain.CategoryMindfulness, 1, domain.GranularityDaily, domain.GranularityMonthly),
	}
}

func testCfg() domain.GenerationConfig {
	cfg := domain.DefaultGenerationConfig()
	cfg.DailyQuestCount = 2
	cfg.WeeklyQuestCount = 1
	cfg.MonthlyQuestCount = 1
	cfg.SpecialQuestCount = 0
	cfg.ConsiderPlayerHistory = false
	return cfg
}

func TestGenerateSingleTemplateScenario(t *testing.T) {
	tpl := domain.QuestTemplate{
		ID:                   "water",
		Title:                "Drink water",
		Category:             domain.CategoryHealth,
		Difficulty:           1,
		BaseXP:               10,
		AllowedGranularities: []domain.Granularity{domain.GranularityDaily},
		Weight:               5,
	}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now, tpl)

	cfg := testCfg()
	cfg.DailyQuestCount = 1

	state := domain.NewQuestSystemState()
	next, quests, err := e.GenerateForGranularity(context.Background(), "user-1", state, domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)
	require.Len(t, quests, 1)

	q := quests[0]
	assert.Equal(t, "water_daily_2024-03-01", q.ID)
	assert.Equal(t, 10, q.XP)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999_000_000, time.UTC), q.EndDate)

	assert.Equal(t, "2024-03-01", next.LastResetDates[domain.GranularityDaily])
	assert.Equal(t, domain.QuestStatusAvailable, next.PlayerQuestStates[q.ID].Status)

	// The input state stays untouched.
	assert.Empty(t, state.ActiveQuests)
	assert.Empty(t, state.LastResetDates)
}

func TestGenerateDeterminism(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	cfg := testCfg()

	a := newTestEngine(t, now, testPool()...)
	b := newTestEngine(t, now, testPool()...)

	_, questsA, err := a.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)
	_, questsB, err := b.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, questsA, questsB, "same date, same pool, same config must reproduce the set")
}

func TestGenerateIdempotentWithinPeriod(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	cfg := testCfg()
	e := newTestEngine(t, now, testPool()...)

	state, first, err := e.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)

	_, second, err := e.GenerateForGranularity(ctx, "u", state, domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second, "regenerating within the same day replaces the set with the same quests")
}

func TestGenerateLeavesOtherGranularitiesAlone(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	cfg := testCfg()
	e := newTestEngine(t, now, testPool()...)

	state, _, err := e.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularityWeekly, 1, cfg)
	require.NoError(t, err)
	weekly := state.QuestsOf(domain.GranularityWeekly)
	require.NotEmpty(t, weekly)

	state, _, err = e.GenerateForGranularity(ctx, "u", state, domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, weekly, state.QuestsOf(domain.GranularityWeekly))
}

func TestGenerateHonorsUnlockedCategories(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	e := newTestEngine(t, now, testPool()...)

	state := domain.NewQuestSystemState()
	state.UnlockedCategories = []domain.Category{domain.CategoryHealth, domain.CategoryMindfulness}

	next, quests, err := e.GenerateForGranularity(ctx, "u", state, domain.GranularityDaily, 1, testCfg())
	require.NoError(t, err)
	require.Len(t, quests, 2)
	for _, q := range quests {
		assert.Contains(t, state.UnlockedCategories, q.Category)
	}
	assert.Equal(t, state.UnlockedCategories, next.UnlockedCategories)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	e := newTestEngine(t, now, testPool()...)
	state := domain.NewQuestSystemState()

	_, _, err := e.GenerateForGranularity(ctx, "u", state, "hourly", 1, testCfg())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cfg := testCfg()
	cfg.DailyQuestCount = -1
	_, _, err = e.GenerateForGranularity(ctx, "u", state, domain.GranularityDaily, 1, cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	cfg = testCfg()
	cfg.MaxDifficultyPerLevel = 0
	_, _, err = e.GenerateForGranularity(ctx, "u", state, domain.GranularityDaily, 1, cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	cfg = testCfg()
	cfg.CategoryBalance = map[domain.Category]float64{"gardening": 1}
	_, _, err = e.GenerateForGranularity(ctx, "u", state, domain.GranularityDaily, 1, cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestFutureResetDateIsStaleState(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	e := newTestEngine(t, now, testPool()...)

	state := domain.NewQuestSystemState()
	state.LastResetDates[domain.GranularityDaily] = "2099-01-01"

	_, _, err := e.GenerateForGranularity(ctx, "u", state, domain.GranularityDaily, 1, testCfg())
	assert.ErrorIs(t, err, domain.ErrStaleState)

	_, _, _, err = e.CheckAndReset(ctx, "u", state, 1, testCfg())
	assert.ErrorIs(t, err, domain.ErrStaleState)
}

func TestCheckAndResetBoundaries(t *testing.T) {
	ctx := context.Background()
	cfg := testCfg()

	// 2024-01-01 is a Monday.
	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	e := newTestEngine(t, day1, testPool()...)
	state, flags, quests, err := e.CheckAndReset(ctx, "u", domain.NewQuestSystemState(), 1, cfg)
	require.NoError(t, err)
	assert.True(t, flags.Daily)
	assert.True(t, flags.Weekly)
	assert.True(t, flags.Monthly)
	assert.NotEmpty(t, quests)
	assert.Equal(t, "2024-01-01", state.LastResetDates[domain.GranularityDaily])
	assert.Equal(t, "2024-01-01", state.LastResetDates[domain.GranularityWeekly])
	assert.Equal(t, "2024-01-01", state.LastResetDates[domain.GranularityMonthly])

	t.Run("same day later is a no-op", func(t *testing.T) {
		evening := newTestEngine(t, day1.Add(10*time.Hour), testPool()...)
		next, flags, quests, err := evening.CheckAndReset(ctx, "u", state, 1, cfg)
		require.NoError(t, err)
		assert.False(t, flags.Any())
		assert.Empty(t, quests)
		assert.Same(t, state, next, "no-op returns the unmodified input")
	})

	t.Run("next day resets daily only", func(t *testing.T) {
		day2 := newTestEngine(t, day1.AddDate(0, 0, 1), testPool()...)
		next, flags, _, err := day2.CheckAndReset(ctx, "u", state, 1, cfg)
		require.NoError(t, err)
		assert.True(t, flags.Daily)
		assert.False(t, flags.Weekly)
		assert.False(t, flags.Monthly)
		assert.False(t, flags.Special)
		assert.Equal(t, "2024-01-02", next.LastResetDates[domain.GranularityDaily])
		assert.Equal(t, "2024-01-01", next.LastResetDates[domain.GranularityWeekly])
	})

	t.Run("sunday to monday resets weekly", func(t *testing.T) {
		st := state.Clone()
		st.LastResetDates[domain.GranularityDaily] = "2024-01-07"
		monday := newTestEngine(t, time.Date(2024, 1, 8, 0, 30, 0, 0, time.UTC), testPool()...)
		next, flags, _, err := monday.CheckAndReset(ctx, "u", st, 1, cfg)
		require.NoError(t, err)
		assert.True(t, flags.Daily)
		assert.True(t, flags.Weekly)
		assert.False(t, flags.Monthly)
		assert.Equal(t, "2024-01-08", next.LastResetDates[domain.GranularityWeekly])
	})

	t.Run("month turnover resets monthly", func(t *testing.T) {
		st := state.Clone()
		st.LastResetDates[domain.GranularityDaily] = "2024-01-31"
		st.LastResetDates[domain.GranularityWeekly] = "2024-01-29"
		feb1 := newTestEngine(t, time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC), testPool()...)
		next, flags, _, err := feb1.CheckAndReset(ctx, "u", st, 1, cfg)
		require.NoError(t, err)
		assert.True(t, flags.Daily)
		assert.False(t, flags.Weekly, "Feb 1 2024 is mid-week")
		assert.True(t, flags.Monthly)
		assert.Equal(t, "2024-02-01", next.LastResetDates[domain.GranularityMonthly])
	})
}

func TestCheckAndResetStreaks(t *testing.T) {
	ctx := context.Background()
	cfg := testCfg()
	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	e := newTestEngine(t, day1, testPool()...)
	state, _, quests, err := e.CheckAndReset(ctx, "u", domain.NewQuestSystemState(), 1, cfg)
	require.NoError(t, err)

	var dailyID string
	for _, q := range quests {
		if q.Granularity == domain.GranularityDaily {
			dailyID = q.ID
			break
		}
	}
	require.NotEmpty(t, dailyID)

	state, _, _, err = e.Complete(ctx, "u", state, dailyID, 1, 0)
	require.NoError(t, err)

	day2 := newTestEngine(t, day1.AddDate(0, 0, 1), testPool()...)
	state, _, _, err = day2.CheckAndReset(ctx, "u", state, 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak[domain.GranularityDaily], "a completed period extends the streak")

	// Nothing completed on day 2: the streak breaks on the next reset.
	day3 := newTestEngine(t, day1.AddDate(0, 0, 2), testPool()...)
	state, _, _, err = day3.CheckAndReset(ctx, "u", state, 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentStreak[domain.GranularityDaily])
}

func TestSpecialSetRetriesWhenWindowOpens(t *testing.T) {
	ctx := context.Background()
	cfg := testCfg()
	cfg.SpecialQuestCount = 1

	tpl := mkTemplate("solstice", domain.CategoryCreativity, 1, domain.GranularitySpecial)
	tpl.EventWindow = &domain.EventWindow{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
	}
	pool := append(testPool(), tpl)

	// March: the only special template's window is months away, so the
	// special set comes up empty.
	march := newTestEngine(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), pool...)
	state, quests, err := march.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularitySpecial, 1, cfg)
	require.NoError(t, err)
	assert.Empty(t, quests)

	// June: the window is open and a reset pass must pick the quest up.
	june := newTestEngine(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), pool...)
	next, flags, _, err := june.CheckAndReset(ctx, "u", state, 1, cfg)
	require.NoError(t, err)
	assert.True(t, flags.Special)

	specials := next.QuestsOf(domain.GranularitySpecial)
	require.Len(t, specials, 1)
	assert.Equal(t, "solstice", specials[0].TemplateID)
}

func TestCompleteFlow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now, testPool()...)
	cfg := testCfg()

	state, quests, err := e.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, quests)
	questID := quests[0].ID

	next, entry, reward, err := e.Complete(ctx, "u", state, questID, 1, 0)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, reward.TotalXP, entry.XPEarned)
	assert.GreaterOrEqual(t, reward.TotalXP, quests[0].XP)
	assert.Equal(t, domain.QuestStatusCompleted, next.PlayerQuestStates[questID].Status)
	require.Len(t, next.QuestHistory, 1)

	// Completing again changes nothing.
	again, entry2, reward2, err := e.Complete(ctx, "u", next, questID, 1, 0)
	require.NoError(t, err)
	assert.Nil(t, entry2)
	assert.Zero(t, reward2.TotalXP)
	assert.Same(t, next, again)

	// The pre-completion state is untouched.
	assert.Equal(t, domain.QuestStatusAvailable, state.PlayerQuestStates[questID].Status)
	assert.Empty(t, state.QuestHistory)

	_, _, _, err = e.Complete(ctx, "u", next, "no-such-quest", 1, 0)
	assert.ErrorIs(t, err, domain.ErrQuestNotFound)
}

func TestCompleteAfterEndDateRejected(t *testing.T) {
	ctx := context.Background()
	cfg := testCfg()

	// Generate on March 1st, then come back two days later without any
	// reset pass in between.
	e := newTestEngine(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), testPool()...)
	state, quests, err := e.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularityDaily, 1, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, quests)

	late := newTestEngine(t, time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC), testPool()...)
	_, entry, reward, err := late.Complete(ctx, "u", state, quests[0].ID, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, entry)
	assert.Zero(t, reward.TotalXP)
	assert.Empty(t, state.QuestHistory, "overdue completion must not earn XP")
}

func TestSkipFlow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now, testPool()...)

	state, quests, err := e.GenerateForGranularity(ctx, "u", domain.NewQuestSystemState(), domain.GranularityDaily, 1, testCfg())
	require.NoError(t, err)
	require.NotEmpty(t, quests)

	next, err := e.Skip(ctx, "u", state, quests[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestStatusSkipped, next.PlayerQuestStates[quests[0].ID].Status)

	_, err = e.Skip(ctx, "u", next, quests[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyReward(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now, testPool()...)

	quest := domain.Quest{
		ID:          "big_daily_2024-03-01",
		Category:    domain.CategoryHealth,
		Granularity: domain.GranularityDaily,
		XP:          250,
	}
	progress := domain.PlayerProgress{Level: 1, CurrentXP: 95, XPToNextLevel: 100, TotalXPEarned: 95}

	updated, reward := e.ApplyReward(ctx, "u", progress, quest, 1, 0, 0)

	assert.Equal(t, 250, reward.TotalXP)
	assert.Equal(t, 3, updated.Level, "345 XP crosses the 100 and 200 thresholds")
	assert.Equal(t, 45, updated.CurrentXP)
	assert.Equal(t, 300, updated.XPToNextLevel)
	assert.Equal(t, int64(345), updated.TotalXPEarned)
}
