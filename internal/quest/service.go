package quest

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/thad75/questday/internal/catalog"
	"github.com/thad75/questday/internal/clock"
	"github.com/thad75/questday/internal/domain"
	"github.com/thad75/questday/internal/event"
	"github.com/thad75/questday/internal/logger"
	"github.com/thad75/questday/internal/progression"
	"github.com/thad75/questday/internal/rng"
)

// Engine is the quest generation and scheduling engine. It is pure with
// respect to state: every operation takes a QuestSystemState and returns a
// new one, leaving the input untouched. Persistence and locking belong to
// the caller, which must serialize read-modify-write cycles per user.
type Engine struct {
	catalog   *catalog.Catalog
	planner   *Planner
	factory   *Factory
	scheduler *ResetScheduler
	tracker   *LifecycleTracker
	rewards   *progression.Engine
	clk       clock.Clock
	publisher *event.ResilientPublisher
	validate  *validator.Validate
}

// NewEngine wires the engine from its collaborators. publisher may be nil
// when no event fan-out is wanted (tests, batch tools).
func NewEngine(cat *catalog.Catalog, clk clock.Clock, publisher *event.ResilientPublisher) *Engine {
	return &Engine{
		catalog:   cat,
		planner:   NewPlanner(cat),
		factory:   NewFactory(),
		scheduler: NewResetScheduler(),
		tracker:   NewLifecycleTracker(),
		rewards:   progression.NewEngine(),
		clk:       clk,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// validateConfig enforces the hard configuration rules: non-negative
// counts, known categories with non-negative balance weights.
func (e *Engine) validateConfig(cfg domain.GenerationConfig) error {
	if err := e.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	for c, w := range cfg.CategoryBalance {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q in category balance", domain.ErrInvalidConfiguration, c)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative balance weight for category %q", domain.ErrInvalidConfiguration, c)
		}
	}
	return nil
}

// GenerateForGranularity replaces one granularity's quest set with a fresh
// generation. Other granularities' quests are untouched.
func (e *Engine) GenerateForGranularity(
	ctx context.Context,
	userID string,
	state *domain.QuestSystemState,
	g domain.Granularity,
	playerLevel int,
	cfg domain.GenerationConfig,
) (*domain.QuestSystemState, []domain.Quest, error) {
	if !g.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown granularity %q", domain.ErrInvalidInput, g)
	}
	if err := e.validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	now := e.clk.Now()
	if skewed, ok := e.scheduler.FutureResetDate(state, now); ok {
		return nil, nil, fmt.Errorf("%w: %s last reset is in the future", domain.ErrStaleState, skewed)
	}

	next := state.Clone()
	e.tracker.RemoveGranularity(next, g)

	quests := e.generate(ctx, userID, next, g, playerLevel, cfg)
	next.LastResetDates[g] = e.scheduler.PeriodAnchor(g, now)

	return next, quests, nil
}

// generate plans, materializes, and registers one granularity's quest set
// on the (already cloned) state. The seed derives from the period anchor,
// so every call within the same period reproduces the same set.
func (e *Engine) generate(
	ctx context.Context,
	userID string,
	state *domain.QuestSystemState,
	g domain.Granularity,
	playerLevel int,
	cfg domain.GenerationConfig,
) []domain.Quest {
	log := logger.FromContext(ctx)
	now := e.clk.Now()
	anchor := e.scheduler.PeriodAnchor(g, now)
	src := rng.FromDate(anchor, string(g))

	var recent map[string]struct{}
	if cfg.ConsiderPlayerHistory {
		recent = RecentlyCompletedIDs(state.QuestHistory, g, now)
	}
	completedEver := CompletedTemplateIDs(state.QuestHistory)

	count := cfg.CountFor(g)
	templates, exhausted := e.planner.Plan(src, g, count, cfg, playerLevel, state.Preferences, now, recent, completedEver, state.UnlockedCategories)
	if exhausted {
		// Degrade, don't fail: a short set is better than none.
		log.Warn("Template pool exhausted",
			"granularity", g,
			"requested", count,
			"available", len(templates),
			"player_level", playerLevel)
	}

	quests := make([]domain.Quest, 0, len(templates))
	ids := make([]string, 0, len(templates))
	for _, tpl := range templates {
		variation := e.factory.PickVariation(src, tpl)
		q := e.factory.Materialize(src, tpl, variation, g, now)
		state.ActiveQuests = append(state.ActiveQuests, q)
		state.PlayerQuestStates[q.ID] = domain.PlayerQuestState{
			QuestID: q.ID,
			Status:  domain.QuestStatusAvailable,
		}
		quests = append(quests, q)
		ids = append(ids, q.ID)
	}

	if e.publisher != nil {
		e.publisher.PublishWithRetry(ctx, event.NewQuestSetGeneratedEvent(userID, g, ids, count, anchor))
	}

	log.Info("Generated quest set",
		"granularity", g,
		"seed_date", anchor,
		"requested", count,
		"generated", len(quests))

	return quests
}

// CheckAndReset regenerates every stale granularity. With nothing stale it
// returns the input state unmodified - callers rely on that idempotence.
func (e *Engine) CheckAndReset(
	ctx context.Context,
	userID string,
	state *domain.QuestSystemState,
	playerLevel int,
	cfg domain.GenerationConfig,
) (*domain.QuestSystemState, domain.ResetFlags, []domain.Quest, error) {
	var flags domain.ResetFlags

	if err := e.validateConfig(cfg); err != nil {
		return nil, flags, nil, err
	}

	now := e.clk.Now()
	if skewed, ok := e.scheduler.FutureResetDate(state, now); ok {
		return nil, flags, nil, fmt.Errorf("%w: %s last reset is in the future", domain.ErrStaleState, skewed)
	}

	var stale []domain.Granularity
	for _, g := range domain.AllGranularities {
		if g == domain.GranularitySpecial {
			if e.scheduler.IsSpecialStale(state, now) {
				stale = append(stale, g)
			}
			continue
		}
		if e.scheduler.IsStale(g, state.LastResetDates[g], now) {
			stale = append(stale, g)
		}
	}

	if len(stale) == 0 {
		return state, flags, nil, nil
	}

	next := state.Clone()
	expired := e.tracker.ExpireOverdue(next, now)
	if len(expired) > 0 && e.publisher != nil {
		e.publisher.PublishWithRetry(ctx, event.NewQuestsExpiredEvent(userID, expired))
	}

	var newQuests []domain.Quest
	for _, g := range stale {
		removed, completed := e.tracker.RemoveGranularity(next, g)

		// A period counts toward the streak when it saw at least one
		// completion of this granularity.
		if completed > 0 {
			next.CurrentStreak[g]++
		} else {
			next.CurrentStreak[g] = 0
		}

		generated := e.generate(ctx, userID, next, g, playerLevel, cfg)
		newQuests = append(newQuests, generated...)
		next.LastResetDates[g] = e.scheduler.PeriodAnchor(g, now)
		flags.Set(g)

		if e.publisher != nil {
			e.publisher.PublishWithRetry(ctx, event.NewGranularityResetEvent(userID, g, removed, len(generated), next.CurrentStreak[g]))
		}
	}

	logger.FromContext(ctx).Info("Reset stale quest sets",
		"granularities", stale,
		"new_quests", len(newQuests))

	return next, flags, newQuests, nil
}

// Start moves a quest from available to active.
func (e *Engine) Start(ctx context.Context, state *domain.QuestSystemState, questID string) (*domain.QuestSystemState, error) {
	next := state.Clone()
	if err := e.tracker.Start(next, questID, e.clk.Now()); err != nil {
		return nil, err
	}
	return next, nil
}

// Complete marks a quest completed, appends the history ledger entry, and
// returns the computed reward. Completing an already-completed quest is an
// idempotent no-op: the input state comes back unchanged with a nil entry
// and zero reward.
func (e *Engine) Complete(
	ctx context.Context,
	userID string,
	state *domain.QuestSystemState,
	questID string,
	playerLevel int,
	timeSpentMinutes int,
) (*domain.QuestSystemState, *domain.QuestHistoryEntry, domain.Reward, error) {
	q := state.FindQuest(questID)
	if q == nil {
		return nil, nil, domain.Reward{}, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}
	if state.PlayerQuestStates[questID].Status == domain.QuestStatusCompleted {
		return state, nil, domain.Reward{}, nil
	}

	streak := state.CurrentStreak[q.Granularity]
	reward := e.rewards.Reward(*q, playerLevel, timeSpentMinutes, progression.StreakMultiplier(streak))

	next := state.Clone()
	entry, already, err := e.tracker.Complete(next, questID, e.clk.Now(), timeSpentMinutes, reward.TotalXP)
	if err != nil {
		return nil, nil, domain.Reward{}, err
	}
	if already {
		return state, nil, domain.Reward{}, nil
	}

	if e.publisher != nil {
		e.publisher.PublishWithRetry(ctx, event.NewQuestCompletedEvent(userID, questID, entry.TemplateID, entry.Granularity, entry.XPEarned))
	}

	logger.FromContext(ctx).Info("Quest completed",
		"user_id", userID,
		"quest_id", questID,
		"xp_earned", entry.XPEarned,
		"streak", streak)

	return next, entry, reward, nil
}

// Skip moves a quest to skipped. Terminal quests cannot be skipped.
func (e *Engine) Skip(ctx context.Context, userID string, state *domain.QuestSystemState, questID string) (*domain.QuestSystemState, error) {
	next := state.Clone()
	if err := e.tracker.Skip(next, questID, e.clk.Now()); err != nil {
		return nil, err
	}

	if e.publisher != nil {
		q := next.FindQuest(questID)
		e.publisher.PublishWithRetry(ctx, event.Event{
			Version: event.EventSchemaVersion,
			Type:    event.QuestSkipped,
			Payload: event.QuestCompletedPayloadV1{
				UserID:      userID,
				QuestID:     questID,
				TemplateID:  q.TemplateID,
				Granularity: q.Granularity,
			},
		})
	}

	return next, nil
}

// ApplyReward grants a quest's reward to the player progress record and
// resolves level-ups (looping, so large grants can jump several levels).
func (e *Engine) ApplyReward(
	ctx context.Context,
	userID string,
	progress domain.PlayerProgress,
	quest domain.Quest,
	playerLevel int,
	completionTimeMinutes int,
	streak int,
) (domain.PlayerProgress, domain.Reward) {
	reward := e.rewards.Reward(quest, playerLevel, completionTimeMinutes, progression.StreakMultiplier(streak))
	updated := e.rewards.ApplyXP(progress, reward.TotalXP)

	if updated.Level > progress.Level {
		logger.FromContext(ctx).Info("Player leveled up",
			"user_id", userID,
			"old_level", progress.Level,
			"new_level", updated.Level,
			"xp_gained", reward.TotalXP)
		if e.publisher != nil {
			e.publisher.PublishWithRetry(ctx, event.NewPlayerLevelUpEvent(userID, progress.Level, updated.Level, reward.TotalXP))
		}
	}

	return updated, reward
}
