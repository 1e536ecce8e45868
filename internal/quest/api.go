package quest

import (
	"context"
	"errors"
	"sync"

	"github.com/thad75/questday/internal/domain"
	"github.com/thad75/questday/internal/logger"
	"github.com/thad75/questday/internal/repository"
)

// Service is the user-facing quest API. It loads a user's state, runs the
// engine, and persists the outcome. Calls for the same user are serialized
// so concurrent requests cannot interleave read-modify-write cycles.
type Service interface {
	// GetQuests returns the user's current quest board, resetting any stale
	// granularity first.
	GetQuests(ctx context.Context, userID string) (*domain.QuestSystemState, domain.ResetFlags, error)

	// Regenerate forces a fresh set for one granularity.
	Regenerate(ctx context.Context, userID string, g domain.Granularity) ([]domain.Quest, error)

	StartQuest(ctx context.Context, userID, questID string) error
	CompleteQuest(ctx context.Context, userID, questID string, timeSpentMinutes int) (*CompletionResult, error)
	SkipQuest(ctx context.Context, userID, questID string) error

	GetProgress(ctx context.Context, userID string) (domain.PlayerProgress, error)
}

// CompletionResult is everything a caller needs to show after a completion.
type CompletionResult struct {
	AlreadyCompleted bool                      `json:"already_completed"`
	Entry            *domain.QuestHistoryEntry `json:"entry,omitempty"`
	Reward           domain.Reward             `json:"reward"`
	Progress         domain.PlayerProgress     `json:"progress"`
	LeveledUp        bool                      `json:"leveled_up"`
}

type service struct {
	engine   *Engine
	states   repository.StateRepository
	progress repository.ProgressRepository
	cfg      domain.GenerationConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the quest service over the given stores.
func NewService(engine *Engine, states repository.StateRepository, progress repository.ProgressRepository, cfg domain.GenerationConfig) Service {
	return &service{
		engine:   engine,
		states:   states,
		progress: progress,
		cfg:      cfg,
		locks:    make(map[string]*sync.Mutex),
	}
}

// userLock returns the per-user mutex, creating it on first use. Locks are
// never removed; the per-user footprint is one mutex.
func (s *service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// loadState fetches the user's state, starting fresh for unknown users.
func (s *service) loadState(ctx context.Context, userID string) (*domain.QuestSystemState, error) {
	state, err := s.states.GetState(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.NewQuestSystemState(), nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *service) GetQuests(ctx context.Context, userID string) (*domain.QuestSystemState, domain.ResetFlags, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, domain.ResetFlags{}, err
	}
	progress, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, domain.ResetFlags{}, err
	}

	next, flags, _, err := s.engine.CheckAndReset(ctx, userID, state, progress.Level, s.cfg)
	if err != nil {
		return nil, domain.ResetFlags{}, err
	}

	if flags.Any() {
		if err := s.states.SaveState(ctx, userID, next); err != nil {
			return nil, domain.ResetFlags{}, err
		}
	}

	return next, flags, nil
}

func (s *service) Regenerate(ctx context.Context, userID string, g domain.Granularity) ([]domain.Quest, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, quests, err := s.engine.GenerateForGranularity(ctx, userID, state, g, progress.Level, s.cfg)
	if err != nil {
		return nil, err
	}

	if err := s.states.SaveState(ctx, userID, next); err != nil {
		return nil, err
	}
	return quests, nil
}

func (s *service) StartQuest(ctx context.Context, userID, questID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return err
	}

	next, err := s.engine.Start(ctx, state, questID)
	if err != nil {
		return err
	}
	return s.states.SaveState(ctx, userID, next)
}

func (s *service) CompleteQuest(ctx context.Context, userID, questID string, timeSpentMinutes int) (*CompletionResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	questBefore := state.FindQuest(questID)
	streak := 0
	if questBefore != nil {
		streak = state.CurrentStreak[questBefore.Granularity]
	}

	next, entry, reward, err := s.engine.Complete(ctx, userID, state, questID, progress.Level, timeSpentMinutes)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &CompletionResult{AlreadyCompleted: true, Progress: progress}, nil
	}

	updated, _ := s.engine.ApplyReward(ctx, userID, progress, *questBefore, progress.Level, timeSpentMinutes, streak)

	if err := s.states.SaveState(ctx, userID, next); err != nil {
		return nil, err
	}
	if err := s.progress.SaveProgress(ctx, userID, updated); err != nil {
		// State is already saved; a retry of the request recomputes nothing
		// (the completion is idempotent) but the XP grant is lost. Surface it.
		logger.FromContext(ctx).Error("Failed to persist progress after completion",
			"user_id", userID,
			"quest_id", questID,
			"error", err)
		return nil, err
	}

	return &CompletionResult{
		Entry:     entry,
		Reward:    reward,
		Progress:  updated,
		LeveledUp: updated.Level > progress.Level,
	}, nil
}

func (s *service) SkipQuest(ctx context.Context, userID, questID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return err
	}

	next, err := s.engine.Skip(ctx, userID, state, questID)
	if err != nil {
		return err
	}
	return s.states.SaveState(ctx, userID, next)
}

func (s *service) GetProgress(ctx context.Context, userID string) (domain.PlayerProgress, error) {
	return s.progress.GetProgress(ctx, userID)
}
