package quest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thad75/questday/internal/domain"
)

// LifecycleTracker owns the per-instance state machine:
//
//	available -> active -> completed
//	available|active   -> skipped
//	any non-terminal   -> expired (end date passed)
//
// Terminal states never resurrect; a new cycle needs a newly materialized
// instance. The tracker mutates the state it is given - callers pass clones.
type LifecycleTracker struct{}

// NewLifecycleTracker creates a lifecycle tracker.
func NewLifecycleTracker() *LifecycleTracker {
	return &LifecycleTracker{}
}

// expireIfOverdue flips a non-terminal quest whose end date has passed to
// expired, so lifecycle transitions observe the window boundary even when no
// reset pass has run yet. Reports whether the quest was expired here.
func (t *LifecycleTracker) expireIfOverdue(state *domain.QuestSystemState, q *domain.Quest, now time.Time) bool {
	if !q.EndDate.Before(now) {
		return false
	}
	ps := state.PlayerQuestStates[q.ID]
	if ps.Status.Terminal() {
		return false
	}
	ps.QuestID = q.ID
	ps.Status = domain.QuestStatusExpired
	state.PlayerQuestStates[q.ID] = ps
	return true
}

// Start moves an available quest to active and stamps StartedAt.
func (t *LifecycleTracker) Start(state *domain.QuestSystemState, questID string, now time.Time) error {
	q := state.FindQuest(questID)
	if q == nil {
		return fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}
	if t.expireIfOverdue(state, q, now) {
		return fmt.Errorf("%w: quest %s is expired", domain.ErrInvalidInput, questID)
	}

	ps := state.PlayerQuestStates[questID]
	switch ps.Status {
	case domain.QuestStatusActive:
		return nil // already running
	case "", domain.QuestStatusAvailable:
		started := now
		ps.QuestID = questID
		ps.Status = domain.QuestStatusActive
		ps.StartedAt = &started
		state.PlayerQuestStates[questID] = ps
		return nil
	default:
		return fmt.Errorf("%w: quest %s is %s", domain.ErrInvalidInput, questID, ps.Status)
	}
}

// Complete marks the quest completed, appends the history ledger entry, and
// returns it. A second call for the same id is a no-op returning
// (nil, true, nil) - no double ledger entry, no double XP basis.
func (t *LifecycleTracker) Complete(
	state *domain.QuestSystemState,
	questID string,
	now time.Time,
	timeSpentMinutes int,
	xpEarned int,
) (*domain.QuestHistoryEntry, bool, error) {
	q := state.FindQuest(questID)
	if q == nil {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}
	if t.expireIfOverdue(state, q, now) {
		return nil, false, fmt.Errorf("%w: quest %s is expired", domain.ErrInvalidInput, questID)
	}

	ps := state.PlayerQuestStates[questID]
	switch ps.Status {
	case domain.QuestStatusCompleted:
		return nil, true, nil
	case domain.QuestStatusExpired, domain.QuestStatusSkipped:
		return nil, false, fmt.Errorf("%w: quest %s is %s", domain.ErrInvalidInput, questID, ps.Status)
	}

	completed := now
	q.Completed = true
	q.Progress = 100
	q.CompletedAt = &completed
	q.CurrentCompletions++

	ps.QuestID = questID
	ps.Status = domain.QuestStatusCompleted
	ps.Progress = 100
	ps.CurrentCompletions = q.CurrentCompletions
	ps.CompletedAt = &completed
	ps.TimeSpentMinutes = timeSpentMinutes
	state.PlayerQuestStates[questID] = ps

	entry := domain.QuestHistoryEntry{
		ID:               uuid.NewString(),
		QuestID:          questID,
		TemplateID:       q.TemplateID,
		Granularity:      q.Granularity,
		CompletedAt:      completed,
		XPEarned:         xpEarned,
		TimeSpentMinutes: timeSpentMinutes,
	}
	state.QuestHistory = append(state.QuestHistory, entry)

	return &entry, false, nil
}

// Skip moves an available or active quest to skipped.
func (t *LifecycleTracker) Skip(state *domain.QuestSystemState, questID string, now time.Time) error {
	q := state.FindQuest(questID)
	if q == nil {
		return fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}
	if t.expireIfOverdue(state, q, now) {
		return fmt.Errorf("%w: quest %s is expired", domain.ErrInvalidInput, questID)
	}

	ps := state.PlayerQuestStates[questID]
	if ps.Status.Terminal() {
		return fmt.Errorf("%w: quest %s is %s", domain.ErrInvalidInput, questID, ps.Status)
	}

	ps.QuestID = questID
	ps.Status = domain.QuestStatusSkipped
	state.PlayerQuestStates[questID] = ps
	return nil
}

// ExpireOverdue transitions every non-terminal instance whose end date has
// passed to expired and returns the affected quest ids.
func (t *LifecycleTracker) ExpireOverdue(state *domain.QuestSystemState, now time.Time) []string {
	var expired []string
	for i := range state.ActiveQuests {
		q := &state.ActiveQuests[i]
		if !q.EndDate.Before(now) {
			continue
		}
		ps := state.PlayerQuestStates[q.ID]
		if ps.Status.Terminal() {
			continue
		}
		ps.QuestID = q.ID
		ps.Status = domain.QuestStatusExpired
		state.PlayerQuestStates[q.ID] = ps
		expired = append(expired, q.ID)
	}
	return expired
}

// RemoveGranularity drops every instance of g (and its lifecycle record)
// from the active set, regardless of completion status. Returns how many
// were removed and how many of those were completed - the streak input.
func (t *LifecycleTracker) RemoveGranularity(state *domain.QuestSystemState, g domain.Granularity) (removed, completed int) {
	kept := state.ActiveQuests[:0]
	for _, q := range state.ActiveQuests {
		if q.Granularity != g {
			kept = append(kept, q)
			continue
		}
		if state.PlayerQuestStates[q.ID].Status == domain.QuestStatusCompleted {
			completed++
		}
		delete(state.PlayerQuestStates, q.ID)
		removed++
	}
	state.ActiveQuests = kept
	return removed, completed
}
