// Package repository defines the persistence interfaces the engine's callers
// depend on. Implementations live in internal/database.
package repository

import (
	"context"

	"github.com/thad75/questday/internal/domain"
)

// StateRepository stores one QuestSystemState per user. GetState returns
// domain.ErrUserNotFound when no state exists; callers typically start from
// domain.NewQuestSystemState then.
type StateRepository interface {
	GetState(ctx context.Context, userID string) (*domain.QuestSystemState, error)
	SaveState(ctx context.Context, userID string, state *domain.QuestSystemState) error
	DeleteState(ctx context.Context, userID string) error
}

// ProgressRepository stores per-user level and XP.
type ProgressRepository interface {
	GetProgress(ctx context.Context, userID string) (domain.PlayerProgress, error)
	SaveProgress(ctx context.Context, userID string, progress domain.PlayerProgress) error
}
