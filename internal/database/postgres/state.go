// Package postgres implements the repositories on PostgreSQL. Quest state is
// stored as one JSONB document per user; the engine treats the whole state as
// a single unit, so a document column beats a normalized schema here.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thad75/questday/internal/domain"
)

type StateRepository struct {
	db *pgxpool.Pool
}

func NewStateRepository(db *pgxpool.Pool) *StateRepository {
	return &StateRepository{db: db}
}

// GetState loads the user's quest state document.
func (r *StateRepository) GetState(ctx context.Context, userID string) (*domain.QuestSystemState, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM quest_states WHERE user_id = $1`,
		userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get quest state: %w", err)
	}

	var state domain.QuestSystemState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode quest state: %w", err)
	}
	ensureMaps(&state)
	return &state, nil
}

// SaveState upserts the user's quest state document.
func (r *StateRepository) SaveState(ctx context.Context, userID string, state *domain.QuestSystemState) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", domain.ErrInvalidInput)
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode quest state: %w", err)
	}

	// The previous document is kept in prev_state so a bad write can be
	// recovered by hand without point-in-time restore.
	_, err = r.db.Exec(ctx,
		`INSERT INTO quest_states (user_id, state)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id)
		 DO UPDATE SET prev_state = quest_states.state,
		               state = EXCLUDED.state,
		               updated_at = NOW()`,
		userID, raw,
	)
	if err != nil {
		return fmt.Errorf("save quest state: %w", err)
	}
	return nil
}

// DeleteState removes the user's quest state document.
func (r *StateRepository) DeleteState(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quest_states WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete quest state: %w", err)
	}
	return nil
}

// ensureMaps re-initializes nil maps after JSON decoding so the engine can
// index them without nil checks.
func ensureMaps(state *domain.QuestSystemState) {
	if state.PlayerQuestStates == nil {
		state.PlayerQuestStates = make(map[string]domain.PlayerQuestState)
	}
	if state.LastResetDates == nil {
		state.LastResetDates = make(map[domain.Granularity]string)
	}
	if state.CurrentStreak == nil {
		state.CurrentStreak = make(map[domain.Granularity]int)
	}
}
