package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thad75/questday/internal/domain"
)

type ProgressRepository struct {
	db *pgxpool.Pool
}

func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetProgress returns the user's progress row, or a fresh level-1 record for
// users that have never earned XP.
func (r *ProgressRepository) GetProgress(ctx context.Context, userID string) (domain.PlayerProgress, error) {
	var p domain.PlayerProgress
	err := r.db.QueryRow(ctx,
		`SELECT level, current_xp, xp_to_next_level, total_xp_earned
		 FROM player_progress WHERE user_id = $1`,
		userID,
	).Scan(&p.Level, &p.CurrentXP, &p.XPToNextLevel, &p.TotalXPEarned)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewPlayerProgress(), nil
	}
	if err != nil {
		return domain.PlayerProgress{}, fmt.Errorf("get player progress: %w", err)
	}
	return p, nil
}

// SaveProgress upserts the user's progress row.
func (r *ProgressRepository) SaveProgress(ctx context.Context, userID string, progress domain.PlayerProgress) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO player_progress (user_id, level, current_xp, xp_to_next_level, total_xp_earned)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id)
		 DO UPDATE SET
		   level = EXCLUDED.level,
		   current_xp = EXCLUDED.current_xp,
		   xp_to_next_level = EXCLUDED.xp_to_next_level,
		   total_xp_earned = EXCLUDED.total_xp_earned,
		   updated_at = NOW()`,
		userID, progress.Level, progress.CurrentXP, progress.XPToNextLevel, progress.TotalXPEarned,
	)
	if err != nil {
		return fmt.Errorf("save player progress: %w", err)
	}
	return nil
}
