package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thad75/questday/internal/domain"
)

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.GetState(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	state := domain.NewQuestSystemState()
	state.LastResetDates[domain.GranularityDaily] = "2024-03-01"
	state.ActiveQuests = append(state.ActiveQuests, domain.Quest{ID: "q1", Granularity: domain.GranularityDaily})
	require.NoError(t, store.SaveState(ctx, "u1", state))

	got, err := store.GetState(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	// The store hands out copies; mutating them must not affect stored data.
	got.LastResetDates[domain.GranularityDaily] = "2099-01-01"
	again, err := store.GetState(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", again.LastResetDates[domain.GranularityDaily])

	require.NoError(t, store.DeleteState(ctx, "u1"))
	_, err = store.GetState(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.NoError(t, store.DeleteState(ctx, "u1"), "deleting a missing state is fine")
}

func TestSaveStateCopiesInput(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	state := domain.NewQuestSystemState()
	require.NoError(t, store.SaveState(ctx, "u1", state))

	state.CurrentStreak[domain.GranularityDaily] = 9

	got, err := store.GetState(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, got.CurrentStreak[domain.GranularityDaily])
}

func TestSaveStateNil(t *testing.T) {
	store := NewStore()
	assert.ErrorIs(t, store.SaveState(context.Background(), "u1", nil), domain.ErrInvalidInput)
}

func TestProgressRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	p, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.NewPlayerProgress(), p, "unknown users start at level 1")

	p.Level = 4
	p.CurrentXP = 50
	p.XPToNextLevel = 400
	p.TotalXPEarned = 950
	require.NoError(t, store.SaveProgress(ctx, "u1", p))

	got, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}
