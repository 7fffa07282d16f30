// ABOUTME: Tests for position persistence
// ABOUTME: Covers ordering, duplicate names and clearing user references on delete

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Positions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	senior := &Position{Name: "Senior", Level: 3, Description: ptr("leads projects")}
	junior := &Position{Name: "Junior", Level: 1}
	middle := &Position{Name: "Middle", Level: 2}
	for _, p := range []*Position{senior, junior, middle} {
		require.NoError(t, store.CreatePosition(ctx, p))
		assert.NotZero(t, p.ID)
	}

	list, err := store.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Junior", "Middle", "Senior"}, []string{list[0].Name, list[1].Name, list[2].Name})
	require.NotNil(t, list[2].Description)
	assert.Equal(t, "leads projects", *list[2].Description)
}

func TestStore_CreatePosition_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePosition(ctx, &Position{Name: "Lead", Level: 4}))
	err := store.CreatePosition(ctx, &Position{Name: "Lead", Level: 5})
	assert.ErrorIs(t, err, ErrPositionExists)
}

func TestStore_UpdatePosition(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := &Position{Name: "A", Level: 1}
	b := &Position{Name: "B", Level: 1}
	require.NoError(t, store.CreatePosition(ctx, a))
	require.NoError(t, store.CreatePosition(ctx, b))

	a.Name = "Architect"
	a.Level = 5
	require.NoError(t, store.UpdatePosition(ctx, a))

	got, err := store.GetPosition(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Architect", got.Name)
	assert.Equal(t, 5, got.Level)

	b.Name = "Architect"
	assert.ErrorIs(t, store.UpdatePosition(ctx, b), ErrPositionExists)

	assert.ErrorIs(t, store.UpdatePosition(ctx, &Position{ID: 999, Name: "x", Level: 1}), ErrNotFound)
}

func TestStore_DeletePosition_ClearsUsers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	pos := &Position{Name: "Intern", Level: 1}
	require.NoError(t, store.CreatePosition(ctx, pos))
	u := createTestUser(t, store, "ursula")
	_, err := store.UpdateUser(ctx, u.ID, UserUpdate{PositionID: &pos.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeletePosition(ctx, pos.ID))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PositionID)

	assert.ErrorIs(t, store.DeletePosition(ctx, pos.ID), ErrNotFound)
}
