// ABOUTME: Tests for task and status persistence
// ABOUTME: Covers defaults, filters, partial updates and reference checks

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ListStatuses(t *testing.T) {
	store := setupTestStore(t)

	statuses, err := store.ListStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.Name
	}
	assert.Equal(t, []string{"todo", "in_progress", "review", "done"}, names)
	assert.Equal(t, DefaultStatusID, statuses[0].ID)
}

func TestStore_CreateTask_Defaults(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "owner")

	task, err := store.CreateTask(ctx, &Task{Title: "Write docs", CreatedBy: &owner.ID})
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.Equal(t, DefaultStatusID, task.StatusID)
	assert.Equal(t, "todo", task.StatusName)
	assert.Equal(t, PriorityMedium, task.Priority)
	require.NotNil(t, task.CreatedByName)
	assert.Equal(t, "owner", *task.CreatedByName)
	assert.Nil(t, task.AssignedTo)
	assert.Nil(t, task.DueDate)
}

func TestStore_CreateTask_InvalidReferences(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.CreateTask(ctx, &Task{Title: "x", StatusID: 99})
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = store.CreateTask(ctx, &Task{Title: "x", AssignedTo: ptr(int64(99))})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestStore_ListTasks_Filters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	dev := createTestUser(t, store, "dev")

	_, err := store.CreateTask(ctx, &Task{Title: "a", Priority: PriorityHigh})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, &Task{Title: "b", Priority: PriorityLow, StatusID: 4, AssignedTo: &dev.ID})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, &Task{Title: "c", Priority: PriorityHigh, StatusID: 4})
	require.NoError(t, err)

	all, err := store.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Title, "newest first")

	done, err := store.ListTasks(ctx, TaskFilter{StatusName: "done"})
	require.NoError(t, err)
	assert.Len(t, done, 2)

	highDone, err := store.ListTasks(ctx, TaskFilter{StatusName: "done", Priority: PriorityHigh})
	require.NoError(t, err)
	require.Len(t, highDone, 1)
	assert.Equal(t, "c", highDone[0].Title)

	mine, err := store.ListTasks(ctx, TaskFilter{AssignedTo: &dev.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].AssignedToName)
	assert.Equal(t, "dev", *mine[0].AssignedToName)
}

func TestStore_UpdateTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	editor := createTestUser(t, store, "editor")

	task, err := store.CreateTask(ctx, &Task{Title: "draft", Description: ptr("old")})
	require.NoError(t, err)

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	updated, err := store.UpdateTask(ctx, task.ID, TaskUpdate{
		Title:    ptr("final"),
		StatusID: ptr(int64(2)),
		Priority: ptr(PriorityUrgent),
		DueDate:  &due,
	}, editor.ID)
	require.NoError(t, err)

	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "in_progress", updated.StatusName)
	assert.Equal(t, PriorityUrgent, updated.Priority)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, editor.ID, *updated.UpdatedBy)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "old", *updated.Description)

	cleared, err := store.UpdateTask(ctx, task.ID, TaskUpdate{ClearDescription: true, ClearDueDate: true}, editor.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Nil(t, cleared.DueDate)

	_, err = store.UpdateTask(ctx, 999, TaskUpdate{Title: ptr("x")}, editor.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateTask(ctx, task.ID, TaskUpdate{StatusID: ptr(int64(42))}, editor.ID)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestStore_DeleteTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	task, err := store.CreateTask(ctx, &Task{Title: "temp"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTask(ctx, task.ID))
	_, err = store.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteTask(ctx, task.ID), ErrNotFound)
}

func TestStore_DeleteUser_KeepsTasks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, store, "leaver")

	task, err := store.CreateTask(ctx, &Task{Title: "orphan", CreatedBy: &u.ID, AssignedTo: &u.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, u.ID))

	got, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CreatedBy)
	assert.Nil(t, got.AssignedTo)
}

func TestTaskUpdate_Empty(t *testing.T) {
	assert.True(t, TaskUpdate{}.Empty())
	assert.False(t, TaskUpdate{ClearAssignee: true}.Empty())
	assert.True(t, UserUpdate{}.Empty())
	assert.False(t, UserUpdate{FirstName: ptr("x")}.Empty())
}
