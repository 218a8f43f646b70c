package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusTodo, st)

	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err = ParseStatus("done")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	r, err = ParseRole("manager")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPatchApplyAnyTransition(t *testing.T) {
	// the enum is flat: every status may follow every other status
	for _, from := range Statuses {
		for _, to := range Statuses {
			task := &Task{Title: "t", Status: from}
			require.NoError(t, TaskPatch{Status: ptr(string(to))}.Apply(task))
			assert.Equal(t, to, task.Status)
		}
	}
}

func TestPatchApplyValidation(t *testing.T) {
	task := &Task{Title: "keep", Status: StatusTodo, AssignedTo: "u1"}

	assert.ErrorIs(t, TaskPatch{Title: ptr("  ")}.Apply(task), ErrValidation)
	assert.ErrorIs(t, TaskPatch{Status: ptr("archived")}.Apply(task), ErrValidation)
	assert.ErrorIs(t, TaskPatch{AssignedTo: ptr("")}.Apply(task), ErrValidation)

	require.NoError(t, TaskPatch{Title: ptr(" new "), Description: ptr("d")}.Apply(task))
	assert.Equal(t, "new", task.Title)
	assert.Equal(t, "d", task.Description)
	assert.Equal(t, "u1", task.AssignedTo)
}

func TestPatchApplyTrimsStatusLikeCreate(t *testing.T) {
	task := &Task{Title: "t", Status: StatusCompleted}
	require.NoError(t, TaskPatch{Status: ptr(" todo ")}.Apply(task))
	assert.Equal(t, StatusTodo, task.Status)

	st, err := ParseStatus("todo")
	require.NoError(t, err)
	assert.Equal(t, st, task.Status)
}

func TestPatchOnlyStatus(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())
	assert.True(t, TaskPatch{Status: ptr("todo")}.OnlyStatus())
	assert.False(t, TaskPatch{Status: ptr("todo"), Title: ptr("x")}.OnlyStatus())
}
