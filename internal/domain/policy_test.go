package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStatusPolicy(t *testing.T) {
	t.Parallel()

	terminal := &Column{Name: "Done", IsTerminal: true}
	open := &Column{Name: "Doing"}

	tests := []struct {
		name        string
		original    TaskStatus
		destination *Column
		want        TaskStatus
	}{
		{name: "todo into terminal", original: TaskStatusTodo, destination: terminal, want: TaskStatusDone},
		{name: "blocked into terminal", original: TaskStatusBlocked, destination: terminal, want: TaskStatusDone},
		{name: "done stays done in terminal", original: TaskStatusDone, destination: terminal, want: TaskStatusDone},
		{name: "done leaving terminal", original: TaskStatusDone, destination: open, want: TaskStatusInProgress},
		{name: "todo starts work", original: TaskStatusTodo, destination: open, want: TaskStatusInProgress},
		{name: "in review kept", original: TaskStatusInReview, destination: open, want: TaskStatusInReview},
		{name: "blocked kept", original: TaskStatusBlocked, destination: open, want: TaskStatusBlocked},
		{name: "cancelled kept", original: TaskStatusCancelled, destination: open, want: TaskStatusCancelled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultStatusPolicy(tc.original, tc.destination))
		})
	}
}

func TestNamedTodoColumnPolicy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TaskStatusTodo, NamedTodoColumnPolicy(TaskStatusInProgress, &Column{Name: "To Do"}))
	assert.Equal(t, TaskStatusTodo, NamedTodoColumnPolicy(TaskStatusDone, &Column{Name: "TODO"}))
	assert.Equal(t, TaskStatusDone, NamedTodoColumnPolicy(TaskStatusTodo, &Column{Name: "todo", IsTerminal: true}))
	assert.Equal(t, TaskStatusInProgress, NamedTodoColumnPolicy(TaskStatusTodo, &Column{Name: "Doing"}))
}

func TestIsTodoColumnName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"todo", "To Do", "TO-DO", " to_do "} {
		assert.True(t, IsTodoColumnName(name), name)
	}
	for _, name := range []string{"Done", "Todos", "to do later", ""} {
		assert.False(t, IsTodoColumnName(name), name)
	}
}

func TestStatusPolicyByName(t *testing.T) {
	t.Parallel()

	policy, err := StatusPolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusInProgress, policy(TaskStatusTodo, &Column{Name: "To Do"}))

	policy, err = StatusPolicyByName("todo_column")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusTodo, policy(TaskStatusInProgress, &Column{Name: "To Do"}))

	_, err = StatusPolicyByName("random")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReconcileStatusEnforcesTerminalRule(t *testing.T) {
	t.Parallel()

	alwaysDone := func(TaskStatus, *Column) TaskStatus { return TaskStatusDone }
	alwaysBlocked := func(TaskStatus, *Column) TaskStatus { return TaskStatusBlocked }
	garbage := func(TaskStatus, *Column) TaskStatus { return "garbage" }

	terminal := &Column{IsTerminal: true}
	open := &Column{}

	assert.Equal(t, TaskStatusInProgress, ReconcileStatus(alwaysDone, TaskStatusTodo, open))
	assert.Equal(t, TaskStatusDone, ReconcileStatus(alwaysBlocked, TaskStatusTodo, terminal))
	assert.Equal(t, TaskStatusBlocked, ReconcileStatus(alwaysBlocked, TaskStatusTodo, open))
	assert.Equal(t, TaskStatusInReview, ReconcileStatus(garbage, TaskStatusInReview, open))
	assert.Equal(t, TaskStatusInProgress, ReconcileStatus(nil, TaskStatusTodo, open))
}
