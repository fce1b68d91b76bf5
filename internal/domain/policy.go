package domain

import (
	"fmt"
	"strings"
)

// StatusPolicy decides the status a task should have after it lands in the
// destination column. Implementations must be pure; the move logic applies
// the returned status and keeps CompletedAt and the completion percentage in
// step with it.
type StatusPolicy func(original TaskStatus, destination *Column) TaskStatus

// Policy names accepted by StatusPolicyByName.
const (
	PolicyDefault    = "default"
	PolicyTodoColumn = "todo_column"
)

// DefaultStatusPolicy is the standard reconciliation:
//   - a terminal destination makes the task Done
//   - a Done task leaving a terminal column goes back to InProgress
//   - a Todo task that moves is considered started and becomes InProgress
//
// Every other status is kept as is.
func DefaultStatusPolicy(original TaskStatus, destination *Column) TaskStatus {
	switch {
	case destination.IsTerminal:
		return TaskStatusDone
	case original == TaskStatusDone:
		return TaskStatusInProgress
	case original == TaskStatusTodo:
		return TaskStatusInProgress
	default:
		return original
	}
}

// NamedTodoColumnPolicy behaves like DefaultStatusPolicy except that a task
// moved into a non-terminal column named "To Do" (or "TODO") is reset to Todo.
func NamedTodoColumnPolicy(original TaskStatus, destination *Column) TaskStatus {
	if !destination.IsTerminal && IsTodoColumnName(destination.Name) {
		return TaskStatusTodo
	}
	return DefaultStatusPolicy(original, destination)
}

// IsTodoColumnName matches "todo", "to do" and "to-do" in any case.
func IsTodoColumnName(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalized)
	return normalized == "todo"
}

// StatusPolicyByName resolves a configured policy name.
func StatusPolicyByName(name string) (StatusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyDefault:
		return DefaultStatusPolicy, nil
	case PolicyTodoColumn:
		return NamedTodoColumnPolicy, nil
	default:
		return nil, fmt.Errorf("%w: unknown status policy %q", ErrValidation, name)
	}
}

// ReconcileStatus runs policy and then enforces the terminal-column rule the
// policy cannot opt out of: a task in a terminal column is Done, and a task in
// a non-terminal column is never Done.
func ReconcileStatus(policy StatusPolicy, original TaskStatus, destination *Column) TaskStatus {
	if policy == nil {
		policy = DefaultStatusPolicy
	}
	status := policy(original, destination)
	switch {
	case destination.IsTerminal:
		return TaskStatusDone
	case status == TaskStatusDone:
		return TaskStatusInProgress
	case !status.IsValid():
		return original
	}
	return status
}
