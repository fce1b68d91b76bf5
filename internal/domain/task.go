package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values, in lifecycle order.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every valid status in lifecycle order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusBlocked,
	TaskStatusDone,
	TaskStatusCancelled,
}

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Task validation errors
var (
	ErrTaskIDEmpty          = errors.New("task ID cannot be empty")
	ErrTaskColumnIDEmpty    = errors.New("task column ID cannot be empty")
	ErrTaskTitleEmpty       = errors.New("task title cannot be empty")
	ErrTaskSelfParent       = errors.New("task cannot be its own parent")
	ErrCompletionOutOfRange = errors.New("completion percentage must be between 0 and 100")
)

// Task is a unit of work sitting in a column. Position is the zero-based rank
// among the tasks of the same column. ParentID links a subtask to its parent;
// the model does not limit the depth of the hierarchy.
type Task struct {
	ID                   uuid.UUID  `json:"id"`
	ColumnID             uuid.UUID  `json:"column_id"`
	ParentID             *uuid.UUID `json:"parent_id,omitempty"`
	Title                string     `json:"title"`
	Position             int        `json:"position"`
	Status               TaskStatus `json:"status"`
	CompletionPercentage int        `json:"completion_percentage"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewTask creates a Todo task at the given position of a column.
func NewTask(columnID uuid.UUID, title string, position int, parentID *uuid.UUID) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		ColumnID:  columnID,
		ParentID:  parentID,
		Title:     strings.TrimSpace(title),
		Position:  position,
		Status:    TaskStatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.ColumnID == uuid.Nil {
		return ErrTaskColumnIDEmpty
	}
	if t.Title == "" {
		return ErrTaskTitleEmpty
	}
	if t.Position < 0 {
		return ErrInvalidPosition
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if t.CompletionPercentage < 0 || t.CompletionPercentage > 100 {
		return ErrCompletionOutOfRange
	}
	if t.ParentID != nil && *t.ParentID == t.ID {
		return ErrTaskSelfParent
	}
	return nil
}

// HasParent reports whether the task is a subtask.
func (t *Task) HasParent() bool {
	return t.ParentID != nil && *t.ParentID != uuid.Nil
}

// IsDone reports whether the task is in the Done status.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// TransitionTo moves the task to the given status and keeps the derived
// fields in step: entering Done stamps CompletedAt and sets the percentage to
// 100, leaving Done clears CompletedAt and resets the percentage to 0. Any
// other transition leaves the percentage untouched.
func (t *Task) TransitionTo(status TaskStatus, now time.Time) error {
	if !status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if status == t.Status {
		return nil
	}

	switch {
	case status == TaskStatusDone:
		completedAt := now
		t.CompletedAt = &completedAt
		t.CompletionPercentage = 100
	case t.Status == TaskStatusDone:
		t.CompletedAt = nil
		t.CompletionPercentage = 0
	}

	t.Status = status
	t.UpdatedAt = now
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.ParentID != nil {
		parentID := *t.ParentID
		c.ParentID = &parentID
	}
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		c.CompletedAt = &completedAt
	}
	return &c
}
