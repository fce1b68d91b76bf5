package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// Type identifies the kind of board change an Event describes.
type Type string

// Event types emitted after a board change commits.
const (
	TaskCreated       Type = "task.created"
	TaskMoved         Type = "task.moved"
	TaskStatusChanged Type = "task.status_changed"
	TaskDeleted       Type = "task.deleted"
	ColumnCreated     Type = "column.created"
	ColumnReordered   Type = "column.reordered"
	ColumnDeleted     Type = "column.deleted"
)

// Event is a committed board change.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type Type `json:"type"`

	// BoardID is the board the change happened on
	BoardID uuid.UUID `json:"board_id"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates an Event with the given type and payload.
func NewEvent(eventType Type, boardID uuid.UUID, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		BoardID:    boardID,
		Payload:    payloadBytes,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// TaskMovedPayload is the payload of TaskMoved.
type TaskMovedPayload struct {
	TaskID           uuid.UUID         `json:"task_id"`
	ParentID         *uuid.UUID        `json:"parent_id,omitempty"`
	FromColumnID     uuid.UUID         `json:"from_column_id"`
	ToColumnID       uuid.UUID         `json:"to_column_id"`
	FromPosition     int               `json:"from_position"`
	ToPosition       int               `json:"to_position"`
	FromStatus       domain.TaskStatus `json:"from_status"`
	ToStatus         domain.TaskStatus `json:"to_status"`
	CapacityExceeded bool              `json:"capacity_exceeded"`
}

// TaskCreatedPayload is the payload of TaskCreated.
type TaskCreatedPayload struct {
	TaskID           uuid.UUID         `json:"task_id"`
	ColumnID         uuid.UUID         `json:"column_id"`
	ParentID         *uuid.UUID        `json:"parent_id,omitempty"`
	Title            string            `json:"title"`
	Position         int               `json:"position"`
	Status           domain.TaskStatus `json:"status"`
	SubtaskIDs       []uuid.UUID       `json:"subtask_ids,omitempty"`
	CapacityExceeded bool              `json:"capacity_exceeded"`
}

// TaskStatusChangedPayload is the payload of TaskStatusChanged.
type TaskStatusChangedPayload struct {
	TaskID     uuid.UUID         `json:"task_id"`
	ColumnID   uuid.UUID         `json:"column_id"`
	FromStatus domain.TaskStatus `json:"from_status"`
	ToStatus   domain.TaskStatus `json:"to_status"`
}

// TaskDeletedPayload is the payload of TaskDeleted.
type TaskDeletedPayload struct {
	TaskID   uuid.UUID `json:"task_id"`
	ColumnID uuid.UUID `json:"column_id"`
	// RemovedIDs lists the task and all deleted subtasks
	RemovedIDs []uuid.UUID `json:"removed_ids"`
}

// ColumnCreatedPayload is the payload of ColumnCreated.
type ColumnCreatedPayload struct {
	ColumnID   uuid.UUID `json:"column_id"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	IsTerminal bool      `json:"is_terminal"`
}

// ColumnReorderedPayload is the payload of ColumnReordered.
type ColumnReorderedPayload struct {
	ColumnID     uuid.UUID `json:"column_id"`
	FromPosition int       `json:"from_position"`
	ToPosition   int       `json:"to_position"`
}

// ColumnDeletedPayload is the payload of ColumnDeleted.
type ColumnDeletedPayload struct {
	ColumnID uuid.UUID `json:"column_id"`
	Position int       `json:"position"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
