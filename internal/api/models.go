package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// Request payloads

// CreateBoardRequest defines the payload for POST /boards.
type CreateBoardRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	// DefaultColumns overrides the configured default when set.
	DefaultColumns *bool `json:"default_columns,omitempty"`
}

// CreateColumnRequest defines the payload for POST /boards/{boardID}/columns.
type CreateColumnRequest struct {
	Name       string `json:"name"                validate:"required,max=100"`
	IsTerminal bool   `json:"is_terminal"`
	Capacity   *int   `json:"capacity,omitempty"  validate:"omitempty,gt=0"`
	Position   *int   `json:"position,omitempty"  validate:"omitempty,gte=0"`
}

// ReorderColumnRequest defines the payload for PUT /boards/{boardID}/columns/{columnID}/position.
type ReorderColumnRequest struct {
	Position *int `json:"position" validate:"required"`
}

// UpdateColumnRequest defines the payload for PATCH /columns/{columnID}.
type UpdateColumnRequest struct {
	Name          *string `json:"name,omitempty"     validate:"omitempty,min=1,max=100"`
	Capacity      *int    `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	ClearCapacity bool    `json:"clear_capacity"`
}

// CreateTaskRequest defines the payload for POST /columns/{columnID}/tasks.
type CreateTaskRequest struct {
	Title    string   `json:"title"               validate:"required,max=500"`
	ParentID *string  `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	Subtasks []string `json:"subtasks,omitempty"  validate:"omitempty,max=50,dive,required,max=500"`
}

// MoveTaskRequest defines the payload for POST /tasks/{taskID}/move. A
// missing position appends the task to the target column.
type MoveTaskRequest struct {
	ColumnID string `json:"column_id"          validate:"required,uuid"`
	Position *int   `json:"position,omitempty"`
}

// UpdateTaskStatusRequest defines the payload for PUT /tasks/{taskID}/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress in_review blocked done cancelled"`
}

// Response payloads

// TaskResponse represents a task.
type TaskResponse struct {
	ID                   uuid.UUID         `json:"id"`
	ColumnID             uuid.UUID         `json:"column_id"`
	ParentID             *uuid.UUID        `json:"parent_id,omitempty"`
	Title                string            `json:"title"`
	Position             int               `json:"position"`
	Status               domain.TaskStatus `json:"status"`
	CompletionPercentage int               `json:"completion_percentage"`
	CompletedAt          *time.Time        `json:"completed_at,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// ColumnResponse represents a column.
type ColumnResponse struct {
	ID         uuid.UUID `json:"id"`
	BoardID    uuid.UUID `json:"board_id"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	IsTerminal bool      `json:"is_terminal"`
	Capacity   *int      `json:"capacity,omitempty"`
}

// ColumnViewResponse is a column of a board view with its ordered tasks.
type ColumnViewResponse struct {
	ColumnResponse
	TaskCount    int            `json:"task_count"`
	OverCapacity bool           `json:"over_capacity"`
	Tasks        []TaskResponse `json:"tasks"`
}

// BoardResponse represents a board with its ordered columns.
type BoardResponse struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Columns   []ColumnViewResponse `json:"columns"`
}

// ReorderColumnResponse is returned by a column reorder.
type ReorderColumnResponse struct {
	Column  ColumnResponse   `json:"column"`
	Moved   bool             `json:"moved"`
	Columns []ColumnResponse `json:"columns"`
}

// CreateTaskResponse is returned by task creation.
type CreateTaskResponse struct {
	Task             TaskResponse   `json:"task"`
	Subtasks         []TaskResponse `json:"subtasks"`
	Ancestors        []TaskResponse `json:"ancestors"`
	CapacityExceeded bool           `json:"capacity_exceeded"`
}

// MoveTaskResponse is returned by a task move.
type MoveTaskResponse struct {
	Task             TaskResponse      `json:"task"`
	FromColumnID     uuid.UUID         `json:"from_column_id"`
	FromPosition     int               `json:"from_position"`
	FromStatus       domain.TaskStatus `json:"from_status"`
	Moved            bool              `json:"moved"`
	CapacityExceeded bool              `json:"capacity_exceeded"`
	Ancestors        []TaskResponse    `json:"ancestors"`
}

// TaskStatusResponse is returned by a status change.
type TaskStatusResponse struct {
	Task       TaskResponse      `json:"task"`
	FromStatus domain.TaskStatus `json:"from_status"`
	Ancestors  []TaskResponse    `json:"ancestors"`
}

// DeleteTaskResponse is returned by a task deletion.
type DeleteTaskResponse struct {
	RemovedIDs []uuid.UUID    `json:"removed_ids"`
	Ancestors  []TaskResponse `json:"ancestors"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:                   t.ID,
		ColumnID:             t.ColumnID,
		ParentID:             t.ParentID,
		Title:                t.Title,
		Position:             t.Position,
		Status:               t.Status,
		CompletionPercentage: t.CompletionPercentage,
		CompletedAt:          t.CompletedAt,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func columnToResponse(c *domain.Column) ColumnResponse {
	return ColumnResponse{
		ID:         c.ID,
		BoardID:    c.BoardID,
		Name:       c.Name,
		Position:   c.Position,
		IsTerminal: c.IsTerminal,
		Capacity:   c.Capacity,
	}
}

func columnsToResponse(columns []*domain.Column) []ColumnResponse {
	out := make([]ColumnResponse, 0, len(columns))
	for _, c := range columns {
		out = append(out, columnToResponse(c))
	}
	return out
}

func boardToResponse(view *board.BoardView) BoardResponse {
	resp := BoardResponse{
		ID:        view.Board.ID,
		Name:      view.Board.Name,
		CreatedAt: view.Board.CreatedAt,
		UpdatedAt: view.Board.UpdatedAt,
		Columns:   make([]ColumnViewResponse, 0, len(view.Columns)),
	}
	for _, cv := range view.Columns {
		resp.Columns = append(resp.Columns, ColumnViewResponse{
			ColumnResponse: columnToResponse(cv.Column),
			TaskCount:      cv.TaskCount,
			OverCapacity:   cv.OverCapacity,
			Tasks:          tasksToResponse(cv.Tasks),
		})
	}
	return resp
}
