package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task. The caller is responsible for having chosen a
	// free position (normally the column's current count).
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves every mutable field of the task (column, position, status,
	// parent, completion, timestamps).
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateCompletion writes only the completion percentage and updated_at
	// of a task. Ancestors are refreshed through it because their column is
	// not locked, so a full-row write could restore a stale position.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateCompletion(ctx context.Context, id uuid.UUID, percentage int, updatedAt time.Time) error

	// Delete removes a task. The caller closes the gap it leaves.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByColumn returns the column's tasks ordered by position.
	ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Task, error)

	// ListChildren returns the direct children of a task, ordered by creation
	// time. Callers needing board order sort by column and position.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error)

	// CountByColumn returns the number of tasks in the column.
	CountByColumn(ctx context.Context, columnID uuid.UUID) (int, error)

	// ShiftPositions adds delta to the position of every task of the column
	// whose position lies in r, in a single atomic statement. It returns the
	// number of tasks shifted.
	ShiftPositions(ctx context.Context, columnID uuid.UUID, r domain.PositionRange, delta int) (int64, error)
}
