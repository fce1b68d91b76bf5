package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// ColumnStore defines the interface for column persistence. Columns are the
// containers of task positions and are themselves positioned within a board.
type ColumnStore interface {
	// Create saves a new column. The caller is responsible for having opened
	// a gap at the column's position.
	Create(ctx context.Context, column *domain.Column) error

	// GetByID retrieves a column by its ID.
	// Returns ErrColumnNotFound if the column does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error)

	// GetForUpdate retrieves a column and locks its row until the surrounding
	// transaction ends. Every change to the task positions of a column is
	// made while holding this lock.
	// Returns ErrColumnNotFound if the column does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Column, error)

	// Update saves the column's mutable attributes (name, position, capacity).
	// Returns ErrColumnNotFound if the column does not exist.
	Update(ctx context.Context, column *domain.Column) error

	// Delete removes a column. The caller must have verified it holds no tasks.
	// Returns ErrColumnNotFound if the column does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByBoard returns the board's columns ordered by position.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error)

	// CountByBoard returns the number of columns on the board.
	CountByBoard(ctx context.Context, boardID uuid.UUID) (int, error)

	// ShiftPositions adds delta to the position of every column of the board
	// whose position lies in r, in a single atomic statement. It returns the
	// number of columns shifted.
	ShiftPositions(ctx context.Context, boardID uuid.UUID, r domain.PositionRange, delta int) (int64, error)
}
