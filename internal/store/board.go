package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// BoardStore defines the interface for board persistence.
type BoardStore interface {
	// Create saves a new board.
	Create(ctx context.Context, board *domain.Board) error

	// GetByID retrieves a board by its ID.
	// Returns ErrBoardNotFound if the board does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// GetForUpdate retrieves a board and locks its row until the surrounding
	// transaction ends. Column reordering, insertion and removal lock the
	// board first so that shifts of column positions are serialized.
	// Returns ErrBoardNotFound if the board does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Board, error)
}
