package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

type boardStore struct {
	data *dataset
}

var _ store.BoardStore = (*boardStore)(nil)

func (s *boardStore) Create(_ context.Context, board *domain.Board) error {
	if err := board.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if _, exists := s.data.boards[board.ID]; exists {
		return fmt.Errorf("%w: board %s", store.ErrDuplicate, board.ID)
	}
	b := *board
	s.data.boards[board.ID] = &b
	return nil
}

func (s *boardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Board, error) {
	b, ok := s.data.boards[id]
	if !ok {
		return nil, store.ErrBoardNotFound
	}
	board := *b
	return &board, nil
}

// GetForUpdate needs no extra locking: the whole unit of work already holds
// the store lock.
func (s *boardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return s.GetByID(ctx, id)
}
