package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

type columnStore struct {
	data *dataset
}

var _ store.ColumnStore = (*columnStore)(nil)

func (s *columnStore) Create(_ context.Context, column *domain.Column) error {
	if err := column.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if _, ok := s.data.boards[column.BoardID]; !ok {
		return fmt.Errorf("%w: board %s does not exist", store.ErrInvalidEntity, column.BoardID)
	}
	if _, exists := s.data.columns[column.ID]; exists {
		return fmt.Errorf("%w: column %s", store.ErrDuplicate, column.ID)
	}
	s.data.columns[column.ID] = column.Clone()
	return nil
}

func (s *columnStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Column, error) {
	col, ok := s.data.columns[id]
	if !ok {
		return nil, store.ErrColumnNotFound
	}
	return col.Clone(), nil
}

func (s *columnStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	return s.GetByID(ctx, id)
}

func (s *columnStore) Update(_ context.Context, column *domain.Column) error {
	existing, ok := s.data.columns[column.ID]
	if !ok {
		return store.ErrColumnNotFound
	}
	if err := column.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	updated := column.Clone()
	// board and terminal flag are fixed at creation
	updated.BoardID = existing.BoardID
	updated.IsTerminal = existing.IsTerminal
	updated.CreatedAt = existing.CreatedAt
	s.data.columns[column.ID] = updated
	return nil
}

func (s *columnStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.data.columns[id]; !ok {
		return store.ErrColumnNotFound
	}
	for _, t := range s.data.tasks {
		if t.ColumnID == id {
			return fmt.Errorf("%w: column %s is referenced by task %s", store.ErrInvalidEntity, id, t.ID)
		}
	}
	delete(s.data.columns, id)
	return nil
}

func (s *columnStore) ListByBoard(_ context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	columns := make([]*domain.Column, 0)
	for _, col := range s.data.columns {
		if col.BoardID == boardID {
			columns = append(columns, col.Clone())
		}
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i].Position != columns[j].Position {
			return columns[i].Position < columns[j].Position
		}
		return columns[i].ID.String() < columns[j].ID.String()
	})
	return columns, nil
}

func (s *columnStore) CountByBoard(_ context.Context, boardID uuid.UUID) (int, error) {
	n := 0
	for _, col := range s.data.columns {
		if col.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

func (s *columnStore) ShiftPositions(
	_ context.Context,
	boardID uuid.UUID,
	r domain.PositionRange,
	delta int,
) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	var matched []*domain.Column
	for _, col := range s.data.columns {
		if col.BoardID == boardID && r.Contains(col.Position) {
			if col.Position+delta < 0 {
				return 0, fmt.Errorf("%w: column %s would move to position %d",
					store.ErrInvalidEntity, col.ID, col.Position+delta)
			}
			matched = append(matched, col)
		}
	}
	for _, col := range matched {
		col.Position += delta
	}
	return int64(len(matched)), nil
}
