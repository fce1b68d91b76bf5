package board

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// ColumnView is a column with its ordered tasks.
type ColumnView struct {
	Column       *domain.Column
	Tasks        []*domain.Task
	TaskCount    int
	OverCapacity bool
}

// BoardView is a board with its ordered columns.
type BoardView struct {
	Board   *domain.Board
	Columns []ColumnView
}

// GetBoard loads a board, its columns in position order and each column's
// tasks in position order. Task counts are derived from the loaded tasks.
func (e *Engine) GetBoard(ctx context.Context, s store.Stores, boardID uuid.UUID) (*BoardView, error) {
	board, err := s.Boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	columns, err := s.Columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	view := &BoardView{Board: board, Columns: make([]ColumnView, 0, len(columns))}
	for _, column := range columns {
		tasks, err := s.Tasks.ListByColumn(ctx, column.ID)
		if err != nil {
			return nil, err
		}
		view.Columns = append(view.Columns, ColumnView{
			Column:       column,
			Tasks:        tasks,
			TaskCount:    len(tasks),
			OverCapacity: column.IsOverCapacity(len(tasks)),
		})
	}
	return view, nil
}
