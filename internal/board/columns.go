package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// ColumnSpec describes a column to create.
type ColumnSpec struct {
	Name       string
	IsTerminal bool
	Capacity   *int
}

// DefaultColumns is the lane set of a board created with defaults.
var DefaultColumns = []ColumnSpec{
	{Name: "To Do"},
	{Name: "In Progress"},
	{Name: "In Review"},
	{Name: "Done", IsTerminal: true},
}

// CreateBoard creates a board with the given columns at positions 0..n-1.
func (e *Engine) CreateBoard(
	ctx context.Context,
	s store.Stores,
	name string,
	columns []ColumnSpec,
) (*domain.Board, []*domain.Column, error) {
	board, err := domain.NewBoard(name)
	if err != nil {
		return nil, nil, invalid(err)
	}

	created := make([]*domain.Column, 0, len(columns))
	for i, spec := range columns {
		column, err := domain.NewColumn(board.ID, spec.Name, i, spec.IsTerminal, spec.Capacity)
		if err != nil {
			return nil, nil, invalid(err)
		}
		created = append(created, column)
	}

	if err := s.Boards.Create(ctx, board); err != nil {
		return nil, nil, fmt.Errorf("failed to create board: %w", err)
	}
	for _, column := range created {
		if err := s.Columns.Create(ctx, column); err != nil {
			return nil, nil, fmt.Errorf("failed to create column %q: %w", column.Name, err)
		}
	}

	logger.FromContextOrDefault(ctx, e.logger).Debug("board created",
		slog.String("board_id", board.ID.String()),
		slog.Int("columns", len(created)))
	return board, created, nil
}

// CreateColumn adds a column to a board. With a nil position the column is
// appended; otherwise the columns at and after position move right by one.
func (e *Engine) CreateColumn(
	ctx context.Context,
	s store.Stores,
	boardID uuid.UUID,
	spec ColumnSpec,
	position *int,
) (*domain.Column, error) {
	if _, err := s.Boards.GetForUpdate(ctx, boardID); err != nil {
		return nil, err
	}

	count, err := s.Columns.CountByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	at := count
	if position != nil {
		at = *position
	}
	if at < 0 || at > count {
		return nil, positionError(at, count)
	}

	column, err := domain.NewColumn(boardID, spec.Name, at, spec.IsTerminal, spec.Capacity)
	if err != nil {
		return nil, invalid(err)
	}

	if _, err := NewPositionShifter(s.Columns, "column", e.logger).ShiftFrom(ctx, boardID, at, 1); err != nil {
		return nil, err
	}
	if err := s.Columns.Create(ctx, column); err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	logger.FromContextOrDefault(ctx, e.logger).Debug("column created",
		slog.String("board_id", boardID.String()),
		slog.String("column_id", column.ID.String()),
		slog.Int("position", at))
	return column, nil
}

// ColumnPatch lists the mutable column fields. Nil fields are left alone;
// ClearCapacity removes the WIP limit.
type ColumnPatch struct {
	Name          *string
	Capacity      *int
	ClearCapacity bool
}

// UpdateColumn applies patch to a column. The terminal flag and position are
// not editable here.
func (e *Engine) UpdateColumn(
	ctx context.Context,
	s store.Stores,
	columnID uuid.UUID,
	patch ColumnPatch,
) (*domain.Column, error) {
	column, err := s.Columns.GetForUpdate(ctx, columnID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	if patch.Name != nil {
		if err := column.Rename(*patch.Name, now); err != nil {
			return nil, invalid(err)
		}
	}
	switch {
	case patch.ClearCapacity:
		err = column.SetCapacity(nil, now)
	case patch.Capacity != nil:
		err = column.SetCapacity(patch.Capacity, now)
	}
	if err != nil {
		return nil, invalid(err)
	}

	if err := s.Columns.Update(ctx, column); err != nil {
		return nil, fmt.Errorf("failed to update column: %w", err)
	}
	return column, nil
}

// DeleteColumn removes an empty column and closes the gap it leaves on its
// board. A column that still holds tasks is rejected with ErrColumnNotEmpty.
func (e *Engine) DeleteColumn(ctx context.Context, s store.Stores, columnID uuid.UUID) (*domain.Column, error) {
	snapshot, err := s.Columns.GetByID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Boards.GetForUpdate(ctx, snapshot.BoardID); err != nil {
		return nil, err
	}
	column, err := s.Columns.GetForUpdate(ctx, columnID)
	if err != nil {
		return nil, err
	}

	count, err := s.Tasks.CountByColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %d tasks", ErrColumnNotEmpty, count)
	}

	if err := s.Columns.Delete(ctx, columnID); err != nil {
		return nil, fmt.Errorf("failed to delete column: %w", err)
	}
	if _, err := NewPositionShifter(s.Columns, "column", e.logger).
		ShiftFrom(ctx, column.BoardID, column.Position+1, -1); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, e.logger).Debug("column deleted",
		slog.String("board_id", column.BoardID.String()),
		slog.String("column_id", columnID.String()),
		slog.Int("position", column.Position))
	return column, nil
}
