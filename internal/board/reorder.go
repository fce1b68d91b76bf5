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

// ReorderResult is the outcome of ReorderColumn.
type ReorderResult struct {
	Column       *domain.Column
	FromPosition int
	Moved        bool
	// Columns is the board's full column list in position order.
	Columns []*domain.Column
}

// ReorderColumn moves a column to newPosition on its board, shifting the
// columns in between by one. It returns the reordered column list so callers
// can render the board without another read.
func (e *Engine) ReorderColumn(
	ctx context.Context,
	s store.Stores,
	boardID uuid.UUID,
	columnID uuid.UUID,
	newPosition int,
) (*ReorderResult, error) {
	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.String("board_id", boardID.String()),
		slog.String("column_id", columnID.String()))

	if _, err := s.Boards.GetForUpdate(ctx, boardID); err != nil {
		return nil, err
	}

	column, err := s.Columns.GetForUpdate(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if column.BoardID != boardID {
		return nil, ErrColumnNotOnBoard
	}

	count, err := s.Columns.CountByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if newPosition < 0 || newPosition > count-1 {
		return nil, positionError(newPosition, count-1)
	}

	result := &ReorderResult{Column: column, FromPosition: column.Position}

	if newPosition != column.Position {
		shifter := NewPositionShifter(s.Columns, "column", e.logger)
		if newPosition < column.Position {
			_, err = shifter.ShiftRange(ctx, boardID, newPosition, column.Position-1, 1)
		} else {
			_, err = shifter.ShiftRange(ctx, boardID, column.Position+1, newPosition, -1)
		}
		if err != nil {
			return nil, err
		}

		column.Position = newPosition
		column.UpdatedAt = e.now()
		if err := s.Columns.Update(ctx, column); err != nil {
			return nil, fmt.Errorf("failed to save reordered column: %w", err)
		}
		result.Moved = true

		log.Debug("column reordered",
			slog.Int("from_position", result.FromPosition),
			slog.Int("to_position", newPosition))
	}

	result.Columns, err = s.Columns.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return result, nil
}
