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

// MoveResult describes a completed task relocation.
type MoveResult struct {
	// Task is the moved task as persisted.
	Task *domain.Task

	FromColumnID uuid.UUID
	FromPosition int
	FromStatus   domain.TaskStatus

	// ToColumn is the destination column.
	ToColumn *domain.Column

	// Moved is false when the request named the task's current slot; nothing
	// was written in that case.
	Moved bool

	// CapacityExceeded is set when the destination now holds more tasks than
	// its advisory WIP limit.
	CapacityExceeded bool

	// Ancestors holds the ancestors whose completion changed, nearest first.
	Ancestors []*domain.Task
}

// CrossColumn reports whether the task changed column.
func (r *MoveResult) CrossColumn() bool {
	return r.FromColumnID != r.Task.ColumnID
}

// StatusChanged reports whether the move changed the task's status.
func (r *MoveResult) StatusChanged() bool {
	return r.FromStatus != r.Task.Status
}

// MoveTask relocates a task to targetColumnID. With a nil targetPosition the
// task goes to the end of the target column. Positions in the source and
// target columns stay contiguous, the task's status is reconciled against the
// destination, and the completion of its ancestors is recomputed.
//
// Input errors (cross-board target, position out of range) are returned
// before anything is written.
func (e *Engine) MoveTask(
	ctx context.Context,
	s store.Stores,
	taskID uuid.UUID,
	targetColumnID uuid.UUID,
	targetPosition *int,
) (*MoveResult, error) {
	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.String("task_id", taskID.String()),
		slog.String("target_column_id", targetColumnID.String()))

	snapshot, err := s.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	columns, err := e.lockColumns(ctx, s.Columns, snapshot.ColumnID, targetColumnID)
	if err != nil {
		return nil, err
	}
	source, target := columns[snapshot.ColumnID], columns[targetColumnID]

	task, err := reloadTask(ctx, s.Tasks, taskID, source.ID)
	if err != nil {
		return nil, err
	}

	if source.BoardID != target.BoardID {
		log.Warn("rejected cross-board move",
			slog.String("source_board_id", source.BoardID.String()),
			slog.String("target_board_id", target.BoardID.String()))
		return nil, ErrCrossBoardMove
	}

	result := &MoveResult{
		FromColumnID: source.ID,
		FromPosition: task.Position,
		FromStatus:   task.Status,
		ToColumn:     target,
	}

	tasks := NewPositionShifter(s.Tasks, "task", e.logger)
	var position, targetCount int

	if source.ID != target.ID {
		targetCount, err = s.Tasks.CountByColumn(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		position = targetCount
		if targetPosition != nil {
			position = *targetPosition
		}
		if position < 0 || position > targetCount {
			return nil, positionError(position, targetCount)
		}

		if _, err := tasks.ShiftFrom(ctx, source.ID, task.Position+1, -1); err != nil {
			return nil, err
		}
		if _, err := tasks.ShiftFrom(ctx, target.ID, position, 1); err != nil {
			return nil, err
		}
		targetCount++
	} else {
		targetCount, err = s.Tasks.CountByColumn(ctx, source.ID)
		if err != nil {
			return nil, err
		}
		position = targetCount - 1
		if targetPosition != nil {
			position = *targetPosition
		}
		if position < 0 || position > targetCount-1 {
			return nil, positionError(position, targetCount-1)
		}

		if position == task.Position {
			result.Task = task
			log.Debug("move is a no-op", slog.Int("position", position))
			return result, nil
		}

		if position < task.Position {
			_, err = tasks.ShiftRange(ctx, source.ID, position, task.Position-1, 1)
		} else {
			_, err = tasks.ShiftRange(ctx, source.ID, task.Position+1, position, -1)
		}
		if err != nil {
			return nil, err
		}
	}

	now := e.now()
	task.ColumnID = target.ID
	task.Position = position
	task.UpdatedAt = now

	status := domain.ReconcileStatus(e.policy, result.FromStatus, target)
	if err := task.TransitionTo(status, now); err != nil {
		return nil, err
	}
	if err := e.aggregator.refreshOwnCompletion(ctx, s.Tasks, task); err != nil {
		return nil, err
	}

	if err := s.Tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save moved task: %w", err)
	}
	result.Task = task
	result.Moved = true

	if task.HasParent() {
		result.Ancestors, err = e.aggregator.RecomputeAncestors(ctx, s.Tasks, *task.ParentID)
		if err != nil {
			return nil, err
		}
	}

	if target.IsOverCapacity(targetCount) {
		result.CapacityExceeded = true
		log.Warn("column over capacity",
			slog.Int("tasks", targetCount),
			slog.Int("capacity", *target.Capacity))
	}

	log.Debug("task moved",
		slog.String("from_column_id", result.FromColumnID.String()),
		slog.Int("from_position", result.FromPosition),
		slog.Int("to_position", position),
		slog.String("from_status", string(result.FromStatus)),
		slog.String("to_status", string(task.Status)))
	return result, nil
}
