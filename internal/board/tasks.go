package board

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// TaskSpec describes a task to create.
type TaskSpec struct {
	Title    string
	ParentID *uuid.UUID
	// Subtasks are created as children of the new task, right after it in
	// the same column.
	Subtasks []string
}

// CreateResult is the outcome of CreateTask.
type CreateResult struct {
	Task             *domain.Task
	Subtasks         []*domain.Task
	Column           *domain.Column
	Ancestors        []*domain.Task
	CapacityExceeded bool
}

// CreateTask appends a task (and its subtasks) to the end of a column. Tasks
// created in a terminal column start out Done; elsewhere they start as Todo.
func (e *Engine) CreateTask(
	ctx context.Context,
	s store.Stores,
	columnID uuid.UUID,
	spec TaskSpec,
) (*CreateResult, error) {
	column, err := s.Columns.GetForUpdate(ctx, columnID)
	if err != nil {
		return nil, err
	}

	if spec.ParentID != nil {
		parent, err := s.Tasks.GetByID(ctx, *spec.ParentID)
		if err != nil {
			return nil, err
		}
		parentColumn, err := s.Columns.GetByID(ctx, parent.ColumnID)
		if err != nil {
			return nil, err
		}
		if parentColumn.BoardID != column.BoardID {
			return nil, ErrParentOnOtherBoard
		}
	}

	count, err := s.Tasks.CountByColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	task, err := e.newTask(column, spec.Title, count, spec.ParentID, now)
	if err != nil {
		return nil, err
	}
	subtasks := make([]*domain.Task, 0, len(spec.Subtasks))
	for i, title := range spec.Subtasks {
		subtask, err := e.newTask(column, title, count+1+i, &task.ID, now)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, subtask)
	}

	if err := s.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	for _, subtask := range subtasks {
		if err := s.Tasks.Create(ctx, subtask); err != nil {
			return nil, fmt.Errorf("failed to create subtask: %w", err)
		}
	}

	result := &CreateResult{Task: task, Subtasks: subtasks, Column: column}

	if len(subtasks) > 0 {
		if task, _, err = e.aggregator.RecomputeCompletion(ctx, s.Tasks, task.ID); err != nil {
			return nil, err
		}
		result.Task = task
	}
	if task.HasParent() {
		if result.Ancestors, err = e.aggregator.RecomputeAncestors(ctx, s.Tasks, *task.ParentID); err != nil {
			return nil, err
		}
	}

	total := count + 1 + len(subtasks)
	if column.IsOverCapacity(total) {
		result.CapacityExceeded = true
		logger.FromContextOrDefault(ctx, e.logger).Warn("column over capacity",
			slog.String("column_id", column.ID.String()),
			slog.Int("tasks", total),
			slog.Int("capacity", *column.Capacity))
	}
	return result, nil
}

func (e *Engine) newTask(
	column *domain.Column,
	title string,
	position int,
	parentID *uuid.UUID,
	now time.Time,
) (*domain.Task, error) {
	task, err := domain.NewTask(column.ID, title, position, parentID)
	if err != nil {
		return nil, invalid(err)
	}
	task.CreatedAt, task.UpdatedAt = now, now
	if column.IsTerminal {
		if err := task.TransitionTo(domain.TaskStatusDone, now); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// StatusResult is the outcome of UpdateTaskStatus.
type StatusResult struct {
	Task       *domain.Task
	Column     *domain.Column
	FromStatus domain.TaskStatus
	Ancestors  []*domain.Task
}

// Changed reports whether the status was actually modified.
func (r *StatusResult) Changed() bool {
	return r.FromStatus != r.Task.Status
}

// UpdateTaskStatus sets the status of a task in a non-terminal column. Done
// is not accepted: a task becomes Done by moving into a terminal column.
func (e *Engine) UpdateTaskStatus(
	ctx context.Context,
	s store.Stores,
	taskID uuid.UUID,
	status domain.TaskStatus,
) (*StatusResult, error) {
	if !status.IsValid() {
		return nil, invalid(domain.ErrInvalidTaskStatus)
	}
	if status == domain.TaskStatusDone {
		return nil, ErrStatusRequiresMove
	}

	snapshot, err := s.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	column, err := s.Columns.GetForUpdate(ctx, snapshot.ColumnID)
	if err != nil {
		return nil, err
	}
	task, err := reloadTask(ctx, s.Tasks, taskID, column.ID)
	if err != nil {
		return nil, err
	}
	if column.IsTerminal {
		return nil, ErrStatusInTerminalColumn
	}

	result := &StatusResult{Task: task, Column: column, FromStatus: task.Status}
	if status == task.Status {
		return result, nil
	}

	if err := task.TransitionTo(status, e.now()); err != nil {
		return nil, invalid(err)
	}
	if err := s.Tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task status: %w", err)
	}
	if task.HasParent() {
		if result.Ancestors, err = e.aggregator.RecomputeAncestors(ctx, s.Tasks, *task.ParentID); err != nil {
			return nil, err
		}
	}

	logger.FromContextOrDefault(ctx, e.logger).Debug("task status changed",
		slog.String("task_id", taskID.String()),
		slog.String("from", string(result.FromStatus)),
		slog.String("to", string(status)))
	return result, nil
}

// DeleteResult is the outcome of DeleteTask.
type DeleteResult struct {
	Task *domain.Task
	// Column is the column the task was deleted from
	Column *domain.Column
	// Removed lists every deleted task, the requested one last.
	Removed   []*domain.Task
	Ancestors []*domain.Task
}

// DeleteTask deletes a task together with its subtasks. Each deletion closes
// the gap it leaves in its column, and the surviving ancestors are
// recomputed.
func (e *Engine) DeleteTask(ctx context.Context, s store.Stores, taskID uuid.UUID) (*DeleteResult, error) {
	root, err := s.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	subtree, err := collectSubtree(ctx, s.Tasks, root)
	if err != nil {
		return nil, err
	}
	columnIDs := make([]uuid.UUID, 0, len(subtree))
	for _, t := range subtree {
		columnIDs = append(columnIDs, t.ColumnID)
	}
	locked, err := e.lockColumns(ctx, s.Columns, columnIDs...)
	if err != nil {
		return nil, err
	}
	if root, err = reloadTask(ctx, s.Tasks, taskID, root.ColumnID); err != nil {
		return nil, err
	}

	shifter := NewPositionShifter(s.Tasks, "task", e.logger)
	result := &DeleteResult{Task: root, Column: locked[root.ColumnID]}

	// Children come after their parents in subtree, so walking it backwards
	// deletes leaves first.
	for i := len(subtree) - 1; i >= 0; i-- {
		current, err := s.Tasks.GetByID(ctx, subtree[i].ID)
		if err != nil {
			return nil, err
		}
		if _, ok := locked[current.ColumnID]; !ok {
			return nil, fmt.Errorf("%w: task %s moved to column %s while waiting for locks",
				store.ErrConflict, current.ID, current.ColumnID)
		}
		if err := s.Tasks.Delete(ctx, current.ID); err != nil {
			return nil, fmt.Errorf("failed to delete task %s: %w", current.ID, err)
		}
		if _, err := shifter.ShiftFrom(ctx, current.ColumnID, current.Position+1, -1); err != nil {
			return nil, err
		}
		result.Removed = append(result.Removed, current)
	}

	if root.HasParent() {
		if result.Ancestors, err = e.aggregator.RecomputeAncestors(ctx, s.Tasks, *root.ParentID); err != nil {
			return nil, err
		}
	}

	logger.FromContextOrDefault(ctx, e.logger).Debug("task deleted",
		slog.String("task_id", taskID.String()),
		slog.Int("removed", len(result.Removed)))
	return result, nil
}

// collectSubtree returns root followed by all of its descendants in
// breadth-first order.
func collectSubtree(ctx context.Context, tasks store.TaskStore, root *domain.Task) ([]*domain.Task, error) {
	subtree := []*domain.Task{root}
	seen := map[uuid.UUID]bool{root.ID: true}
	for i := 0; i < len(subtree); i++ {
		children, err := tasks.ListChildren(ctx, subtree[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list children of %s: %w", subtree[i].ID, err)
		}
		for _, child := range children {
			if seen[child.ID] {
				return nil, fmt.Errorf("%w: parent cycle at task %s", store.ErrInvalidEntity, child.ID)
			}
			seen[child.ID] = true
			subtree = append(subtree, child)
		}
	}
	return subtree, nil
}

// GetTask returns a single task.
func (e *Engine) GetTask(ctx context.Context, s store.Stores, taskID uuid.UUID) (*domain.Task, error) {
	return s.Tasks.GetByID(ctx, taskID)
}

// ListTasks returns a column's tasks in position order.
func (e *Engine) ListTasks(ctx context.Context, s store.Stores, columnID uuid.UUID) ([]*domain.Task, error) {
	if _, err := s.Columns.GetByID(ctx, columnID); err != nil {
		return nil, err
	}
	return s.Tasks.ListByColumn(ctx, columnID)
}

// GetSubtasks returns the direct children of a task in board order.
func (e *Engine) GetSubtasks(ctx context.Context, s store.Stores, taskID uuid.UUID) ([]*domain.Task, error) {
	if _, err := s.Tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	children, err := s.Tasks.ListChildren(ctx, taskID)
	if err != nil {
		return nil, err
	}

	columnPositions := make(map[uuid.UUID]int)
	for _, child := range children {
		if _, ok := columnPositions[child.ColumnID]; ok {
			continue
		}
		column, err := s.Columns.GetByID(ctx, child.ColumnID)
		if err != nil {
			return nil, err
		}
		columnPositions[child.ColumnID] = column.Position
	}

	// board order: column position first, then position within the column
	slices.SortStableFunc(children, func(a, b *domain.Task) int {
		if c := cmp.Compare(columnPositions[a.ColumnID], columnPositions[b.ColumnID]); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return children, nil
}
