package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/events"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// BoardService provides the board, column and task operations of the API.
// Every mutating operation is atomic: it either commits completely or leaves
// the board unchanged.
type BoardService interface {
	// CreateBoard creates a board, optionally with the default lane set.
	CreateBoard(ctx context.Context, name string, withDefaultColumns bool) (*board.BoardView, error)

	// GetBoard returns a board with its columns and tasks in position order.
	GetBoard(ctx context.Context, boardID uuid.UUID) (*board.BoardView, error)

	// CreateColumn inserts a column at position, or appends it when position is nil.
	CreateColumn(ctx context.Context, boardID uuid.UUID, spec board.ColumnSpec, position *int) (*domain.Column, error)

	// ReorderColumn moves a column to a new position on its board.
	ReorderColumn(ctx context.Context, boardID, columnID uuid.UUID, position int) (*board.ReorderResult, error)

	// UpdateColumn renames a column or changes its WIP limit.
	UpdateColumn(ctx context.Context, columnID uuid.UUID, patch board.ColumnPatch) (*domain.Column, error)

	// DeleteColumn removes an empty column.
	DeleteColumn(ctx context.Context, columnID uuid.UUID) error

	// CreateTask creates a task, and optionally its subtasks, at the end of a column.
	CreateTask(ctx context.Context, columnID uuid.UUID, spec board.TaskSpec) (*board.CreateResult, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks returns the tasks of a column in position order.
	ListTasks(ctx context.Context, columnID uuid.UUID) ([]*domain.Task, error)

	// GetSubtasks returns the direct children of a task.
	GetSubtasks(ctx context.Context, taskID uuid.UUID) ([]*domain.Task, error)

	// MoveTask relocates a task; a nil position appends it to the target column.
	MoveTask(ctx context.Context, taskID, columnID uuid.UUID, position *int) (*board.MoveResult, error)

	// UpdateTaskStatus changes the status of a task in a non-terminal column.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus) (*board.StatusResult, error)

	// DeleteTask deletes a task and its subtasks.
	DeleteTask(ctx context.Context, taskID uuid.UUID) (*board.DeleteResult, error)
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	uow     store.UnitOfWork
	engine  *board.Engine
	emitter events.EventEmitter
	retry   RetryConfig
	logger  *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil. A nil
// emitter disables events.
func NewBoardService(
	uow store.UnitOfWork,
	engine *board.Engine,
	emitter events.EventEmitter,
	retry RetryConfig,
	logger *slog.Logger,
) (BoardService, error) {
	if uow == nil {
		return nil, fmt.Errorf("%w: uow cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &boardServiceImpl{
		uow:     uow,
		engine:  engine,
		emitter: emitter,
		retry:   retry,
		logger:  logger.With(slog.String("component", "board_service")),
	}, nil
}

// CreateBoard implements BoardService.CreateBoard
func (s *boardServiceImpl) CreateBoard(
	ctx context.Context,
	name string,
	withDefaultColumns bool,
) (*board.BoardView, error) {
	var specs []board.ColumnSpec
	if withDefaultColumns {
		specs = board.DefaultColumns
	}

	var view *board.BoardView
	err := s.runInTx(ctx, "create_board", func(ctx context.Context, st store.Stores) error {
		b, columns, err := s.engine.CreateBoard(ctx, st, name, specs)
		if err != nil {
			return err
		}
		view = &board.BoardView{Board: b, Columns: make([]board.ColumnView, 0, len(columns))}
		for _, column := range columns {
			view.Columns = append(view.Columns, board.ColumnView{Column: column, Tasks: []*domain.Task{}})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("board created",
		slog.String("board_id", view.Board.ID.String()),
		slog.Int("columns", len(view.Columns)))
	return view, nil
}

// GetBoard implements BoardService.GetBoard
func (s *boardServiceImpl) GetBoard(ctx context.Context, boardID uuid.UUID) (*board.BoardView, error) {
	var view *board.BoardView
	err := s.runInTx(ctx, "get_board", func(ctx context.Context, st store.Stores) error {
		var err error
		view, err = s.engine.GetBoard(ctx, st, boardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// CreateColumn implements BoardService.CreateColumn
func (s *boardServiceImpl) CreateColumn(
	ctx context.Context,
	boardID uuid.UUID,
	spec board.ColumnSpec,
	position *int,
) (*domain.Column, error) {
	var column *domain.Column
	err := s.runInTx(ctx, "create_column", func(ctx context.Context, st store.Stores) error {
		var err error
		column, err = s.engine.CreateColumn(ctx, st, boardID, spec, position)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.ColumnCreated, boardID, events.ColumnCreatedPayload{
		ColumnID:   column.ID,
		Name:       column.Name,
		Position:   column.Position,
		IsTerminal: column.IsTerminal,
	})
	return column, nil
}

// ReorderColumn implements BoardService.ReorderColumn
func (s *boardServiceImpl) ReorderColumn(
	ctx context.Context,
	boardID, columnID uuid.UUID,
	position int,
) (*board.ReorderResult, error) {
	var result *board.ReorderResult
	err := s.runInTx(ctx, "reorder_column", func(ctx context.Context, st store.Stores) error {
		var err error
		result, err = s.engine.ReorderColumn(ctx, st, boardID, columnID, position)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Moved {
		s.emit(ctx, events.ColumnReordered, boardID, events.ColumnReorderedPayload{
			ColumnID:     columnID,
			FromPosition: result.FromPosition,
			ToPosition:   result.Column.Position,
		})
	}
	return result, nil
}

// UpdateColumn implements BoardService.UpdateColumn
func (s *boardServiceImpl) UpdateColumn(
	ctx context.Context,
	columnID uuid.UUID,
	patch board.ColumnPatch,
) (*domain.Column, error) {
	var column *domain.Column
	err := s.runInTx(ctx, "update_column", func(ctx context.Context, st store.Stores) error {
		var err error
		column, err = s.engine.UpdateColumn(ctx, st, columnID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return column, nil
}

// DeleteColumn implements BoardService.DeleteColumn
func (s *boardServiceImpl) DeleteColumn(ctx context.Context, columnID uuid.UUID) error {
	var column *domain.Column
	err := s.runInTx(ctx, "delete_column", func(ctx context.Context, st store.Stores) error {
		var err error
		column, err = s.engine.DeleteColumn(ctx, st, columnID)
		return err
	})
	if err != nil {
		return err
	}

	s.emit(ctx, events.ColumnDeleted, column.BoardID, events.ColumnDeletedPayload{
		ColumnID: column.ID,
		Position: column.Position,
	})
	return nil
}

// CreateTask implements BoardService.CreateTask
func (s *boardServiceImpl) CreateTask(
	ctx context.Context,
	columnID uuid.UUID,
	spec board.TaskSpec,
) (*board.CreateResult, error) {
	var result *board.CreateResult
	err := s.runInTx(ctx, "create_task", func(ctx context.Context, st store.Stores) error {
		var err error
		result, err = s.engine.CreateTask(ctx, st, columnID, spec)
		return err
	})
	if err != nil {
		return nil, err
	}

	subtaskIDs := make([]uuid.UUID, 0, len(result.Subtasks))
	for _, sub := range result.Subtasks {
		subtaskIDs = append(subtaskIDs, sub.ID)
	}
	s.emit(ctx, events.TaskCreated, result.Column.BoardID, events.TaskCreatedPayload{
		TaskID:           result.Task.ID,
		ColumnID:         result.Task.ColumnID,
		ParentID:         result.Task.ParentID,
		Title:            result.Task.Title,
		Position:         result.Task.Position,
		Status:           result.Task.Status,
		SubtaskIDs:       subtaskIDs,
		CapacityExceeded: result.CapacityExceeded,
	})
	return result, nil
}

// GetTask implements BoardService.GetTask
func (s *boardServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := s.runInTx(ctx, "get_task", func(ctx context.Context, st store.Stores) error {
		var err error
		task, err = s.engine.GetTask(ctx, st, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks implements BoardService.ListTasks
func (s *boardServiceImpl) ListTasks(ctx context.Context, columnID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.runInTx(ctx, "list_tasks", func(ctx context.Context, st store.Stores) error {
		var err error
		tasks, err = s.engine.ListTasks(ctx, st, columnID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetSubtasks implements BoardService.GetSubtasks
func (s *boardServiceImpl) GetSubtasks(ctx context.Context, taskID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.runInTx(ctx, "get_subtasks", func(ctx context.Context, st store.Stores) error {
		var err error
		tasks, err = s.engine.GetSubtasks(ctx, st, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MoveTask implements BoardService.MoveTask
func (s *boardServiceImpl) MoveTask(
	ctx context.Context,
	taskID, columnID uuid.UUID,
	position *int,
) (*board.MoveResult, error) {
	var result *board.MoveResult
	err := s.runInTx(ctx, "move_task", func(ctx context.Context, st store.Stores) error {
		var err error
		result, err = s.engine.MoveTask(ctx, st, taskID, columnID, position)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.CapacityExceeded {
		logger.FromContextOrDefault(ctx, s.logger).Warn("column over capacity after move",
			slog.String("task_id", taskID.String()),
			slog.String("column_id", result.ToColumn.ID.String()),
			slog.String("column", result.ToColumn.Name))
	}
	if result.Moved {
		s.emit(ctx, events.TaskMoved, result.ToColumn.BoardID, events.TaskMovedPayload{
			TaskID:           result.Task.ID,
			ParentID:         result.Task.ParentID,
			FromColumnID:     result.FromColumnID,
			ToColumnID:       result.Task.ColumnID,
			FromPosition:     result.FromPosition,
			ToPosition:       result.Task.Position,
			FromStatus:       result.FromStatus,
			ToStatus:         result.Task.Status,
			CapacityExceeded: result.CapacityExceeded,
		})
	}
	return result, nil
}

// UpdateTaskStatus implements BoardService.UpdateTaskStatus
func (s *boardServiceImpl) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status domain.TaskStatus,
) (*board.StatusResult, error) {
	var result *board.StatusResult
	err := s.runInTx(ctx, "update_task_status", func(ctx context.Context, st store.Stores) error {
		var err error
		result, err = s.engine.UpdateTaskStatus(ctx, st, taskID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Changed() {
		s.emit(ctx, events.TaskStatusChanged, result.Column.BoardID, events.TaskStatusChangedPayload{
			TaskID:     result.Task.ID,
			ColumnID:   result.Task.ColumnID,
			FromStatus: result.FromStatus,
			ToStatus:   result.Task.Status,
		})
	}
	return result, nil
}

// DeleteTask implements BoardService.DeleteTask
func (s *boardServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) (*board.DeleteResult, error) {
	var result *board.DeleteResult
	err := s.runInTx(ctx, "delete_task", func(ctx context.Context, st store.Stores) error {
		var err error
		result, err = s.engine.DeleteTask(ctx, st, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	removed := make([]uuid.UUID, 0, len(result.Removed))
	for _, t := range result.Removed {
		removed = append(removed, t.ID)
	}
	s.emit(ctx, events.TaskDeleted, result.Column.BoardID, events.TaskDeletedPayload{
		TaskID:     result.Task.ID,
		ColumnID:   result.Task.ColumnID,
		RemovedIDs: removed,
	})
	return result, nil
}

// emit publishes an event for a committed change. The change already
// happened, so a failure is logged and otherwise ignored.
func (s *boardServiceImpl) emit(ctx context.Context, eventType events.Type, boardID uuid.UUID, payload interface{}) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, boardID, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit event",
			slog.String("event_type", string(eventType)),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
