package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a store bound to the given transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

const taskColumns = `id, column_id, parent_id, title, position, status, completion_percentage, ` +
	`completed_at, created_at, updated_at`

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t           domain.Task
		parentID    uuid.NullUUID
		status      string
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&t.ID,
		&t.ColumnID,
		&parentID,
		&t.Title,
		&t.Position,
		&status,
		&t.CompletionPercentage,
		&completedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	if parentID.Valid {
		id := parentID.UUID
		t.ParentID = &id
	}
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	return &t, nil
}

func nullParent(parentID *uuid.UUID) uuid.NullUUID {
	if parentID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *parentID, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return errorf(store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID,
		task.ColumnID,
		nullParent(task.ParentID),
		task.Title,
		task.Position,
		string(task.Status),
		task.CompletionPercentage,
		nullTime(task.CompletedAt),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("column_id", task.ColumnID.String()))
		return writeError("task", "create", err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.Int("position", task.Position))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return task, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return errorf(store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET column_id = $2, parent_id = $3, title = $4, position = $5, status = $6,
		    completion_percentage = $7, completed_at = $8, updated_at = $9
		WHERE id = $1`,
		task.ID,
		task.ColumnID,
		nullParent(task.ParentID),
		task.Title,
		task.Position,
		string(task.Status),
		task.CompletionPercentage,
		nullTime(task.CompletedAt),
		task.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return writeError("task", "update", err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// UpdateCompletion implements store.TaskStore.UpdateCompletion. No other
// column is written, so a concurrent shift of the task's position survives.
func (s *PostgresTaskStore) UpdateCompletion(
	ctx context.Context,
	id uuid.UUID,
	percentage int,
	updatedAt time.Time,
) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completion_percentage = $2, updated_at = $3 WHERE id = $1`,
		id, percentage, updatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task completion",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return writeError("task", "update_completion", err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return writeError("task", "delete", err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// ListByColumn implements store.TaskStore.ListByColumn.
func (s *PostgresTaskStore) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Task, error) {
	return s.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE column_id = $1 ORDER BY position, id`, columnID)
}

// ListChildren implements store.TaskStore.ListChildren.
func (s *PostgresTaskStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	return s.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id = $1 ORDER BY created_at, id`, parentID)
}

func (s *PostgresTaskStore) list(ctx context.Context, query string, arg uuid.UUID) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// CountByColumn implements store.TaskStore.CountByColumn.
func (s *PostgresTaskStore) CountByColumn(ctx context.Context, columnID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE column_id = $1`, columnID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// ShiftPositions implements store.TaskStore.ShiftPositions as a single
// UPDATE, relative to the stored positions. Only the position changes.
func (s *PostgresTaskStore) ShiftPositions(
	ctx context.Context,
	columnID uuid.UUID,
	r domain.PositionRange,
	delta int,
) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	clause, rangeArgs := rangeClause(r, 3)
	args := append([]any{columnID, delta}, rangeArgs...)
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET position = position + $2 WHERE column_id = $1 AND `+clause,
		args...,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to shift task positions",
			slog.String("error", err.Error()),
			slog.String("column_id", columnID.String()),
			slog.String("range", r.String()),
			slog.Int("delta", delta))
		return 0, writeError("task", "shift", err)
	}
	return result.RowsAffected()
}
