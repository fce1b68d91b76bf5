package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// PostgresColumnStore implements the store.ColumnStore interface
// using a PostgreSQL database as the storage backend.
type PostgresColumnStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresColumnStore creates a new PostgreSQL implementation of the ColumnStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresColumnStore(db store.DBTX, logger *slog.Logger) *PostgresColumnStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresColumnStore{
		db:     db,
		logger: logger.With(slog.String("component", "column_store")),
	}
}

// Ensure PostgresColumnStore implements store.ColumnStore interface
var _ store.ColumnStore = (*PostgresColumnStore)(nil)

// WithTx returns a store bound to the given transaction.
func (s *PostgresColumnStore) WithTx(tx *sql.Tx) *PostgresColumnStore {
	return &PostgresColumnStore{db: tx, logger: s.logger}
}

const columnColumns = `id, board_id, name, position, is_terminal, capacity, created_at, updated_at`

func scanColumn(row rowScanner) (*domain.Column, error) {
	var (
		c        domain.Column
		capacity sql.NullInt64
	)
	if err := row.Scan(
		&c.ID,
		&c.BoardID,
		&c.Name,
		&c.Position,
		&c.IsTerminal,
		&capacity,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if capacity.Valid {
		v := int(capacity.Int64)
		c.Capacity = &v
	}
	return &c, nil
}

func nullCapacity(capacity *int) sql.NullInt64 {
	if capacity == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*capacity), Valid: true}
}

// Create implements store.ColumnStore.Create.
func (s *PostgresColumnStore) Create(ctx context.Context, column *domain.Column) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := column.Validate(); err != nil {
		return errorf(store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO board_columns (`+columnColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		column.ID,
		column.BoardID,
		column.Name,
		column.Position,
		column.IsTerminal,
		nullCapacity(column.Capacity),
		column.CreatedAt,
		column.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create column",
			slog.String("error", err.Error()),
			slog.String("column_id", column.ID.String()),
			slog.String("board_id", column.BoardID.String()))
		return writeError("column", "create", err)
	}

	log.Debug("column created",
		slog.String("column_id", column.ID.String()),
		slog.Int("position", column.Position))
	return nil
}

// GetByID implements store.ColumnStore.GetByID.
func (s *PostgresColumnStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	return s.get(ctx, `SELECT `+columnColumns+` FROM board_columns WHERE id = $1`, id)
}

// GetForUpdate implements store.ColumnStore.GetForUpdate. The row lock is
// what serializes concurrent shifts of the column's task positions.
func (s *PostgresColumnStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	return s.get(ctx, `SELECT `+columnColumns+` FROM board_columns WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresColumnStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Column, error) {
	column, err := scanColumn(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrColumnNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get column",
			slog.String("error", err.Error()),
			slog.String("column_id", id.String()))
		return nil, MapError(err)
	}
	return column, nil
}

// Update implements store.ColumnStore.Update. Board and terminal flag are
// immutable and not written.
func (s *PostgresColumnStore) Update(ctx context.Context, column *domain.Column) error {
	if err := column.Validate(); err != nil {
		return errorf(store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE board_columns SET name = $2, position = $3, capacity = $4, updated_at = $5 WHERE id = $1`,
		column.ID,
		column.Name,
		column.Position,
		nullCapacity(column.Capacity),
		column.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update column",
			slog.String("error", err.Error()),
			slog.String("column_id", column.ID.String()))
		return writeError("column", "update", err)
	}
	return CheckRowsAffected(result, store.ErrColumnNotFound)
}

// Delete implements store.ColumnStore.Delete.
func (s *PostgresColumnStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM board_columns WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete column",
			slog.String("error", err.Error()),
			slog.String("column_id", id.String()))
		return writeError("column", "delete", err)
	}
	return CheckRowsAffected(result, store.ErrColumnNotFound)
}

// ListByBoard implements store.ColumnStore.ListByBoard.
func (s *PostgresColumnStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columnColumns+` FROM board_columns WHERE board_id = $1 ORDER BY position, id`,
		boardID,
	)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]*domain.Column, 0)
	for rows.Next() {
		column, err := scanColumn(rows)
		if err != nil {
			return nil, MapError(err)
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return columns, nil
}

// CountByBoard implements store.ColumnStore.CountByBoard.
func (s *PostgresColumnStore) CountByBoard(ctx context.Context, boardID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM board_columns WHERE board_id = $1`, boardID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// ShiftPositions implements store.ColumnStore.ShiftPositions as a single
// UPDATE, relative to the stored positions.
func (s *PostgresColumnStore) ShiftPositions(
	ctx context.Context,
	boardID uuid.UUID,
	r domain.PositionRange,
	delta int,
) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	clause, rangeArgs := rangeClause(r, 3)
	args := append([]any{boardID, delta}, rangeArgs...)
	result, err := s.db.ExecContext(ctx,
		`UPDATE board_columns SET position = position + $2 WHERE board_id = $1 AND `+clause,
		args...,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to shift column positions",
			slog.String("error", err.Error()),
			slog.String("board_id", boardID.String()),
			slog.String("range", r.String()),
			slog.Int("delta", delta))
		return 0, writeError("column", "shift", err)
	}
	return result.RowsAffected()
}
