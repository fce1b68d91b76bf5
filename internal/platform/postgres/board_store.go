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

// PostgresBoardStore implements the store.BoardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBoardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBoardStore creates a new PostgreSQL implementation of the BoardStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresBoardStore(db store.DBTX, logger *slog.Logger) *PostgresBoardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBoardStore{
		db:     db,
		logger: logger.With(slog.String("component", "board_store")),
	}
}

// Ensure PostgresBoardStore implements store.BoardStore interface
var _ store.BoardStore = (*PostgresBoardStore)(nil)

// WithTx returns a store bound to the given transaction.
func (s *PostgresBoardStore) WithTx(tx *sql.Tx) *PostgresBoardStore {
	return &PostgresBoardStore{db: tx, logger: s.logger}
}

const boardColumns = `id, name, created_at, updated_at`

// Create implements store.BoardStore.Create.
func (s *PostgresBoardStore) Create(ctx context.Context, board *domain.Board) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := board.Validate(); err != nil {
		return errorf(store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO boards (`+boardColumns+`) VALUES ($1, $2, $3, $4)`,
		board.ID, board.Name, board.CreatedAt, board.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create board",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return writeError("board", "create", err)
	}

	log.Debug("board created", slog.String("board_id", board.ID.String()))
	return nil
}

// GetByID implements store.BoardStore.GetByID.
func (s *PostgresBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return s.get(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id)
}

// GetForUpdate implements store.BoardStore.GetForUpdate with a row lock.
func (s *PostgresBoardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return s.get(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresBoardStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board
	err := s.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBoardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get board",
			slog.String("error", err.Error()),
			slog.String("board_id", id.String()))
		return nil, MapError(err)
	}
	return &b, nil
}
