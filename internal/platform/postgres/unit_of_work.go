package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/store"
)

// UnitOfWork runs store operations inside a READ COMMITTED transaction.
// Serialization of position shifts comes from the row locks the board
// engine takes (GetForUpdate), not from the isolation level.
type UnitOfWork struct {
	db      *sql.DB
	boards  *PostgresBoardStore
	columns *PostgresColumnStore
	tasks   *PostgresTaskStore
}

// Ensure UnitOfWork implements store.UnitOfWork interface
var _ store.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a UnitOfWork over db.
func NewUnitOfWork(db *sql.DB, logger *slog.Logger) *UnitOfWork {
	if db == nil {
		panic("db cannot be nil")
	}
	return &UnitOfWork{
		db:      db,
		boards:  NewPostgresBoardStore(db, logger),
		columns: NewPostgresColumnStore(db, logger),
		tasks:   NewPostgresTaskStore(db, logger),
	}
}

// RunInTx implements store.UnitOfWork. Errors raised at commit, such as a
// deferred position collision, are mapped like statement errors.
func (u *UnitOfWork) RunInTx(ctx context.Context, fn store.StoresFn) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	err := store.RunInTransaction(ctx, u.db, opts, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, store.Stores{
			Boards:  u.boards.WithTx(tx),
			Columns: u.columns.WithTx(tx),
			Tasks:   u.tasks.WithTx(tx),
		})
	})
	return MapError(err)
}
