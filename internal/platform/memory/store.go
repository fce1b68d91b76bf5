// Package memory provides an in-process implementation of the store
// interfaces. Each unit of work runs against a private copy of the data while
// holding the store's lock, and is published only if it succeeds, so
// concurrent operations are serialized and failed ones leave no trace.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// Store is an in-memory board, column and task store.
type Store struct {
	mu     sync.Mutex
	data   *dataset
	logger *slog.Logger
}

var _ store.UnitOfWork = (*Store)(nil)

// dataset is one consistent snapshot of every entity.
type dataset struct {
	boards  map[uuid.UUID]*domain.Board
	columns map[uuid.UUID]*domain.Column
	tasks   map[uuid.UUID]*domain.Task
}

func newDataset() *dataset {
	return &dataset{
		boards:  make(map[uuid.UUID]*domain.Board),
		columns: make(map[uuid.UUID]*domain.Column),
		tasks:   make(map[uuid.UUID]*domain.Task),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		boards:  make(map[uuid.UUID]*domain.Board, len(d.boards)),
		columns: make(map[uuid.UUID]*domain.Column, len(d.columns)),
		tasks:   make(map[uuid.UUID]*domain.Task, len(d.tasks)),
	}
	for id, b := range d.boards {
		board := *b
		c.boards[id] = &board
	}
	for id, col := range d.columns {
		c.columns[id] = col.Clone()
	}
	for id, t := range d.tasks {
		c.tasks[id] = t.Clone()
	}
	return c
}

// checkPositions enforces position uniqueness per container, the in-memory
// equivalent of the deferred unique constraints checked at commit.
func (d *dataset) checkPositions() error {
	type slot struct {
		container uuid.UUID
		position  int
	}

	columnSlots := make(map[slot]uuid.UUID, len(d.columns))
	for id, col := range d.columns {
		key := slot{col.BoardID, col.Position}
		if other, taken := columnSlots[key]; taken {
			return fmt.Errorf("%w: columns %s and %s share position %d on board %s",
				store.ErrConflict, other, id, col.Position, col.BoardID)
		}
		columnSlots[key] = id
	}

	taskSlots := make(map[slot]uuid.UUID, len(d.tasks))
	for id, t := range d.tasks {
		key := slot{t.ColumnID, t.Position}
		if other, taken := taskSlots[key]; taken {
			return fmt.Errorf("%w: tasks %s and %s share position %d in column %s",
				store.ErrConflict, other, id, t.Position, t.ColumnID)
		}
		taskSlots[key] = id
	}

	return nil
}

// NewStore creates an empty Store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		data:   newDataset(),
		logger: logger.With(slog.String("component", "memory_store")),
	}
}

// RunInTx runs fn against a private copy of the data and publishes the copy
// only when fn succeeds and every container still has unique positions.
func (s *Store) RunInTx(ctx context.Context, fn store.StoresFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	stores := store.Stores{
		Boards:  &boardStore{data: working},
		Columns: &columnStore{data: working},
		Tasks:   &taskStore{data: working},
	}

	if err := fn(ctx, stores); err != nil {
		s.logger.Debug("discarded unit of work", slog.String("error", err.Error()))
		return err
	}

	if err := working.checkPositions(); err != nil {
		s.logger.Warn("rejected unit of work at commit", slog.String("error", err.Error()))
		return err
	}

	s.data = working
	return nil
}
