package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed creates a board with one column holding n tasks at positions 0..n-1.
func seed(t *testing.T, s *Store, n int) (*domain.Column, []*domain.Task) {
	t.Helper()

	var column *domain.Column
	tasks := make([]*domain.Task, 0, n)
	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		board, err := domain.NewBoard("board")
		require.NoError(t, err)
		require.NoError(t, st.Boards.Create(ctx, board))

		column, err = domain.NewColumn(board.ID, "Todo", 0, false, nil)
		require.NoError(t, err)
		require.NoError(t, st.Columns.Create(ctx, column))

		for i := 0; i < n; i++ {
			task, err := domain.NewTask(column.ID, "task", i, nil)
			require.NoError(t, err)
			require.NoError(t, st.Tasks.Create(ctx, task))
			tasks = append(tasks, task)
		}
		return nil
	})
	require.NoError(t, err)
	return column, tasks
}

func positionsByID(t *testing.T, s *Store, columnID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	out := make(map[uuid.UUID]int)
	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		tasks, err := st.Tasks.ListByColumn(ctx, columnID)
		for _, task := range tasks {
			out[task.ID] = task.Position
		}
		return err
	})
	require.NoError(t, err)
	return out
}

func TestRunInTxDiscardsWritesOnError(t *testing.T) {
	s := NewStore(nil)
	column, tasks := seed(t, s, 3)
	boom := errors.New("boom")

	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		_, err := st.Tasks.ShiftPositions(ctx, column.ID, domain.RangeFrom(0), 10)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	positions := positionsByID(t, s, column.ID)
	for i, task := range tasks {
		assert.Equal(t, i, positions[task.ID])
	}
}

func TestRunInTxRejectsDuplicatePositionsAtCommit(t *testing.T) {
	s := NewStore(nil)
	column, tasks := seed(t, s, 3)

	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		_, err := st.Tasks.ShiftPositions(ctx, column.ID, domain.RangeBetween(2, 2), -1)
		return err
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	positions := positionsByID(t, s, column.ID)
	assert.Equal(t, 2, positions[tasks[2].ID])
}

func TestRunInTxAllowsTransientCollisions(t *testing.T) {
	s := NewStore(nil)
	column, tasks := seed(t, s, 3)

	// move task 2 to the front: shift 0..1 down, then place it at 0
	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		n, err := st.Tasks.ShiftPositions(ctx, column.ID, domain.RangeBetween(0, 1), 1)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		moved, err := st.Tasks.GetByID(ctx, tasks[2].ID)
		require.NoError(t, err)
		moved.Position = 0
		return st.Tasks.Update(ctx, moved)
	})
	require.NoError(t, err)

	positions := positionsByID(t, s, column.ID)
	assert.Equal(t, 0, positions[tasks[2].ID])
	assert.Equal(t, 1, positions[tasks[0].ID])
	assert.Equal(t, 2, positions[tasks[1].ID])
}

func TestShiftPositionsRejectsNegativeResults(t *testing.T) {
	s := NewStore(nil)
	column, _ := seed(t, s, 2)

	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		_, err := st.Tasks.ShiftPositions(ctx, column.ID, domain.RangeFrom(0), -1)
		return err
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	err = s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		_, err := st.Tasks.ShiftPositions(ctx, column.ID, domain.RangeBetween(3, 1), 1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestReferenceChecks(t *testing.T) {
	s := NewStore(nil)
	column, tasks := seed(t, s, 1)

	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		orphan, err := domain.NewTask(uuid.New(), "orphan", 0, nil)
		require.NoError(t, err)
		return st.Tasks.Create(ctx, orphan)
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	err = s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		return st.Columns.Delete(ctx, column.ID)
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	parentID := tasks[0].ID
	err = s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		child, err := domain.NewTask(column.ID, "child", 1, &parentID)
		require.NoError(t, err)
		require.NoError(t, st.Tasks.Create(ctx, child))
		return st.Tasks.Delete(ctx, parentID)
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestNotFound(t *testing.T) {
	s := NewStore(nil)

	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		_, err := st.Boards.GetForUpdate(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrBoardNotFound)
		_, err = st.Columns.GetForUpdate(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrColumnNotFound)
		_, err = st.Tasks.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.ErrorIs(t, st.Tasks.Delete(ctx, uuid.New()), store.ErrTaskNotFound)
		assert.ErrorIs(t, st.Columns.Update(ctx, &domain.Column{ID: uuid.New()}), store.ErrColumnNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := NewStore(nil)
	column, tasks := seed(t, s, 1)

	err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
		task, err := st.Tasks.GetByID(ctx, tasks[0].ID)
		require.NoError(t, err)
		task.Position = 42

		again, err := st.Tasks.GetByID(ctx, tasks[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Position)

		count, err := st.Tasks.CountByColumn(ctx, column.ID)
		assert.Equal(t, 1, count)
		return err
	})
	require.NoError(t, err)
}

func TestRunInTxSerializesConcurrentUnits(t *testing.T) {
	s := NewStore(nil)
	column, _ := seed(t, s, 0)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunInTx(context.Background(), func(ctx context.Context, st store.Stores) error {
				count, err := st.Tasks.CountByColumn(ctx, column.ID)
				if err != nil {
					return err
				}
				task, err := domain.NewTask(column.ID, "task", count, nil)
				if err != nil {
					return err
				}
				return st.Tasks.Create(ctx, task)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	positions := positionsByID(t, s, column.ID)
	require.Len(t, positions, workers)
	seen := make(map[int]bool)
	for _, p := range positions {
		seen[p] = true
	}
	for p := 0; p < workers; p++ {
		assert.True(t, seen[p], "position %d missing", p)
	}
}

func TestRunInTxHonorsCancelledContext(t *testing.T) {
	s := NewStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.RunInTx(ctx, func(context.Context, store.Stores) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
