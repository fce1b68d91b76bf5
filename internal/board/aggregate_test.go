package board_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeCompletionFromChildStatuses(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	parent := f.addTasks(f.inProgress().ID, "Parent")[0]

	f.addSubtask(f.done().ID, parent.ID, "done 1")
	f.addSubtask(f.done().ID, parent.ID, "done 2")
	progressing := f.addSubtask(f.todo().ID, parent.ID, "in progress")
	f.addSubtask(f.todo().ID, parent.ID, "todo")
	_, err := f.move(progressing.ID, f.inProgress().ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 50, f.task(parent.ID).CompletionPercentage)
}

func TestRecomputeCompletionWithoutChildrenKeepsValue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	parent := f.addTasks(f.inProgress().ID, "Parent")[0]
	child := f.addSubtask(f.done().ID, parent.ID, "only child")
	require.Equal(t, 100, f.task(parent.ID).CompletionPercentage)

	f.run(func(ctx context.Context, s store.Stores) error {
		_, err := f.engine.DeleteTask(ctx, s, child.ID)
		return err
	})

	assert.Equal(t, 100, f.task(parent.ID).CompletionPercentage)
}

func TestRecomputeCompletionIsFloored(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	parent := f.addTasks(f.inProgress().ID, "Parent")[0]
	f.addSubtask(f.done().ID, parent.ID, "a")
	f.addSubtask(f.todo().ID, parent.ID, "b")
	f.addSubtask(f.todo().ID, parent.ID, "c")

	assert.Equal(t, 33, f.task(parent.ID).CompletionPercentage)
}

// chain creates root <- mid <- leaf and gives root and mid stale percentages.
func chain(t *testing.T, f *fixture) (root, mid, leaf *domain.Task) {
	t.Helper()
	root = f.addTasks(f.inProgress().ID, "root")[0]
	mid = f.addSubtask(f.done().ID, root.ID, "mid")
	leaf = f.addSubtask(f.done().ID, mid.ID, "leaf")

	f.run(func(ctx context.Context, s store.Stores) error {
		for _, id := range []uuid.UUID{root.ID, mid.ID} {
			task, err := s.Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			task.CompletionPercentage = 7
			if err := s.Tasks.Update(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
	return root, mid, leaf
}

func TestRecomputeAncestorsWalksToRoot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	root, mid, _ := chain(t, f)

	var updated []*domain.Task
	f.run(func(ctx context.Context, s store.Stores) error {
		var err error
		updated, err = f.engine.Aggregator().RecomputeAncestors(ctx, s.Tasks, mid.ID)
		return err
	})

	require.Len(t, updated, 2)
	assert.Equal(t, mid.ID, updated[0].ID)
	assert.Equal(t, root.ID, updated[1].ID)
	assert.Equal(t, 100, f.task(mid.ID).CompletionPercentage)
	assert.Equal(t, 100, f.task(root.ID).CompletionPercentage)
}

func TestRecomputeAncestorsHonorsDepth(t *testing.T) {
	t.Parallel()
	f := newFixture(t, board.WithAggregationDepth(1))
	root, mid, _ := chain(t, f)

	f.run(func(ctx context.Context, s store.Stores) error {
		_, err := f.engine.Aggregator().RecomputeAncestors(ctx, s.Tasks, mid.ID)
		return err
	})

	assert.Equal(t, 100, f.task(mid.ID).CompletionPercentage)
	assert.Equal(t, 7, f.task(root.ID).CompletionPercentage)
}

func TestRecomputeAncestorsStopsOnCycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	root, _, leaf := chain(t, f)

	// Point root at leaf to close the loop root -> leaf -> mid -> root.
	f.run(func(ctx context.Context, s store.Stores) error {
		task, err := s.Tasks.GetByID(ctx, root.ID)
		if err != nil {
			return err
		}
		task.ParentID = &leaf.ID
		return s.Tasks.Update(ctx, task)
	})

	f.run(func(ctx context.Context, s store.Stores) error {
		_, err := f.engine.Aggregator().RecomputeAncestors(ctx, s.Tasks, root.ID)
		return err
	})
}

// stalePosition reports an outdated position for one task, as a read taken
// before another transaction shifted its column would.
type stalePosition struct {
	store.TaskStore
	id       uuid.UUID
	position int
}

func (s *stalePosition) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.TaskStore.GetByID(ctx, id)
	if err == nil && id == s.id {
		task.Position = s.position
	}
	return task, err
}

func TestRecomputeCompletionWritesOnlyCompletion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addTasks(f.inProgress().ID, "A", "B")
	parent := f.addTasks(f.inProgress().ID, "Parent")[0]
	child := f.addSubtask(f.todo().ID, parent.ID, "child")
	require.Equal(t, 2, f.task(parent.ID).Position)

	f.run(func(ctx context.Context, s store.Stores) error {
		s.Tasks = &stalePosition{TaskStore: s.Tasks, id: parent.ID, position: 0}
		_, err := f.engine.MoveTask(ctx, s, child.ID, f.done().ID, nil)
		return err
	})

	stored := f.task(parent.ID)
	assert.Equal(t, 100, stored.CompletionPercentage)
	assert.Equal(t, 2, stored.Position)
	assert.Equal(t, []string{"A", "B", "Parent"}, f.titles(f.inProgress().ID))
	f.requireConsistent()
}
