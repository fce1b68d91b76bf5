package board_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/memory"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/require"
)

// fixture is a board with the default columns on an in-memory store.
type fixture struct {
	t       *testing.T
	store   *memory.Store
	engine  *board.Engine
	board   *domain.Board
	columns []*domain.Column // To Do, In Progress, In Review, Done
}

func newFixture(t *testing.T, opts ...board.Option) *fixture {
	t.Helper()

	f := &fixture{
		t:      t,
		store:  memory.NewStore(nil),
		engine: board.NewEngine(nil, opts...),
	}
	f.run(func(ctx context.Context, s store.Stores) error {
		var err error
		f.board, f.columns, err = f.engine.CreateBoard(ctx, s, "Sprint", board.DefaultColumns)
		return err
	})
	return f
}

func (f *fixture) todo() *domain.Column       { return f.columns[0] }
func (f *fixture) inProgress() *domain.Column { return f.columns[1] }
func (f *fixture) inReview() *domain.Column   { return f.columns[2] }
func (f *fixture) done() *domain.Column       { return f.columns[3] }

// run executes fn in a unit of work and requires it to succeed.
func (f *fixture) run(fn store.StoresFn) {
	f.t.Helper()
	require.NoError(f.t, f.store.RunInTx(context.Background(), fn))
}

// try executes fn in a unit of work and returns its error.
func (f *fixture) try(fn store.StoresFn) error {
	return f.store.RunInTx(context.Background(), fn)
}

// addTasks appends tasks with the given titles to a column.
func (f *fixture) addTasks(columnID uuid.UUID, titles ...string) []*domain.Task {
	f.t.Helper()
	out := make([]*domain.Task, 0, len(titles))
	for _, title := range titles {
		f.run(func(ctx context.Context, s store.Stores) error {
			res, err := f.engine.CreateTask(ctx, s, columnID, board.TaskSpec{Title: title})
			if err == nil {
				out = append(out, res.Task)
			}
			return err
		})
	}
	return out
}

// addSubtask creates a child of parentID in the given column.
func (f *fixture) addSubtask(columnID, parentID uuid.UUID, title string) *domain.Task {
	f.t.Helper()
	var task *domain.Task
	f.run(func(ctx context.Context, s store.Stores) error {
		res, err := f.engine.CreateTask(ctx, s, columnID, board.TaskSpec{Title: title, ParentID: &parentID})
		if err == nil {
			task = res.Task
		}
		return err
	})
	return task
}

func (f *fixture) move(taskID, columnID uuid.UUID, position *int) (*board.MoveResult, error) {
	var result *board.MoveResult
	err := f.try(func(ctx context.Context, s store.Stores) error {
		var err error
		result, err = f.engine.MoveTask(ctx, s, taskID, columnID, position)
		return err
	})
	return result, err
}

func (f *fixture) task(id uuid.UUID) *domain.Task {
	f.t.Helper()
	var task *domain.Task
	f.run(func(ctx context.Context, s store.Stores) error {
		var err error
		task, err = s.Tasks.GetByID(ctx, id)
		return err
	})
	return task
}

// titles returns the titles of a column's tasks in position order.
func (f *fixture) titles(columnID uuid.UUID) []string {
	f.t.Helper()
	var titles []string
	f.run(func(ctx context.Context, s store.Stores) error {
		tasks, err := s.Tasks.ListByColumn(ctx, columnID)
		for _, task := range tasks {
			titles = append(titles, task.Title)
		}
		return err
	})
	return titles
}

// requireConsistent checks contiguous task positions in every column of the
// board, contiguous column positions, and that tasks are Done exactly when
// they sit in a terminal column.
func (f *fixture) requireConsistent() {
	f.t.Helper()
	f.run(func(ctx context.Context, s store.Stores) error {
		columns, err := s.Columns.ListByBoard(ctx, f.board.ID)
		require.NoError(f.t, err)
		for i, column := range columns {
			require.Equal(f.t, i, column.Position, "column %s", column.Name)

			tasks, err := s.Tasks.ListByColumn(ctx, column.ID)
			require.NoError(f.t, err)
			for j, task := range tasks {
				require.Equal(f.t, j, task.Position, "task %q in %s", task.Title, column.Name)
				require.Equal(f.t, column.IsTerminal, task.IsDone(),
					"task %q in %s has status %s", task.Title, column.Name, task.Status)
			}
		}
		return nil
	})
}

func (f *fixture) boardTaskCount() int {
	f.t.Helper()
	total := 0
	f.run(func(ctx context.Context, s store.Stores) error {
		view, err := f.engine.GetBoard(ctx, s, f.board.ID)
		if err != nil {
			return err
		}
		for _, c := range view.Columns {
			total += c.TaskCount
		}
		return nil
	})
	return total
}

func intPtr(v int) *int { return &v }
