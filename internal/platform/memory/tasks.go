package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

type taskStore struct {
	data *dataset
}

var _ store.TaskStore = (*taskStore)(nil)

func (s *taskStore) checkReferences(task *domain.Task) error {
	if _, ok := s.data.columns[task.ColumnID]; !ok {
		return fmt.Errorf("%w: column %s does not exist", store.ErrInvalidEntity, task.ColumnID)
	}
	if task.HasParent() {
		if _, ok := s.data.tasks[*task.ParentID]; !ok {
			return fmt.Errorf("%w: parent task %s does not exist", store.ErrInvalidEntity, *task.ParentID)
		}
	}
	return nil
}

func (s *taskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := s.checkReferences(task); err != nil {
		return err
	}
	if _, exists := s.data.tasks[task.ID]; exists {
		return fmt.Errorf("%w: task %s", store.ErrDuplicate, task.ID)
	}
	s.data.tasks[task.ID] = task.Clone()
	return nil
}

func (s *taskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := s.data.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (s *taskStore) Update(_ context.Context, task *domain.Task) error {
	existing, ok := s.data.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := s.checkReferences(task); err != nil {
		return err
	}
	updated := task.Clone()
	updated.CreatedAt = existing.CreatedAt
	s.data.tasks[task.ID] = updated
	return nil
}

func (s *taskStore) UpdateCompletion(_ context.Context, id uuid.UUID, percentage int, updatedAt time.Time) error {
	t, ok := s.data.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	if percentage < 0 || percentage > 100 {
		return fmt.Errorf("%w: completion %d out of range", store.ErrInvalidEntity, percentage)
	}
	t.CompletionPercentage = percentage
	t.UpdatedAt = updatedAt
	return nil
}

func (s *taskStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.data.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	for _, t := range s.data.tasks {
		if t.HasParent() && *t.ParentID == id {
			return fmt.Errorf("%w: task %s is the parent of %s", store.ErrInvalidEntity, id, t.ID)
		}
	}
	delete(s.data.tasks, id)
	return nil
}

func (s *taskStore) ListByColumn(_ context.Context, columnID uuid.UUID) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	for _, t := range s.data.tasks {
		if t.ColumnID == columnID {
			tasks = append(tasks, t.Clone())
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
	return tasks, nil
}

func (s *taskStore) ListChildren(_ context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	children := make([]*domain.Task, 0)
	for _, t := range s.data.tasks {
		if t.HasParent() && *t.ParentID == parentID {
			children = append(children, t.Clone())
		}
	}
	sort.Slice(children, func(i, j int) bool {
		if !children[i].CreatedAt.Equal(children[j].CreatedAt) {
			return children[i].CreatedAt.Before(children[j].CreatedAt)
		}
		return children[i].ID.String() < children[j].ID.String()
	})
	return children, nil
}

func (s *taskStore) CountByColumn(_ context.Context, columnID uuid.UUID) (int, error) {
	n := 0
	for _, t := range s.data.tasks {
		if t.ColumnID == columnID {
			n++
		}
	}
	return n, nil
}

func (s *taskStore) ShiftPositions(
	_ context.Context,
	columnID uuid.UUID,
	r domain.PositionRange,
	delta int,
) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	var matched []*domain.Task
	for _, t := range s.data.tasks {
		if t.ColumnID == columnID && r.Contains(t.Position) {
			if t.Position+delta < 0 {
				return 0, fmt.Errorf("%w: task %s would move to position %d",
					store.ErrInvalidEntity, t.ID, t.Position+delta)
			}
			matched = append(matched, t)
		}
	}
	for _, t := range matched {
		t.Position += delta
	}
	return int64(len(matched)), nil
}
