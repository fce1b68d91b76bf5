package board

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// SubtaskAggregator keeps the completion percentage of parent tasks equal to
// the share of their direct children that are Done.
type SubtaskAggregator struct {
	maxDepth int
	now      func() time.Time
	logger   *slog.Logger
}

// NewSubtaskAggregator creates an aggregator that walks at most maxDepth
// ancestor levels per call (0 = no limit).
func NewSubtaskAggregator(maxDepth int, logger *slog.Logger) *SubtaskAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubtaskAggregator{
		maxDepth: maxDepth,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// RecomputeCompletion recalculates one parent from its direct children and
// saves it when the value changed. A parent without children keeps its last
// percentage. The returned task is the parent as stored after the call;
// changed reports whether it was written.
func (a *SubtaskAggregator) RecomputeCompletion(
	ctx context.Context,
	tasks store.TaskStore,
	parentID uuid.UUID,
) (parent *domain.Task, changed bool, err error) {
	parent, err = tasks.GetByID(ctx, parentID)
	if err != nil {
		return nil, false, err
	}

	children, err := tasks.ListChildren(ctx, parentID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list children of %s: %w", parentID, err)
	}

	percentage, ok := domain.CompletionFromChildren(children)
	if !ok || percentage == parent.CompletionPercentage {
		return parent, false, nil
	}

	logger.FromContextOrDefault(ctx, a.logger).Debug("recomputed completion",
		slog.String("task_id", parentID.String()),
		slog.Int("children", len(children)),
		slog.Int("from", parent.CompletionPercentage),
		slog.Int("to", percentage))

	if err := tasks.UpdateCompletion(ctx, parentID, percentage, a.now()); err != nil {
		return nil, false, fmt.Errorf("failed to save completion of %s: %w", parentID, err)
	}
	// re-read so the caller sees the position a concurrent shift may have set
	parent, err = tasks.GetByID(ctx, parentID)
	if err != nil {
		return nil, false, err
	}
	return parent, true, nil
}

// RecomputeAncestors recomputes parentID and then each further ancestor up to
// the root or the configured depth. It returns the ancestors that were
// written, nearest first. A parent chain that loops back on itself is cut at
// the first repeated task.
func (a *SubtaskAggregator) RecomputeAncestors(
	ctx context.Context,
	tasks store.TaskStore,
	parentID uuid.UUID,
) ([]*domain.Task, error) {
	var updated []*domain.Task
	visited := make(map[uuid.UUID]bool)

	next := &parentID
	for depth := 0; next != nil; depth++ {
		if a.maxDepth > 0 && depth >= a.maxDepth {
			break
		}
		id := *next
		if visited[id] {
			logger.FromContextOrDefault(ctx, a.logger).Warn("parent cycle detected",
				slog.String("task_id", id.String()))
			break
		}
		visited[id] = true

		parent, changed, err := a.RecomputeCompletion(ctx, tasks, id)
		if err != nil {
			return nil, err
		}
		if changed {
			updated = append(updated, parent)
		}
		next = parent.ParentID
	}
	return updated, nil
}

// refreshOwnCompletion sets task's percentage from its own children when it
// has any, so a parent that was moved does not keep the value its status
// transition assigned.
func (a *SubtaskAggregator) refreshOwnCompletion(ctx context.Context, tasks store.TaskStore, task *domain.Task) error {
	children, err := tasks.ListChildren(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("failed to list children of %s: %w", task.ID, err)
	}
	if percentage, ok := domain.CompletionFromChildren(children); ok {
		task.CompletionPercentage = percentage
	}
	return nil
}
