package board

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// Engine bundles the board operations with their shared settings. It holds
// no per-board state and is safe for concurrent use.
type Engine struct {
	policy     domain.StatusPolicy
	aggregator *SubtaskAggregator
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStatusPolicy replaces the status reconciliation policy.
func WithStatusPolicy(policy domain.StatusPolicy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// WithAggregationDepth bounds how many ancestor levels are recomputed after a
// change. Zero means every ancestor up to the root.
func WithAggregationDepth(depth int) Option {
	return func(e *Engine) {
		e.aggregator.maxDepth = depth
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
			e.aggregator.now = now
		}
	}
}

// NewEngine creates an Engine with the default status policy and unbounded
// ancestor aggregation.
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "board_engine"))

	e := &Engine{
		policy:     domain.DefaultStatusPolicy,
		aggregator: NewSubtaskAggregator(0, logger),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregator returns the engine's subtask aggregator.
func (e *Engine) Aggregator() *SubtaskAggregator {
	return e.aggregator
}

// lockColumns takes row locks on the given columns in ascending id order, so
// that two moves between the same pair of columns cannot deadlock. Duplicate
// ids are locked once.
func (e *Engine) lockColumns(
	ctx context.Context,
	columns store.ColumnStore,
	ids ...uuid.UUID,
) (map[uuid.UUID]*domain.Column, error) {
	ordered := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i][:], ordered[j][:]) < 0
	})

	locked := make(map[uuid.UUID]*domain.Column, len(ordered))
	for _, id := range ordered {
		column, err := columns.GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to lock column %s: %w", id, err)
		}
		locked[id] = column
	}
	return locked, nil
}

// reloadTask re-reads a task after its containers were locked and fails with
// a conflict if it changed column in between.
func reloadTask(ctx context.Context, tasks store.TaskStore, id, expectedColumn uuid.UUID) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.ColumnID != expectedColumn {
		return nil, fmt.Errorf("%w: task %s moved to column %s while waiting for locks",
			store.ErrConflict, id, task.ColumnID)
	}
	return task, nil
}
