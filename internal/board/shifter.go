package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
)

// PositionStore is the slice of a store that can shift positions inside one
// container. Both store.TaskStore (container = column) and store.ColumnStore
// (container = board) satisfy it.
type PositionStore interface {
	ShiftPositions(ctx context.Context, containerID uuid.UUID, r domain.PositionRange, delta int) (int64, error)
}

// PositionShifter applies signed offsets to ranges of positions. Callers must
// hold the container lock (see Engine.lockColumns and BoardStore.GetForUpdate)
// for the duration of the transaction.
type PositionShifter struct {
	store  PositionStore
	kind   string
	logger *slog.Logger
}

// NewPositionShifter creates a shifter over s. kind names the records being
// shifted ("task" or "column") in logs.
func NewPositionShifter(s PositionStore, kind string, logger *slog.Logger) *PositionShifter {
	if s == nil {
		panic("position store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionShifter{store: s, kind: kind, logger: logger}
}

// ShiftFrom adds delta to every position >= from in the container.
func (p *PositionShifter) ShiftFrom(ctx context.Context, containerID uuid.UUID, from, delta int) (int64, error) {
	return p.shift(ctx, containerID, domain.RangeFrom(from), delta)
}

// ShiftRange adds delta to every position in [from, to] in the container.
func (p *PositionShifter) ShiftRange(ctx context.Context, containerID uuid.UUID, from, to, delta int) (int64, error) {
	return p.shift(ctx, containerID, domain.RangeBetween(from, to), delta)
}

func (p *PositionShifter) shift(ctx context.Context, containerID uuid.UUID, r domain.PositionRange, delta int) (int64, error) {
	if delta == 0 {
		return 0, nil
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}

	n, err := p.store.ShiftPositions(ctx, containerID, r, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to shift %s positions %s by %d: %w", p.kind, r, delta, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("shifted positions",
		slog.String("kind", p.kind),
		slog.String("container_id", containerID.String()),
		slog.String("range", r.String()),
		slog.Int("delta", delta),
		slog.Int64("affected", n))
	return n, nil
}
