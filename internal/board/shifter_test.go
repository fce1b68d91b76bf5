package board_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPositionStore struct {
	mock.Mock
}

func (m *mockPositionStore) ShiftPositions(
	ctx context.Context,
	containerID uuid.UUID,
	r domain.PositionRange,
	delta int,
) (int64, error) {
	args := m.Called(ctx, containerID, r, delta)
	return args.Get(0).(int64), args.Error(1)
}

func TestPositionShifter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	container := uuid.New()

	t.Run("shift from", func(t *testing.T) {
		t.Parallel()
		ps := &mockPositionStore{}
		ps.On("ShiftPositions", ctx, container, domain.RangeFrom(2), -1).Return(int64(3), nil)

		n, err := board.NewPositionShifter(ps, "task", nil).ShiftFrom(ctx, container, 2, -1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		ps.AssertExpectations(t)
	})

	t.Run("shift range", func(t *testing.T) {
		t.Parallel()
		ps := &mockPositionStore{}
		ps.On("ShiftPositions", ctx, container, domain.RangeBetween(1, 2), 1).Return(int64(2), nil)

		n, err := board.NewPositionShifter(ps, "task", nil).ShiftRange(ctx, container, 1, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		ps.AssertExpectations(t)
	})

	t.Run("zero delta is skipped", func(t *testing.T) {
		t.Parallel()
		ps := &mockPositionStore{}

		n, err := board.NewPositionShifter(ps, "task", nil).ShiftFrom(ctx, container, 0, 0)
		require.NoError(t, err)
		assert.Zero(t, n)
		ps.AssertNotCalled(t, "ShiftPositions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid range is rejected before the store", func(t *testing.T) {
		t.Parallel()
		ps := &mockPositionStore{}

		_, err := board.NewPositionShifter(ps, "task", nil).ShiftRange(ctx, container, 3, 1, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
		ps.AssertNotCalled(t, "ShiftPositions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		t.Parallel()
		ps := &mockPositionStore{}
		boom := errors.New("boom")
		ps.On("ShiftPositions", ctx, container, domain.RangeFrom(0), 1).Return(int64(0), boom)

		_, err := board.NewPositionShifter(ps, "column", nil).ShiftFrom(ctx, container, 0, 1)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "column")
	})
}
