package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewColumn(t *testing.T) {
	t.Parallel()

	boardID := uuid.New()

	column, err := NewColumn(boardID, " Review ", 2, false, intPtr(3))
	require.NoError(t, err)
	assert.Equal(t, "Review", column.Name)
	assert.Equal(t, 2, column.Position)
	assert.Equal(t, boardID, column.BoardID)

	_, err = NewColumn(uuid.Nil, "Review", 0, false, nil)
	assert.ErrorIs(t, err, ErrColumnBoardIDEmpty)

	_, err = NewColumn(boardID, "", 0, false, nil)
	assert.ErrorIs(t, err, ErrColumnNameEmpty)

	_, err = NewColumn(boardID, "Review", 0, false, intPtr(0))
	assert.ErrorIs(t, err, ErrColumnCapacityInvalid)
}

func TestColumnIsOverCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity *int
		count    int
		want     bool
	}{
		{name: "no limit", capacity: nil, count: 100, want: false},
		{name: "below limit", capacity: intPtr(3), count: 2, want: false},
		{name: "at limit", capacity: intPtr(3), count: 3, want: false},
		{name: "above limit", capacity: intPtr(3), count: 4, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			column := &Column{Capacity: tc.capacity}
			assert.Equal(t, tc.want, column.IsOverCapacity(tc.count))
		})
	}
}

func TestColumnMutators(t *testing.T) {
	t.Parallel()

	column, err := NewColumn(uuid.New(), "Doing", 0, false, nil)
	require.NoError(t, err)
	now := time.Now().UTC()

	assert.ErrorIs(t, column.Rename("  ", now), ErrColumnNameEmpty)
	assert.Equal(t, "Doing", column.Name)

	require.NoError(t, column.Rename("Working", now))
	assert.Equal(t, "Working", column.Name)

	assert.ErrorIs(t, column.SetCapacity(intPtr(-2), now), ErrColumnCapacityInvalid)
	require.NoError(t, column.SetCapacity(intPtr(5), now))
	assert.Equal(t, 5, *column.Capacity)

	clone := column.Clone()
	*clone.Capacity = 9
	assert.Equal(t, 5, *column.Capacity)
}
