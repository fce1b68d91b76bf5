package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Column validation errors
var (
	ErrColumnIDEmpty         = errors.New("column ID cannot be empty")
	ErrColumnBoardIDEmpty    = errors.New("column board ID cannot be empty")
	ErrColumnNameEmpty       = errors.New("column name cannot be empty")
	ErrColumnCapacityInvalid = errors.New("column capacity must be positive")
)

// Column is a lane on a board. Position is the zero-based rank among the
// columns of the same board. A terminal column represents finished work.
// Capacity is an advisory work-in-progress limit: exceeding it is reported,
// never rejected.
type Column struct {
	ID         uuid.UUID `json:"id"`
	BoardID    uuid.UUID `json:"board_id"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	IsTerminal bool      `json:"is_terminal"`
	Capacity   *int      `json:"capacity,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewColumn creates a new Column for the given board at the given position.
func NewColumn(boardID uuid.UUID, name string, position int, isTerminal bool, capacity *int) (*Column, error) {
	now := time.Now().UTC()
	column := &Column{
		ID:         uuid.New(),
		BoardID:    boardID,
		Name:       strings.TrimSpace(name),
		Position:   position,
		IsTerminal: isTerminal,
		Capacity:   capacity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := column.Validate(); err != nil {
		return nil, err
	}

	return column, nil
}

// Validate checks if the Column has valid data.
func (c *Column) Validate() error {
	if c.ID == uuid.Nil {
		return ErrColumnIDEmpty
	}
	if c.BoardID == uuid.Nil {
		return ErrColumnBoardIDEmpty
	}
	if c.Name == "" {
		return ErrColumnNameEmpty
	}
	if c.Position < 0 {
		return ErrInvalidPosition
	}
	if c.Capacity != nil && *c.Capacity <= 0 {
		return ErrColumnCapacityInvalid
	}
	return nil
}

// IsOverCapacity reports whether taskCount exceeds the column's WIP limit.
// Columns without a capacity are never over capacity.
func (c *Column) IsOverCapacity(taskCount int) bool {
	return c.Capacity != nil && taskCount > *c.Capacity
}

// Rename changes the column name, keeping the old one if the new name is invalid.
func (c *Column) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrColumnNameEmpty
	}
	c.Name = name
	c.UpdatedAt = now
	return nil
}

// SetCapacity replaces the WIP limit. A nil capacity removes the limit.
func (c *Column) SetCapacity(capacity *int, now time.Time) error {
	if capacity != nil && *capacity <= 0 {
		return ErrColumnCapacityInvalid
	}
	c.Capacity = capacity
	c.UpdatedAt = now
	return nil
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cp := *c
	if c.Capacity != nil {
		capacity := *c.Capacity
		cp.Capacity = &capacity
	}
	return &cp
}
