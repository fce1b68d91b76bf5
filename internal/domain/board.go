package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Board validation errors
var (
	ErrBoardIDEmpty   = errors.New("board ID cannot be empty")
	ErrBoardNameEmpty = errors.New("board name cannot be empty")
)

// Board is the ordered collection of columns belonging to one project.
// Columns reference their board by ID; the board holds no back-pointers.
type Board struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBoard creates a new Board with a generated ID.
func NewBoard(name string) (*Board, error) {
	now := time.Now().UTC()
	board := &Board{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := board.Validate(); err != nil {
		return nil, err
	}

	return board, nil
}

// Validate checks if the Board has valid data.
func (b *Board) Validate() error {
	if b.ID == uuid.Nil {
		return ErrBoardIDEmpty
	}
	if b.Name == "" {
		return ErrBoardNameEmpty
	}
	return nil
}
