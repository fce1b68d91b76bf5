package board

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the parent of every input error raised by the engine.
// Input errors are detected before any position is shifted.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	// ErrCrossBoardMove is returned when a task is moved to a column of another board.
	ErrCrossBoardMove = fmt.Errorf("%w: target column belongs to a different board", ErrInvalidArgument)

	// ErrPositionOutOfRange is returned when a target position is negative or past the end.
	ErrPositionOutOfRange = fmt.Errorf("%w: position out of range", ErrInvalidArgument)

	// ErrColumnNotOnBoard is returned when a column is addressed through a board it does not belong to.
	ErrColumnNotOnBoard = fmt.Errorf("%w: column does not belong to board", ErrInvalidArgument)

	// ErrParentOnOtherBoard is returned when a subtask's parent lives on another board.
	ErrParentOnOtherBoard = fmt.Errorf("%w: parent task belongs to a different board", ErrInvalidArgument)

	// ErrStatusInTerminalColumn is returned when the status of a task in a
	// terminal column is changed directly.
	ErrStatusInTerminalColumn = fmt.Errorf("%w: status of a task in a terminal column is fixed", ErrInvalidArgument)

	// ErrStatusRequiresMove is returned for a direct change to Done, which is
	// only reachable by moving the task into a terminal column.
	ErrStatusRequiresMove = fmt.Errorf("%w: done is reached by moving the task to a terminal column", ErrInvalidArgument)
)

// positionError reports a position outside [0, max].
func positionError(position, max int) error {
	return fmt.Errorf("%w: %d not in [0, %d]", ErrPositionOutOfRange, position, max)
}

// ErrColumnNotEmpty is returned when deleting a column that still holds tasks.
var ErrColumnNotEmpty = errors.New("column still contains tasks")

// invalid marks a domain validation error as an input error.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
}
