package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"board not found", store.ErrBoardNotFound, http.StatusNotFound},
		{"wrapped task not found", fmt.Errorf("load: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"position out of range", board.ErrPositionOutOfRange, http.StatusBadRequest},
		{"cross board move", board.ErrCrossBoardMove, http.StatusBadRequest},
		{"terminal status", board.ErrStatusInTerminalColumn, http.StatusBadRequest},
		{"invalid json", shared.ErrInvalidJSON, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"column not empty", service.ErrColumnNotEmpty, http.StatusConflict},
		{"conflict", store.ErrConflict, http.StatusConflict},
		{"retries exhausted", fmt.Errorf("%w: %w", service.ErrRetriesExhausted, store.ErrConflict), http.StatusConflict},
		{"service error", service.NewServiceError("move_task", "transaction failed", errors.New("io")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"board", store.ErrBoardNotFound, "Board not found"},
		{"column", store.ErrColumnNotFound, "Column not found"},
		{"task", fmt.Errorf("reload: %w", store.ErrTaskNotFound), "Task not found"},
		{"generic not found", store.ErrNotFound, "Resource not found"},
		{"invalid json", fmt.Errorf("%w: EOF", shared.ErrInvalidJSON), "Invalid request format"},
		{"column not empty", service.ErrColumnNotEmpty, "Column still contains tasks"},
		{"conflict", store.ErrConflict, "The board was modified concurrently, please retry"},
		{"engine input error", board.ErrStatusRequiresMove, board.ErrStatusRequiresMove.Error()},
		{"internal details", errors.New("pq: relation tasks does not exist"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(&MoveTaskRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Invalid ColumnID: required field", SanitizeValidationError(verrs))

	err = v.Struct(&UpdateTaskStatusRequest{Status: "archived"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Invalid Status: invalid value", SanitizeValidationError(verrs))

	assert.Equal(t, "Validation error", SanitizeValidationError(nil))
}
