package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return http.StatusOK

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, board.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrColumnNotEmpty),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Engine input
// errors are built from fixed sentinel texts and are passed on verbatim;
// everything else gets a canned message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, store.ErrBoardNotFound):
		return "Board not found"
	case errors.Is(err, store.ErrColumnNotFound):
		return "Column not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.As(err, &verrs):
		return SanitizeValidationError(verrs)
	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, board.ErrInvalidArgument):
		return err.Error()
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	case errors.Is(err, service.ErrColumnNotEmpty):
		return "Column still contains tasks"
	case errors.Is(err, store.ErrConflict):
		return "The board was modified concurrently, please retry"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError reports the first failed field of a request.
func SanitizeValidationError(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte", "gt":
		return "too small"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid ID format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. fallback replaces the generic
// message of a 500 when the handler can describe what failed.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
