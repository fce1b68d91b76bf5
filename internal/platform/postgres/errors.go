package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/kanban-api/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// serializationFailureCode is raised when a serializable transaction cannot commit
	serializationFailureCode = "40001"

	// deadlockDetectedCode is raised on the victim of a lock cycle
	deadlockDetectedCode = "40P01"

	// lockNotAvailableCode is raised by NOWAIT locks and lock_timeout
	lockNotAvailableCode = "55P03"
)

// Names of the deferred constraints that keep positions unique per container.
const (
	columnPositionConstraint = "board_columns_board_position_key"
	taskPositionConstraint   = "tasks_column_position_key"
)

// MapError maps a database error to the corresponding store error, wrapping
// the original so that details remain available for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case serializationFailureCode, deadlockDetectedCode, lockNotAvailableCode:
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	case uniqueViolationCode:
		if IsPositionCollision(err) {
			return fmt.Errorf("%w: position collision (%s): %v", store.ErrConflict, pgErr.ConstraintName, err)
		}
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		return fmt.Errorf(
			"%w: foreign key violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ConstraintName,
			err,
		)
	case checkViolationCode:
		return fmt.Errorf(
			"%w: check constraint violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ConstraintName,
			err,
		)
	case notNullViolationCode:
		return fmt.Errorf(
			"%w: not null violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ColumnName,
			err,
		)
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolationCode)
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolationCode)
}

// IsPositionCollision reports whether err is a violation of one of the
// per-container position constraints. These fire at commit when two
// transactions slipped past the container lock, and are retryable.
func IsPositionCollision(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}
	return pgErr.ConstraintName == columnPositionConstraint ||
		pgErr.ConstraintName == taskPositionConstraint
}

// IsConflict reports whether err is a retryable concurrency failure.
func IsConflict(err error) bool {
	return hasCode(err, serializationFailureCode) ||
		hasCode(err, deadlockDetectedCode) ||
		hasCode(err, lockNotAvailableCode) ||
		IsPositionCollision(err)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// CheckRowsAffected examines the number of rows affected by a database operation.
// If no rows were affected, it returns notFound (or store.ErrNotFound when nil).
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}
