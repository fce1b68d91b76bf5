package postgres

import (
	"fmt"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// errorf wraps cause under the store sentinel kind.
func errorf(kind error, cause error) error {
	return fmt.Errorf("%w: %v", kind, cause)
}

// writeError maps a failed write statement and records which entity and
// operation it belonged to.
func writeError(entity, operation string, err error) error {
	return store.NewStoreError(entity, operation, "statement failed", MapError(err))
}

// rangeClause renders the position filter of a shift statement. The first
// free placeholder index is next; it returns the clause and its arguments.
func rangeClause(r domain.PositionRange, next int) (string, []any) {
	if r.IsOpen() {
		return fmt.Sprintf("position >= $%d", next), []any{r.From}
	}
	return fmt.Sprintf("position BETWEEN $%d AND $%d", next, next+1), []any{r.From, r.To}
}
