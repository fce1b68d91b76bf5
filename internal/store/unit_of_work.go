package store

import "context"

// Stores groups the stores bound to a single transaction.
type Stores struct {
	Boards  BoardStore
	Columns ColumnStore
	Tasks   TaskStore
}

// StoresFn is a unit of work executed against transaction-bound stores.
type StoresFn func(ctx context.Context, stores Stores) error

// UnitOfWork runs a function atomically against a set of stores. If fn
// returns an error every write it made is discarded; otherwise all of them
// are committed together.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn StoresFn) error
}
