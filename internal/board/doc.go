// Package board implements the ordering and state synchronization rules of a
// Kanban board: contiguous positions for tasks within a column and for
// columns within a board, task relocation, status reconciliation against the
// destination column, and completion roll-up from subtasks to ancestors.
//
// Every operation works on the store.Stores handed to it and is meant to be
// called inside a single store.UnitOfWork transaction. Nothing here retries:
// a store.ErrConflict is returned to the caller, which re-runs the whole
// operation from a fresh read.
package board
