// Package domain contains the board entities (boards, columns, tasks), their
// validation rules, and the pure functions that decide task status and
// completion. It has no knowledge of storage or transport.
package domain
