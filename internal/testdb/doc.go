// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests call GetTestDBWithT, which skips the test when no database URL is
// configured, applies the embedded migrations and closes the connection on
// cleanup. ResetTables empties the board tables so each test starts from a
// clean schema.
//
// The package uses the following environment variables, first match wins:
//
//   - DATABASE_URL
//   - KANBAN_TEST_DB_URL
package testdb
