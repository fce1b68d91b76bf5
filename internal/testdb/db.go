package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds the setup and cleanup statements issued by this package.
const TestTimeout = 10 * time.Second

// GetTestDatabaseURL returns the database URL for tests, or "" when none is
// configured.
func GetTestDatabaseURL() string {
	for _, name := range []string{"DATABASE_URL", "KANBAN_TEST_DB_URL"} {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDBWithT opens a migrated test database. It skips the test when no
// database URL is set and closes the connection when the test finishes.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL or KANBAN_TEST_DB_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, url, 8)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	require.NoError(t, postgres.Migrate(ctx, db, "up", nil), "failed to migrate test database")
	return db
}

// ResetTables deletes every board, which cascades to columns and tasks.
func ResetTables(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	_, err := db.ExecContext(ctx, "TRUNCATE boards CASCADE")
	require.NoError(t, err, "failed to reset tables")
}
