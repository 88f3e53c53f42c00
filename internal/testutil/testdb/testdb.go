// Package testdb opens migrated in-memory SQLite stores for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/store"
)

const memoryDSN = "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// New returns an empty, migrated database that is closed when the test ends.
func New(t testing.TB) *store.DB {
	t.Helper()

	db, err := store.Open(context.Background(), store.SQLite, memoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return db
}
