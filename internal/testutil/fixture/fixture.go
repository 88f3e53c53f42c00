// Package fixture builds entities and ledgers for tests in packages that
// operate on a resolved ledger handle.
package fixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// Caller is the identity fixtures are created for.
const Caller = "test-user"

// Ledger creates an entity with one ledger named name and returns its handle.
func Ledger(t testing.TB, db *store.DB, name string) scope.Handle {
	t.Helper()
	ctx := context.Background()

	svc := scope.NewService(db)
	e, err := svc.CreateEntity(ctx, Caller, scope.EntityParams{Name: "Fixture Co"})
	require.NoError(t, err)
	_, err = svc.CreateLedger(ctx, Caller, e.ID, scope.LedgerParams{Name: name})
	require.NoError(t, err)

	h, err := scope.NewResolver(db).Resolve(ctx, Caller, e.ID, name)
	require.NoError(t, err)
	return h
}
