package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/testutil/fixture"
	"github.com/cleared-dev/finreport/internal/testutil/testdb"
)

func TestSeed_EmptyLedger(t *testing.T) {
	db := testdb.New(t)
	h := fixture.Ledger(t, db, "main")
	ctx := context.Background()

	created, err := NewSeeder(db).Seed(ctx, h)
	require.NoError(t, err)
	require.Len(t, created, len(DefaultCatalog().Accounts))

	accts, err := NewService(db).List(ctx, h, ListOpts{})
	require.NoError(t, err)
	require.Len(t, accts, len(DefaultCatalog().Accounts))

	for i, e := range DefaultCatalog().Accounts {
		a := accts[i]
		assert.Equal(t, e.Code, a.Code)
		assert.Equal(t, e.Name, a.Name)
		assert.Equal(t, e.Type, a.Type)
		assert.Equal(t, model.AccountStatusActive, a.Status)
		assert.Equal(t, "Default "+string(e.Type)+" account", a.Description)
		assert.True(t, a.InitialBalance.IsZero(), "%s initial", a.Code)
		assert.True(t, a.CurrentBalance.IsZero(), "%s current", a.Code)
	}
}

func TestSeed_Twice(t *testing.T) {
	db := testdb.New(t)
	h := fixture.Ledger(t, db, "main")
	ctx := context.Background()
	seeder := NewSeeder(db)

	_, err := seeder.Seed(ctx, h)
	require.NoError(t, err)

	_, err = seeder.Seed(ctx, h)
	assert.True(t, apperr.IsConflict(err), "second seed: %v", err)

	accts, err := NewService(db).List(ctx, h, ListOpts{})
	require.NoError(t, err)
	assert.Len(t, accts, len(DefaultCatalog().Accounts))
}

func TestSeed_LedgerWithAccounts(t *testing.T) {
	db := testdb.New(t)
	h := fixture.Ledger(t, db, "main")
	ctx := context.Background()

	_, err := NewService(db).Create(ctx, h, CreateParams{Code: "9999", Name: "Custom", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	_, err = NewSeeder(db).Seed(ctx, h)
	assert.True(t, apperr.IsConflict(err), "seed over existing accounts: %v", err)

	accts, err := NewService(db).List(ctx, h, ListOpts{})
	require.NoError(t, err)
	assert.Len(t, accts, 1, "nothing is added when seeding is refused")

	// The refused attempt must not leave a marker behind.
	var markers int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chart_seeds`).Scan(&markers))
	assert.Zero(t, markers)
}

func TestSeed_AbortsWholeCatalog(t *testing.T) {
	db := testdb.New(t)
	h := fixture.Ledger(t, db, "main")
	ctx := context.Background()

	// A malformed catalog fails partway through; none of it may persist.
	bad := Catalog{Version: 2, Accounts: []CatalogEntry{
		{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset},
		{Code: "1000", Name: "Cash again", Type: model.AccountTypeAsset},
	}}
	_, err := NewSeeder(db, WithCatalog(bad)).Seed(ctx, h)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	accts, err := NewService(db).List(ctx, h, ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, accts)

	// The ledger can still be seeded afterwards.
	_, err = NewSeeder(db).Seed(ctx, h)
	require.NoError(t, err)
}

func TestSeed_LedgersAreIndependent(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	a := fixture.Ledger(t, db, "a")
	b := fixture.Ledger(t, db, "b")

	_, err := NewSeeder(db).Seed(ctx, a)
	require.NoError(t, err)
	_, err = NewSeeder(db).Seed(ctx, b)
	require.NoError(t, err)
}
