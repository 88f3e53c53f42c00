package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/testutil/testdb"
)

func TestEntityLifecycle(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)
	ctx := context.Background()

	e, err := svc.CreateEntity(ctx, "alice", EntityParams{Name: " Acme ", Country: "US", Metadata: map[string]any{"tier": "gold"}})
	require.NoError(t, err)
	assert.Equal(t, "Acme", e.Name)
	assert.Equal(t, 1, e.FYStartMonth)
	assert.True(t, e.AccrualMethod)

	got, err := svc.GetEntity(ctx, "alice", e.ID)
	require.NoError(t, err)
	assert.Equal(t, "US", got.Country)
	assert.Equal(t, "gold", got.Metadata["tier"])

	_, err = svc.GetEntity(ctx, "bob", e.ID)
	assert.True(t, apperr.IsNotFound(err), "other callers must not see the entity")

	cash := false
	updated, err := svc.UpdateEntity(ctx, "alice", e.ID, EntityParams{Name: "Acme Ltd", FYStartMonth: 4, AccrualMethod: &cash})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)
	assert.Equal(t, 4, updated.FYStartMonth)
	assert.False(t, updated.AccrualMethod)

	list, err := svc.ListEntities(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Empty(t, list[0].Country, "update replaces every writable field")

	require.NoError(t, svc.DeleteEntity(ctx, "alice", e.ID))
	err = svc.DeleteEntity(ctx, "alice", e.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestEntityContactFields(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)
	ctx := context.Background()

	e, err := svc.CreateEntity(ctx, "alice", EntityParams{
		Name:     "Acme",
		Address1: "1 Main St",
		Address2: "Suite 4",
		City:     "Springfield",
		State:    "IL",
		ZipCode:  "62701",
		Website:  "https://acme.example",
		Phone:    "+1 555 0100",
	})
	require.NoError(t, err)

	got, err := svc.GetEntity(ctx, "alice", e.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", got.Address1)
	assert.Equal(t, "Suite 4", got.Address2)
	assert.Equal(t, "Springfield", got.City)
	assert.Equal(t, "IL", got.State)
	assert.Equal(t, "62701", got.ZipCode)
	assert.Equal(t, "https://acme.example", got.Website)
	assert.Equal(t, "+1 555 0100", got.Phone)
	assert.False(t, got.Hidden)

	updated, err := svc.UpdateEntity(ctx, "alice", e.ID, EntityParams{Name: "Acme", City: "Chicago", Hidden: true})
	require.NoError(t, err)
	assert.Equal(t, "Chicago", updated.City)
	assert.Empty(t, updated.Address1)
	assert.True(t, updated.Hidden)
}

func TestCreateEntity_Validation(t *testing.T) {
	svc := NewService(testdb.New(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		caller string
		params EntityParams
		field  string
	}{
		{"missing caller", "", EntityParams{Name: "Acme"}, "caller"},
		{"missing name", "alice", EntityParams{}, "name"},
		{"bad month", "alice", EntityParams{Name: "Acme", FYStartMonth: 13}, "fy_start_month"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntity(ctx, tt.caller, tt.params)
			require.Error(t, err)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestLedgerLifecycle(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)
	ctx := context.Background()

	e, err := svc.CreateEntity(ctx, "alice", EntityParams{Name: "Acme"})
	require.NoError(t, err)

	l, err := svc.CreateLedger(ctx, "alice", e.ID, LedgerParams{Name: "main"})
	require.NoError(t, err)
	assert.Equal(t, e.ID, l.EntityID)

	_, err = svc.CreateLedger(ctx, "alice", e.ID, LedgerParams{Name: "main"})
	assert.True(t, apperr.IsValidation(err), "duplicate ledger name: %v", err)

	_, err = svc.CreateLedger(ctx, "bob", e.ID, LedgerParams{Name: "other"})
	assert.True(t, apperr.IsNotFound(err))

	updated, err := svc.UpdateLedger(ctx, "alice", e.ID, "main", LedgerUpdate{Locked: true})
	require.NoError(t, err)
	assert.True(t, updated.Locked)
	assert.False(t, updated.Posted)

	ledgers, err := svc.ListLedgers(ctx, "alice", e.ID)
	require.NoError(t, err)
	require.Len(t, ledgers, 1)
	assert.Equal(t, "main", ledgers[0].Name)

	stats, err := svc.EntityStats(ctx, "alice", e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LedgerCount)
	assert.Zero(t, stats.AccountCount)

	require.NoError(t, svc.DeleteLedger(ctx, "alice", e.ID, "main"))
	_, err = svc.GetLedger(ctx, "alice", e.ID, "main")
	assert.True(t, apperr.IsNotFound(err))
}

func TestResolve(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)
	r := NewResolver(db)
	ctx := context.Background()

	e, err := svc.CreateEntity(ctx, "alice", EntityParams{Name: "Acme"})
	require.NoError(t, err)
	l, err := svc.CreateLedger(ctx, "alice", e.ID, LedgerParams{Name: "main"})
	require.NoError(t, err)

	h, err := r.Resolve(ctx, "alice", e.ID, "main")
	require.NoError(t, err)
	assert.True(t, h.Valid())
	assert.Equal(t, l.ID, h.LedgerID())
	assert.Equal(t, e.ID, h.EntityID())
	assert.Equal(t, "main", h.LedgerName())

	_, err = r.Resolve(ctx, "bob", e.ID, "main")
	assert.True(t, apperr.IsNotFound(err))

	_, err = r.Resolve(ctx, "alice", e.ID, "missing")
	assert.True(t, apperr.IsNotFound(err))

	_, err = r.Resolve(ctx, "", e.ID, "main")
	assert.True(t, apperr.IsValidation(err))

	assert.False(t, Handle{}.Valid())
}
