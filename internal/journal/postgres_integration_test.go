//go:build integration

package journal

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/testutil/testdb"
)

func TestIntegration_Postgres_PostAndReverse(t *testing.T) {
	e := seeded(t, testdb.Postgres(t), "main")
	ctx := context.Background()

	tx, err := e.poster.Post(ctx, e.h, e.sale("100.00"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", e.balance(t, "1000"))
	assert.Equal(t, "-100.00", e.balance(t, "4000"))

	err = e.accts.Delete(ctx, e.h, e.byCode["1000"].ID)
	assert.True(t, apperr.IsConflict(err), "account with history: %v", err)

	_, err = accounts.NewSeeder(e.db).Seed(ctx, e.h)
	assert.True(t, apperr.IsConflict(err), "second seed: %v", err)

	_, err = e.poster.Reverse(ctx, e.h, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", e.balance(t, "1000"))
	assert.Equal(t, "0.00", e.balance(t, "4000"))

	require.NoError(t, e.accts.Delete(ctx, e.h, e.byCode["1000"].ID))
}

func TestIntegration_Postgres_ConcurrentPosts(t *testing.T) {
	e := seeded(t, testdb.Postgres(t), "main")
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.poster.Post(ctx, e.h, e.sale("1.25"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, "25.00", e.balance(t, "1000"))
	assert.Equal(t, "-25.00", e.balance(t, "4000"))

	page, err := e.poster.List(ctx, e.h, ListOpts{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, n, page.Pagination.Total)
}
