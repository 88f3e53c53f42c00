package journal

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/balance"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
	"github.com/cleared-dev/finreport/internal/testutil/fixture"
	"github.com/cleared-dev/finreport/internal/testutil/testdb"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

type env struct {
	db     *store.DB
	h      scope.Handle
	poster *Poster
	accts  *accounts.Service
	byCode map[string]model.Account
}

func seeded(t *testing.T, db *store.DB, name string) env {
	t.Helper()
	h := fixture.Ledger(t, db, name)
	created, err := accounts.NewSeeder(db).Seed(context.Background(), h)
	require.NoError(t, err)

	byCode := make(map[string]model.Account, len(created))
	for _, a := range created {
		byCode[a.Code] = a
	}
	return env{db: db, h: h, poster: NewPoster(db), accts: accounts.NewService(db), byCode: byCode}
}

func newEnv(t *testing.T) env {
	t.Helper()
	return seeded(t, testdb.New(t), "main")
}

func (e env) balance(t *testing.T, code string) string {
	t.Helper()
	a, err := e.accts.GetByCode(context.Background(), e.h, code)
	require.NoError(t, err)
	return a.CurrentBalance.StringFixed(2)
}

func (e env) sale(amount string) PostParams {
	return PostParams{
		AccountID:     e.byCode["1000"].ID,
		CounterpartID: e.byCode["4000"].ID,
		Amount:        dec(amount),
		Direction:     model.Debit,
		Description:   "cash sale",
	}
}

func TestPost_CashSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tx, err := e.poster.Post(ctx, e.h, e.sale("100.00"))
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "1000", tx.AccountCode)
	assert.Equal(t, "Sales Revenue", tx.CounterpartName)

	assert.Equal(t, "100.00", e.balance(t, "1000"))
	assert.Equal(t, "-100.00", e.balance(t, "4000"))

	got, err := e.poster.Get(ctx, e.h, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(dec("100")))
	assert.Equal(t, model.Debit, got.Direction)
	assert.Equal(t, "cash sale", got.Description)
	assert.True(t, tx.Timestamp.Equal(got.Timestamp))
}

func TestReverse_RestoresBalances(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tx, err := e.poster.Post(ctx, e.h, e.sale("100.00"))
	require.NoError(t, err)

	reversed, err := e.poster.Reverse(ctx, e.h, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, reversed.ID)
	assert.True(t, reversed.Amount.Equal(dec("100")))

	assert.Equal(t, "0.00", e.balance(t, "1000"))
	assert.Equal(t, "0.00", e.balance(t, "4000"))

	_, err = e.poster.Get(ctx, e.h, tx.ID)
	assert.True(t, apperr.IsNotFound(err), "row must be gone")

	_, err = e.poster.Reverse(ctx, e.h, tx.ID)
	assert.True(t, apperr.IsNotFound(err), "second reversal")
}

func TestReverse_CreditRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Paying a supplier: Accounts Payable debited, Cash credited, recorded
	// from the cash side.
	p := PostParams{
		AccountID:     e.byCode["1000"].ID,
		CounterpartID: e.byCode["2000"].ID,
		Amount:        dec("42.17"),
		Direction:     model.Credit,
		Description:   "pay supplier",
	}
	tx, err := e.poster.Post(ctx, e.h, p)
	require.NoError(t, err)
	assert.Equal(t, "-42.17", e.balance(t, "1000"))
	assert.Equal(t, "42.17", e.balance(t, "2000"))

	_, err = e.poster.Reverse(ctx, e.h, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", e.balance(t, "1000"))
	assert.Equal(t, "0.00", e.balance(t, "2000"))
}

func TestPost_AccountsFromOtherLedger(t *testing.T) {
	db := testdb.New(t)
	a := seeded(t, db, "a")
	b := seeded(t, db, "b")
	ctx := context.Background()

	p := PostParams{
		AccountID:     a.byCode["1000"].ID,
		CounterpartID: b.byCode["4000"].ID,
		Amount:        dec("100"),
		Direction:     model.Debit,
		Description:   "cross-ledger",
	}
	for _, target := range []env{a, b} {
		_, err := target.poster.Post(ctx, target.h, p)
		assert.True(t, apperr.IsNotFound(err), "ledger %s: %v", target.h.LedgerName(), err)
	}

	assert.Equal(t, "0.00", a.balance(t, "1000"))
	assert.Equal(t, "0.00", b.balance(t, "4000"))

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&rows))
	assert.Zero(t, rows)
}

func TestPost_MissingAccount(t *testing.T) {
	e := newEnv(t)
	p := e.sale("10")
	p.CounterpartID = "does-not-exist"

	_, err := e.poster.Post(context.Background(), e.h, p)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, "0.00", e.balance(t, "1000"))
}

func TestPost_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*PostParams)
		field  string
	}{
		{"zero amount", func(p *PostParams) { p.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(p *PostParams) { p.Amount = dec("-5") }, "amount"},
		{"three places", func(p *PostParams) { p.Amount = dec("1.001") }, "amount"},
		{"past int64 cents", func(p *PostParams) { p.Amount = dec("92233720368547758.08") }, "amount"},
		{"wraps to one dollar", func(p *PostParams) { p.Amount = dec("184467440737095517.16") }, "amount"},
		{"bad direction", func(p *PostParams) { p.Direction = "debit" }, "direction"},
		{"same account", func(p *PostParams) { p.CounterpartID = p.AccountID }, "counterpart_account_id"},
		{"no description", func(p *PostParams) { p.Description = "  " }, "description"},
		{"no primary", func(p *PostParams) { p.AccountID = "" }, "account_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := e.sale("10")
			tt.mutate(&p)
			_, err := e.poster.Post(ctx, e.h, p)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
	assert.Equal(t, "0.00", e.balance(t, "1000"))
	assert.Equal(t, "0.00", e.balance(t, "4000"))
}

func TestValidatePost_CollectsAll(t *testing.T) {
	errs := ValidatePost(PostParams{})
	fields := make([]string, len(errs))
	for i, ve := range errs {
		fields[i] = ve.Field
	}
	assert.Equal(t, []string{"account_id", "counterpart_account_id", "amount", "direction", "description"}, fields)
}

func TestUpdateDescription(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tx, err := e.poster.Post(ctx, e.h, e.sale("12.00"))
	require.NoError(t, err)

	got, err := e.poster.UpdateDescription(ctx, e.h, tx.ID, "invoice 17")
	require.NoError(t, err)
	assert.Equal(t, "invoice 17", got.Description)
	assert.True(t, got.Amount.Equal(dec("12")))
	assert.Equal(t, "12.00", e.balance(t, "1000"))

	_, err = e.poster.UpdateDescription(ctx, e.h, tx.ID, "")
	assert.True(t, apperr.IsValidation(err))

	_, err = e.poster.UpdateDescription(ctx, e.h, "missing", "x")
	assert.True(t, apperr.IsNotFound(err))
}

func TestBalanceInvariant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	codes := make([]string, 0, len(e.byCode))
	for code := range e.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var posted []string
	for i := 0; i < 60; i++ {
		if len(posted) > 0 && rng.Intn(4) == 0 {
			k := rng.Intn(len(posted))
			_, err := e.poster.Reverse(ctx, e.h, posted[k])
			require.NoError(t, err)
			posted = append(posted[:k], posted[k+1:]...)
			continue
		}

		a := codes[rng.Intn(len(codes))]
		b := codes[rng.Intn(len(codes))]
		if a == b {
			continue
		}
		dir := model.Debit
		if rng.Intn(2) == 0 {
			dir = model.Credit
		}
		tx, err := e.poster.Post(ctx, e.h, PostParams{
			AccountID:     e.byCode[a].ID,
			CounterpartID: e.byCode[b].ID,
			Amount:        decimal.New(int64(1+rng.Intn(100000)), -2),
			Direction:     dir,
			Description:   "random",
		})
		require.NoError(t, err)
		posted = append(posted, tx.ID)
	}

	txs, err := e.poster.ListAll(ctx, e.h, model.Period{})
	require.NoError(t, err)
	require.Len(t, txs, len(posted))

	expected := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		expected[tx.AccountID] = expected[tx.AccountID].Add(balance.RawEffect(tx.Amount, tx.Direction))
		expected[tx.CounterpartID] = expected[tx.CounterpartID].Add(balance.RawEffect(tx.Amount, tx.Direction.Opposite()))
	}

	all, err := e.accts.List(ctx, e.h, accounts.ListOpts{})
	require.NoError(t, err)
	total := decimal.Zero
	for _, a := range all {
		want := a.InitialBalance.Add(expected[a.ID])
		assert.True(t, a.CurrentBalance.Equal(want), "%s: current %s, want %s", a.Code, a.CurrentBalance, want)
		total = total.Add(a.CurrentBalance)
	}
	assert.True(t, total.IsZero(), "raw balances across a ledger always sum to zero")
}

func TestList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i, d := range []time.Time{date(2024, 1, 10), date(2024, 2, 10), date(2024, 3, 10)} {
		p := e.sale("10")
		p.Timestamp = d
		if i == 1 {
			p.CounterpartID = e.byCode["1100"].ID
			p.Direction = model.Credit
		}
		_, err := e.poster.Post(ctx, e.h, p)
		require.NoError(t, err)
	}

	page, err := e.poster.List(ctx, e.h, ListOpts{})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 3)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, DefaultPageSize, page.Pagination.Limit)
	assert.True(t, page.Transactions[0].Timestamp.Equal(date(2024, 3, 10)), "newest first")

	page, err = e.poster.List(ctx, e.h, ListOpts{Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, 2, page.Pagination.Pages)

	page, err = e.poster.List(ctx, e.h, ListOpts{AccountID: e.byCode["1100"].ID})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Total, "counterpart matches")

	page, err = e.poster.List(ctx, e.h, ListOpts{Direction: model.Credit})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Total)

	page, err = e.poster.List(ctx, e.h, ListOpts{Period: model.Period{Start: date(2024, 2, 1), End: date(2024, 2, 28)}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Total)

	_, err = e.poster.List(ctx, e.h, ListOpts{Direction: "up"})
	assert.True(t, apperr.IsValidation(err))
}

func TestSummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.poster.Post(ctx, e.h, e.sale("100.00"))
	require.NoError(t, err)
	_, err = e.poster.Post(ctx, e.h, e.sale("0.50"))
	require.NoError(t, err)
	refund := e.sale("20.25")
	refund.Direction = model.Credit
	_, err = e.poster.Post(ctx, e.h, refund)
	require.NoError(t, err)

	s, err := e.poster.Summary(ctx, e.h, model.Period{})
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalTransactions)
	assert.Equal(t, 2, s.DebitCount)
	assert.Equal(t, 1, s.CreditCount)
	assert.Equal(t, "100.50", s.TotalDebits.String())
	assert.Equal(t, "20.25", s.TotalCredits.String())

	empty, err := e.poster.Summary(ctx, e.h, model.Period{End: date(2000, 1, 1)})
	require.NoError(t, err)
	assert.Zero(t, empty.TotalTransactions)
	assert.Equal(t, "0.00", empty.TotalDebits.String())
}
