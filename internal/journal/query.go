package journal

import (
	"context"
	"fmt"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// DefaultPageSize is the page size List uses when none is given.
const DefaultPageSize = 50

// MaxPageSize caps the page size List accepts.
const MaxPageSize = 500

const txSelect = `SELECT t.id, t.account_id, t.counterpart_id, t.amount, t.direction, t.description, t.unit_tag,
	t.occurred_at, a1.code, a1.name, a2.code, a2.name
	FROM transactions t
	JOIN accounts a1 ON t.account_id = a1.id
	JOIN accounts a2 ON t.counterpart_id = a2.id`

// Get returns one transaction with both accounts' code and name.
func (ps *Poster) Get(ctx context.Context, h scope.Handle, txID string) (*model.Transaction, error) {
	return getTransaction(ctx, ps.db, h.LedgerID(), txID)
}

func getTransaction(ctx context.Context, q store.Querier, ledgerID, txID string) (*model.Transaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx,
		txSelect+` WHERE t.id = ? AND a1.ledger_id = ?`, txID, ledgerID,
	))
	if store.IsNoRows(err) {
		return nil, apperr.NotFound("transaction %s not found", txID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "reading transaction")
	}
	return t, nil
}

// ListOpts filters and pages List.
type ListOpts struct {
	// AccountID matches transactions where the account is primary or
	// counterpart.
	AccountID string
	Direction model.Direction
	Period    model.Period
	Page      int
	Limit     int
}

// Pagination describes the page List returned.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is one page of transactions, newest first.
type Page struct {
	Transactions []model.Transaction `json:"transactions"`
	Pagination   Pagination          `json:"pagination"`
}

// List returns the ledger's transactions matching opts, newest first.
func (ps *Poster) List(ctx context.Context, h scope.Handle, opts ListOpts) (*Page, error) {
	if opts.Direction != "" && !opts.Direction.Valid() {
		return nil, apperr.Validation("direction", "direction must be dr or cr, got %q", opts.Direction)
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultPageSize
	}
	if opts.Limit > MaxPageSize {
		return nil, apperr.Validation("limit", "limit must be at most %d", MaxPageSize)
	}

	where := ` WHERE a1.ledger_id = ?`
	args := []any{h.LedgerID()}
	if opts.AccountID != "" {
		where += ` AND (t.account_id = ? OR t.counterpart_id = ?)`
		args = append(args, opts.AccountID, opts.AccountID)
	}
	if opts.Direction != "" {
		where += ` AND t.direction = ?`
		args = append(args, string(opts.Direction))
	}
	where, args = periodFilter(where, args, opts.Period)

	page := &Page{Transactions: []model.Transaction{}}
	if err := ps.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions t JOIN accounts a1 ON t.account_id = a1.id`+where, args...,
	).Scan(&page.Pagination.Total); err != nil {
		return nil, apperr.Internal(err, "counting transactions")
	}

	rows, err := ps.db.QueryContext(ctx,
		txSelect+where+` ORDER BY t.occurred_at DESC, t.id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, (opts.Page-1)*opts.Limit)...,
	)
	if err != nil {
		return nil, apperr.Internal(err, "listing transactions")
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Internal(err, "listing transactions")
		}
		page.Transactions = append(page.Transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "listing transactions")
	}

	page.Pagination.Page = opts.Page
	page.Pagination.Limit = opts.Limit
	page.Pagination.Pages = (page.Pagination.Total + opts.Limit - 1) / opts.Limit
	return page, nil
}

// ListAll returns every transaction of the ledger within period, oldest
// first.
func (ps *Poster) ListAll(ctx context.Context, h scope.Handle, period model.Period) ([]model.Transaction, error) {
	where, args := periodFilter(` WHERE a1.ledger_id = ?`, []any{h.LedgerID()}, period)

	rows, err := ps.db.QueryContext(ctx, txSelect+where+` ORDER BY t.occurred_at, t.id`, args...)
	if err != nil {
		return nil, apperr.Internal(err, "listing transactions")
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Internal(err, "listing transactions")
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "listing transactions")
	}
	return out, nil
}

// Summary counts a ledger's transactions by recorded direction.
type Summary struct {
	Period            model.Period `json:"period"`
	TotalTransactions int          `json:"total_transactions"`
	DebitCount        int          `json:"debit_count"`
	CreditCount       int          `json:"credit_count"`
	TotalDebits       model.Money  `json:"total_debits"`
	TotalCredits      model.Money  `json:"total_credits"`
}

// Summary aggregates the ledger's transactions within period.
func (ps *Poster) Summary(ctx context.Context, h scope.Handle, period model.Period) (*Summary, error) {
	where, args := periodFilter(` WHERE a1.ledger_id = ?`, []any{h.LedgerID()}, period)

	var (
		s                   = &Summary{Period: period}
		debitSum, creditSum int64
	)
	err := ps.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		 COALESCE(SUM(CASE WHEN t.direction = 'dr' THEN 1 ELSE 0 END), 0),
		 COALESCE(SUM(CASE WHEN t.direction = 'cr' THEN 1 ELSE 0 END), 0),
		 COALESCE(SUM(CASE WHEN t.direction = 'dr' THEN t.amount ELSE 0 END), 0),
		 COALESCE(SUM(CASE WHEN t.direction = 'cr' THEN t.amount ELSE 0 END), 0)
		 FROM transactions t JOIN accounts a1 ON t.account_id = a1.id`+where,
		args...,
	).Scan(&s.TotalTransactions, &s.DebitCount, &s.CreditCount, &debitSum, &creditSum)
	if err != nil {
		return nil, apperr.Internal(err, "summarizing transactions")
	}
	s.TotalDebits = model.M(model.FromMinor(debitSum))
	s.TotalCredits = model.M(model.FromMinor(creditSum))
	return s, nil
}

// periodFilter appends inclusive time bounds on t.occurred_at.
func periodFilter(where string, args []any, p model.Period) (string, []any) {
	if !p.Start.IsZero() {
		where += ` AND t.occurred_at >= ?`
		args = append(args, store.FormatTime(p.Start))
	}
	if !p.End.IsZero() {
		where += ` AND t.occurred_at <= ?`
		args = append(args, store.FormatTime(p.End))
	}
	return where, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(sc scanner) (*model.Transaction, error) {
	var (
		t      model.Transaction
		amount int64
		dir    string
		ts     string
	)
	if err := sc.Scan(&t.ID, &t.AccountID, &t.CounterpartID, &amount, &dir, &t.Description, &t.UnitTag,
		&ts, &t.AccountCode, &t.AccountName, &t.CounterpartCode, &t.CounterpartName); err != nil {
		return nil, err
	}
	t.Amount = model.FromMinor(amount)
	t.Direction = model.Direction(dir)

	var err error
	if t.Timestamp, err = store.ParseTime(ts); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return &t, nil
}
