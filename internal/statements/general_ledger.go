package statements

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// GeneralLedgerOpts narrows the general ledger. Zero values select
// everything.
type GeneralLedgerOpts struct {
	AccountID string
	Period    model.Period
}

// OtherAccount names the account on the other side of an entry.
type OtherAccount struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Entry is one transaction as seen from the displayed account. Direction
// is that account's side, so it is flipped when the account was the
// counterpart.
type Entry struct {
	TransactionID string          `json:"transaction_id"`
	Amount        model.Money     `json:"amount"`
	Direction     model.Direction `json:"direction"`
	Description   string          `json:"description"`
	UnitTag       string          `json:"unit_tag,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Other         OtherAccount    `json:"corresponding_account"`
}

// LedgerAccount is an account with its entries, oldest first.
type LedgerAccount struct {
	ID      string            `json:"id"`
	Code    string            `json:"code"`
	Name    string            `json:"name"`
	Type    model.AccountType `json:"type"`
	Entries []Entry           `json:"transactions"`
}

// GeneralLedger is every selected account in code order.
type GeneralLedger struct {
	Period   ReportPeriod    `json:"period"`
	Accounts []LedgerAccount `json:"accounts"`
}

// GeneralLedger lists each account's transactions as primary or
// counterpart. Accounts without transactions in the period are still
// listed.
func (e *Engine) GeneralLedger(ctx context.Context, h scope.Handle, opts GeneralLedgerOpts) (*GeneralLedger, error) {
	defer metrics.ObserveReport("general_ledger", time.Now())

	var accts []model.Account
	if opts.AccountID != "" {
		a, err := e.accounts.Get(ctx, h, opts.AccountID)
		if err != nil {
			return nil, err
		}
		accts = []model.Account{*a}
	} else {
		var err error
		if accts, err = e.accounts.List(ctx, h, accounts.ListOpts{}); err != nil {
			return nil, err
		}
	}

	gl := &GeneralLedger{
		Period:   e.period(opts.Period, false),
		Accounts: make([]LedgerAccount, len(accts)),
	}
	index := make(map[string]int, len(accts))
	for i, a := range accts {
		gl.Accounts[i] = LedgerAccount{ID: a.ID, Code: a.Code, Name: a.Name, Type: a.Type, Entries: []Entry{}}
		index[a.ID] = i
	}

	rows, err := e.ledgerRows(ctx, h, opts)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if i, ok := index[r.accountID]; ok {
			gl.Accounts[i].Entries = append(gl.Accounts[i].Entries, r.entry(r.direction, r.counterpart()))
		}
		if i, ok := index[r.counterpartID]; ok {
			gl.Accounts[i].Entries = append(gl.Accounts[i].Entries, r.entry(r.direction.Opposite(), r.primary()))
		}
	}
	return gl, nil
}

type ledgerRow struct {
	id              string
	accountID       string
	accountCode     string
	accountName     string
	counterpartID   string
	counterpartCode string
	counterpartName string
	amount          int64
	direction       model.Direction
	description     string
	unitTag         string
	occurredAt      time.Time
}

func (r ledgerRow) primary() OtherAccount {
	return OtherAccount{ID: r.accountID, Code: r.accountCode, Name: r.accountName}
}

func (r ledgerRow) counterpart() OtherAccount {
	return OtherAccount{ID: r.counterpartID, Code: r.counterpartCode, Name: r.counterpartName}
}

func (r ledgerRow) entry(dir model.Direction, other OtherAccount) Entry {
	return Entry{
		TransactionID: r.id,
		Amount:        model.M(model.FromMinor(r.amount)),
		Direction:     dir,
		Description:   r.description,
		UnitTag:       r.unitTag,
		Timestamp:     r.occurredAt,
		Other:         other,
	}
}

// ledgerRows reads the ledger's transactions in the period, oldest first.
func (e *Engine) ledgerRows(ctx context.Context, h scope.Handle, opts GeneralLedgerOpts) ([]ledgerRow, error) {
	query := `SELECT t.id, t.account_id, a1.code, a1.name, t.counterpart_id, a2.code, a2.name,
		t.amount, t.direction, t.description, t.unit_tag, t.occurred_at
		FROM transactions t
		JOIN accounts a1 ON t.account_id = a1.id
		JOIN accounts a2 ON t.counterpart_id = a2.id
		WHERE a1.ledger_id = ?`
	args := []any{h.LedgerID()}
	if opts.AccountID != "" {
		query += ` AND (t.account_id = ? OR t.counterpart_id = ?)`
		args = append(args, opts.AccountID, opts.AccountID)
	}
	if !opts.Period.Start.IsZero() {
		query += ` AND t.occurred_at >= ?`
		args = append(args, store.FormatTime(opts.Period.Start))
	}
	if !opts.Period.End.IsZero() {
		query += ` AND t.occurred_at <= ?`
		args = append(args, store.FormatTime(opts.Period.End))
	}
	query += ` ORDER BY t.occurred_at, t.id`

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err, "reading general ledger")
	}
	defer rows.Close()

	var out []ledgerRow
	for rows.Next() {
		var (
			r   ledgerRow
			dir string
			ts  string
		)
		if err := rows.Scan(&r.id, &r.accountID, &r.accountCode, &r.accountName,
			&r.counterpartID, &r.counterpartCode, &r.counterpartName,
			&r.amount, &dir, &r.description, &r.unitTag, &ts); err != nil {
			return nil, apperr.Internal(err, "reading general ledger")
		}
		r.direction = model.Direction(dir)
		if r.occurredAt, err = store.ParseTime(ts); err != nil {
			return nil, apperr.Internal(fmt.Errorf("transaction %s: %w", r.id, err), "reading general ledger")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "reading general ledger")
	}
	return out, nil
}
