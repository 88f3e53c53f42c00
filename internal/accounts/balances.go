package accounts

import (
	"context"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
)

// BalanceLine is an account's current balance.
type BalanceLine struct {
	ID      string      `json:"id"`
	Code    string      `json:"code"`
	Name    string      `json:"name"`
	Balance model.Money `json:"balance"`
}

// Balances groups a ledger's account balances by type, each group in code
// order.
type Balances struct {
	Assets      []BalanceLine `json:"assets"`
	Liabilities []BalanceLine `json:"liabilities"`
	Equity      []BalanceLine `json:"equity"`
	Revenues    []BalanceLine `json:"revenues"`
	COGS        []BalanceLine `json:"cogs"`
	Expenses    []BalanceLine `json:"expenses"`
}

func (b *Balances) group(t model.AccountType) *[]BalanceLine {
	switch t {
	case model.AccountTypeAsset:
		return &b.Assets
	case model.AccountTypeLiability:
		return &b.Liabilities
	case model.AccountTypeEquity:
		return &b.Equity
	case model.AccountTypeRevenue:
		return &b.Revenues
	case model.AccountTypeCOGS:
		return &b.COGS
	default:
		return &b.Expenses
	}
}

// Balances returns the ledger's current balances grouped by account type.
func (s *Service) Balances(ctx context.Context, h scope.Handle) (*Balances, error) {
	accts, err := s.List(ctx, h, ListOpts{})
	if err != nil {
		return nil, err
	}

	b := &Balances{
		Assets:      []BalanceLine{},
		Liabilities: []BalanceLine{},
		Equity:      []BalanceLine{},
		Revenues:    []BalanceLine{},
		COGS:        []BalanceLine{},
		Expenses:    []BalanceLine{},
	}
	for _, a := range accts {
		g := b.group(a.Type)
		*g = append(*g, BalanceLine{ID: a.ID, Code: a.Code, Name: a.Name, Balance: model.M(a.CurrentBalance)})
	}
	return b, nil
}

// TypeStat aggregates the accounts of one type.
type TypeStat struct {
	Type         model.AccountType `json:"type"`
	Count        int               `json:"count"`
	TotalBalance model.Money       `json:"total_balance"`
}

// LedgerStats summarizes a ledger.
type LedgerStats struct {
	LedgerName       string     `json:"ledger_name"`
	AccountCount     int        `json:"account_count"`
	TransactionCount int        `json:"transaction_count"`
	ByType           []TypeStat `json:"by_type"`
}

// Stats counts the ledger's accounts and transactions and totals balances
// per account type. Types without accounts are omitted.
func (s *Service) Stats(ctx context.Context, h scope.Handle) (*LedgerStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, COUNT(*), COALESCE(SUM(current_balance), 0) FROM accounts
		 WHERE ledger_id = ? GROUP BY type`,
		h.LedgerID(),
	)
	if err != nil {
		return nil, apperr.Internal(err, "reading ledger stats")
	}
	byType := make(map[model.AccountType]TypeStat)
	for rows.Next() {
		var (
			typ   string
			count int
			total int64
		)
		if err := rows.Scan(&typ, &count, &total); err != nil {
			rows.Close()
			return nil, apperr.Internal(err, "reading ledger stats")
		}
		at := model.AccountType(typ)
		byType[at] = TypeStat{Type: at, Count: count, TotalBalance: model.M(model.FromMinor(total))}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, apperr.Internal(err, "reading ledger stats")
	}
	rows.Close()

	stats := &LedgerStats{LedgerName: h.LedgerName(), ByType: []TypeStat{}}
	for _, t := range model.AccountTypes {
		if ts, ok := byType[t]; ok {
			stats.ByType = append(stats.ByType, ts)
			stats.AccountCount += ts.Count
		}
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions t JOIN accounts a ON t.account_id = a.id WHERE a.ledger_id = ?`,
		h.LedgerID(),
	).Scan(&stats.TransactionCount); err != nil {
		return nil, apperr.Internal(err, "counting transactions")
	}
	return stats, nil
}

// OwnedAccount is an account listed across every ledger a caller owns.
type OwnedAccount struct {
	model.Account
	LedgerName string `json:"ledger_name"`
	EntityName string `json:"entity_name"`
}

// ListForOwner returns every account in every ledger of every entity owned by
// caller, ordered by entity name, ledger name and code.
func (s *Service) ListForOwner(ctx context.Context, caller string) ([]OwnedAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.ledger_id, a.code, a.name, a.type, a.description, a.initial_balance, a.current_balance,
		 a.parent_id, a.status, a.metadata, a.created_at, a.updated_at, l.name, e.name
		 FROM accounts a
		 JOIN ledgers l ON a.ledger_id = l.id
		 JOIN entities e ON l.entity_id = e.id
		 WHERE e.owner_id = ?
		 ORDER BY e.name, l.name, a.code`,
		caller,
	)
	if err != nil {
		return nil, apperr.Internal(err, "listing accounts")
	}
	defer rows.Close()

	var out []OwnedAccount
	for rows.Next() {
		var oa OwnedAccount
		a, err := ScanAccount(&suffixScanner{rows: rows, extra: []any{&oa.LedgerName, &oa.EntityName}})
		if err != nil {
			return nil, apperr.Internal(err, "listing accounts")
		}
		oa.Account = *a
		out = append(out, oa)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "listing accounts")
	}
	return out, nil
}

// suffixScanner appends extra destinations after the account columns.
type suffixScanner struct {
	rows  scanner
	extra []any
}

func (s *suffixScanner) Scan(dest ...any) error {
	return s.rows.Scan(append(dest, s.extra...)...)
}
