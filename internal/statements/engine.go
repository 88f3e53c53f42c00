// Package statements builds the financial reports of a ledger from its
// stored balances and transaction history.
//
// Balances are stored under the raw convention: a debit adds to an account
// and a credit subtracts, whatever the account type. Reports that present
// figures in the accounting-normal convention convert with NormalBalance;
// the income statement and cash flow keep raw signs.
package statements

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// DateLayout formats report dates.
const DateLayout = "2006-01-02"

// Config holds report settings.
type Config struct {
	// CashAccountCode is the account whose balance is the ending cash of
	// the cash flow statement.
	CashAccountCode string
	// Tolerance is the largest difference a report still calls balanced.
	Tolerance decimal.Decimal
}

// DefaultConfig returns the standard report settings.
func DefaultConfig() Config {
	return Config{
		CashAccountCode: "1000",
		Tolerance:       decimal.New(1, -2),
	}
}

// Engine builds reports. It never writes.
type Engine struct {
	db       *store.DB
	accounts *accounts.Service
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default report settings.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the clock used for default report dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine reading from db.
func NewEngine(db *store.DB, opts ...Option) *Engine {
	e := &Engine{db: db, cfg: DefaultConfig(), logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.accounts = accounts.NewService(db, accounts.WithLogger(e.logger))
	return e
}

// Line is one account on a report.
type Line struct {
	ID      string      `json:"id,omitempty"`
	Code    string      `json:"code,omitempty"`
	Name    string      `json:"name"`
	Balance model.Money `json:"balance"`
	// NormalBalance is Balance in the accounting-normal convention.
	NormalBalance model.Money `json:"normal_balance"`
}

func lineOf(a model.Account) Line {
	return Line{
		ID:            a.ID,
		Code:          a.Code,
		Name:          a.Name,
		Balance:       model.M(a.CurrentBalance),
		NormalBalance: model.M(NormalBalance(a.Type, a.CurrentBalance)),
	}
}

// ReportPeriod is the period a report describes, as dates.
type ReportPeriod struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// byType groups the ledger's accounts by type, each group in code order.
func (e *Engine) byType(ctx context.Context, h scope.Handle) (map[model.AccountType][]model.Account, error) {
	all, err := e.accounts.List(ctx, h, accounts.ListOpts{})
	if err != nil {
		return nil, err
	}
	out := make(map[model.AccountType][]model.Account, len(model.AccountTypes))
	for _, a := range all {
		out[a.Type] = append(out[a.Type], a)
	}
	return out, nil
}

func (e *Engine) dateOrToday(t time.Time) string {
	if t.IsZero() {
		t = e.now()
	}
	return t.UTC().Format(DateLayout)
}

func (e *Engine) period(p model.Period, defaultEnd bool) ReportPeriod {
	var rp ReportPeriod
	if !p.Start.IsZero() {
		s := p.Start.UTC().Format(DateLayout)
		rp.StartDate = &s
	}
	if !p.End.IsZero() || defaultEnd {
		s := e.dateOrToday(p.End)
		rp.EndDate = &s
	}
	return rp
}

func (e *Engine) balanced(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(e.cfg.Tolerance)
}

// DebitNormal reports whether t increases on the debit side: Asset,
// Expense and COGS.
func DebitNormal(t model.AccountType) bool {
	switch t {
	case model.AccountTypeAsset, model.AccountTypeExpense, model.AccountTypeCOGS:
		return true
	}
	return false
}

// NormalBalance converts a raw balance to the accounting-normal
// convention, in which an account's usual balance is positive.
func NormalBalance(t model.AccountType, raw decimal.Decimal) decimal.Decimal {
	if DebitNormal(t) {
		return raw
	}
	return raw.Neg()
}

// NormalizedClassification places a normal-signed balance in the debit or
// credit column of a trial balance. A positive balance goes to the type's
// normal column, a negative one to the other column; the unused column is
// zero.
func NormalizedClassification(t model.AccountType, normal decimal.Decimal) (debit, credit decimal.Decimal) {
	normalColumnIsDebit := DebitNormal(t)
	if normal.IsNegative() {
		normalColumnIsDebit = !normalColumnIsDebit
	}
	if normalColumnIsDebit {
		return normal.Abs(), decimal.Zero
	}
	return decimal.Zero, normal.Abs()
}

func sumBalances(accts []model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accts {
		total = total.Add(a.CurrentBalance)
	}
	return total
}
