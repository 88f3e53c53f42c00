package statements

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
)

// TrialBalanceLine is one account with a non-zero balance.
type TrialBalanceLine struct {
	ID     string            `json:"id"`
	Code   string            `json:"account_code"`
	Name   string            `json:"account_name"`
	Type   model.AccountType `json:"account_type"`
	Debit  model.Money       `json:"debit_amount"`
	Credit model.Money       `json:"credit_amount"`
}

// TrialBalance places every non-zero balance in a debit or credit column.
type TrialBalance struct {
	AsOfDate     string             `json:"as_of_date"`
	Accounts     []TrialBalanceLine `json:"accounts"`
	TotalDebits  model.Money        `json:"total_debits"`
	TotalCredits model.Money        `json:"total_credits"`
	Difference   model.Money        `json:"difference"`
	Balanced     bool               `json:"balanced"`
}

// TrialBalance builds the trial balance from current balances in code
// order. asOf only labels the report; a zero asOf is today.
func (e *Engine) TrialBalance(ctx context.Context, h scope.Handle, asOf time.Time) (*TrialBalance, error) {
	defer metrics.ObserveReport("trial_balance", time.Now())

	accts, err := e.accounts.List(ctx, h, accounts.ListOpts{})
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{AsOfDate: e.dateOrToday(asOf), Accounts: []TrialBalanceLine{}}
	debits, credits := decimal.Zero, decimal.Zero
	for _, a := range accts {
		if a.CurrentBalance.IsZero() {
			continue
		}
		dr, cr := NormalizedClassification(a.Type, NormalBalance(a.Type, a.CurrentBalance))
		debits = debits.Add(dr)
		credits = credits.Add(cr)
		tb.Accounts = append(tb.Accounts, TrialBalanceLine{
			ID:     a.ID,
			Code:   a.Code,
			Name:   a.Name,
			Type:   a.Type,
			Debit:  model.M(dr),
			Credit: model.M(cr),
		})
	}

	tb.TotalDebits = model.M(debits)
	tb.TotalCredits = model.M(credits)
	tb.Difference = model.M(debits.Sub(credits))
	tb.Balanced = e.balanced(debits, credits)

	if !tb.Balanced {
		e.logger.Warn("trial balance out of balance",
			zap.String("ledger", h.LedgerName()),
			zap.Stringer("difference", tb.Difference),
		)
	}
	return tb, nil
}
