package statements

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
)

// CurrentEarningsName names the equity line carrying the undistributed
// result of revenue, COGS and expense accounts.
const CurrentEarningsName = "Current Period Earnings"

// BalanceSheet lists asset, liability and equity accounts. Totals are in
// the accounting-normal convention.
type BalanceSheet struct {
	AsOfDate                  string      `json:"as_of_date"`
	Assets                    []Line      `json:"assets"`
	TotalAssets               model.Money `json:"total_assets"`
	Liabilities               []Line      `json:"liabilities"`
	TotalLiabilities          model.Money `json:"total_liabilities"`
	Equity                    []Line      `json:"equity"`
	TotalEquity               model.Money `json:"total_equity"`
	TotalLiabilitiesAndEquity model.Money `json:"total_liabilities_and_equity"`
	Balanced                  bool        `json:"balanced"`
}

// BalanceSheet builds the balance sheet from current balances. asOf only
// labels the report; a zero asOf is today.
func (e *Engine) BalanceSheet(ctx context.Context, h scope.Handle, asOf time.Time) (*BalanceSheet, error) {
	defer metrics.ObserveReport("balance_sheet", time.Now())

	groups, err := e.byType(ctx, h)
	if err != nil {
		return nil, err
	}

	bs := &BalanceSheet{
		AsOfDate:    e.dateOrToday(asOf),
		Assets:      []Line{},
		Liabilities: []Line{},
		Equity:      []Line{},
	}
	sum := func(dst *[]Line, accts []model.Account) decimal.Decimal {
		total := decimal.Zero
		for _, a := range accts {
			l := lineOf(a)
			*dst = append(*dst, l)
			total = total.Add(l.NormalBalance.Decimal)
		}
		return total
	}
	assets := sum(&bs.Assets, groups[model.AccountTypeAsset])
	liabilities := sum(&bs.Liabilities, groups[model.AccountTypeLiability])
	equity := sum(&bs.Equity, groups[model.AccountTypeEquity])

	nominal := sumBalances(groups[model.AccountTypeRevenue]).
		Add(sumBalances(groups[model.AccountTypeCOGS])).
		Add(sumBalances(groups[model.AccountTypeExpense]))
	if !nominal.IsZero() {
		earnings := NormalBalance(model.AccountTypeEquity, nominal)
		bs.Equity = append(bs.Equity, Line{
			Name:          CurrentEarningsName,
			Balance:       model.M(nominal),
			NormalBalance: model.M(earnings),
		})
		equity = equity.Add(earnings)
	}

	bs.TotalAssets = model.M(assets)
	bs.TotalLiabilities = model.M(liabilities)
	bs.TotalEquity = model.M(equity)
	bs.TotalLiabilitiesAndEquity = model.M(liabilities.Add(equity))
	bs.Balanced = e.balanced(assets, liabilities.Add(equity))

	if !bs.Balanced {
		e.logger.Warn("balance sheet out of balance",
			zap.String("ledger", h.LedgerName()),
			zap.Stringer("assets", bs.TotalAssets),
			zap.Stringer("liabilities_and_equity", bs.TotalLiabilitiesAndEquity),
		)
	}
	return bs, nil
}
