package statements

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
)

var hundred = decimal.NewFromInt(100)

// IncomeStatement sums revenue, COGS and expense accounts. Figures keep
// the raw sign, so revenue earned on credit shows as a negative total.
type IncomeStatement struct {
	Period            ReportPeriod `json:"period"`
	Revenues          []Line       `json:"revenues"`
	TotalRevenues     model.Money  `json:"total_revenues"`
	COGS              []Line       `json:"cogs"`
	TotalCOGS         model.Money  `json:"total_cogs"`
	GrossProfit       model.Money  `json:"gross_profit"`
	GrossProfitMargin string       `json:"gross_profit_margin"`
	Expenses          []Line       `json:"expenses"`
	TotalExpenses     model.Money  `json:"total_expenses"`
	NetIncome         model.Money  `json:"net_income"`
	NetProfitMargin   string       `json:"net_profit_margin"`
}

// IncomeStatement builds the income statement from current balances.
// period only labels the report; a missing end date is today.
func (e *Engine) IncomeStatement(ctx context.Context, h scope.Handle, period model.Period) (*IncomeStatement, error) {
	defer metrics.ObserveReport("income_statement", time.Now())

	groups, err := e.byType(ctx, h)
	if err != nil {
		return nil, err
	}

	lines := func(accts []model.Account) []Line {
		out := make([]Line, 0, len(accts))
		for _, a := range accts {
			out = append(out, lineOf(a))
		}
		return out
	}

	revenues := sumBalances(groups[model.AccountTypeRevenue])
	cogs := sumBalances(groups[model.AccountTypeCOGS])
	expenses := sumBalances(groups[model.AccountTypeExpense])
	gross := revenues.Sub(cogs)
	net := gross.Sub(expenses)

	return &IncomeStatement{
		Period:            e.period(period, true),
		Revenues:          lines(groups[model.AccountTypeRevenue]),
		TotalRevenues:     model.M(revenues),
		COGS:              lines(groups[model.AccountTypeCOGS]),
		TotalCOGS:         model.M(cogs),
		GrossProfit:       model.M(gross),
		GrossProfitMargin: Margin(gross, revenues),
		Expenses:          lines(groups[model.AccountTypeExpense]),
		TotalExpenses:     model.M(expenses),
		NetIncome:         model.M(net),
		NetProfitMargin:   Margin(net, revenues),
	}, nil
}

// Margin renders part as a percentage of revenue with two places, or "0%"
// when revenue is not positive.
func Margin(part, revenue decimal.Decimal) string {
	if !revenue.IsPositive() {
		return "0%"
	}
	return part.Div(revenue).Mul(hundred).StringFixed(2) + "%"
}
