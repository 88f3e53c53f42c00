package statements

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
)

// CashFlowItem is one detail line of a cash flow section.
type CashFlowItem struct {
	Item   string      `json:"item"`
	Amount model.Money `json:"amount"`
}

// CashFlow is an indirect-method approximation built from current
// balances. Investing and financing are not tracked and always report zero.
type CashFlow struct {
	Period           ReportPeriod   `json:"period"`
	Operating        model.Money    `json:"cash_from_operating_activities"`
	Investing        model.Money    `json:"cash_from_investing_activities"`
	Financing        model.Money    `json:"cash_from_financing_activities"`
	NetIncrease      model.Money    `json:"net_increase_in_cash"`
	BeginningCash    model.Money    `json:"beginning_cash_balance"`
	EndingCash       model.Money    `json:"ending_cash_balance"`
	OperatingDetails []CashFlowItem `json:"operating_activities_details"`
	InvestingDetails []CashFlowItem `json:"investing_activities_details"`
	FinancingDetails []CashFlowItem `json:"financing_activities_details"`
}

// CashFlow builds the cash flow statement. Net income is revenue less COGS
// and expenses in raw signs. Working-capital changes are current minus
// initial balance, summed over every account whose name mentions
// "receivable" or "payable". period only labels the report.
func (e *Engine) CashFlow(ctx context.Context, h scope.Handle, period model.Period) (*CashFlow, error) {
	defer metrics.ObserveReport("cash_flow", time.Now())

	groups, err := e.byType(ctx, h)
	if err != nil {
		return nil, err
	}

	revenues := sumBalances(groups[model.AccountTypeRevenue])
	costs := sumBalances(groups[model.AccountTypeExpense]).Add(sumBalances(groups[model.AccountTypeCOGS]))
	net := revenues.Sub(costs)

	receivables, payables, ending := decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range model.AccountTypes {
		for _, a := range groups[t] {
			change := a.CurrentBalance.Sub(a.InitialBalance)
			name := strings.ToLower(a.Name)
			if strings.Contains(name, "receivable") {
				receivables = receivables.Add(change)
			}
			if strings.Contains(name, "payable") {
				payables = payables.Add(change)
			}
			if a.Code == e.cfg.CashAccountCode {
				ending = a.CurrentBalance
			}
		}
	}

	operating := net.Sub(receivables).Add(payables)
	netCash := operating

	return &CashFlow{
		Period:        e.period(period, true),
		Operating:     model.M(operating),
		Investing:     model.M(decimal.Zero),
		Financing:     model.M(decimal.Zero),
		NetIncrease:   model.M(netCash),
		BeginningCash: model.M(ending.Sub(netCash)),
		EndingCash:    model.M(ending),
		OperatingDetails: []CashFlowItem{
			{Item: "Net Income", Amount: model.M(net)},
			{Item: "Changes in Accounts Receivable", Amount: model.M(receivables.Neg())},
			{Item: "Changes in Accounts Payable", Amount: model.M(payables)},
		},
		InvestingDetails: []CashFlowItem{{Item: "No investing activities recorded", Amount: model.M(decimal.Zero)}},
		FinancingDetails: []CashFlowItem{{Item: "No financing activities recorded", Amount: model.M(decimal.Zero)}},
	}, nil
}
