package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/journal"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/statements"
)

var reportKinds = []string{"balance-sheet", "income-statement", "cash-flow", "trial-balance", "general-ledger"}

type reportFlags struct {
	ref     ledgerRef
	asOf    string
	start   string
	end     string
	account string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	addLedgerFlags(cmd, &f.ref)
	cmd.Flags().StringVar(&f.asOf, "as-of", "", "report date for balance-sheet and trial-balance (default today)")
	cmd.Flags().StringVar(&f.start, "start", "", "period start date")
	cmd.Flags().StringVar(&f.end, "end", "", "period end date")
	cmd.Flags().StringVar(&f.account, "account", "", "general-ledger account code or id")
}

func newReportCommand(a *app) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:       "report <" + strings.Join(reportKinds, "|") + ">",
		Short:     "Print a financial report as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: reportKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := model.ParsePeriod(f.start, f.end)
			if err != nil {
				return err
			}
			var asOf time.Time
			if f.asOf != "" {
				if asOf, err = model.ParseTime(f.asOf, false); err != nil {
					return fmt.Errorf("invalid --as-of %q: %w", f.asOf, err)
				}
			}

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := a.resolve(cmd.Context(), e, f.ref)
			if err != nil {
				return err
			}
			engine := statements.NewEngine(e.db, statements.WithConfig(e.reportConfig()), statements.WithLogger(e.logger))
			ctx := cmd.Context()

			var report any
			switch args[0] {
			case "balance-sheet":
				report, err = engine.BalanceSheet(ctx, h, asOf)
			case "income-statement":
				report, err = engine.IncomeStatement(ctx, h, period)
			case "cash-flow":
				report, err = engine.CashFlow(ctx, h, period)
			case "trial-balance":
				report, err = engine.TrialBalance(ctx, h, asOf)
			case "general-ledger":
				opts := statements.GeneralLedgerOpts{Period: period}
				if f.account != "" {
					acct, aerr := resolveAccount(ctx, accounts.NewService(e.db), h, f.account)
					if aerr != nil {
						return aerr
					}
					opts.AccountID = acct.ID
				}
				report, err = engine.GeneralLedger(ctx, h, opts)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	f.register(cmd)
	return cmd
}

var exportKinds = []string{"chart", "journal", "general-ledger"}

func newExportCommand(a *app) *cobra.Command {
	var (
		f   reportFlags
		out string
	)

	cmd := &cobra.Command{
		Use:       "export <" + strings.Join(exportKinds, "|") + ">",
		Short:     "Write the chart of accounts, journal or general ledger as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: exportKinds,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			period, err := model.ParsePeriod(f.start, f.end)
			if err != nil {
				return err
			}

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := a.resolve(cmd.Context(), e, f.ref)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc := accounts.NewService(e.db)

			w, closeOut, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeOut(); cerr != nil && err == nil {
					err = fmt.Errorf("closing %s: %w", out, cerr)
				}
			}()

			switch args[0] {
			case "chart":
				list, lerr := svc.List(ctx, h, accounts.ListOpts{})
				if lerr != nil {
					return lerr
				}
				return accounts.WriteChart(w, list)
			case "journal":
				txs, lerr := journal.NewPoster(e.db).ListAll(ctx, h, period)
				if lerr != nil {
					return lerr
				}
				return journal.WriteTransactions(w, txs)
			default:
				opts := statements.GeneralLedgerOpts{Period: period}
				if f.account != "" {
					acct, aerr := resolveAccount(ctx, svc, h, f.account)
					if aerr != nil {
						return aerr
					}
					opts.AccountID = acct.ID
				}
				gl, gerr := statements.NewEngine(e.db, statements.WithLogger(e.logger)).GeneralLedger(ctx, h, opts)
				if gerr != nil {
					return gerr
				}
				return statements.WriteGeneralLedger(w, gl)
			}
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}
