package commands

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/model"
)

func newSeedCommand(a *app) *cobra.Command {
	var ref ledgerRef

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default chart of accounts in an empty ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := a.resolve(cmd.Context(), e, ref)
			if err != nil {
				return err
			}
			created, err := accounts.NewSeeder(e.db, accounts.WithSeedLogger(e.logger)).Seed(cmd.Context(), h)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d accounts in ledger %s\n", len(created), h.LedgerName())
			return nil
		},
	}

	addLedgerFlags(cmd, &ref)
	return cmd
}

func newAccountCommand(a *app) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage a ledger's chart of accounts",
	}
	accountCmd.AddCommand(
		newAccountListCommand(a),
		newAccountCreateCommand(a),
		newAccountDeleteCommand(a),
		newAccountImportCommand(a),
	)
	return accountCmd
}

func newAccountListCommand(a *app) *cobra.Command {
	var (
		ref  ledgerRef
		typ  string
		stat string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts in code order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := a.resolve(cmd.Context(), e, ref)
			if err != nil {
				return err
			}
			list, err := accounts.NewService(e.db).List(cmd.Context(), h, accounts.ListOpts{
				Type:   model.AccountType(typ),
				Status: model.AccountStatus(stat),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(list))
		},
	}

	addLedgerFlags(cmd, &ref)
	cmd.Flags().StringVar(&typ, "type", "", "only accounts of this type")
	cmd.Flags().StringVar(&stat, "status", "", "only accounts with this status")
	return cmd
}

func newAccountCreateCommand(a *app) *cobra.Command {
	var (
		ref     ledgerRef
		p       accounts.CreateParams
		typ     string
		initial string
		parent  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(initial)
			if err != nil {
				return fmt.Errorf("invalid --initial-balance %q: %w", initial, err)
			}
			p.InitialBalance = amount
			p.Type = model.AccountType(typ)

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := a.resolve(cmd.Context(), e, ref)
			if err != nil {
				return err
			}
			svc := accounts.NewService(e.db, accounts.WithLogger(e.logger))
			if parent != "" {
				pa, err := resolveAccount(cmd.Context(), svc, h, parent)
				if err != nil {
					return err
				}
				p.ParentID = pa.ID
			}
			acct, err := svc.Create(cmd.Context(), h, p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acct)
		},
	}

	addLedgerFlags(cmd, &ref)
	cmd.Flags().StringVar(&p.Code, "code", "", "account code (required)")
	cmd.Flags().StringVar(&p.Name, "name", "", "account name (required)")
	cmd.Flags().StringVar(&typ, "type", "", "Asset, Liability, Equity, Revenue, COGS or Expense (required)")
	cmd.Flags().StringVar(&p.Description, "description", "", "description")
	cmd.Flags().StringVar(&initial, "initial-balance", "0", "opening balance")
	cmd.Flags().StringVar(&parent, "parent", "", "parent account code or id")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newAccountDeleteCommand(a *app) *cobra.Command {
	var ref ledgerRef

	cmd := &cobra.Command{
		Use:   "delete <code-or-id>",
		Short: "Delete an account that no transaction references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := a.resolve(cmd.Context(), e, ref)
			if err != nil {
				return err
			}
			svc := accounts.NewService(e.db, accounts.WithLogger(e.logger))
			acct, err := resolveAccount(cmd.Context(), svc, h, args[0])
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), h, acct.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s %s\n", acct.Code, acct.Name)
			return nil
		},
	}

	addLedgerFlags(cmd, &ref)
	return cmd
}

func newAccountImportCommand(a *app) *cobra.Command {
	var ref ledgerRef

	cmd := &cobra.Command{
		Use:   "import <chart.csv>",
		Short: "Create accounts from a chart-of-accounts CSV in one unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			rows, err := accounts.ReadChart(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := a.resolve(cmd.Context(), e, ref)
			if err != nil {
				return err
			}
			created, err := accounts.NewService(e.db, accounts.WithLogger(e.logger)).Import(cmd.Context(), h, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts into ledger %s\n", len(created), h.LedgerName())
			return nil
		},
	}

	addLedgerFlags(cmd, &ref)
	return cmd
}
