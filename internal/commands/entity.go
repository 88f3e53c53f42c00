package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finreport/internal/scope"
)

func newEntityCommand(a *app) *cobra.Command {
	entityCmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage entities",
	}
	entityCmd.AddCommand(newEntityCreateCommand(a), newEntityListCommand(a))
	return entityCmd
}

func newEntityCreateCommand(a *app) *cobra.Command {
	var p scope.EntityParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an entity owned by the caller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ent, err := scope.NewService(e.db, scope.WithLogger(e.logger)).CreateEntity(cmd.Context(), a.caller, p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ent)
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "entity name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&p.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&p.Country, "country", "", "country")
	cmd.Flags().StringVar(&p.Address1, "address", "", "street address")
	cmd.Flags().StringVar(&p.City, "city", "", "city")
	cmd.Flags().StringVar(&p.State, "state", "", "state or region")
	cmd.Flags().StringVar(&p.ZipCode, "zip", "", "postal code")
	cmd.Flags().StringVar(&p.Website, "website", "", "website")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "phone number")
	cmd.Flags().IntVar(&p.FYStartMonth, "fy-start-month", 1, "first month of the fiscal year (1-12)")
	return cmd
}

func newEntityListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the caller's entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			list, err := scope.NewService(e.db).ListEntities(cmd.Context(), a.caller)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(list))
		},
	}
}

func newLedgerCommand(a *app) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Manage ledgers",
	}
	ledgerCmd.AddCommand(newLedgerCreateCommand(a), newLedgerListCommand(a))
	return ledgerCmd
}

func newLedgerCreateCommand(a *app) *cobra.Command {
	var (
		entityID string
		p        scope.LedgerParams
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ledger in an entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			l, err := scope.NewService(e.db, scope.WithLogger(e.logger)).CreateLedger(cmd.Context(), a.caller, entityID, p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), l)
		},
	}

	cmd.Flags().StringVar(&entityID, "entity", "", "entity id (required)")
	_ = cmd.MarkFlagRequired("entity")
	cmd.Flags().StringVar(&p.Name, "name", "", "ledger name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLedgerListCommand(a *app) *cobra.Command {
	var entityID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an entity's ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			list, err := scope.NewService(e.db).ListLedgers(cmd.Context(), a.caller, entityID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(list))
		},
	}

	cmd.Flags().StringVar(&entityID, "entity", "", "entity id (required)")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}
