package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/journal"
	"github.com/cleared-dev/finreport/internal/model"
)

func newPostCommand(a *app) *cobra.Command {
	var (
		ref         ledgerRef
		account     string
		counterpart string
		amount      string
		direction   string
		description string
		unitTag     string
		at          string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a two-sided transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			var ts time.Time
			if at != "" {
				if ts, err = model.ParseTime(at, false); err != nil {
					return fmt.Errorf("invalid --at %q: %w", at, err)
				}
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
			svc := accounts.NewService(e.db)
			primary, err := resolveAccount(cmd.Context(), svc, h, account)
			if err != nil {
				return err
			}
			other, err := resolveAccount(cmd.Context(), svc, h, counterpart)
			if err != nil {
				return err
			}

			tx, err := journal.NewPoster(e.db, journal.WithLogger(e.logger)).Post(cmd.Context(), h, journal.PostParams{
				AccountID:     primary.ID,
				CounterpartID: other.ID,
				Amount:        amt,
				Direction:     model.Direction(direction),
				Description:   description,
				UnitTag:       unitTag,
				Timestamp:     ts,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		},
	}

	addLedgerFlags(cmd, &ref)
	cmd.Flags().StringVar(&account, "account", "", "primary account code or id (required)")
	cmd.Flags().StringVar(&counterpart, "counterpart", "", "counterpart account code or id (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount with at most two decimal places (required)")
	cmd.Flags().StringVar(&direction, "direction", "dr", "primary account's side: dr or cr")
	cmd.Flags().StringVar(&description, "description", "", "description (required)")
	cmd.Flags().StringVar(&unitTag, "unit", "", "entity unit tag")
	cmd.Flags().StringVar(&at, "at", "", "event time as a date or RFC 3339 timestamp (default now)")
	for _, f := range []string{"account", "counterpart", "amount", "description"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newReverseCommand(a *app) *cobra.Command {
	var ref ledgerRef

	cmd := &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Reverse a transaction and delete it",
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
			tx, err := journal.NewPoster(e.db, journal.WithLogger(e.logger)).Reverse(cmd.Context(), h, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		},
	}

	addLedgerFlags(cmd, &ref)
	return cmd
}
