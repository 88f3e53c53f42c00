package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finreport/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "finreport",
		Short:   "Double-entry bookkeeping and financial statements",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./finreport.yaml when present)")
	flags.StringVar(&a.driver, "driver", "", "database driver override: sqlite or postgres")
	flags.StringVar(&a.dsn, "db", "", "database DSN override")
	flags.StringVar(&a.caller, "caller", "local", "caller id the command acts as")

	rootCmd.AddCommand(
		newInitCommand(a),
		newMigrateCommand(a),
		newServeCommand(a),
		newEntityCommand(a),
		newLedgerCommand(a),
		newSeedCommand(a),
		newAccountCommand(a),
		newPostCommand(a),
		newReverseCommand(a),
		newReportCommand(a),
		newExportCommand(a),
	)

	return rootCmd
}
