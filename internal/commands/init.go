package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finreport/internal/config"
)

func newInitCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file and create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultFile
			}
			if err := writeDefaultConfig(path, force); err != nil {
				return err
			}
			a.configPath = path

			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s (%s database)\n", path, e.cfg.Database.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
			return nil
		},
	}
}
