package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/config"
	"github.com/cleared-dev/finreport/internal/logging"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/statements"
	"github.com/cleared-dev/finreport/internal/store"
)

// app carries the global flags and the resources a command opens.
type app struct {
	configPath string
	driver     string
	dsn        string
	caller     string
}

// env is what an opened command works with.
type env struct {
	cfg    *config.Config
	db     *store.DB
	logger *zap.Logger
}

func (e *env) Close() {
	_ = e.logger.Sync()
	if err := e.db.Close(); err != nil {
		e.logger.Warn("closing database", zap.Error(err))
	}
}

// loadConfig reads the config file and applies flag overrides. A missing
// default config file means defaults; a missing explicit one is an error.
func (a *app) loadConfig() (*config.Config, error) {
	path := a.configPath
	if path == "" {
		path = config.DefaultFile
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case a.configPath == "" && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, err
	}

	if a.driver != "" {
		cfg.Database.Driver = a.driver
		if a.dsn == "" && a.driver != string(store.SQLite) {
			cfg.Database.DSN = ""
		}
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads config, builds the logger, opens the store and brings the
// schema up to date.
func (a *app) open(ctx context.Context) (*env, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	db, err := store.Open(ctx, store.Dialect(cfg.Database.Driver), cfg.Database.DSN, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: logger}, nil
}

func (e *env) reportConfig() statements.Config {
	return statements.Config{
		CashAccountCode: e.cfg.Reporting.CashAccountCode,
		Tolerance:       decimal.NewFromFloat(e.cfg.Reporting.BalanceTolerance),
	}
}

// ledgerRef names the ledger a command operates on.
type ledgerRef struct {
	entityID string
	ledger   string
}

func addLedgerFlags(cmd *cobra.Command, ref *ledgerRef) {
	cmd.Flags().StringVar(&ref.entityID, "entity", "", "entity id (required)")
	cmd.Flags().StringVar(&ref.ledger, "ledger", "", "ledger name (required)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("ledger")
}

func (a *app) resolve(ctx context.Context, e *env, ref ledgerRef) (scope.Handle, error) {
	return scope.NewResolver(e.db).Resolve(ctx, a.caller, ref.entityID, ref.ledger)
}

// resolveAccount accepts an account code or id.
func resolveAccount(ctx context.Context, svc *accounts.Service, h scope.Handle, ref string) (*model.Account, error) {
	a, err := svc.GetByCode(ctx, h, ref)
	if apperr.IsNotFound(err) {
		return svc.Get(ctx, h, ref)
	}
	return a, err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// output returns the file named by path, or stdout when path is empty.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, f.Close, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
