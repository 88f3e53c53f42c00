package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/finreport/internal/store"
)

// DefaultFile is the config file name `finreport init` writes.
const DefaultFile = "finreport.yaml"

// Config represents the top-level finreport.yaml configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Reporting ReportingConfig `yaml:"reporting"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// HTTPConfig controls the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// ReportingConfig holds financial report settings.
type ReportingConfig struct {
	CashAccountCode  string  `yaml:"cash_account_code"`
	BalanceTolerance float64 `yaml:"balance_tolerance"`
}

// Default returns a Config with sensible defaults for a local install.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: string(store.SQLite),
			DSN:    store.DefaultSQLiteDSN,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Reporting: ReportingConfig{
			CashAccountCode:  "1000",
			BalanceTolerance: 0.01,
		},
	}
}

// Load reads a finreport.yaml file from disk. Keys missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch store.Dialect(c.Database.Driver) {
	case store.SQLite, store.Postgres:
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Reporting.CashAccountCode == "" {
		return errors.New("reporting.cash_account_code is required")
	}
	if c.Reporting.BalanceTolerance <= 0 {
		return fmt.Errorf("reporting.balance_tolerance must be positive, got %v", c.Reporting.BalanceTolerance)
	}
	return nil
}
