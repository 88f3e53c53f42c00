package accounts

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/cleared-dev/finreport/internal/model"
)

//go:embed chart.toml
var chartTOML string

// CatalogEntry is one account in the default chart.
type CatalogEntry struct {
	Code string            `toml:"code"`
	Name string            `toml:"name"`
	Type model.AccountType `toml:"type"`
}

// Description is the description given to seeded accounts.
func (e CatalogEntry) Description() string {
	return fmt.Sprintf("Default %s account", e.Type)
}

// Catalog is the versioned default chart of accounts.
type Catalog struct {
	Version  int            `toml:"version"`
	Accounts []CatalogEntry `toml:"account"`
}

var defaultCatalog = mustParseCatalog(chartTOML)

// DefaultCatalog returns the built-in catalog. The returned value is a copy.
func DefaultCatalog() Catalog {
	c := defaultCatalog
	c.Accounts = append([]CatalogEntry(nil), defaultCatalog.Accounts...)
	return c
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(doc string) (Catalog, error) {
	var c Catalog
	md, err := toml.Decode(doc, &c)
	if err != nil {
		return Catalog{}, fmt.Errorf("decoding catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Catalog{}, fmt.Errorf("unknown catalog keys: %v", undecoded)
	}
	if c.Version < 1 {
		return Catalog{}, fmt.Errorf("catalog version must be positive, got %d", c.Version)
	}
	if len(c.Accounts) == 0 {
		return Catalog{}, fmt.Errorf("catalog has no accounts")
	}

	seen := make(map[string]bool, len(c.Accounts))
	for i, e := range c.Accounts {
		if e.Code == "" || e.Name == "" {
			return Catalog{}, fmt.Errorf("catalog entry %d: code and name are required", i)
		}
		if !e.Type.Valid() {
			return Catalog{}, fmt.Errorf("catalog entry %s: unknown type %q", e.Code, e.Type)
		}
		if seen[e.Code] {
			return Catalog{}, fmt.Errorf("catalog entry %s: duplicate code", e.Code)
		}
		seen[e.Code] = true
	}
	return c, nil
}

func mustParseCatalog(doc string) Catalog {
	c, err := ParseCatalog(doc)
	if err != nil {
		panic(fmt.Sprintf("accounts: embedded chart.toml: %v", err))
	}
	return c
}
