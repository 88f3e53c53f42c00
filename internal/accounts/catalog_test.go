package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, 1, c.Version)
	require.Len(t, c.Accounts, 28)

	types := make(map[model.AccountType]int)
	codes := make(map[string]CatalogEntry)
	for _, e := range c.Accounts {
		types[e.Type]++
		codes[e.Code] = e
	}
	for _, at := range model.AccountTypes {
		assert.Positive(t, types[at], "catalog must cover %s", at)
	}

	assert.Equal(t, "Cash", codes["1000"].Name)
	assert.Equal(t, "Accounts Receivable", codes["1100"].Name)
	assert.Equal(t, "Accounts Payable", codes["2000"].Name)
	assert.Equal(t, "Sales Revenue", codes["4000"].Name)
	assert.Equal(t, model.AccountTypeCOGS, codes["5000"].Type)
	assert.Equal(t, "Miscellaneous Expense", codes["6900"].Name)
	assert.Equal(t, "Default Asset account", codes["1000"].Description())
}

func TestDefaultCatalogIsCopy(t *testing.T) {
	c := DefaultCatalog()
	c.Accounts[0].Name = "changed"
	assert.Equal(t, "Cash", DefaultCatalog().Accounts[0].Name)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no version", `[[account]]
code = "1"
name = "A"
type = "Asset"`},
		{"no accounts", `version = 1`},
		{"bad type", `version = 1
[[account]]
code = "1"
name = "A"
type = "Bogus"`},
		{"duplicate code", `version = 1
[[account]]
code = "1"
name = "A"
type = "Asset"
[[account]]
code = "1"
name = "B"
type = "Asset"`},
		{"unknown key", `version = 1
[[account]]
code = "1"
name = "A"
type = "Asset"
colour = "red"`},
		{"not toml", `version = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog(tt.doc)
			assert.Error(t, err)
		})
	}
}
