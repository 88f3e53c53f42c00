package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeCOGS      AccountType = "COGS"
	AccountTypeExpense   AccountType = "Expense"
)

// AccountTypes lists every account type in presentation order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeCOGS,
	AccountTypeExpense,
}

// Valid reports whether t is one of the six known account types.
func (t AccountType) Valid() bool {
	for _, at := range AccountTypes {
		if t == at {
			return true
		}
	}
	return false
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "Active"
	AccountStatusInactive AccountStatus = "Inactive"
	AccountStatusClosed   AccountStatus = "Closed"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusClosed:
		return true
	}
	return false
}

// Account is a row in a ledger's chart of accounts.
//
// CurrentBalance is derived state: it always equals InitialBalance plus the
// raw effect of every transaction that names the account as primary or
// counterpart.
type Account struct {
	ID             string          `json:"id"`
	LedgerID       string          `json:"ledger_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Description    string          `json:"description,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	ParentID       string          `json:"parent_id,omitempty"`
	Status         AccountStatus   `json:"status"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
