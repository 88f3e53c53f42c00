package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a transaction as seen by its primary account.
type Direction string

const (
	Debit  Direction = "dr"
	Credit Direction = "cr"
)

// Valid reports whether d is dr or cr.
func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

// Opposite returns the other side.
func (d Direction) Opposite() Direction {
	if d == Debit {
		return Credit
	}
	return Debit
}

// Transaction is one two-sided economic event. Amount, Direction and both
// account references are fixed at creation; only Description may change.
type Transaction struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	CounterpartID   string          `json:"counterpart_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Direction       Direction       `json:"direction"`
	Description     string          `json:"description"`
	UnitTag         string          `json:"unit_tag,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
	AccountCode     string          `json:"account_code,omitempty"`
	AccountName     string          `json:"account_name,omitempty"`
	CounterpartCode string          `json:"counterpart_account_code,omitempty"`
	CounterpartName string          `json:"counterpart_account_name,omitempty"`
}

// Period bounds a report or query by transaction time. Zero values are open.
type Period struct {
	Start time.Time `json:"start_date,omitempty"`
	End   time.Time `json:"end_date,omitempty"`
}

// Contains reports whether t falls inside the period (both bounds inclusive).
func (p Period) Contains(t time.Time) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && t.After(p.End) {
		return false
	}
	return true
}
