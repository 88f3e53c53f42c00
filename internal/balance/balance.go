// Package balance owns the current_balance column and the one rule for
// moving it.
//
// Balances are raw accumulators: a debit adds, a credit subtracts, whatever
// the account type. Type-aware presentation lives in the statements package.
package balance

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/store"
)

// RawEffect returns the signed change a posting makes to an account:
// +amount for a debit, -amount for a credit.
func RawEffect(amount decimal.Decimal, dir model.Direction) decimal.Decimal {
	if dir == model.Credit {
		return amount.Neg()
	}
	return amount
}

// Ledger mutates account balances inside a caller's unit of work.
type Ledger struct {
	now func() time.Time
}

// NewLedger creates a Ledger.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// ApplyEffect adds the raw effect of amount in direction dir to the account's
// current balance and refreshes its modification time. It takes an open
// transaction so the change commits or aborts with the rest of the unit; a
// missing account is Not-Found. A change that would take the balance past
// the int64 cents column is Validation and leaves the balance untouched.
func (l *Ledger) ApplyEffect(ctx context.Context, tx *store.Tx, accountID string, amount decimal.Decimal, dir model.Direction) error {
	if !dir.Valid() {
		return apperr.Validation("direction", "direction must be dr or cr, got %q", dir)
	}
	if !model.FitsMinor(amount) {
		return apperr.Validation("amount", "amount %s is too large", amount)
	}

	effect := model.ToMinor(RawEffect(amount, dir))
	guard, bound := `current_balance <= ?`, int64(math.MaxInt64)-effect
	if effect < 0 {
		guard, bound = `current_balance >= ?`, int64(math.MinInt64)-effect
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET current_balance = current_balance + ?, updated_at = ? WHERE id = ? AND `+guard,
		effect, store.FormatTime(l.now()), accountID, bound,
	)
	if err != nil {
		return apperr.Internal(err, "updating balance of account %s", accountID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "updating balance of account %s", accountID)
	}
	if n > 0 {
		return nil
	}

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = ?`, accountID).Scan(&one)
	switch {
	case store.IsNoRows(err):
		return apperr.NotFound("account %s not found", accountID)
	case err != nil:
		return apperr.Internal(err, "checking account %s", accountID)
	}
	return apperr.Validation("amount", "posting %s would overflow the balance of account %s", amount, accountID)
}
