// Package journal posts, reverses and queries two-sided transactions.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/balance"
	"github.com/cleared-dev/finreport/internal/id"
	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// Poster writes transactions and keeps both account balances in step with
// them.
type Poster struct {
	db     *store.DB
	ledger *balance.Ledger
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Poster.
type Option func(*Poster)

// WithLogger sets the poster logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poster) { p.logger = l }
}

// WithClock overrides the clock used for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poster) { p.now = now }
}

// NewPoster creates a Poster.
func NewPoster(db *store.DB, opts ...Option) *Poster {
	p := &Poster{db: db, ledger: balance.NewLedger(), logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PostParams holds the inputs for one posting. Direction is the primary
// account's side; the counterpart receives the opposite.
type PostParams struct {
	AccountID     string          `json:"account_id"`
	CounterpartID string          `json:"counterpart_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     model.Direction `json:"direction"`
	Description   string          `json:"description"`
	UnitTag       string          `json:"unit_tag"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Post validates p and records it in one unit of work: the row, the
// primary's effect and the counterpart's opposite effect commit together or
// not at all. Accounts outside the handle's ledger are Not-Found.
func (ps *Poster) Post(ctx context.Context, h scope.Handle, p PostParams) (posted *model.Transaction, err error) {
	defer func() { metrics.Postings.WithLabelValues(metrics.Outcome(err)).Inc() }()

	p.Description = strings.TrimSpace(p.Description)
	if verrs := ValidatePost(p); len(verrs) > 0 {
		err := asAppErr(verrs)
		ps.logger.Warn("posting rejected", zap.String("ledger_id", h.LedgerID()), zap.Error(err))
		return nil, err
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = ps.now()
	}
	t := &model.Transaction{
		ID:            id.New(),
		AccountID:     p.AccountID,
		CounterpartID: p.CounterpartID,
		Amount:        p.Amount,
		Direction:     p.Direction,
		Description:   p.Description,
		UnitTag:       p.UnitTag,
		Timestamp:     ts.UTC().Truncate(time.Microsecond),
	}

	err = ps.db.WithTx(ctx, func(tx *store.Tx) error {
		refs, err := loadRefs(ctx, tx, h.LedgerID(), p.AccountID, p.CounterpartID)
		if err != nil {
			return err
		}
		primary, okP := refs[p.AccountID]
		counter, okC := refs[p.CounterpartID]
		if !okP || !okC {
			return apperr.NotFound("one or both accounts not found in this ledger")
		}
		t.AccountCode, t.AccountName = primary.code, primary.name
		t.CounterpartCode, t.CounterpartName = counter.code, counter.name

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, account_id, counterpart_id, amount, direction, description, unit_tag, occurred_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.AccountID, t.CounterpartID, model.ToMinor(t.Amount), string(t.Direction),
			t.Description, t.UnitTag, store.FormatTime(t.Timestamp),
		); err != nil {
			return apperr.Internal(err, "recording transaction")
		}

		if err := ps.ledger.ApplyEffect(ctx, tx, t.AccountID, t.Amount, t.Direction); err != nil {
			return err
		}
		return ps.ledger.ApplyEffect(ctx, tx, t.CounterpartID, t.Amount, t.Direction.Opposite())
	})
	if err != nil {
		ps.logUnitFailure("posting", h, err)
		return nil, err
	}

	ps.logger.Info("transaction posted",
		zap.String("ledger_id", h.LedgerID()),
		zap.String("transaction_id", t.ID),
		zap.String("amount", t.Amount.StringFixed(model.MinorUnitPlaces)),
		zap.String("direction", string(t.Direction)),
	)
	return t, nil
}

// Reverse undoes a transaction and deletes it in one unit of work. The
// primary gets the opposite of the recorded direction and the counterpart
// gets the recorded direction, so post-then-reverse leaves both balances
// exactly where they were. It returns the deleted record.
func (ps *Poster) Reverse(ctx context.Context, h scope.Handle, txID string) (t *model.Transaction, err error) {
	defer func() { metrics.Reversals.WithLabelValues(metrics.Outcome(err)).Inc() }()

	err = ps.db.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		if t, err = getTransaction(ctx, tx, h.LedgerID(), txID); err != nil {
			return err
		}

		if err := ps.ledger.ApplyEffect(ctx, tx, t.AccountID, t.Amount, t.Direction.Opposite()); err != nil {
			return err
		}
		if err := ps.ledger.ApplyEffect(ctx, tx, t.CounterpartID, t.Amount, t.Direction); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, t.ID); err != nil {
			return apperr.Internal(err, "deleting transaction")
		}
		return nil
	})
	if err != nil {
		ps.logUnitFailure("reversal", h, err)
		return nil, err
	}

	ps.logger.Info("transaction reversed",
		zap.String("ledger_id", h.LedgerID()),
		zap.String("transaction_id", t.ID),
	)
	return t, nil
}

// UpdateDescription changes the only mutable field of a transaction.
func (ps *Poster) UpdateDescription(ctx context.Context, h scope.Handle, txID, description string) (*model.Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.Validation("description", "description is required")
	}

	res, err := ps.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?
		 WHERE id = ? AND account_id IN (SELECT id FROM accounts WHERE ledger_id = ?)`,
		description, txID, h.LedgerID(),
	)
	if err != nil {
		return nil, apperr.Internal(err, "updating transaction")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Internal(err, "updating transaction")
	}
	if n == 0 {
		return nil, apperr.NotFound("transaction %s not found", txID)
	}
	return ps.Get(ctx, h, txID)
}

func (ps *Poster) logUnitFailure(op string, h scope.Handle, err error) {
	fields := []zap.Field{zap.String("ledger_id", h.LedgerID()), zap.Error(err)}
	switch apperr.KindOf(err) {
	case apperr.KindInternal:
		ps.logger.Error(op+" aborted", fields...)
	default:
		ps.logger.Warn(op+" rejected", fields...)
	}
}

type accountRef struct {
	code, name string
}

func loadRefs(ctx context.Context, q store.Querier, ledgerID string, ids ...string) (map[string]accountRef, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, 0, len(ids)+1)
	args = append(args, ledgerID)
	for _, accountID := range ids {
		args = append(args, accountID)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, code, name FROM accounts WHERE ledger_id = ? AND id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, apperr.Internal(err, "checking accounts")
	}
	defer rows.Close()

	refs := make(map[string]accountRef, len(ids))
	for rows.Next() {
		var accountID string
		var ref accountRef
		if err := rows.Scan(&accountID, &ref.code, &ref.name); err != nil {
			return nil, apperr.Internal(err, "checking accounts")
		}
		refs[accountID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "checking accounts")
	}
	return refs, nil
}
