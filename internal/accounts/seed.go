package accounts

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/id"
	"github.com/cleared-dev/finreport/internal/metrics"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// Seeder copies a catalog into empty ledgers.
type Seeder struct {
	db      *store.DB
	catalog Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithSeedLogger sets the seeder logger.
func WithSeedLogger(l *zap.Logger) SeederOption {
	return func(s *Seeder) { s.logger = l }
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c Catalog) SeederOption {
	return func(s *Seeder) { s.catalog = c }
}

// NewSeeder creates a Seeder using the default catalog.
func NewSeeder(db *store.DB, opts ...SeederOption) *Seeder {
	s := &Seeder{db: db, catalog: DefaultCatalog(), logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed creates every catalog account in the ledger in one unit of work. It
// fails with Conflict when the ledger was seeded before or already has
// accounts; on any failure no account is created.
func (s *Seeder) Seed(ctx context.Context, h scope.Handle) (created []model.Account, err error) {
	defer func() { metrics.ChartSeeds.WithLabelValues(metrics.Outcome(err)).Inc() }()

	ledgerID := h.LedgerID()
	now := s.now().UTC()
	stamp := store.FormatTime(now)

	err = s.db.WithTx(ctx, func(tx *store.Tx) error {
		// The marker row's primary key stops a concurrent seed of the same
		// ledger: the second insert blocks, then fails on the key.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chart_seeds (ledger_id, catalog_version, seeded_at) VALUES (?, ?, ?)`,
			ledgerID, s.catalog.Version, stamp,
		); err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Conflict("chart of accounts already exists for ledger %q", h.LedgerName())
			}
			return apperr.Internal(err, "recording seed")
		}

		var existing int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM accounts WHERE ledger_id = ?`, ledgerID,
		).Scan(&existing); err != nil {
			return apperr.Internal(err, "counting accounts")
		}
		if existing > 0 {
			return apperr.Conflict("ledger %q already has %d accounts", h.LedgerName(), existing)
		}

		created = make([]model.Account, 0, len(s.catalog.Accounts))
		for _, e := range s.catalog.Accounts {
			a := model.Account{
				ID:          id.New(),
				LedgerID:    ledgerID,
				Code:        e.Code,
				Name:        e.Name,
				Type:        e.Type,
				Description: e.Description(),
				Status:      model.AccountStatusActive,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := insertAccount(ctx, tx, &a, "{}"); err != nil {
				if store.IsUniqueViolation(err) {
					return apperr.Conflict("account %s already exists in ledger %q", e.Code, h.LedgerName())
				}
				return apperr.Internal(err, "creating account %s", e.Code)
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		created = nil
		if apperr.IsConflict(err) {
			s.logger.Warn("chart seed refused", zap.String("ledger_id", ledgerID), zap.Error(err))
		} else {
			s.logger.Error("chart seed aborted", zap.String("ledger_id", ledgerID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("chart of accounts seeded",
		zap.String("ledger_id", ledgerID),
		zap.Int("accounts", len(created)),
		zap.Int("catalog_version", s.catalog.Version),
	)
	return created, nil
}

const accountColumns = `id, ledger_id, code, name, type, description, initial_balance, current_balance,
	parent_id, status, metadata, created_at, updated_at`

func insertAccount(ctx context.Context, q store.Querier, a *model.Account, meta string) error {
	var parent any
	if a.ParentID != "" {
		parent = a.ParentID
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.LedgerID, a.Code, a.Name, string(a.Type), a.Description,
		model.ToMinor(a.InitialBalance), model.ToMinor(a.CurrentBalance),
		parent, string(a.Status), meta,
		store.FormatTime(a.CreatedAt), store.FormatTime(a.UpdatedAt),
	)
	return err
}
