package scope

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/id"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/store"
)

// LedgerParams creates a ledger.
type LedgerParams struct {
	Name     string         `json:"name"`
	Posted   bool           `json:"posted"`
	Locked   bool           `json:"locked"`
	Hidden   bool           `json:"hidden"`
	Metadata map[string]any `json:"metadata"`
}

// LedgerUpdate holds the fields of a ledger that may change. The name is
// fixed once created.
type LedgerUpdate struct {
	Posted   bool           `json:"posted"`
	Locked   bool           `json:"locked"`
	Hidden   bool           `json:"hidden"`
	Metadata map[string]any `json:"metadata"`
}

const ledgerColumns = `id, entity_id, name, posted, locked, hidden, metadata, created_at, updated_at`

// CreateLedger adds a ledger to one of caller's entities. Ledger names are
// unique per entity.
func (s *Service) CreateLedger(ctx context.Context, caller, entityID string, p LedgerParams) (*model.Ledger, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, apperr.Validation("name", "ledger name is required")
	}
	if err := checkEntityOwner(ctx, s.db, caller, entityID); err != nil {
		return nil, err
	}
	meta, err := store.EncodeMetadata(p.Metadata)
	if err != nil {
		return nil, apperr.Validation("metadata", "%v", err)
	}

	now := s.now().UTC()
	l := &model.Ledger{
		ID:        id.New(),
		EntityID:  entityID,
		Name:      p.Name,
		Posted:    p.Posted,
		Locked:    p.Locked,
		Hidden:    p.Hidden,
		Metadata:  p.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ledgers (`+ledgerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.EntityID, l.Name, store.BoolInt(l.Posted), store.BoolInt(l.Locked), store.BoolInt(l.Hidden),
		meta, store.FormatTime(now), store.FormatTime(now),
	)
	if store.IsUniqueViolation(err) {
		return nil, apperr.Validation("name", "ledger %q already exists for this entity", p.Name)
	}
	if err != nil {
		return nil, apperr.Internal(err, "creating ledger")
	}

	s.logger.Info("ledger created", zap.String("entity_id", entityID), zap.String("ledger", l.Name))
	return l, nil
}

// ListLedgers returns an entity's ledgers, newest first.
func (s *Service) ListLedgers(ctx context.Context, caller, entityID string) ([]model.Ledger, error) {
	if err := checkEntityOwner(ctx, s.db, caller, entityID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE entity_id = ? ORDER BY created_at DESC, name`,
		entityID,
	)
	if err != nil {
		return nil, apperr.Internal(err, "listing ledgers")
	}
	defer rows.Close()

	var out []model.Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, apperr.Internal(err, "listing ledgers")
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "listing ledgers")
	}
	return out, nil
}

// GetLedger returns a ledger by name.
func (s *Service) GetLedger(ctx context.Context, caller, entityID, name string) (*model.Ledger, error) {
	if err := checkEntityOwner(ctx, s.db, caller, entityID); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE entity_id = ? AND name = ?`,
		entityID, name,
	)
	l, err := scanLedger(row)
	if store.IsNoRows(err) {
		return nil, apperr.NotFound("ledger %q not found", name)
	}
	if err != nil {
		return nil, apperr.Internal(err, "reading ledger")
	}
	return l, nil
}

// UpdateLedger changes a ledger's flags and metadata.
func (s *Service) UpdateLedger(ctx context.Context, caller, entityID, name string, u LedgerUpdate) (*model.Ledger, error) {
	if err := checkEntityOwner(ctx, s.db, caller, entityID); err != nil {
		return nil, err
	}
	meta, err := store.EncodeMetadata(u.Metadata)
	if err != nil {
		return nil, apperr.Validation("metadata", "%v", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE ledgers SET posted = ?, locked = ?, hidden = ?, metadata = ?, updated_at = ?
		 WHERE entity_id = ? AND name = ?`,
		store.BoolInt(u.Posted), store.BoolInt(u.Locked), store.BoolInt(u.Hidden), meta,
		store.FormatTime(s.now()), entityID, name,
	)
	if err != nil {
		return nil, apperr.Internal(err, "updating ledger")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Internal(err, "updating ledger")
	}
	if n == 0 {
		return nil, apperr.NotFound("ledger %q not found", name)
	}
	return s.GetLedger(ctx, caller, entityID, name)
}

// DeleteLedger removes a ledger with its accounts and transactions in one
// unit of work.
func (s *Service) DeleteLedger(ctx context.Context, caller, entityID, name string) error {
	err := s.db.WithTx(ctx, func(tx *store.Tx) error {
		if err := checkEntityOwner(ctx, tx, caller, entityID); err != nil {
			return err
		}

		var ledgerID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM ledgers WHERE entity_id = ? AND name = ?`, entityID, name,
		).Scan(&ledgerID)
		if store.IsNoRows(err) {
			return apperr.NotFound("ledger %q not found", name)
		}
		if err != nil {
			return apperr.Internal(err, "reading ledger")
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE account_id IN (SELECT id FROM accounts WHERE ledger_id = ?)`,
			ledgerID,
		); err != nil {
			return apperr.Internal(err, "deleting ledger transactions")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM ledgers WHERE id = ?`, ledgerID); err != nil {
			return apperr.Internal(err, "deleting ledger")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("ledger deleted", zap.String("entity_id", entityID), zap.String("ledger", name))
	return nil
}

func scanLedger(sc scanner) (*model.Ledger, error) {
	var (
		l                      model.Ledger
		posted, locked, hidden int
		meta                   string
		created, updated       string
	)
	if err := sc.Scan(&l.ID, &l.EntityID, &l.Name, &posted, &locked, &hidden,
		&meta, &created, &updated); err != nil {
		return nil, err
	}
	l.Posted, l.Locked, l.Hidden = posted != 0, locked != 0, hidden != 0
	return &l, fillCommon(&l.Metadata, &l.CreatedAt, &l.UpdatedAt, meta, created, updated)
}
