package scope

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/id"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/store"
)

// Service manages entities and their ledgers on behalf of a caller.
type Service struct {
	db     *store.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service.
func NewService(db *store.DB, opts ...Option) *Service {
	s := &Service{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EntityParams holds the writable fields of an entity.
type EntityParams struct {
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Country       string         `json:"country"`
	Address1      string         `json:"address_1"`
	Address2      string         `json:"address_2"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	ZipCode       string         `json:"zip_code"`
	Website       string         `json:"website"`
	Phone         string         `json:"phone"`
	Hidden        bool           `json:"hidden"`
	FYStartMonth  int            `json:"fy_start_month"`
	AccrualMethod *bool          `json:"accrual_method"`
	Metadata      map[string]any `json:"metadata"`
}

func (p *EntityParams) normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperr.Validation("name", "entity name is required")
	}
	if p.FYStartMonth == 0 {
		p.FYStartMonth = 1
	}
	if p.FYStartMonth < 1 || p.FYStartMonth > 12 {
		return apperr.Validation("fy_start_month", "fiscal year start month must be 1-12, got %d", p.FYStartMonth)
	}
	if p.AccrualMethod == nil {
		accrual := true
		p.AccrualMethod = &accrual
	}
	return nil
}

// EntityStats counts what an entity holds.
type EntityStats struct {
	EntityID         string `json:"entity_id"`
	LedgerCount      int    `json:"ledger_count"`
	AccountCount     int    `json:"account_count"`
	TransactionCount int    `json:"transaction_count"`
}

const entityColumns = `id, owner_id, name, email, country, address_1, address_2, city, state, zip_code,
	website, phone, hidden, fy_start_month, accrual_method, metadata, created_at, updated_at`

// CreateEntity creates an entity owned by caller.
func (s *Service) CreateEntity(ctx context.Context, caller string, p EntityParams) (*model.Entity, error) {
	if strings.TrimSpace(caller) == "" {
		return nil, apperr.Validation("caller", "caller id is required")
	}
	if err := p.normalize(); err != nil {
		return nil, err
	}
	meta, err := store.EncodeMetadata(p.Metadata)
	if err != nil {
		return nil, apperr.Validation("metadata", "%v", err)
	}

	now := s.now().UTC()
	e := &model.Entity{
		ID:            id.New(),
		OwnerID:       caller,
		Name:          p.Name,
		Email:         p.Email,
		Country:       p.Country,
		Address1:      p.Address1,
		Address2:      p.Address2,
		City:          p.City,
		State:         p.State,
		ZipCode:       p.ZipCode,
		Website:       p.Website,
		Phone:         p.Phone,
		Hidden:        p.Hidden,
		FYStartMonth:  p.FYStartMonth,
		AccrualMethod: *p.AccrualMethod,
		Metadata:      p.Metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entities (`+entityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Name, e.Email, e.Country, e.Address1, e.Address2, e.City, e.State, e.ZipCode,
		e.Website, e.Phone, store.BoolInt(e.Hidden), e.FYStartMonth, store.BoolInt(e.AccrualMethod),
		meta, store.FormatTime(now), store.FormatTime(now),
	)
	if err != nil {
		return nil, apperr.Internal(err, "creating entity")
	}

	s.logger.Info("entity created", zap.String("entity_id", e.ID), zap.String("owner", caller))
	return e, nil
}

// ListEntities returns caller's entities, newest first.
func (s *Service) ListEntities(ctx context.Context, caller string) ([]model.Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE owner_id = ? ORDER BY created_at DESC, id`,
		caller,
	)
	if err != nil {
		return nil, apperr.Internal(err, "listing entities")
	}
	defer rows.Close()

	var out []model.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, apperr.Internal(err, "listing entities")
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "listing entities")
	}
	return out, nil
}

// GetEntity returns one of caller's entities.
func (s *Service) GetEntity(ctx context.Context, caller, entityID string) (*model.Entity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE id = ? AND owner_id = ?`,
		entityID, caller,
	)
	e, err := scanEntity(row)
	if store.IsNoRows(err) {
		return nil, apperr.NotFound("entity %s not found", entityID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "reading entity")
	}
	return e, nil
}

// UpdateEntity replaces the writable fields of one of caller's entities.
func (s *Service) UpdateEntity(ctx context.Context, caller, entityID string, p EntityParams) (*model.Entity, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	meta, err := store.EncodeMetadata(p.Metadata)
	if err != nil {
		return nil, apperr.Validation("metadata", "%v", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE entities SET name = ?, email = ?, country = ?, address_1 = ?, address_2 = ?, city = ?, state = ?,
		 zip_code = ?, website = ?, phone = ?, hidden = ?, fy_start_month = ?, accrual_method = ?,
		 metadata = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		p.Name, p.Email, p.Country, p.Address1, p.Address2, p.City, p.State,
		p.ZipCode, p.Website, p.Phone, store.BoolInt(p.Hidden), p.FYStartMonth, store.BoolInt(*p.AccrualMethod),
		meta, store.FormatTime(s.now()), entityID, caller,
	)
	if err != nil {
		return nil, apperr.Internal(err, "updating entity")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Internal(err, "updating entity")
	}
	if n == 0 {
		return nil, apperr.NotFound("entity %s not found", entityID)
	}
	return s.GetEntity(ctx, caller, entityID)
}

// DeleteEntity removes an entity with all of its ledgers, accounts and
// transactions in one unit of work.
func (s *Service) DeleteEntity(ctx context.Context, caller, entityID string) error {
	err := s.db.WithTx(ctx, func(tx *store.Tx) error {
		if err := checkEntityOwner(ctx, tx, caller, entityID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE account_id IN (
				SELECT a.id FROM accounts a JOIN ledgers l ON a.ledger_id = l.id WHERE l.entity_id = ?)`,
			entityID,
		); err != nil {
			return apperr.Internal(err, "deleting entity transactions")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, entityID); err != nil {
			return apperr.Internal(err, "deleting entity")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("entity deleted", zap.String("entity_id", entityID))
	return nil
}

// EntityStats counts the ledgers, accounts and transactions under an entity.
func (s *Service) EntityStats(ctx context.Context, caller, entityID string) (*EntityStats, error) {
	if err := checkEntityOwner(ctx, s.db, caller, entityID); err != nil {
		return nil, err
	}

	stats := &EntityStats{EntityID: entityID}
	counts := []struct {
		dst   *int
		query string
	}{
		{&stats.LedgerCount, `SELECT COUNT(*) FROM ledgers WHERE entity_id = ?`},
		{&stats.AccountCount, `SELECT COUNT(*) FROM accounts a JOIN ledgers l ON a.ledger_id = l.id WHERE l.entity_id = ?`},
		{&stats.TransactionCount, `SELECT COUNT(*) FROM transactions t JOIN accounts a ON t.account_id = a.id
			JOIN ledgers l ON a.ledger_id = l.id WHERE l.entity_id = ?`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, entityID).Scan(c.dst); err != nil {
			return nil, apperr.Internal(err, "counting entity contents")
		}
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(sc scanner) (*model.Entity, error) {
	var (
		e                model.Entity
		hidden, accrual  int
		meta             string
		created, updated string
	)
	if err := sc.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Email, &e.Country, &e.Address1, &e.Address2,
		&e.City, &e.State, &e.ZipCode, &e.Website, &e.Phone, &hidden, &e.FYStartMonth,
		&accrual, &meta, &created, &updated); err != nil {
		return nil, err
	}
	e.Hidden = hidden != 0
	e.AccrualMethod = accrual != 0
	return &e, fillCommon(&e.Metadata, &e.CreatedAt, &e.UpdatedAt, meta, created, updated)
}

func fillCommon(meta *map[string]any, createdAt, updatedAt *time.Time, rawMeta, created, updated string) error {
	var err error
	if *meta, err = store.DecodeMetadata(rawMeta); err != nil {
		return err
	}
	if *createdAt, err = store.ParseTime(created); err != nil {
		return err
	}
	*updatedAt, err = store.ParseTime(updated)
	return err
}
