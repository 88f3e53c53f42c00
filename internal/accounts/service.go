package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/id"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// Service manages the accounts of a ledger.
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

// CreateParams holds the fields for a new account. The current balance
// starts equal to InitialBalance.
type CreateParams struct {
	Code           string              `json:"code"`
	Name           string              `json:"name"`
	Type           model.AccountType   `json:"type"`
	Description    string              `json:"description"`
	InitialBalance decimal.Decimal     `json:"initial_balance"`
	ParentID       string              `json:"parent_id"`
	Status         model.AccountStatus `json:"status"`
	Metadata       map[string]any      `json:"metadata"`
}

// UpdateParams holds the fields of an account that may change. Balances are
// not among them.
type UpdateParams struct {
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Type        model.AccountType   `json:"type"`
	Description string              `json:"description"`
	ParentID    string              `json:"parent_id"`
	Status      model.AccountStatus `json:"status"`
	Metadata    map[string]any      `json:"metadata"`
}

// ListOpts filters List. Zero values match everything.
type ListOpts struct {
	Type   model.AccountType
	Status model.AccountStatus
}

func validateShape(code, name *string, typ model.AccountType, status *model.AccountStatus) error {
	*code = strings.TrimSpace(*code)
	*name = strings.TrimSpace(*name)
	if *code == "" {
		return apperr.Validation("code", "account code is required")
	}
	if *name == "" {
		return apperr.Validation("name", "account name is required")
	}
	if !typ.Valid() {
		return apperr.Validation("type", "unknown account type %q", typ)
	}
	if *status == "" {
		*status = model.AccountStatusActive
	}
	if !status.Valid() {
		return apperr.Validation("status", "unknown account status %q", *status)
	}
	return nil
}

// Create adds an account to the ledger. A duplicate code is a Validation
// failure.
func (s *Service) Create(ctx context.Context, h scope.Handle, p CreateParams) (*model.Account, error) {
	if err := validateShape(&p.Code, &p.Name, p.Type, &p.Status); err != nil {
		return nil, err
	}
	if !model.HasMinorPrecision(p.InitialBalance) {
		return nil, apperr.Validation("initial_balance", "at most %d decimal places allowed", model.MinorUnitPlaces)
	}
	if !model.FitsMinor(p.InitialBalance) {
		return nil, apperr.Validation("initial_balance", "initial balance %s is too large", p.InitialBalance)
	}
	meta, err := store.EncodeMetadata(p.Metadata)
	if err != nil {
		return nil, apperr.Validation("metadata", "%v", err)
	}
	if err := s.checkParent(ctx, h, p.ParentID, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &model.Account{
		ID:             id.New(),
		LedgerID:       h.LedgerID(),
		Code:           p.Code,
		Name:           p.Name,
		Type:           p.Type,
		Description:    p.Description,
		InitialBalance: p.InitialBalance,
		CurrentBalance: p.InitialBalance,
		ParentID:       p.ParentID,
		Status:         p.Status,
		Metadata:       p.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = insertAccount(ctx, s.db, a, meta)
	if store.IsUniqueViolation(err) {
		return nil, apperr.Validation("code", "account with code %s already exists in this ledger", p.Code)
	}
	if err != nil {
		return nil, apperr.Internal(err, "creating account")
	}

	s.logger.Info("account created",
		zap.String("ledger_id", h.LedgerID()),
		zap.String("code", a.Code),
		zap.String("type", string(a.Type)),
	)
	return a, nil
}

// List returns the ledger's accounts in code order.
func (s *Service) List(ctx context.Context, h scope.Handle, opts ListOpts) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ledger_id = ?`
	args := []any{h.LedgerID()}
	if opts.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(opts.Type))
	}
	if opts.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY code`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err, "listing accounts")
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := ScanAccount(rows)
		if err != nil {
			return nil, apperr.Internal(err, "listing accounts")
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "listing accounts")
	}
	return out, nil
}

// Get returns one account of the ledger.
func (s *Service) Get(ctx context.Context, h scope.Handle, accountID string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND ledger_id = ?`,
		accountID, h.LedgerID(),
	)
	a, err := ScanAccount(row)
	if store.IsNoRows(err) {
		return nil, apperr.NotFound("account %s not found", accountID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "reading account")
	}
	return a, nil
}

// GetByCode returns the ledger's account with the given code.
func (s *Service) GetByCode(ctx context.Context, h scope.Handle, code string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE code = ? AND ledger_id = ?`,
		code, h.LedgerID(),
	)
	a, err := ScanAccount(row)
	if store.IsNoRows(err) {
		return nil, apperr.NotFound("account with code %s not found", code)
	}
	if err != nil {
		return nil, apperr.Internal(err, "reading account")
	}
	return a, nil
}

// Update replaces an account's descriptive fields.
func (s *Service) Update(ctx context.Context, h scope.Handle, accountID string, p UpdateParams) (*model.Account, error) {
	if err := validateShape(&p.Code, &p.Name, p.Type, &p.Status); err != nil {
		return nil, err
	}
	meta, err := store.EncodeMetadata(p.Metadata)
	if err != nil {
		return nil, apperr.Validation("metadata", "%v", err)
	}
	if err := s.checkParent(ctx, h, p.ParentID, accountID); err != nil {
		return nil, err
	}

	var parent any
	if p.ParentID != "" {
		parent = p.ParentID
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET code = ?, name = ?, type = ?, description = ?, parent_id = ?, status = ?,
		 metadata = ?, updated_at = ? WHERE id = ? AND ledger_id = ?`,
		p.Code, p.Name, string(p.Type), p.Description, parent, string(p.Status),
		meta, store.FormatTime(s.now()), accountID, h.LedgerID(),
	)
	if store.IsUniqueViolation(err) {
		return nil, apperr.Validation("code", "account with code %s already exists in this ledger", p.Code)
	}
	if err != nil {
		return nil, apperr.Internal(err, "updating account")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Internal(err, "updating account")
	}
	if n == 0 {
		return nil, apperr.NotFound("account %s not found", accountID)
	}
	return s.Get(ctx, h, accountID)
}

// Delete removes an account that no transaction references. Accounts with
// history are refused with Conflict; callers should mark them inactive.
func (s *Service) Delete(ctx context.Context, h scope.Handle, accountID string) error {
	err := s.db.WithTx(ctx, func(tx *store.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM accounts WHERE id = ? AND ledger_id = ?`, accountID, h.LedgerID(),
		).Scan(&one)
		if store.IsNoRows(err) {
			return apperr.NotFound("account %s not found", accountID)
		}
		if err != nil {
			return apperr.Internal(err, "reading account")
		}

		var refs int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE account_id = ? OR counterpart_id = ?`,
			accountID, accountID,
		).Scan(&refs); err != nil {
			return apperr.Internal(err, "checking account history")
		}
		if refs > 0 {
			return errHasHistory
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM accounts WHERE id = ? AND ledger_id = ?`, accountID, h.LedgerID(),
		)
		if store.IsForeignKeyViolation(err) {
			return errHasHistory
		}
		if err != nil {
			return apperr.Internal(err, "deleting account")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperr.Internal(err, "deleting account")
		}
		if n == 0 {
			return apperr.NotFound("account %s not found", accountID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.String("ledger_id", h.LedgerID()), zap.String("account_id", accountID))
	return nil
}

var errHasHistory = apperr.Conflict("cannot delete account with existing transactions; mark it inactive instead")

func (s *Service) checkParent(ctx context.Context, h scope.Handle, parentID, self string) error {
	if parentID == "" {
		return nil
	}
	if parentID == self {
		return apperr.Validation("parent_id", "an account cannot be its own parent")
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE id = ? AND ledger_id = ?`, parentID, h.LedgerID(),
	).Scan(&one)
	if store.IsNoRows(err) {
		return apperr.Validation("parent_id", "parent account %s not found in this ledger", parentID)
	}
	if err != nil {
		return apperr.Internal(err, "checking parent account")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// ScanAccount reads one row selected with the account column list.
func ScanAccount(sc scanner) (*model.Account, error) {
	var (
		a                model.Account
		typ, status      string
		initial, current int64
		parent           *string
		meta             string
		created, updated string
	)
	if err := sc.Scan(&a.ID, &a.LedgerID, &a.Code, &a.Name, &typ, &a.Description,
		&initial, &current, &parent, &status, &meta, &created, &updated); err != nil {
		return nil, err
	}
	a.Type = model.AccountType(typ)
	a.Status = model.AccountStatus(status)
	a.InitialBalance = model.FromMinor(initial)
	a.CurrentBalance = model.FromMinor(current)
	if parent != nil {
		a.ParentID = *parent
	}

	var err error
	if a.Metadata, err = store.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = store.ParseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = store.ParseTime(updated); err != nil {
		return nil, err
	}
	return &a, nil
}
