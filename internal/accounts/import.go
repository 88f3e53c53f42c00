package accounts

import (
	"context"

	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/id"
	"github.com/cleared-dev/finreport/internal/model"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/store"
)

// Import creates accounts from chart rows in one unit of work. Each row's
// initial balance becomes both its initial and current balance; the file's
// current_balance column is ignored because balances only move by posting.
// A parent code must name an account already in the ledger or an earlier row.
func (s *Service) Import(ctx context.Context, h scope.Handle, rows []ChartRow) ([]model.Account, error) {
	var created []model.Account

	err := s.db.WithTx(ctx, func(tx *store.Tx) error {
		ids, err := codeIndex(ctx, tx, h.LedgerID())
		if err != nil {
			return err
		}

		now := s.now().UTC()
		created = make([]model.Account, 0, len(rows))
		for i, r := range rows {
			if err := validateShape(&r.Code, &r.Name, r.Type, &r.Status); err != nil {
				return apperr.Validation("row", "row %d: %v", i+2, err)
			}
			if !model.HasMinorPrecision(r.InitialBalance) {
				return apperr.Validation("initial_balance", "row %d: at most %d decimal places allowed", i+2, model.MinorUnitPlaces)
			}
			if !model.FitsMinor(r.InitialBalance) {
				return apperr.Validation("initial_balance", "row %d: initial balance %s is too large", i+2, r.InitialBalance)
			}

			var parentID string
			if r.ParentCode != "" {
				var ok bool
				if parentID, ok = ids[r.ParentCode]; !ok {
					return apperr.Validation("parent_code", "row %d: parent %s not found", i+2, r.ParentCode)
				}
			}

			a := model.Account{
				ID:             id.New(),
				LedgerID:       h.LedgerID(),
				Code:           r.Code,
				Name:           r.Name,
				Type:           r.Type,
				Description:    r.Description,
				InitialBalance: r.InitialBalance,
				CurrentBalance: r.InitialBalance,
				ParentID:       parentID,
				Status:         r.Status,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := insertAccount(ctx, tx, &a, "{}"); err != nil {
				if store.IsUniqueViolation(err) {
					return apperr.Validation("code", "row %d: account with code %s already exists in this ledger", i+2, r.Code)
				}
				return apperr.Internal(err, "importing account %s", r.Code)
			}
			ids[a.Code] = a.ID
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("accounts imported", zap.String("ledger_id", h.LedgerID()), zap.Int("accounts", len(created)))
	return created, nil
}

func codeIndex(ctx context.Context, q store.Querier, ledgerID string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT code, id FROM accounts WHERE ledger_id = ?`, ledgerID)
	if err != nil {
		return nil, apperr.Internal(err, "indexing account codes")
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var code, accountID string
		if err := rows.Scan(&code, &accountID); err != nil {
			return nil, apperr.Internal(err, "indexing account codes")
		}
		ids[code] = accountID
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "indexing account codes")
	}
	return ids, nil
}
