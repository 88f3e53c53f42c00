package journal

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/model"
)

// ValidationError describes one problem with a posting request.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidatePost checks a posting request without touching the store.
func ValidatePost(p PostParams) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(p.AccountID) == "" {
		errs = append(errs, ValidationError{Field: "account_id", Description: "primary account is required"})
	}
	if strings.TrimSpace(p.CounterpartID) == "" {
		errs = append(errs, ValidationError{Field: "counterpart_account_id", Description: "counterpart account is required"})
	}
	if p.AccountID != "" && p.AccountID == p.CounterpartID {
		errs = append(errs, ValidationError{Field: "counterpart_account_id", Description: "counterpart must differ from the primary account"})
	}

	if !p.Amount.IsPositive() {
		errs = append(errs, ValidationError{Field: "amount", Description: fmt.Sprintf("amount must be positive, got %s", p.Amount)})
	} else if !model.HasMinorPrecision(p.Amount) {
		errs = append(errs, ValidationError{Field: "amount", Description: fmt.Sprintf("amount %s has more than %d decimal places", p.Amount, model.MinorUnitPlaces)})
	} else if !model.FitsMinor(p.Amount) {
		errs = append(errs, ValidationError{Field: "amount", Description: fmt.Sprintf("amount %s is too large", p.Amount)})
	}

	if !p.Direction.Valid() {
		errs = append(errs, ValidationError{Field: "direction", Description: fmt.Sprintf("direction must be dr or cr, got %q", p.Direction)})
	}

	if strings.TrimSpace(p.Description) == "" {
		errs = append(errs, ValidationError{Field: "description", Description: "description is required"})
	}

	return errs
}

// asAppErr folds validation errors into one Validation failure naming the
// first offending field.
func asAppErr(errs []ValidationError) error {
	msgs := make([]string, len(errs))
	for i, ve := range errs {
		msgs[i] = ve.Error()
	}
	return apperr.Validation(errs[0].Field, "invalid transaction: %s", strings.Join(msgs, "; "))
}
