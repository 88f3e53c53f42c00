package statements

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/finreport/internal/model"
)

// GeneralLedgerHeader is the CSV header of a general ledger export.
const GeneralLedgerHeader = "account_code,account_name,account_type,transaction_id,timestamp,direction,debit,credit,other_account_code,other_account_name,description,unit_tag"

// WriteGeneralLedger writes one row per entry. An account without entries
// gets a single row with the entry columns empty.
func WriteGeneralLedger(w io.Writer, gl *GeneralLedger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(GeneralLedgerHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, a := range gl.Accounts {
		head := []string{a.Code, a.Name, string(a.Type)}
		if len(a.Entries) == 0 {
			if err := cw.Write(append(head, make([]string, 9)...)); err != nil {
				return fmt.Errorf("writing account %s: %w", a.Code, err)
			}
			continue
		}
		for _, en := range a.Entries {
			var debit, credit string
			if en.Direction == model.Debit {
				debit = en.Amount.String()
			} else {
				credit = en.Amount.String()
			}
			row := append(append([]string{}, head...),
				en.TransactionID,
				en.Timestamp.UTC().Format(time.RFC3339),
				string(en.Direction),
				debit,
				credit,
				en.Other.Code,
				en.Other.Name,
				en.Description,
				en.UnitTag,
			)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing account %s: %w", a.Code, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
