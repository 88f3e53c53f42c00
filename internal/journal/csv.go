package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/finreport/internal/model"
)

// Header is the CSV header of a journal export.
const Header = "transaction_id,timestamp,account_code,account_name,counterpart_code,counterpart_name,debit,credit,description,unit_tag"

const (
	numFields    = 10
	colTxID      = 0
	colTimestamp = 1
	colAcctCode  = 2
	colAcctName  = 3
	colCptyCode  = 4
	colCptyName  = 5
	colDebit     = 6
	colCredit    = 7
	colDesc      = 8
	colUnitTag   = 9
)

// WriteTransactions writes a journal export, one row per transaction, with
// the amount in the column of the primary account's side.
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txs {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colTxID] = t.ID
	row[colTimestamp] = t.Timestamp.UTC().Format(time.RFC3339)
	row[colAcctCode] = t.AccountCode
	row[colAcctName] = t.AccountName
	row[colCptyCode] = t.CounterpartCode
	row[colCptyName] = t.CounterpartName

	amount := t.Amount.StringFixed(model.MinorUnitPlaces)
	if t.Direction == model.Debit {
		row[colDebit] = amount
	} else {
		row[colCredit] = amount
	}

	row[colDesc] = t.Description
	row[colUnitTag] = t.UnitTag
	return row
}
