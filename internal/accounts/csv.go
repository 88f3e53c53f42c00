package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finreport/internal/model"
)

const (
	numFields  = 8
	colCode    = 0
	colName    = 1
	colType    = 2
	colStatus  = 3
	colParent  = 4
	colDesc    = 5
	colInitial = 6
	colCurrent = 7
)

var header = []string{"code", "name", "type", "status", "parent_code", "description", "initial_balance", "current_balance"}

// ChartRow is one line of a chart-of-accounts CSV file. Parents are named by
// code so files move between ledgers.
type ChartRow struct {
	Code           string
	Name           string
	Type           model.AccountType
	Status         model.AccountStatus
	ParentCode     string
	Description    string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
}

// ReadChart reads a chart-of-accounts CSV file.
func ReadChart(r io.Reader) ([]ChartRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var rows []ChartRow
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteChart writes accounts as a chart-of-accounts CSV file.
func WriteChart(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	codes := make(map[string]string, len(accounts))
	for _, a := range accounts {
		codes[a.ID] = a.Code
	}

	for i, a := range accounts {
		row := ChartRow{
			Code:           a.Code,
			Name:           a.Name,
			Type:           a.Type,
			Status:         a.Status,
			ParentCode:     codes[a.ParentID],
			Description:    a.Description,
			InitialBalance: a.InitialBalance,
			CurrentBalance: a.CurrentBalance,
		}
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a ChartRow to CSV fields.
func MarshalRow(r ChartRow) []string {
	row := make([]string, numFields)
	row[colCode] = r.Code
	row[colName] = r.Name
	row[colType] = string(r.Type)
	row[colStatus] = string(r.Status)
	row[colParent] = r.ParentCode
	row[colDesc] = r.Description
	row[colInitial] = r.InitialBalance.StringFixed(model.MinorUnitPlaces)
	row[colCurrent] = r.CurrentBalance.StringFixed(model.MinorUnitPlaces)
	return row
}

// UnmarshalRow converts CSV fields to a ChartRow. Empty balances read as
// zero and an empty status as Active.
func UnmarshalRow(record []string) (ChartRow, error) {
	if len(record) != numFields {
		return ChartRow{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	initial, err := parseAmount(record[colInitial])
	if err != nil {
		return ChartRow{}, fmt.Errorf("parsing initial_balance %q: %w", record[colInitial], err)
	}
	if !model.FitsMinor(initial) {
		return ChartRow{}, fmt.Errorf("initial_balance %s is too large", record[colInitial])
	}
	current, err := parseAmount(record[colCurrent])
	if err != nil {
		return ChartRow{}, fmt.Errorf("parsing current_balance %q: %w", record[colCurrent], err)
	}

	status := model.AccountStatus(record[colStatus])
	if status == "" {
		status = model.AccountStatusActive
	}

	return ChartRow{
		Code:           record[colCode],
		Name:           record[colName],
		Type:           model.AccountType(record[colType]),
		Status:         status,
		ParentCode:     record[colParent],
		Description:    record[colDesc],
		InitialBalance: initial,
		CurrentBalance: current,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
