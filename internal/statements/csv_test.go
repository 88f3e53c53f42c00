package statements

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/model"
)

func TestWriteGeneralLedger(t *testing.T) {
	gl := &GeneralLedger{Accounts: []LedgerAccount{
		{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset, Entries: []Entry{
			{
				TransactionID: "t1",
				Amount:        model.M(dec("100")),
				Direction:     model.Debit,
				Description:   "sale",
				Timestamp:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
				Other:         OtherAccount{ID: "a2", Code: "4000", Name: "Sales Revenue"},
			},
		}},
		{Code: "1100", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Entries: []Entry{}},
		{Code: "4000", Name: "Sales Revenue", Type: model.AccountTypeRevenue, Entries: []Entry{
			{
				TransactionID: "t1",
				Amount:        model.M(dec("100")),
				Direction:     model.Credit,
				Description:   "sale",
				Timestamp:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
				Other:         OtherAccount{ID: "a1", Code: "1000", Name: "Cash"},
			},
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteGeneralLedger(&buf, gl))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Len(t, records[0], 12)
	assert.Equal(t, []string{"1000", "Cash", "Asset", "t1", "2024-03-01T10:00:00Z", "dr", "100.00", "", "4000", "Sales Revenue", "sale", ""}, records[1])
	assert.Equal(t, []string{"1100", "Accounts Receivable", "Asset", "", "", "", "", "", "", "", "", ""}, records[2])
	assert.Equal(t, "", records[3][6])
	assert.Equal(t, "100.00", records[3][7])
}
