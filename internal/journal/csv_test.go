package journal

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/model"
)

func TestWriteTransactions(t *testing.T) {
	txs := []model.Transaction{
		{ID: "t1", Timestamp: date(2024, 3, 1), AccountCode: "1000", AccountName: "Cash",
			CounterpartCode: "4000", CounterpartName: "Sales Revenue",
			Amount: dec("100"), Direction: model.Debit, Description: "sale, counter"},
		{ID: "t2", Timestamp: date(2024, 3, 2), AccountCode: "1000", AccountName: "Cash",
			CounterpartCode: "2000", CounterpartName: "Accounts Payable",
			Amount: dec("7.5"), Direction: model.Credit, Description: "supplier", UnitTag: "store-2"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, records[0], numFields)

	assert.Equal(t, []string{"t1", "2024-03-01T12:00:00Z", "1000", "Cash", "4000", "Sales Revenue", "100.00", "", "sale, counter", ""}, records[1])
	assert.Equal(t, "", records[2][colDebit])
	assert.Equal(t, "7.50", records[2][colCredit])
	assert.Equal(t, "store-2", records[2][colUnitTag])
}
