package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finreport/internal/testutil/testdb"
)

const caller = "user-1"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(testdb.New(t)).Handler()
}

func do(t *testing.T, h http.Handler, method, path, who string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if who != "" {
		req.Header.Set(CallerHeader, who)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// setupLedger creates an entity with a seeded ledger named main and
// returns the ledger base path and account ids by code.
func setupLedger(t *testing.T, h http.Handler) (string, map[string]string) {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/entities", caller, map[string]any{"name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entityID := decode[map[string]any](t, w)["id"].(string)

	w = do(t, h, http.MethodPost, "/api/v1/entities/"+entityID+"/ledgers", caller, map[string]any{"name": "main"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	base := "/api/v1/entities/" + entityID + "/ledgers/main"
	w = do(t, h, http.MethodPost, base+"/chart-of-accounts", caller, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	seeded := decode[map[string]any](t, w)
	assert.EqualValues(t, 28, seeded["accounts_created"])

	ids := make(map[string]string)
	for _, a := range seeded["accounts"].([]any) {
		m := a.(map[string]any)
		ids[m["code"].(string)] = m["id"].(string)
	}
	return base, ids
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "dev", body["version"])
}

func TestRequireCaller(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodGet, "/api/v1/entities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEntities(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/v1/entities", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/entities", caller, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/entities", caller, map[string]any{"name": "Acme", "fy_start_month": 7})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["id"].(string)

	w = do(t, h, http.MethodGet, "/api/v1/entities/"+id, "someone-else", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPut, "/api/v1/entities/"+id, caller, map[string]any{"name": "Acme Ltd"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Ltd", decode[map[string]any](t, w)["name"])

	w = do(t, h, http.MethodDelete, "/api/v1/entities/"+id, caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodGet, "/api/v1/entities/"+id, caller, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerFlow(t *testing.T) {
	h := newTestServer(t)
	base, ids := setupLedger(t, h)

	w := do(t, h, http.MethodPost, base+"/chart-of-accounts", caller, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode[errorBody](t, w).Error.Kind)

	w = do(t, h, http.MethodPost, base+"/transactions", caller, map[string]any{
		"account_id":             ids["1000"],
		"counterpart_account_id": ids["4000"],
		"amount":                 "100.00",
		"direction":              "dr",
		"description":            "cash sale",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	txID := decode[map[string]any](t, w)["id"].(string)

	w = do(t, h, http.MethodGet, base+"/balances", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	balances := decode[map[string][]map[string]any](t, w)
	assert.Equal(t, "100.00", balances["assets"][0]["balance"])
	assert.Equal(t, "-100.00", balances["revenues"][0]["balance"])

	w = do(t, h, http.MethodGet, base+"/income-statement", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "-100.00", decode[map[string]any](t, w)["total_revenues"])

	w = do(t, h, http.MethodGet, base+"/balance-sheet?as_of_date=2024-12-31", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bs := decode[map[string]any](t, w)
	assert.Equal(t, "2024-12-31", bs["as_of_date"])
	assert.Equal(t, true, bs["balanced"])

	w = do(t, h, http.MethodGet, base+"/trial-balance", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["balanced"])

	w = do(t, h, http.MethodGet, base+"/cash-flow-statement", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100.00", decode[map[string]any](t, w)["ending_cash_balance"])

	w = do(t, h, http.MethodGet, base+"/transactions?direction=dr", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[map[string]any](t, w)
	assert.Len(t, page["transactions"], 1)

	w = do(t, h, http.MethodGet, base+"/transactions/summary", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100.00", decode[map[string]any](t, w)["total_debits"])

	w = do(t, h, http.MethodPatch, base+"/transactions/"+txID, caller, map[string]any{"description": "invoice 9"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invoice 9", decode[map[string]any](t, w)["description"])

	w = do(t, h, http.MethodDelete, base+"/accounts/"+ids["1000"], caller, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Error.Message, "cannot delete account with existing transactions")

	w = do(t, h, http.MethodGet, base+"/general-ledger?format=csv&account_id="+ids["1000"], caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "1000,Cash,Asset,"+txID)

	w = do(t, h, http.MethodDelete, base+"/transactions/"+txID, caller, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, base+"/transactions/"+txID, caller, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, base+"/accounts/"+ids["1000"], caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", decode[map[string]any](t, w)["current_balance"])

	w = do(t, h, http.MethodDelete, base+"/accounts/"+ids["1000"], caller, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLedgerScope(t *testing.T) {
	h := newTestServer(t)
	base, _ := setupLedger(t, h)

	w := do(t, h, http.MethodGet, base+"/accounts", "intruder", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, strings.Replace(base, "/main", "/missing", 1)+"/accounts", caller, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/accounts", "intruder", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())

	w = do(t, h, http.MethodGet, "/api/v1/accounts", caller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 28)
}

func TestValidationErrors(t *testing.T) {
	h := newTestServer(t)
	base, ids := setupLedger(t, h)

	w := do(t, h, http.MethodPost, base+"/transactions", caller, map[string]any{
		"account_id":             ids["1000"],
		"counterpart_account_id": ids["4000"],
		"amount":                 "0",
		"direction":              "dr",
		"description":            "nothing",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "validation", body.Error.Kind)
	assert.Equal(t, "amount", body.Error.Field)

	w = do(t, h, http.MethodPost, base+"/transactions", caller, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, base+"/income-statement?start_date=yesterday", caller, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "start_date", decode[errorBody](t, w).Error.Field)

	w = do(t, h, http.MethodGet, base+"/transactions?limit=-1", caller, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, base+"/accounts", caller, map[string]any{"code": "1000", "name": "Dup", "type": "Asset"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "code", decode[errorBody](t, w).Error.Field)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodGet, "/healthz", "", nil)

	w := do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "finreport_http_requests_total")
}
