//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The e2e suite drives a running server over HTTP. It requires:
//   - the server started against a migrated database
//   - E2E_BASE_URL (default http://localhost:3000)
//   - E2E_API_TOKEN (default dev-token)
//
// Each run uses a fresh owner id, so it can be pointed at a shared
// development database without cleanup.

var (
	baseURL  string
	apiToken string
	owner    uuid.UUID
)

func TestMain(m *testing.M) {
	baseURL = os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	apiToken = os.Getenv("E2E_API_TOKEN")
	if apiToken == "" {
		apiToken = "dev-token"
	}
	owner = uuid.New()

	os.Exit(m.Run())
}

func call(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiToken)
	req.Header.Set("X-User-ID", owner.String())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestE2E_Health(t *testing.T) {
	resp, err := http.Get(baseURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestE2E_AuthRequired(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/assets", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestE2E_LedgerLifecycle(t *testing.T) {
	// 1. First BUY creates the position
	resp, body := call(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"ticker":   "PETR4",
		"type":     "BUY",
		"value":    28.50,
		"quantity": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var result struct {
		Status      string          `json:"status"`
		NewAvgPrice decimal.Decimal `json:"new_avg_price"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "success", result.Status)
	assert.True(t, decimal.NewFromFloat(28.50).Equal(result.NewAvgPrice))

	// 2. Second BUY averages up
	resp, body = call(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"ticker":   "PETR4",
		"type":     "BUY",
		"value":    31.00,
		"quantity": 50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &result))
	wantAvg := decimal.NewFromInt(4400).Div(decimal.NewFromInt(150))
	diff := wantAvg.Sub(result.NewAvgPrice).Abs()
	assert.True(t, diff.LessThan(decimal.NewFromFloat(1e-6)),
		"expected avg ~%s, got %s", wantAvg, result.NewAvgPrice)

	// 3. Oversell is rejected
	resp, body = call(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"ticker":   "PETR4",
		"type":     "SELL",
		"value":    35.00,
		"quantity": 1000,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "insufficient balance")

	// 4. SELL of a never-held ticker is rejected
	resp, body = call(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"ticker":   fmt.Sprintf("GHOST%d", os.Getpid()),
		"type":     "SELL",
		"value":    10.00,
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "nonexistent")

	// 5. History shows the two BUYs
	resp, body = call(t, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var trades []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(body, &trades))
	assert.Len(t, trades, 2)

	// 6. Portfolio reflects the position
	resp, body = call(t, http.MethodGet, "/api/assets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		Count  int `json:"count"`
		Assets []struct {
			Ticker   string          `json:"ticker"`
			Quantity decimal.Decimal `json:"quantity"`
		} `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Equal(t, 1, summary.Count)
	assert.Equal(t, "PETR4", summary.Assets[0].Ticker)
	assert.True(t, decimal.NewFromInt(150).Equal(summary.Assets[0].Quantity))
}

func TestE2E_BulkTransactions(t *testing.T) {
	resp, body := call(t, http.MethodPost, "/api/transactions/bulk", []map[string]interface{}{
		{"ticker": "WEGE3", "type": "BUY", "value": 10.00, "quantity": 10},
		{"ticker": "WEGE3", "type": "BUY", "value": 20.00, "quantity": 5},
		{"ticker": "WEGE3", "type": "SELL", "value": 25.00, "quantity": 100},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var payload struct {
		Details []struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Details, 3)
	assert.Equal(t, "success", payload.Details[0].Status)
	assert.Equal(t, "success", payload.Details[1].Status)
	assert.Equal(t, "rejected", payload.Details[2].Status)
}

func TestE2E_AssetImportAndRemoval(t *testing.T) {
	resp, body := call(t, http.MethodPost, "/api/assets/bulk", []map[string]interface{}{
		{"ticker": "AAPL", "quantity": 10, "avg_price": 150.00, "type": "us stock", "currency": "USD"},
		{"ticker": "KNRI11", "quantity": 80, "avg_price": 132.10},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, http.MethodGet, "/api/assets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		Assets []struct {
			ID     string `json:"id"`
			Ticker string `json:"ticker"`
		} `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))

	var appleID string
	for _, asset := range summary.Assets {
		if asset.Ticker == "AAPL" {
			appleID = asset.ID
		}
	}
	require.NotEmpty(t, appleID)

	resp, _ = call(t, http.MethodDelete, "/api/assets/"+appleID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
