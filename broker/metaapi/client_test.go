package metaapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/signalbot/broker"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New("test-token", "acct-1").WithBaseURL(server.URL)
	c.pollInterval = 5 * time.Millisecond
	c.waitTimeout = 200 * time.Millisecond
	return c
}

func TestGetAccountInformation(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("auth-token"))
		assert.Equal(t, "/users/current/accounts/acct-1/account-information", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"balance":    10000.0,
			"equity":     10123.45,
			"freeMargin": 9500.0,
			"currency":   "USD",
		})
	})

	info, err := c.GetAccountInformation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, broker.Snapshot{
		Balance:    10000,
		Equity:     10123.45,
		FreeMargin: 9500,
		Currency:   "USD",
	}, info)
}

func TestGetSymbolSpecification(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/current/accounts/acct-1/symbols/EURUSD/specification", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"symbol":     "EURUSD",
			"pointSize":  0.0001,
			"volumeMin":  0.01,
			"volumeMax":  50.0,
			"volumeStep": 0.01,
		})
	})

	spec, err := c.GetSymbolSpecification(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", spec.Symbol)
	assert.InDelta(t, 0.0001, spec.PointSize, 1e-12)
	assert.InDelta(t, 0.01, spec.VolumeMin, 1e-12)
}

func TestGetPointValue(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/current/accounts/acct-1/symbols/EURUSD/point-value", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("currency"))
		json.NewEncoder(w).Encode(map[string]any{"pointValue": 1.0})
	})

	pv, err := c.GetPointValue(context.Background(), "EURUSD", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pv, 1e-12)
}

func TestWaitConnected_PollsUntilConnected(t *testing.T) {
	t.Parallel()

	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		status := "deploying"
		if calls >= 3 {
			status = "connected"
		}
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	err := c.WaitConnected(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestWaitConnected_TimesOut(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "disconnected"})
	})

	err := c.WaitConnected(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait connected")
}

func TestCreateMarketOrder(t *testing.T) {
	t.Parallel()

	sl, tp := 1.12, 1.13

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/current/accounts/acct-1/trade", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ORDER_TYPE_BUY", body["actionType"])
		assert.Equal(t, "EURUSD", body["symbol"])
		assert.InDelta(t, 2.0, body["volume"].(float64), 1e-9)
		assert.InDelta(t, 1.12, body["stopLoss"].(float64), 1e-9)
		assert.Equal(t, "Telegram Signal", body["comment"])

		json.NewEncoder(w).Encode(map[string]any{
			"orderId":    "46870472",
			"stringCode": "TRADE_RETCODE_DONE",
			"message":    "done",
		})
	})

	result, err := c.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Symbol:     "EURUSD",
		Side:       broker.Buy,
		Volume:     2.0,
		Price:      1.12345,
		StopLoss:   &sl,
		TakeProfit: &tp,
		Comment:    "Telegram Signal",
	})
	require.NoError(t, err)
	assert.Equal(t, "46870472", result.OrderID)
}

func TestCreateMarketOrder_Rejected(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"stringCode": "TRADE_RETCODE_INVALID_VOLUME",
			"message":    "Invalid volume in the request",
		})
	})

	_, err := c.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Symbol: "EURUSD",
		Side:   broker.Sell,
		Volume: 0,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid volume")
}

func TestHTTPErrorIncludesBody(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"NotFoundError"}`, http.StatusNotFound)
	})

	_, err := c.GetCurrentPrice(context.Background(), "EURUSD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "NotFoundError")
}
