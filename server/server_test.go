package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/candlebot/live"
	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snap live.Snapshot
}

func (s staticSource) Snapshot() live.Snapshot { return s.snap }

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testSnapshot() live.Snapshot {
	return live.Snapshot{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
		Stats:     sim.Stats{Trades: 2, Wins: 1, Losses: 1, WinRate: 50, NetProfit: 192},
		Trades: []sim.Trade{
			{ID: "B", Direction: market.Short, ExitTime: t0.Add(4 * time.Hour), Reason: "StopLoss"},
			{ID: "A", Direction: market.Long, ExitTime: t0.Add(3 * time.Hour), Reason: "TakeProfit"},
		},
		Equity: []sim.EquityPoint{
			{Time: t0, Equity: 10000},
			{Time: t0, Equity: 10000},
			{Time: t0.Add(time.Hour), Equity: 10050},
		},
		Status: live.Status{State: live.StateRunning, Message: "no new candle", LastPrice: 101},
		Candles: []market.Candle{
			{Time: t0, Open: 100, High: 101, Low: 99, Close: 100},
			{Time: t0.Add(time.Hour), Open: 100, High: 102, Low: 99, Close: 101},
		},
		Indicators: map[string][]float64{
			"rsi": {math.NaN(), 55.5},
		},
	}
}

func newTestRouter() *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(staticSource{snap: testSnapshot()}, "test", logger).Routes()
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetData(t *testing.T) {
	w := get(t, newTestRouter(), "/data")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Symbol     string      `json:"symbol"`
		Stats      sim.Stats   `json:"stats"`
		Trades     []sim.Trade `json:"trades"`
		LiveStatus live.Status `json:"live_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "BTC/USDT", body.Symbol)
	assert.Equal(t, 2, body.Stats.Trades)
	require.Len(t, body.Trades, 2)
	assert.Equal(t, "B", body.Trades[0].ID)
	assert.Equal(t, market.Short, body.Trades[0].Direction)
	assert.Contains(t, w.Body.String(), `"direction":"Short"`)
	assert.Contains(t, w.Body.String(), `"side":"Flat"`)
	assert.Equal(t, live.StateRunning, body.LiveStatus.State)
	assert.Equal(t, 101.0, body.LiveStatus.LastPrice)
}

func TestGetEquity(t *testing.T) {
	w := get(t, newTestRouter(), "/equity")
	require.Equal(t, http.StatusOK, w.Code)

	var curve []sim.EquityPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &curve))
	require.Len(t, curve, 3)
	assert.Equal(t, 10050.0, curve[2].Equity)
	assert.True(t, curve[2].Time.Equal(t0.Add(time.Hour)))
}

func TestGetCandles_NaNIsNull(t *testing.T) {
	w := get(t, newTestRouter(), "/candles")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []struct {
		Close      float64             `json:"close"`
		Indicators map[string]*float64 `json:"indicators"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	v, ok := rows[0].Indicators["rsi"]
	assert.True(t, ok)
	assert.Nil(t, v)

	require.NotNil(t, rows[1].Indicators["rsi"])
	assert.Equal(t, 55.5, *rows[1].Indicators["rsi"])
	assert.Equal(t, 101.0, rows[1].Close)
}

func TestGetCandles_Limit(t *testing.T) {
	router := newTestRouter()

	w := get(t, router, "/candles?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 101.0, rows[0]["close"])

	w = get(t, router, "/candles?limit=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "limit must be a positive integer")
}

func TestHealthCheck(t *testing.T) {
	w := get(t, newTestRouter(), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, ServiceName, body["service"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, live.StateRunning, body["loop"])
}

func TestMetricsEndpoint(t *testing.T) {
	w := get(t, newTestRouter(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRequestID(t *testing.T) {
	router := newTestRouter()

	w := get(t, router, "/health")
	assert.Len(t, w.Header().Get(RequestIDHeaderKey), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeaderKey, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeaderKey))
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/data", nil)
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
