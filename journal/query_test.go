package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	want := sampleTrade()
	require.NoError(t, j.RecordTrade(want))

	got, err := j.GetTrade("T1")
	require.NoError(t, err)

	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Symbol, got.Symbol)
	assert.Equal(t, want.Side, got.Side)
	assert.InDelta(t, want.EntryPrice, got.EntryPrice, 1e-9)
	assert.InDelta(t, want.ExitPrice, got.ExitPrice, 1e-9)
	assert.True(t, got.OpenTime.Equal(want.OpenTime))
	assert.True(t, got.CloseTime.Equal(want.CloseTime))
	assert.InDelta(t, want.PnLPct, got.PnLPct, 1e-9)
	assert.Equal(t, want.Reason, got.Reason)
}

func TestGetTrade_NotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.GetTrade("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `trade "missing" not found`)
}

func TestListTradesByRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, run := range []string{"A", "B", "A"} {
		rec := sampleTrade()
		rec.RunID = run
		rec.TradeID = string(rune('1' + i))
		rec.CloseTime = base.Add(time.Duration(3-i) * time.Hour)
		require.NoError(t, j.RecordTrade(rec))
	}

	trades, err := j.ListTrades("A")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	// ordered by close time
	assert.Equal(t, "3", trades[0].TradeID)
	assert.Equal(t, "1", trades[1].TradeID)

	between, err := j.ListTradesClosedBetween(base.Add(2*time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "2", between[0].TradeID)
}

func TestListEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// seed and first candle share a timestamp; insertion order breaks the tie
	points := []EquitySnapshot{
		{RunID: "A", Time: base, Equity: 10000, Realized: 10000, Position: "Flat"},
		{RunID: "A", Time: base, Equity: 10000, Realized: 10000, Position: "Long"},
		{RunID: "A", Time: base.Add(time.Hour), Equity: 10100, Realized: 10000, Position: "Long"},
		{RunID: "B", Time: base, Equity: 1, Realized: 1, Position: "Flat"},
	}
	for _, p := range points {
		require.NoError(t, j.RecordEquity(p))
	}

	curve, err := j.ListEquity("A")
	require.NoError(t, err)
	require.Len(t, curve, 3)
	assert.Equal(t, "Flat", curve[0].Position)
	assert.Equal(t, "Long", curve[1].Position)
	assert.InDelta(t, 10100.0, curve[2].Equity, 1e-9)
}
