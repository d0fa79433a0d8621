package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	trade := sampleTrade()
	trade.TradeID = "01HQX3ABCDEFGHJKMNPQRSTVWX"

	result := FormatTradeOrg(trade)

	assert.True(t, strings.HasPrefix(result, "** Trade: BTC/USDT Long (PQRSTVWX)\n"))
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HQX3ABCDEFGHJKMNPQRSTVWX")
	assert.Contains(t, result, ":ENTRY_PRICE: 42000.50000")
	assert.Contains(t, result, ":OPEN_TIME: 2024-01-02T03:00:00Z")
	assert.Contains(t, result, ":PNL: -200.00")
	assert.Contains(t, result, ":REASON: StopLoss")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	a, b := sampleTrade(), sampleTrade()
	b.TradeID = "T2"
	out := FormatTradesOrg([]TradeRecord{a, b})
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Contains(t, out, "(T2)")
	assert.Empty(t, FormatTradesOrg(nil))
}

func TestWriteBacktestOrg(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.org")
	run := BacktestRun{
		RunID:         "RUN1",
		Strategy:      "trend-following",
		Symbol:        "BTC/USDT",
		Timeframe:     "1h",
		Start:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		StopLossPct:   0.02,
		TakeProfitPct: 0.04,
		Trades:        4,
		Wins:          1,
		Losses:        3,
		WinRate:       25,
		Notes:         []string{"choppy month"},
		OrgPath:       path,
	}
	require.NoError(t, run.WriteBacktestOrg())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "* BACKTEST: trend-following BTC/USDT 1h")
	assert.Contains(t, out, ":START_DATE:  2024-01-01")
	assert.Contains(t, out, "| Stop Loss %   | 2.00 |")
	assert.Contains(t, out, ":WIN_RATE:    25.00")
	assert.Contains(t, out, "- choppy month")

	run.OrgPath = ""
	assert.Error(t, run.WriteBacktestOrg())
}
