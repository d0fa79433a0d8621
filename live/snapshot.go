package live

import (
	"time"

	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/sim"
)

const (
	StateStarting = "starting"
	StateRunning  = "running"
	StateError    = "error"
)

// Status is the read-only view of the loop's health.
type Status struct {
	State             string          `json:"state"`
	Message           string          `json:"message"`
	LastPrice         float64         `json:"last_price"` // forming candle close
	LastCheck         time.Time       `json:"last_check"`
	LastCandle        time.Time       `json:"last_candle"` // newest closed candle in the series
	Equity            float64         `json:"equity"`
	Position          market.Position `json:"position"`
	Error             string          `json:"error,omitempty"`
	ConsecutiveErrors int             `json:"consecutive_errors"`
}

// Snapshot is an immutable copy of the bot state for readers.
type Snapshot struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`

	Stats          sim.Stats         `json:"stats"`
	MaxDrawdownPct float64           `json:"max_drawdown_pct"`
	Trades         []sim.Trade       `json:"trades"` // newest first
	Equity         []sim.EquityPoint `json:"equity"`
	Status         Status            `json:"live_status"`

	Candles    []market.Candle      `json:"candles"`
	Indicators map[string][]float64 `json:"indicators"`
}

func (b *Bot) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Snapshot copies the current state under the read lock.
func (b *Bot) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ledger := b.engine.Ledger()
	curve := ledger.Curve()

	trades := ledger.Trades()
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}

	return Snapshot{
		Symbol:         b.series.Symbol,
		Timeframe:      b.series.Timeframe,
		Stats:          ledger.Stats(),
		MaxDrawdownPct: sim.MaxDrawdown(curve) * 100,
		Trades:         trades,
		Equity:         curve,
		Status:         b.status,
		Candles:        b.series.Clone().Candles,
		Indicators:     b.set.Clone().Columns,
	}
}
