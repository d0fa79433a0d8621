package sim

import (
	"time"

	"github.com/rustyeddy/candlebot/market"
)

// Trade is a closed round trip. Trades are immutable once realized.
type Trade struct {
	ID        string      `json:"id"`
	Direction market.Side `json:"direction"`
	EntryTime time.Time   `json:"entry_time"`
	ExitTime  time.Time   `json:"exit_time"`
	PriceIn   float64     `json:"price_in"`
	PriceOut  float64     `json:"price_out"`
	PnL       float64     `json:"pnl"`     // account currency
	PnLPct    float64     `json:"pnl_pct"` // fraction of equity at close
	Reason    string      `json:"reason"`
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}
