package sim

import (
	"time"

	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/risk"
)

// Ledger owns realized equity, the trade log and the equity curve.
type Ledger struct {
	initial float64
	equity  float64
	trades  []Trade
	curve   []EquityPoint
}

func NewLedger(initial float64) *Ledger {
	return &Ledger{initial: initial, equity: initial}
}

// Seed appends the starting point of the curve at initial capital.
func (l *Ledger) Seed(t time.Time) EquityPoint {
	pt := EquityPoint{Time: t, Equity: l.initial}
	l.curve = append(l.curve, pt)
	return pt
}

// Realize closes pos according to ex and compounds realized equity.
func (l *Ledger) Realize(id string, pos market.Position, ex risk.Exit, at time.Time) Trade {
	pnl := l.equity * ex.PnLPct
	l.equity += pnl

	t := Trade{
		ID:        id,
		Direction: pos.Side,
		EntryTime: pos.EntryTime,
		ExitTime:  at,
		PriceIn:   pos.EntryPrice,
		PriceOut:  ex.Price,
		PnL:       pnl,
		PnLPct:    ex.PnLPct,
		Reason:    ex.Reason,
	}
	l.trades = append(l.trades, t)
	return t
}

// Mark appends a curve point valuing pos at price. A flat book is worth its
// realized equity.
func (l *Ledger) Mark(t time.Time, pos market.Position, price float64) EquityPoint {
	v := l.equity
	if pos.Open() {
		v = l.equity * (1 + pos.Move(price))
	}
	pt := EquityPoint{Time: t, Equity: v}
	l.curve = append(l.curve, pt)
	return pt
}

func (l *Ledger) Initial() float64 { return l.initial }

// Equity is the realized equity.
func (l *Ledger) Equity() float64 { return l.equity }

// Trades returns a copy of the trade log, oldest first.
func (l *Ledger) Trades() []Trade {
	return append([]Trade(nil), l.trades...)
}

// Curve returns a copy of the equity curve.
func (l *Ledger) Curve() []EquityPoint {
	return append([]EquityPoint(nil), l.curve...)
}

// LastPoint returns the newest curve point.
func (l *Ledger) LastPoint() (EquityPoint, bool) {
	if len(l.curve) == 0 {
		return EquityPoint{}, false
	}
	return l.curve[len(l.curve)-1], true
}

// Stats summarizes the trade log.
func (l *Ledger) Stats() Stats {
	return ComputeStats(l.initial, l.trades)
}
