package risk

import (
	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
)

const (
	ReasonStopLoss     = "StopLoss"
	ReasonTrailingStop = "TrailingStop"
	ReasonTakeProfit   = "TakeProfit"
	ReasonCustom       = "CustomExit"
)

// ExitRule is an optional strategy capability: an extra exit checked only
// after the stop-loss and take-profit thresholds did not fire.
type ExitRule interface {
	ShouldExit(pos market.Position, c market.Candle, row indicators.Row) (bool, string)
}

// Exit is the outcome of evaluating an open position against one candle.
type Exit struct {
	Hit    bool
	Price  float64
	PnLPct float64 // fraction, signed
	Reason string
}

// Evaluate decides whether pos closes on candle c.
//
// The checks run against the candle's intrabar range in a fixed order:
// stop-loss (fixed or trailing), then take-profit, then rule. OHLC data does
// not record which extreme traded first, so when one candle breaches both
// the stop and the target the stop is reported. This is an approximation of
// real execution order, not a guarantee.
func Evaluate(pos market.Position, c market.Candle, row indicators.Row, p Params, rule ExitRule) Exit {
	if !pos.Open() {
		return Exit{}
	}

	if stop, reason, ok := stopLevel(pos, p); ok && stopHit(pos.Side, c, stop) {
		pnl := -p.StopLossPct
		if reason == ReasonTrailingStop {
			pnl = pos.Move(stop)
		}
		return Exit{Hit: true, Price: stop, PnLPct: pnl, Reason: reason}
	}

	if p.TakeProfitPct > 0 {
		target := pos.EntryPrice * (1 + float64(pos.Side)*p.TakeProfitPct)
		if targetHit(pos.Side, c, target) {
			return Exit{Hit: true, Price: target, PnLPct: p.TakeProfitPct, Reason: ReasonTakeProfit}
		}
	}

	if rule != nil {
		if hit, reason := rule.ShouldExit(pos, c, row); hit {
			if reason == "" {
				reason = ReasonCustom
			}
			return Exit{Hit: true, Price: c.Close, PnLPct: pos.Move(c.Close), Reason: reason}
		}
	}

	return Exit{}
}

// stopLevel returns the tighter of the fixed stop and the trailing stop.
func stopLevel(pos market.Position, p Params) (float64, string, bool) {
	side := float64(pos.Side)
	var (
		stop   float64
		reason string
		ok     bool
	)
	if p.StopLossPct > 0 {
		stop = pos.EntryPrice * (1 - side*p.StopLossPct)
		reason = ReasonStopLoss
		ok = true
	}
	if p.TrailingStopPct > 0 && pos.Peak > 0 {
		trail := pos.Peak * (1 - side*p.TrailingStopPct)
		tighter := !ok ||
			(pos.Side == market.Long && trail > stop) ||
			(pos.Side == market.Short && trail < stop)
		if tighter {
			stop, reason, ok = trail, ReasonTrailingStop, true
		}
	}
	return stop, reason, ok
}

func stopHit(side market.Side, c market.Candle, stop float64) bool {
	if side == market.Long {
		return c.Low <= stop
	}
	return c.High >= stop
}

func targetHit(side market.Side, c market.Candle, target float64) bool {
	if side == market.Long {
		return c.High >= target
	}
	return c.Low <= target
}

// Trail updates the position's favourable extreme with candle c. Call it
// only for candles on which the position stayed open.
func Trail(pos market.Position, c market.Candle) market.Position {
	switch pos.Side {
	case market.Long:
		if c.High > pos.Peak {
			pos.Peak = c.High
		}
	case market.Short:
		if pos.Peak == 0 || c.Low < pos.Peak {
			pos.Peak = c.Low
		}
	}
	return pos
}
