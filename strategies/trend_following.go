package strategies

import (
	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
)

const ReasonTrendReversal = "TrendReversal"

// TrendFollowing trades the side of a fast/slow SMA relationship and exits
// an open position when the relationship flips.
type TrendFollowing struct {
	Fast int
	Slow int
}

func (s *TrendFollowing) Name() string { return "trend-following" }

func (s *TrendFollowing) Indicators() []indicators.Spec {
	return []indicators.Spec{
		{Name: indicators.SMAFast, Kind: indicators.KindSMA, Period: s.Fast},
		{Name: indicators.SMASlow, Kind: indicators.KindSMA, Period: s.Slow},
	}
}

func (s *TrendFollowing) Signal(c market.Candle, row indicators.Row) market.Side {
	if !row.Defined(indicators.SMAFast, indicators.SMASlow) {
		return market.Flat
	}
	fast, slow := row.Get(indicators.SMAFast), row.Get(indicators.SMASlow)
	switch {
	case fast > slow:
		return market.Long
	case fast < slow:
		return market.Short
	default:
		return market.Flat
	}
}

// ShouldExit reports a trend reversal against the open position.
func (s *TrendFollowing) ShouldExit(pos market.Position, c market.Candle, row indicators.Row) (bool, string) {
	if !row.Defined(indicators.SMAFast, indicators.SMASlow) {
		return false, ""
	}
	fast, slow := row.Get(indicators.SMAFast), row.Get(indicators.SMASlow)
	switch pos.Side {
	case market.Long:
		return fast < slow, ReasonTrendReversal
	case market.Short:
		return fast > slow, ReasonTrendReversal
	}
	return false, ""
}
