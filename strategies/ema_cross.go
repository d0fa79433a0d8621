package strategies

import (
	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
)

// Exit reasons reported when the EMAs cross against an open position.
const (
	ReasonExitOnLong  = "ExitOnLong"
	ReasonExitOnShort = "ExitOnShort"
)

// EMACross trades a fast/slow EMA relationship.
//   - fast above slow signals Long, below signals Short
//   - an opposite cross closes the open position
//   - when MinADX > 0, entries also need ADX(ADXPeriod) >= MinADX
type EMACross struct {
	Fast int
	Slow int

	ADXPeriod int
	MinADX    float64
}

func (s *EMACross) Name() string {
	if s.MinADX > 0 {
		return "ema-cross-adx"
	}
	return "ema-cross"
}

func (s *EMACross) Indicators() []indicators.Spec {
	specs := []indicators.Spec{
		{Name: indicators.EMAFast, Kind: indicators.KindEMA, Period: s.Fast},
		{Name: indicators.EMASlow, Kind: indicators.KindEMA, Period: s.Slow},
	}
	if s.MinADX > 0 {
		specs = append(specs, indicators.Spec{Name: indicators.ADXName, Kind: indicators.KindADX, Period: s.ADXPeriod})
	}
	return specs
}

func (s *EMACross) Signal(c market.Candle, row indicators.Row) market.Side {
	if !row.Defined(indicators.EMAFast, indicators.EMASlow) {
		return market.Flat
	}
	// weak trend: stay out
	if s.MinADX > 0 && (!row.Defined(indicators.ADXName) || row.Get(indicators.ADXName) < s.MinADX) {
		return market.Flat
	}

	diff := row.Get(indicators.EMAFast) - row.Get(indicators.EMASlow)
	switch {
	case diff > 0:
		return market.Long
	case diff < 0:
		return market.Short
	default:
		return market.Flat
	}
}

// ShouldExit closes on an opposite cross regardless of trend strength.
func (s *EMACross) ShouldExit(pos market.Position, c market.Candle, row indicators.Row) (bool, string) {
	if !row.Defined(indicators.EMAFast, indicators.EMASlow) {
		return false, ""
	}
	diff := row.Get(indicators.EMAFast) - row.Get(indicators.EMASlow)
	switch pos.Side {
	case market.Long:
		return diff < 0, ReasonExitOnShort
	case market.Short:
		return diff > 0, ReasonExitOnLong
	}
	return false, ""
}
