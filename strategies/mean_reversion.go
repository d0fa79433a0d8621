package strategies

import (
	"math"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
)

// MeanReversion goes long when RSI is oversold and short when it is
// overbought. Exits are left entirely to stop-loss/take-profit.
type MeanReversion struct {
	Period int
	Lower  float64 // 30
	Upper  float64 // 70
}

func (s *MeanReversion) Name() string { return "mean-reversion" }

func (s *MeanReversion) Indicators() []indicators.Spec {
	return []indicators.Spec{{Name: indicators.RSIName, Kind: indicators.KindRSI, Period: s.Period}}
}

func (s *MeanReversion) Signal(c market.Candle, row indicators.Row) market.Side {
	rsi := row.Get(indicators.RSIName)
	switch {
	case math.IsNaN(rsi):
		return market.Flat
	case rsi < s.Lower:
		return market.Long
	case rsi > s.Upper:
		return market.Short
	default:
		return market.Flat
	}
}
