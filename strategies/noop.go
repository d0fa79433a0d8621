package strategies

import (
	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
)

// NoopStrategy never trades.
type NoopStrategy struct{}

func (NoopStrategy) Name() string                  { return "noop" }
func (NoopStrategy) Indicators() []indicators.Spec { return nil }

func (NoopStrategy) Signal(c market.Candle, row indicators.Row) market.Side {
	return market.Flat
}
