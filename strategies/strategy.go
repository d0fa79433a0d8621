package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
)

// Strategy turns one candle and its indicator row into a signal:
// market.Long, market.Short, or market.Flat for hold.
//
// Signal must be a pure function of its inputs. A NaN indicator value means
// there is not enough history yet and must produce market.Flat.
//
// A strategy may also implement risk.ExitRule to add a custom exit that is
// checked after the stop-loss and take-profit thresholds.
type Strategy interface {
	Name() string

	// Indicators lists the columns Signal reads.
	Indicators() []indicators.Spec

	Signal(c market.Candle, row indicators.Row) market.Side
}

// Params holds the tunables of the bundled strategies.
type Params struct {
	Fast      int     `json:"fast" yaml:"fast"`
	Slow      int     `json:"slow" yaml:"slow"`
	RSIPeriod int     `json:"rsi_period" yaml:"rsi_period"`
	RSILower  float64 `json:"rsi_lower" yaml:"rsi_lower"`
	RSIUpper  float64 `json:"rsi_upper" yaml:"rsi_upper"`
	ADXPeriod int     `json:"adx_period" yaml:"adx_period"`
	MinADX    float64 `json:"min_adx" yaml:"min_adx"`
}

func DefaultParams() Params {
	return Params{
		Fast:      10,
		Slow:      30,
		RSIPeriod: 14,
		RSILower:  30,
		RSIUpper:  70,
		ADXPeriod: 14,
	}
}

// Names lists the names accepted by ByName.
func Names() []string {
	return []string{"noop", "mean-reversion", "trend-following", "ema-cross", "ema-cross-adx"}
}

// ByName builds a strategy. Zero-valued params fall back to DefaultParams.
func ByName(name string, p Params) (Strategy, error) {
	d := DefaultParams()
	if p.Fast <= 0 {
		p.Fast = d.Fast
	}
	if p.Slow <= 0 {
		p.Slow = d.Slow
	}
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = d.RSIPeriod
	}
	if p.ADXPeriod <= 0 {
		p.ADXPeriod = d.ADXPeriod
	}
	if p.RSILower == 0 && p.RSIUpper == 0 {
		p.RSILower, p.RSIUpper = d.RSILower, d.RSIUpper
	}

	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "noop", "none":
		return NoopStrategy{}, nil

	case "mean-reversion", "meanreversion", "rsi":
		if p.RSILower >= p.RSIUpper {
			return nil, fmt.Errorf("mean-reversion: rsi_lower (%v) must be below rsi_upper (%v)", p.RSILower, p.RSIUpper)
		}
		return &MeanReversion{Period: p.RSIPeriod, Lower: p.RSILower, Upper: p.RSIUpper}, nil

	case "trend-following", "trendfollowing", "sma-cross":
		if p.Fast >= p.Slow {
			return nil, fmt.Errorf("trend-following: fast (%d) must be shorter than slow (%d)", p.Fast, p.Slow)
		}
		return &TrendFollowing{Fast: p.Fast, Slow: p.Slow}, nil

	case "ema-cross", "emacross", "ema-cross-adx":
		if p.Fast >= p.Slow {
			return nil, fmt.Errorf("ema-cross: fast (%d) must be shorter than slow (%d)", p.Fast, p.Slow)
		}
		if p.MinADX < 0 || p.MinADX > 100 {
			return nil, fmt.Errorf("ema-cross: min_adx must be within [0, 100], got %v", p.MinADX)
		}
		minADX := p.MinADX
		if key == "ema-cross-adx" && minADX == 0 {
			minADX = 20
		}
		return &EMACross{Fast: p.Fast, Slow: p.Slow, ADXPeriod: p.ADXPeriod, MinADX: minADX}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
}
