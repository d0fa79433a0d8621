package risk

import "fmt"

// Params are the fixed exit thresholds, as fractions of the entry price.
// A zero value disables that threshold.
type Params struct {
	StopLossPct     float64 `json:"sl_pct" yaml:"sl_pct"`                   // 0.02
	TakeProfitPct   float64 `json:"tp_pct" yaml:"tp_pct"`                   // 0.04
	TrailingStopPct float64 `json:"trailing_sl_pct" yaml:"trailing_sl_pct"` // 0 disables
}

func DefaultParams() Params {
	return Params{
		StopLossPct:   0.02,
		TakeProfitPct: 0.04,
	}
}

func (p Params) Validate() error {
	if p.StopLossPct < 0 || p.StopLossPct >= 1 {
		return fmt.Errorf("sl_pct must be in [0, 1), got %v", p.StopLossPct)
	}
	if p.TakeProfitPct < 0 {
		return fmt.Errorf("tp_pct must not be negative, got %v", p.TakeProfitPct)
	}
	if p.TrailingStopPct < 0 || p.TrailingStopPct >= 1 {
		return fmt.Errorf("trailing_sl_pct must be in [0, 1), got %v", p.TrailingStopPct)
	}
	return nil
}
