package sim

// Stats summarizes a trade log. When NoTrades is set every other field is
// zero.
type Stats struct {
	NoTrades bool `json:"no_trades"`

	Trades int `json:"trades"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`

	NetProfit float64 `json:"net_profit"`
	ReturnPct float64 `json:"return_pct"`
	WinRate   float64 `json:"win_rate"` // percent
	AvgWin    float64 `json:"avg_win"`
	AvgLoss   float64 `json:"avg_loss"`

	// ProfitFactor is gross profit over gross loss, 0 when there is no loss.
	ProfitFactor float64 `json:"profit_factor"`
}

// ComputeStats derives Stats from trades. A trade with pnl > 0 is a win,
// anything else is a loss.
func ComputeStats(initial float64, trades []Trade) Stats {
	if len(trades) == 0 {
		return Stats{NoTrades: true}
	}

	var s Stats
	var grossWin, grossLoss float64
	for _, t := range trades {
		s.NetProfit += t.PnL
		if t.PnL > 0 {
			s.Wins++
			grossWin += t.PnL
		} else {
			s.Losses++
			grossLoss += t.PnL
		}
	}

	s.Trades = len(trades)
	s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	if initial != 0 {
		s.ReturnPct = s.NetProfit / initial * 100
	}
	if s.Wins > 0 {
		s.AvgWin = grossWin / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = grossLoss / float64(s.Losses)
	}
	if grossLoss < 0 {
		s.ProfitFactor = grossWin / -grossLoss
	}
	return s
}

// MaxDrawdown returns the largest peak-to-trough decline of curve as a
// fraction of the peak.
func MaxDrawdown(curve []EquityPoint) float64 {
	var peak, dd float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if d := (peak - p.Equity) / peak; d > dd {
				dd = d
			}
		}
	}
	return dd
}
