package backtest

import (
	"time"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/journal"
	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/sim"
)

// Result is the end-of-run summary of a backtest.
type Result struct {
	RunID     string
	Strategy  string
	Symbol    string
	Timeframe string

	Start time.Time
	End   time.Time

	Stats  sim.Stats
	Trades []sim.Trade
	Curve  []sim.EquityPoint

	InitialEquity float64
	FinalEquity   float64 // realized
	MarkedEquity  float64 // last curve point, includes the open position

	MaxDrawdownPct float64
	Position       market.Position // still open at the end, if any

	Engine     *sim.Engine
	Indicators indicators.Set
}

func newResult(eng *sim.Engine, set indicators.Set, cs *market.CandleSet) Result {
	cfg := eng.Config()
	ledger := eng.Ledger()
	curve := ledger.Curve()

	r := Result{
		RunID:          cfg.RunID,
		Strategy:       eng.Strategy().Name(),
		Symbol:         cfg.Symbol,
		Timeframe:      cs.Timeframe,
		Start:          cs.Candles[0].Time,
		End:            cs.Candles[len(cs.Candles)-1].Time,
		Stats:          ledger.Stats(),
		Trades:         ledger.Trades(),
		Curve:          curve,
		InitialEquity:  ledger.Initial(),
		FinalEquity:    ledger.Equity(),
		MaxDrawdownPct: sim.MaxDrawdown(curve) * 100,
		Position:       eng.Position(),
		Engine:         eng,
		Indicators:     set,
	}
	if last, ok := ledger.LastPoint(); ok {
		r.MarkedEquity = last.Equity
	}
	return r
}

// BacktestRun converts the result into a journal summary row.
func (r Result) BacktestRun(dataset string, cfg []byte) journal.BacktestRun {
	run := journal.BacktestRun{
		RunID:        r.RunID,
		Created:      time.Now().UTC(),
		Strategy:     r.Strategy,
		Symbol:       r.Symbol,
		Timeframe:    r.Timeframe,
		Dataset:      dataset,
		Config:       cfg,
		Start:        r.Start,
		End:          r.End,
		Trades:       r.Stats.Trades,
		Wins:         r.Stats.Wins,
		Losses:       r.Stats.Losses,
		StartBalance: r.InitialEquity,
		EndBalance:   r.FinalEquity,
		NetPL:        r.Stats.NetProfit,
		ReturnPct:    r.Stats.ReturnPct,
		WinRate:      r.Stats.WinRate,
		ProfitFactor: r.Stats.ProfitFactor,
		MaxDDPct:     r.MaxDrawdownPct,
	}
	if r.Engine != nil {
		p := r.Engine.Config().Risk
		run.StopLossPct = p.StopLossPct
		run.TakeProfitPct = p.TakeProfitPct
	}
	return run
}
