package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/journal"
	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/sim"
	"github.com/rustyeddy/candlebot/strategies"
)

// Runner replays a candle series through a fresh engine in one pass.
type Runner struct {
	Candles  *market.CandleSet
	Strategy strategies.Strategy
	Config   sim.Config
	Journal  journal.Journal // optional
}

// Run executes the backtest:
//  1. compute the strategy's indicators over the whole series
//  2. seed the equity curve at the first candle
//  3. step the engine once per candle
//
// The same inputs always produce the same Result.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Candles == nil {
		return Result{}, fmt.Errorf("backtest: Candles is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if r.Candles.Len() == 0 {
		return Result{}, fmt.Errorf("backtest %s %s: %w", r.Candles.Symbol, r.Candles.Timeframe, market.ErrInsufficientData)
	}

	cfg := r.Config
	if cfg.Symbol == "" {
		cfg.Symbol = r.Candles.Symbol
	}

	eng, err := sim.NewEngine(cfg, r.Strategy, r.Journal)
	if err != nil {
		return Result{}, err
	}

	set, err := indicators.Compute(r.Candles.Candles, r.Strategy.Indicators())
	if err != nil {
		return Result{}, fmt.Errorf("backtest: %w", err)
	}

	candles := r.Candles.Candles
	if err := eng.Seed(candles[0].Time); err != nil {
		return Result{}, err
	}
	for i, c := range candles {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, err := eng.Step(c, set.Row(i)); err != nil {
			return Result{}, fmt.Errorf("backtest: candle %s: %w", c.Time.Format(time.RFC3339), err)
		}
	}

	return newResult(eng, set, r.Candles), nil
}
