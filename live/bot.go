// Package live keeps a simulation in step with an exchange feed.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/metrics"
	"github.com/rustyeddy/candlebot/sim"
)

const (
	DefaultInterval = 10 * time.Second
	DefaultBackoff  = 10 * time.Second
	DefaultWindow   = 5
)

type Options struct {
	Interval time.Duration // between iterations
	Backoff  time.Duration // after a failed iteration, fixed
	Window   int           // candles per fetch, at least 2
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.Window < 2 {
		o.Window = DefaultWindow
	}
	return o
}

// Bot owns the series, indicators and engine of one running simulation.
// Run is the only writer; Status and Snapshot may be called from any
// goroutine and observe the state either before or after a whole step.
type Bot struct {
	// apply serializes writers; mu guards the state readers see.
	apply  sync.Mutex
	mu     sync.RWMutex
	series *market.CandleSet
	set    indicators.Set
	engine *sim.Engine
	status Status

	symbol    string
	timeframe string
	provider  market.Provider
	store     market.Store
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// New wraps an engine that has already stepped through series. store may
// be nil; when set, every appended candle is persisted.
func New(series *market.CandleSet, engine *sim.Engine, provider market.Provider, store market.Store, opts Options, logger *slog.Logger) (*Bot, error) {
	if series == nil {
		return nil, fmt.Errorf("live: series is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("live: engine is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("live: provider is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	set, err := indicators.Compute(series.Candles, engine.Strategy().Indicators())
	if err != nil {
		return nil, fmt.Errorf("live: %w", err)
	}

	b := &Bot{
		series:    series,
		symbol:    series.Symbol,
		timeframe: series.Timeframe,
		set:       set,
		engine:    engine,
		provider:  provider,
		store:     store,
		opts:      opts.withDefaults(),
		logger:    logger.With("symbol", series.Symbol, "timeframe", series.Timeframe),
		now:       time.Now,
	}
	b.status = Status{
		State:      StateStarting,
		Message:    "waiting for first fetch",
		LastCandle: series.LastTime(),
		Position:   engine.Position(),
	}
	if c, ok := series.Last(); ok {
		b.status.LastPrice = c.Close
	}
	if pt, ok := engine.Ledger().LastPoint(); ok {
		b.status.Equity = pt.Equity
	}
	return b, nil
}

// Run ticks until ctx is canceled. A failed tick waits Backoff before the
// next attempt; otherwise iterations are Interval apart. Iterations never
// overlap.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("live loop started",
		"interval", b.opts.Interval, "backoff", b.opts.Backoff, "window", b.opts.Window)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("live loop stopped")
			return ctx.Err()
		case <-timer.C:
		}

		wait := b.opts.Interval
		if err := b.Tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				continue
			}
			wait = b.opts.Backoff
		}
		timer.Reset(wait)
	}
}

// Tick runs one reconciliation iteration: fetch a trailing window, take the
// second to last candle as the newest closed one and apply it if it is newer
// than the series. Panics are recovered and reported like errors.
func (b *Bot) Tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("live: recovered panic: %v", r)
		}
		if err != nil {
			metrics.Tick(metrics.TickError)
			b.fail(err)
		}
	}()

	candles, err := b.provider.FetchRecent(ctx, b.symbol, b.timeframe, b.opts.Window)
	if err != nil {
		metrics.FetchError()
		return err
	}
	if len(candles) < 2 {
		metrics.Tick(metrics.TickNoChange)
		b.idle(nil, fmt.Sprintf("fetched %d candles, waiting for a closed candle", len(candles)))
		return nil
	}

	closed := candles[len(candles)-2]
	forming := candles[len(candles)-1]

	applied, err := b.Apply(closed)
	if err != nil {
		return err
	}
	if applied {
		metrics.Tick(metrics.TickNewCandle)
		b.idle(&forming, "processed candle "+closed.Time.UTC().Format(time.RFC3339))
	} else {
		metrics.Tick(metrics.TickNoChange)
		b.idle(&forming, "no new candle")
	}
	return nil
}

// Apply appends closed and runs one engine step if its time is strictly
// after the newest candle in the series. It reports whether the candle was
// new. The next series and its indicators are built aside; the step and the
// swap then happen under one write lock, and the cache is saved after it is
// released. A failure before the step leaves the candle unapplied, so the
// next tick retries it.
func (b *Bot) Apply(closed market.Candle) (bool, error) {
	b.apply.Lock()
	defer b.apply.Unlock()

	// b.series only changes under b.apply, so it can be read here.
	next := b.series.Clone()
	if !next.Append(closed) {
		return false, nil
	}

	set, err := indicators.Compute(next.Candles, b.engine.Strategy().Indicators())
	if err != nil {
		return false, fmt.Errorf("live: recompute indicators: %w", err)
	}

	res, stepErr := b.commit(next, set, closed)
	if stepErr != nil {
		// the step has already mutated the engine; the candle stays so it
		// is not replayed
		return true, fmt.Errorf("live: step %s: %w", closed.Time.UTC().Format(time.RFC3339), stepErr)
	}

	b.report(closed, res)

	if b.store != nil {
		if err := b.store.Save(next); err != nil {
			b.logger.Warn("save candles failed", "candle", closed.Time.UTC().Format(time.RFC3339), "err", err)
		}
	}
	return true, nil
}

// commit steps the engine and swaps in the new series under the write lock.
// A panic in the step leaves both untouched.
func (b *Bot) commit(next *market.CandleSet, set indicators.Set, closed market.Candle) (sim.StepResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.engine.Step(closed, set.Row(set.Len()-1))
	b.series = next
	b.set = set
	b.status.LastCandle = closed.Time
	b.status.Position = b.engine.Position()
	if err == nil {
		b.status.Equity = res.Point.Equity
	}
	return res, err
}

func (b *Bot) report(closed market.Candle, res sim.StepResult) {
	pos := b.Status().Position

	metrics.Candle(closed.Time)
	metrics.Equity(res.Point.Equity)
	metrics.Position(pos.Side)

	log := b.logger.With("candle", closed.Time.UTC().Format(time.RFC3339), "close", closed.Close)
	if res.Closed != nil {
		metrics.Exit(res.Closed.Reason, res.Closed.Direction)
		log.Info("position closed",
			"side", res.Closed.Direction.String(),
			"reason", res.Closed.Reason,
			"exit_price", res.Closed.PriceOut,
			"pnl", res.Closed.PnL)
	}
	if !pos.Open() || res.Entered {
		metrics.Signal(res.Signal)
	}
	if res.Entered {
		log.Info("position opened", "side", res.Signal.String(), "entry_price", closed.Close)
	} else {
		log.Debug("candle processed", "equity", res.Point.Equity)
	}
}

func (b *Bot) idle(forming *market.Candle, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status.State = StateRunning
	b.status.Message = msg
	b.status.LastCheck = b.now()
	b.status.Error = ""
	b.status.ConsecutiveErrors = 0
	b.status.Position = b.engine.Position()
	if forming != nil {
		b.status.LastPrice = forming.Close
	}
}

func (b *Bot) fail(err error) {
	b.mu.Lock()
	b.status.State = StateError
	b.status.Message = "retrying in " + b.opts.Backoff.String()
	b.status.LastCheck = b.now()
	b.status.Error = err.Error()
	b.status.ConsecutiveErrors++
	n := b.status.ConsecutiveErrors
	b.mu.Unlock()

	b.logger.Error("live tick failed", "err", err, "consecutive", n, "backoff", b.opts.Backoff)
}
