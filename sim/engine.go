package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/journal"
	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/pkg/id"
	"github.com/rustyeddy/candlebot/risk"
	"github.com/rustyeddy/candlebot/strategies"
)

// Config is fixed for the lifetime of an Engine.
type Config struct {
	RunID         string
	Symbol        string
	InitialEquity float64
	Risk          risk.Params

	// IDSeed seeds trade ID generation. Equal seeds and equal inputs give
	// equal trade IDs.
	IDSeed int64
}

// Engine is the position state machine. It owns the single position and
// feeds the ledger. An Engine is not safe for concurrent use; callers that
// share one must serialize access.
type Engine struct {
	cfg      Config
	strategy strategies.Strategy
	exitRule risk.ExitRule
	ledger   *Ledger
	pos      market.Position
	ids      *id.Generator
	journal  journal.Journal
}

// StepResult reports what one candle did.
type StepResult struct {
	Closed  *Trade      // set when a position closed on this candle
	Entered bool        // a new position opened at this candle's close
	Signal  market.Side // strategy output, Flat when not evaluated
	Point   EquityPoint
}

// NewEngine builds an engine. j may be nil.
func NewEngine(cfg Config, s strategies.Strategy, j journal.Journal) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("sim: Strategy is required")
	}
	if cfg.InitialEquity <= 0 {
		return nil, fmt.Errorf("sim: initial equity must be positive, got %v", cfg.InitialEquity)
	}
	if err := cfg.Risk.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		strategy: s,
		ledger:   NewLedger(cfg.InitialEquity),
		ids:      id.NewGenerator(cfg.IDSeed),
		journal:  j,
	}
	if rule, ok := s.(risk.ExitRule); ok {
		e.exitRule = rule
	}
	return e, nil
}

// Seed writes the first curve point at initial capital. Call it once with
// the first candle's timestamp before stepping.
func (e *Engine) Seed(t time.Time) error {
	pt := e.ledger.Seed(t)
	return e.recordEquity(pt)
}

// Step advances the state machine by one closed candle:
//  1. an open position is checked for exit (stop, target, then strategy rule)
//  2. the ledger marks to market using the post-exit position
//  3. when flat, the strategy may open a new position at the candle close
//
// Re-entry on the candle that closed a position is allowed. The exit rule
// and the signal are both evaluated before any state changes, so a panic in
// strategy code leaves the engine as it was.
func (e *Engine) Step(c market.Candle, row indicators.Row) (StepResult, error) {
	var res StepResult

	next := e.pos
	var ex risk.Exit
	if next.Open() {
		ex = risk.Evaluate(next, c, row, e.cfg.Risk, e.exitRule)
		if ex.Hit {
			next = market.Position{}
		} else {
			next = risk.Trail(next, c)
		}
	}
	if !next.Open() {
		res.Signal = e.strategy.Signal(c, row)
	}

	closing := e.pos
	e.pos = next
	if ex.Hit {
		tr := e.ledger.Realize(e.ids.Next(c.Time), closing, ex, c.Time)
		res.Closed = &tr
		if err := e.recordTrade(tr); err != nil {
			return res, err
		}
	}

	res.Point = e.ledger.Mark(c.Time, e.pos, c.Close)
	if err := e.recordEquity(res.Point); err != nil {
		return res, err
	}

	if res.Signal != market.Flat {
		e.pos = market.Position{
			Side:       res.Signal,
			EntryPrice: c.Close,
			EntryTime:  c.Time,
			Peak:       c.Close,
		}
		res.Entered = true
	}

	return res, nil
}

func (e *Engine) recordTrade(t Trade) error {
	if e.journal == nil {
		return nil
	}
	err := e.journal.RecordTrade(journal.TradeRecord{
		RunID:      e.cfg.RunID,
		TradeID:    t.ID,
		Symbol:     e.cfg.Symbol,
		Side:       t.Direction.String(),
		EntryPrice: t.PriceIn,
		ExitPrice:  t.PriceOut,
		OpenTime:   t.EntryTime,
		CloseTime:  t.ExitTime,
		PnL:        t.PnL,
		PnLPct:     t.PnLPct * 100,
		Reason:     t.Reason,
	})
	if err != nil {
		return fmt.Errorf("journal trade %s: %w", t.ID, err)
	}
	return nil
}

func (e *Engine) recordEquity(pt EquityPoint) error {
	if e.journal == nil {
		return nil
	}
	err := e.journal.RecordEquity(journal.EquitySnapshot{
		RunID:    e.cfg.RunID,
		Time:     pt.Time,
		Equity:   pt.Equity,
		Realized: e.ledger.Equity(),
		Position: e.pos.Side.String(),
	})
	if err != nil {
		return fmt.Errorf("journal equity: %w", err)
	}
	return nil
}

func (e *Engine) Config() Config                { return e.cfg }
func (e *Engine) Strategy() strategies.Strategy { return e.strategy }
func (e *Engine) Position() market.Position     { return e.pos }
func (e *Engine) Ledger() *Ledger               { return e.ledger }
func (e *Engine) Stats() Stats                  { return e.ledger.Stats() }
