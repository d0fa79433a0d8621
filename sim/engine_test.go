package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/journal"
	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJournal struct {
	trades []journal.TradeRecord
	equity []journal.EquitySnapshot
	fail   bool
}

func (j *testJournal) RecordTrade(rec journal.TradeRecord) error {
	if j.fail {
		return errors.New("disk full")
	}
	j.trades = append(j.trades, rec)
	return nil
}

func (j *testJournal) RecordEquity(rec journal.EquitySnapshot) error {
	j.equity = append(j.equity, rec)
	return nil
}

func (j *testJournal) Close() error { return nil }

// scripted emits a fixed signal per candle time.
type scripted struct {
	signals map[time.Time]market.Side
}

func (s scripted) Name() string                  { return "scripted" }
func (s scripted) Indicators() []indicators.Spec { return nil }
func (s scripted) Signal(c market.Candle, _ indicators.Row) market.Side {
	return s.signals[c.Time]
}

// exitsOn adds a custom exit on one candle.
type exitsOn struct {
	scripted
	at time.Time
}

func (s exitsOn) ShouldExit(_ market.Position, c market.Candle, _ indicators.Row) (bool, string) {
	return c.Time.Equal(s.at), "Scripted"
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(i int) time.Time { return t0.Add(time.Duration(i) * time.Hour) }

func candle(i int, o, h, l, c float64) market.Candle {
	return market.Candle{Time: at(i), Open: o, High: h, Low: l, Close: c, Volume: 1}
}

func newEngine(t *testing.T, s scripted, p risk.Params, j journal.Journal) *Engine {
	t.Helper()
	e, err := NewEngine(Config{RunID: "run", Symbol: "TEST", InitialEquity: 10000, Risk: p, IDSeed: 1}, s, j)
	require.NoError(t, err)
	return e
}

func run(t *testing.T, e *Engine, candles []market.Candle) []StepResult {
	t.Helper()
	require.NoError(t, e.Seed(candles[0].Time))
	out := make([]StepResult, 0, len(candles))
	for _, c := range candles {
		res, err := e.Step(c, indicators.Row{})
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Config{InitialEquity: 1000, Risk: risk.DefaultParams()}, nil, nil)
	assert.EqualError(t, err, "sim: Strategy is required")

	_, err = NewEngine(Config{InitialEquity: 0, Risk: risk.DefaultParams()}, scripted{}, nil)
	assert.Error(t, err)

	_, err = NewEngine(Config{InitialEquity: 1000, Risk: risk.Params{StopLossPct: 1.5}}, scripted{}, nil)
	assert.Error(t, err)
}

func TestEngineCurveHasSeedPlusOnePointPerCandle(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 101, 99, 100),
		candle(1, 100, 101, 99, 100.5),
		candle(2, 100, 101, 99, 99.5),
		candle(3, 100, 101, 99, 100),
	}
	s := scripted{signals: map[time.Time]market.Side{at(0): market.Long}}
	e := newEngine(t, s, risk.DefaultParams(), nil)
	run(t, e, candles)

	curve := e.Ledger().Curve()
	require.Len(t, curve, len(candles)+1)
	assert.Equal(t, candles[0].Time, curve[0].Time)
	assert.InDelta(t, 10000.0, curve[0].Equity, 1e-9)
	// entry happens after the mark, so the first candle is still flat
	assert.InDelta(t, 10000.0, curve[1].Equity, 1e-9)
	assert.InDelta(t, 10050.0, curve[2].Equity, 1e-6)
	assert.InDelta(t, 9950.0, curve[3].Equity, 1e-6)
}

func TestEngineStopLossWinsTie(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 105, 97, 101),
	}
	s := scripted{signals: map[time.Time]market.Side{at(0): market.Long}}
	e := newEngine(t, s, risk.Params{StopLossPct: 0.02, TakeProfitPct: 0.04}, nil)
	res := run(t, e, candles)

	require.NotNil(t, res[1].Closed)
	tr := *res[1].Closed
	assert.Equal(t, risk.ReasonStopLoss, tr.Reason)
	assert.InDelta(t, 98.0, tr.PriceOut, 1e-9)
	assert.InDelta(t, -0.02, tr.PnLPct, 1e-12)
	assert.InDelta(t, 9800.0, e.Ledger().Equity(), 1e-6)
	assert.False(t, e.Position().Open())
}

func TestEngineEntryFields(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 100.5, 99.5, 100.2),
	}
	s := scripted{signals: map[time.Time]market.Side{at(1): market.Short}}
	e := newEngine(t, s, risk.DefaultParams(), nil)

	require.NoError(t, e.Seed(candles[0].Time))

	res, err := e.Step(candles[0], nil)
	require.NoError(t, err)
	assert.False(t, res.Entered)
	assert.Equal(t, market.Position{}, e.Position())

	res, err = e.Step(candles[1], nil)
	require.NoError(t, err)
	assert.True(t, res.Entered)
	assert.Equal(t, market.Short, res.Signal)

	pos := e.Position()
	assert.Equal(t, market.Short, pos.Side)
	assert.InDelta(t, 100.2, pos.EntryPrice, 1e-9)
	assert.Equal(t, at(1), pos.EntryTime)
}

func TestEngineReentersOnExitCandle(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 104.5, 100, 104),
	}
	s := scripted{signals: map[time.Time]market.Side{
		at(0): market.Long,
		at(1): market.Short,
	}}
	e := newEngine(t, s, risk.Params{StopLossPct: 0.02, TakeProfitPct: 0.04}, nil)
	res := run(t, e, candles)

	require.NotNil(t, res[1].Closed)
	assert.Equal(t, risk.ReasonTakeProfit, res[1].Closed.Reason)
	assert.True(t, res[1].Entered)

	pos := e.Position()
	assert.Equal(t, market.Short, pos.Side)
	assert.InDelta(t, 104.0, pos.EntryPrice, 1e-9)
	assert.Equal(t, at(1), pos.EntryTime)
	// the mark on the exit candle uses the flat book
	assert.InDelta(t, 10400.0, res[1].Point.Equity, 1e-6)
}

func TestEngineIgnoresSignalsWhileOpen(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 100.5, 99.5, 100),
		candle(2, 100, 100.5, 99.5, 100),
	}
	s := scripted{signals: map[time.Time]market.Side{
		at(0): market.Long,
		at(1): market.Short,
		at(2): market.Short,
	}}
	e := newEngine(t, s, risk.DefaultParams(), nil)
	res := run(t, e, candles)

	for _, r := range res[1:] {
		assert.Nil(t, r.Closed)
		assert.False(t, r.Entered)
		assert.Equal(t, market.Flat, r.Signal)
	}
	assert.Equal(t, market.Long, e.Position().Side)
}

func TestEngineCustomExitAtClose(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 101.5, 99, 101),
	}
	s := exitsOn{
		scripted: scripted{signals: map[time.Time]market.Side{at(0): market.Short}},
		at:       at(1),
	}
	e, err := NewEngine(Config{InitialEquity: 10000, Risk: risk.DefaultParams(), IDSeed: 1}, s, nil)
	require.NoError(t, err)

	require.NoError(t, e.Seed(at(0)))
	_, err = e.Step(candles[0], nil)
	require.NoError(t, err)
	res, err := e.Step(candles[1], nil)
	require.NoError(t, err)

	require.NotNil(t, res.Closed)
	assert.Equal(t, "Scripted", res.Closed.Reason)
	assert.InDelta(t, 101.0, res.Closed.PriceOut, 1e-9)
	assert.InDelta(t, -0.01, res.Closed.PnLPct, 1e-9)
	assert.InDelta(t, 9900.0, e.Ledger().Equity(), 1e-6)
}

func TestEngineTrailingStop(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 110, 101, 108),
		candle(2, 108, 109, 104, 105),
	}
	s := scripted{signals: map[time.Time]market.Side{at(0): market.Long}}
	e := newEngine(t, s, risk.Params{StopLossPct: 0.1, TrailingStopPct: 0.05}, nil)
	res := run(t, e, candles)

	assert.Nil(t, res[1].Closed)
	require.NotNil(t, res[2].Closed)
	tr := res[2].Closed
	assert.Equal(t, risk.ReasonTrailingStop, tr.Reason)
	assert.InDelta(t, 104.5, tr.PriceOut, 1e-9)
	assert.InDelta(t, 0.045, tr.PnLPct, 1e-9)
	assert.InDelta(t, 10450.0, e.Ledger().Equity(), 1e-6)
}

func TestEngineDeterministic(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 101, 97, 99),
		candle(2, 99, 99, 99, 99),
		candle(3, 99, 104, 99, 103),
	}
	s := scripted{signals: map[time.Time]market.Side{
		at(0): market.Long,
		at(2): market.Long,
	}}

	a := newEngine(t, s, risk.DefaultParams(), nil)
	b := newEngine(t, s, risk.DefaultParams(), nil)
	run(t, a, candles)
	run(t, b, candles)

	require.Len(t, a.Ledger().Trades(), 2)
	assert.Equal(t, a.Ledger().Trades(), b.Ledger().Trades())
	assert.Equal(t, a.Ledger().Curve(), b.Ledger().Curve())
	assert.Equal(t, a.Stats(), b.Stats())
}

func TestEngineJournals(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		candle(0, 100, 100, 100, 100),
		candle(1, 100, 101, 97, 99),
	}
	s := scripted{signals: map[time.Time]market.Side{at(0): market.Long}}
	j := &testJournal{}
	e := newEngine(t, s, risk.DefaultParams(), j)
	run(t, e, candles)

	require.Len(t, j.equity, 3)
	assert.Equal(t, "run", j.equity[0].RunID)
	assert.Equal(t, "Flat", j.equity[0].Position)

	require.Len(t, j.trades, 1)
	rec := j.trades[0]
	assert.Equal(t, "TEST", rec.Symbol)
	assert.Equal(t, "Long", rec.Side)
	assert.Equal(t, risk.ReasonStopLoss, rec.Reason)
	assert.InDelta(t, -2.0, rec.PnLPct, 1e-9)
	assert.Equal(t, e.Ledger().Trades()[0].ID, rec.TradeID)
}

func TestEngineJournalError(t *testing.T) {
	t.Parallel()

	s := scripted{signals: map[time.Time]market.Side{at(0): market.Long}}
	j := &testJournal{fail: true}
	e := newEngine(t, s, risk.DefaultParams(), j)

	require.NoError(t, e.Seed(at(0)))
	_, err := e.Step(candle(0, 100, 100, 100, 100), nil)
	require.NoError(t, err)
	_, err = e.Step(candle(1, 100, 101, 97, 99), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// panicsOnSignal exits on one candle and panics when asked for a signal there.
type panicsOnSignal struct {
	exitsOn
}

func (s panicsOnSignal) Signal(c market.Candle, row indicators.Row) market.Side {
	if c.Time.Equal(s.at) {
		panic("signal failed")
	}
	return s.exitsOn.Signal(c, row)
}

func TestEngineStrategyPanicLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	s := panicsOnSignal{exitsOn{
		scripted: scripted{signals: map[time.Time]market.Side{at(0): market.Long}},
		at:       at(1),
	}}
	e, err := NewEngine(Config{InitialEquity: 10000, Risk: risk.DefaultParams(), IDSeed: 1}, s, nil)
	require.NoError(t, err)

	require.NoError(t, e.Seed(at(0)))
	_, err = e.Step(candle(0, 100, 100, 100, 100), nil)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "signal failed", func() {
		_, _ = e.Step(candle(1, 100, 101, 99, 101), nil)
	})

	assert.Equal(t, market.Long, e.Position().Side)
	assert.Empty(t, e.Ledger().Trades())
	assert.Len(t, e.Ledger().Curve(), 2)
	assert.InDelta(t, 10000.0, e.Ledger().Equity(), 1e-9)
}
