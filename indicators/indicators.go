// Package indicators derives per-candle indicator columns from a candle series.
package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/candlebot/market"
)

// Standard column names used by the bundled strategies.
const (
	SMAFast = "sma_fast"
	SMASlow = "sma_slow"
	RSIName = "rsi"
	EMAFast = "ema_fast"
	EMASlow = "ema_slow"
	ADXName = "adx"
	ATRName = "atr"
)

// Indicator computes a single streaming value from candles.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed candle.
	Update(c market.Candle)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current value, NaN when undefined.
	Value() float64
}

type Kind string

const (
	KindSMA Kind = "sma"
	KindEMA Kind = "ema"
	KindRSI Kind = "rsi"
	KindATR Kind = "atr"
	KindADX Kind = "adx"
)

// Spec names one output column and how to compute it.
type Spec struct {
	Name   string `json:"name" yaml:"name"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Period int    `json:"period" yaml:"period"`
}

// New builds a fresh indicator for spec.
func New(s Spec) (Indicator, error) {
	if s.Period <= 0 {
		return nil, fmt.Errorf("indicator %q: period must be positive, got %d", s.Name, s.Period)
	}
	switch s.Kind {
	case KindSMA:
		return NewMA(s.Period), nil
	case KindEMA:
		return NewEMA(s.Period), nil
	case KindRSI:
		return NewRSI(s.Period), nil
	case KindATR:
		return NewATR(s.Period), nil
	case KindADX:
		return NewADX(s.Period), nil
	default:
		return nil, fmt.Errorf("indicator %q: unknown kind %q", s.Name, s.Kind)
	}
}

// Set holds named columns aligned one-to-one with the candles they were
// computed from.
type Set struct {
	Columns map[string][]float64
	n       int
}

// Compute recomputes every column from scratch over candles. Leading values
// are NaN until an indicator has warmed up.
func Compute(candles []market.Candle, specs []Spec) (Set, error) {
	set := Set{
		Columns: make(map[string][]float64, len(specs)),
		n:       len(candles),
	}
	for _, s := range specs {
		ind, err := New(s)
		if err != nil {
			return Set{}, err
		}
		col := make([]float64, len(candles))
		for i, c := range candles {
			ind.Update(c)
			if ind.Ready() {
				col[i] = ind.Value()
			} else {
				col[i] = math.NaN()
			}
		}
		set.Columns[s.Name] = col
	}
	return set, nil
}

// Len is the number of candles the set covers.
func (s Set) Len() int { return s.n }

// Row returns the indicator values for candle i.
func (s Set) Row(i int) Row {
	r := make(Row, len(s.Columns))
	for name, col := range s.Columns {
		if i >= 0 && i < len(col) {
			r[name] = col[i]
		}
	}
	return r
}

// Clone deep-copies the columns.
func (s Set) Clone() Set {
	out := Set{Columns: make(map[string][]float64, len(s.Columns)), n: s.n}
	for name, col := range s.Columns {
		out.Columns[name] = append([]float64(nil), col...)
	}
	return out
}

// Row is one candle's indicator values by column name.
type Row map[string]float64

// Get returns the named value, NaN when the column is missing.
func (r Row) Get(name string) float64 {
	v, ok := r[name]
	if !ok {
		return math.NaN()
	}
	return v
}

// Defined reports whether every named value is present and not NaN.
func (r Row) Defined(names ...string) bool {
	for _, n := range names {
		if math.IsNaN(r.Get(n)) {
			return false
		}
	}
	return true
}
