package market

import (
	"sort"
	"time"
)

// CandleSet is an ordered, timestamp-deduplicated candle series for one
// symbol and timeframe.
type CandleSet struct {
	Symbol    string
	Timeframe string
	Candles   []Candle

	duplicates int
}

// NewCandleSet sorts candles ascending by time and drops later duplicates
// (keep-first policy).
func NewCandleSet(symbol, timeframe string, candles []Candle) *CandleSet {
	cs := &CandleSet{
		Symbol:    symbol,
		Timeframe: timeframe,
	}
	cs.Candles, cs.duplicates = Normalize(candles)
	return cs
}

// Normalize returns a sorted copy of candles with duplicate timestamps
// removed, keeping the first occurrence. It also reports how many
// duplicates were dropped.
func Normalize(candles []Candle) ([]Candle, int) {
	out := make([]Candle, len(candles))
	copy(out, candles)

	// stable so that "first" means first in the input
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	dups := 0
	n := 0
	for i, c := range out {
		if i > 0 && c.Time.Equal(out[n-1].Time) {
			dups++
			continue
		}
		out[n] = c
		n++
	}
	return out[:n], dups
}

func (cs *CandleSet) Len() int { return len(cs.Candles) }

// Duplicates reports how many candles were dropped at construction.
func (cs *CandleSet) Duplicates() int { return cs.duplicates }

// Last returns the newest candle.
func (cs *CandleSet) Last() (Candle, bool) {
	if len(cs.Candles) == 0 {
		return Candle{}, false
	}
	return cs.Candles[len(cs.Candles)-1], true
}

// LastTime returns the newest candle time, or the zero time when empty.
func (cs *CandleSet) LastTime() time.Time {
	c, ok := cs.Last()
	if !ok {
		return time.Time{}
	}
	return c.Time
}

// Append adds c only if its time is strictly after the current last candle.
// This is the one guard against processing a candle twice.
func (cs *CandleSet) Append(c Candle) bool {
	if last, ok := cs.Last(); ok && !c.Time.After(last.Time) {
		return false
	}
	cs.Candles = append(cs.Candles, c)
	return true
}

// Closes returns the close prices in series order.
func (cs *CandleSet) Closes() []float64 {
	out := make([]float64, len(cs.Candles))
	for i, c := range cs.Candles {
		out[i] = c.Close
	}
	return out
}

// Clone returns a deep copy, safe to hand to readers.
func (cs *CandleSet) Clone() *CandleSet {
	out := &CandleSet{
		Symbol:     cs.Symbol,
		Timeframe:  cs.Timeframe,
		Candles:    make([]Candle, len(cs.Candles)),
		duplicates: cs.duplicates,
	}
	copy(out.Candles, cs.Candles)
	return out
}
