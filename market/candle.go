package market

import (
	"fmt"
	"strings"
	"time"
)

// Candle represents one OHLCV interval. Time is the candle open time.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Side is the direction of a position or a strategy signal.
// Flat doubles as the "hold" signal.
type Side int8

const (
	Flat  Side = 0
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "Long"
	case Short:
		return "Short"
	default:
		return "Flat"
	}
}

// MarshalText encodes a side by name, so JSON shows "Long" rather than 1.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "long":
		*s = Long
	case "short":
		*s = Short
	case "flat", "hold", "":
		*s = Flat
	default:
		return fmt.Errorf("unknown side %q", text)
	}
	return nil
}

// Position is the single open position (or none when Side is Flat).
// EntryPrice, EntryTime and Peak are meaningful only when Side != Flat.
type Position struct {
	Side       Side      `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`

	// Peak is the most favourable price seen since entry: the highest high
	// for a Long, the lowest low for a Short. Used by the trailing stop.
	Peak float64 `json:"peak"`
}

func (p Position) Open() bool { return p.Side != Flat }

// Move returns the directional fractional move from entry to price.
func (p Position) Move(price float64) float64 {
	if !p.Open() || p.EntryPrice == 0 {
		return 0
	}
	return float64(p.Side) * (price - p.EntryPrice) / p.EntryPrice
}
