package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func hour(i int) time.Time { return t0.Add(time.Duration(i) * time.Hour) }

func TestNewCandleSet_SortsAndKeepsFirstDuplicate(t *testing.T) {
	cs := NewCandleSet("BTC/USDT", "1h", []Candle{
		{Time: hour(2), Close: 3},
		{Time: hour(0), Close: 1},
		{Time: hour(1), Close: 2},
		{Time: hour(1), Close: 99},
	})

	require.Equal(t, 3, cs.Len())
	assert.Equal(t, 1, cs.Duplicates())
	assert.Equal(t, []float64{1, 2, 3}, cs.Closes())
}

func TestCandleSet_AppendStrictlyGreater(t *testing.T) {
	cs := NewCandleSet("BTC/USDT", "1h", []Candle{{Time: hour(0)}, {Time: hour(1)}})

	assert.False(t, cs.Append(Candle{Time: hour(1)}), "same timestamp")
	assert.False(t, cs.Append(Candle{Time: hour(0)}), "older timestamp")
	assert.True(t, cs.Append(Candle{Time: hour(2)}))
	assert.Equal(t, 3, cs.Len())
	assert.Equal(t, hour(2), cs.LastTime())
}

func TestCandleSet_AppendEmpty(t *testing.T) {
	cs := NewCandleSet("X", "1h", nil)
	_, ok := cs.Last()
	assert.False(t, ok)
	assert.True(t, cs.LastTime().IsZero())
	assert.True(t, cs.Append(Candle{Time: hour(0)}))
}

func TestCandleSet_CloneIsIndependent(t *testing.T) {
	cs := NewCandleSet("X", "1h", []Candle{{Time: hour(0), Close: 1}})
	cp := cs.Clone()
	cp.Candles[0].Close = 42
	cp.Append(Candle{Time: hour(1)})

	assert.Equal(t, 1.0, cs.Candles[0].Close)
	assert.Equal(t, 1, cs.Len())
}

func TestPosition_Move(t *testing.T) {
	long := Position{Side: Long, EntryPrice: 100}
	short := Position{Side: Short, EntryPrice: 100}

	assert.InDelta(t, 0.1, long.Move(110), 1e-12)
	assert.InDelta(t, -0.1, short.Move(110), 1e-12)
	assert.Equal(t, 0.0, Position{}.Move(110))
	assert.Equal(t, "Short", Short.String())
	assert.Equal(t, "Flat", Flat.String())
}

func TestSide_JSON(t *testing.T) {
	b, err := json.Marshal(Position{Side: Short, EntryPrice: 100, EntryTime: t0})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"side":"Short"`)

	var pos Position
	require.NoError(t, json.Unmarshal(b, &pos))
	assert.Equal(t, Short, pos.Side)

	tests := []struct {
		in   string
		want Side
	}{
		{`"Long"`, Long},
		{`"short"`, Short},
		{`"Flat"`, Flat},
		{`"hold"`, Flat},
	}
	for _, tt := range tests {
		var s Side
		require.NoError(t, json.Unmarshal([]byte(tt.in), &s), tt.in)
		assert.Equal(t, tt.want, s, tt.in)
	}

	var s Side
	assert.ErrorContains(t, json.Unmarshal([]byte(`"sideways"`), &s), `unknown side "sideways"`)
}
