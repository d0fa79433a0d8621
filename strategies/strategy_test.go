package strategies

import (
	"math"
	"testing"

	"github.com/rustyeddy/candlebot/indicators"
	"github.com/rustyeddy/candlebot/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		want    string
		wantErr string
	}{
		{name: "noop", want: "noop"},
		{name: "none", want: "noop"},
		{name: "Mean-Reversion", want: "mean-reversion"},
		{name: " rsi ", want: "mean-reversion"},
		{name: "trend-following", want: "trend-following"},
		{name: "sma-cross", params: Params{Fast: 5, Slow: 20}, want: "trend-following"},
		{name: "sma-cross", params: Params{Fast: 20, Slow: 5}, wantErr: "fast (20) must be shorter than slow (5)"},
		{name: "rsi", params: Params{RSILower: 80, RSIUpper: 20}, wantErr: "rsi_lower"},
		{name: "macd", wantErr: "unknown strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ByName(tt.name, tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}
}

func TestByName_Defaults(t *testing.T) {
	s, err := ByName("trend-following", Params{})
	require.NoError(t, err)
	tf := s.(*TrendFollowing)
	assert.Equal(t, 10, tf.Fast)
	assert.Equal(t, 30, tf.Slow)

	s, err = ByName("mean-reversion", Params{})
	require.NoError(t, err)
	mr := s.(*MeanReversion)
	assert.Equal(t, 14, mr.Period)
	assert.Equal(t, 30.0, mr.Lower)
	assert.Equal(t, 70.0, mr.Upper)
}

func TestMeanReversion_Signal(t *testing.T) {
	s := &MeanReversion{Period: 14, Lower: 30, Upper: 70}

	tests := []struct {
		rsi  float64
		want market.Side
	}{
		{29.9, market.Long},
		{30, market.Flat},
		{50, market.Flat},
		{70, market.Flat},
		{70.1, market.Short},
		{math.NaN(), market.Flat},
	}
	for _, tt := range tests {
		got := s.Signal(market.Candle{}, indicators.Row{indicators.RSIName: tt.rsi})
		assert.Equal(t, tt.want, got, "rsi=%v", tt.rsi)
	}

	// missing column is undefined too
	assert.Equal(t, market.Flat, s.Signal(market.Candle{}, indicators.Row{}))
	assert.Equal(t, []indicators.Spec{{Name: "rsi", Kind: indicators.KindRSI, Period: 14}}, s.Indicators())
}

func TestTrendFollowing_Signal(t *testing.T) {
	s := &TrendFollowing{Fast: 2, Slow: 5}
	row := func(fast, slow float64) indicators.Row {
		return indicators.Row{indicators.SMAFast: fast, indicators.SMASlow: slow}
	}

	assert.Equal(t, market.Long, s.Signal(market.Candle{}, row(11, 10)))
	assert.Equal(t, market.Short, s.Signal(market.Candle{}, row(9, 10)))
	assert.Equal(t, market.Flat, s.Signal(market.Candle{}, row(10, 10)))
	assert.Equal(t, market.Flat, s.Signal(market.Candle{}, row(math.NaN(), 10)))
	assert.Equal(t, market.Flat, s.Signal(market.Candle{}, row(11, math.NaN())))
	assert.Len(t, s.Indicators(), 2)
}

func TestTrendFollowing_ShouldExit(t *testing.T) {
	s := &TrendFollowing{Fast: 2, Slow: 5}
	long := market.Position{Side: market.Long, EntryPrice: 10}
	short := market.Position{Side: market.Short, EntryPrice: 10}
	row := func(fast, slow float64) indicators.Row {
		return indicators.Row{indicators.SMAFast: fast, indicators.SMASlow: slow}
	}

	hit, reason := s.ShouldExit(long, market.Candle{}, row(9, 10))
	assert.True(t, hit)
	assert.Equal(t, ReasonTrendReversal, reason)

	hit, _ = s.ShouldExit(long, market.Candle{}, row(10, 10))
	assert.False(t, hit)

	hit, _ = s.ShouldExit(short, market.Candle{}, row(11, 10))
	assert.True(t, hit)

	hit, _ = s.ShouldExit(short, market.Candle{}, row(9, 10))
	assert.False(t, hit)

	hit, _ = s.ShouldExit(long, market.Candle{}, row(math.NaN(), 10))
	assert.False(t, hit)

	hit, _ = s.ShouldExit(market.Position{}, market.Candle{}, row(9, 10))
	assert.False(t, hit)
}
