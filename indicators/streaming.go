package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/candlebot/market"
)

// SimpleMA is a streaming simple moving average of closes.
type SimpleMA struct {
	period int
	window []float64
	sum    float64
}

// NewMA creates a new Simple Moving Average indicator with the given period
func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string { return fmt.Sprintf("SMA(%d)", m.period) }
func (m *SimpleMA) Warmup() int  { return m.period }

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
	m.sum = 0
}

func (m *SimpleMA) Update(c market.Candle) {
	m.window = append(m.window, c.Close)
	m.sum += c.Close
	if len(m.window) > m.period {
		m.sum -= m.window[0]
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool { return len(m.window) >= m.period }

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return math.NaN()
	}
	// re-sum to avoid drift from the running total
	sum := 0.0
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(m.period)
}

// ExponentialMA is a streaming EMA seeded with the SMA of the first period closes.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates a new Exponential Moving Average indicator with the given period
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *ExponentialMA) Warmup() int  { return e.period }

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(c market.Candle) {
	e.count++
	if e.count <= e.period {
		e.warmupSum += c.Close
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (c.Close-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool { return e.count >= e.period }

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return math.NaN()
	}
	return e.ema
}

// RSI is the relative strength index using simple rolling means of gains
// and losses over period close-to-close changes. When the average loss is
// zero the ratio is undefined and Value returns NaN.
type RSI struct {
	period   int
	prev     float64
	havePrev bool
	gains    []float64
	losses   []float64
}

func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
		gains:  make([]float64, 0, period),
		losses: make([]float64, 0, period),
	}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Warmup counts candles: period changes need period+1 closes.
func (r *RSI) Warmup() int { return r.period + 1 }

func (r *RSI) Reset() {
	r.prev = 0
	r.havePrev = false
	r.gains = r.gains[:0]
	r.losses = r.losses[:0]
}

func (r *RSI) Update(c market.Candle) {
	if !r.havePrev {
		r.prev = c.Close
		r.havePrev = true
		return
	}
	delta := c.Close - r.prev
	r.prev = c.Close

	r.gains = append(r.gains, math.Max(delta, 0))
	r.losses = append(r.losses, math.Max(-delta, 0))
	if len(r.gains) > r.period {
		r.gains = r.gains[1:]
		r.losses = r.losses[1:]
	}
}

func (r *RSI) Ready() bool { return len(r.gains) >= r.period }

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return math.NaN()
	}
	avgGain := mean(r.gains)
	avgLoss := mean(r.losses)
	if avgLoss == 0 {
		return math.NaN()
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
