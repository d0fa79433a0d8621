// Package metrics exposes Prometheus metrics updated by the live loop:
//
//	candlebot_ticks_total{result}          loop iterations (new_candle|no_change|error)
//	candlebot_fetch_errors_total           failed provider fetches
//	candlebot_candles_total                closed candles appended to the series
//	candlebot_signals_total{signal}        strategy outputs (long|short|hold)
//	candlebot_exits_total{reason,side}     closed trades by exit reason and side
//	candlebot_equity                       latest equity curve value
//	candlebot_position                     open position: +1 long, -1 short, 0 flat
//	candlebot_last_candle_timestamp_seconds open time of the newest closed candle
//
// They are registered with the default registry in init() and served by the
// HTTP server at /metrics.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rustyeddy/candlebot/market"
)

var (
	mtxTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candlebot_ticks_total",
			Help: "Live loop iterations by result",
		},
		[]string{"result"},
	)

	mtxFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "candlebot_fetch_errors_total",
			Help: "Failed market data fetches",
		},
	)

	mtxCandles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "candlebot_candles_total",
			Help: "Closed candles appended to the live series",
		},
	)

	mtxSignals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candlebot_signals_total",
			Help: "Strategy signals evaluated while flat",
		},
		[]string{"signal"},
	)

	mtxExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candlebot_exits_total",
			Help: "Closed trades split by exit reason and side",
		},
		[]string{"reason", "side"},
	)

	mtxEquity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "candlebot_equity",
			Help: "Latest equity curve value",
		},
	)

	mtxPosition = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "candlebot_position",
			Help: "Open position side: 1 long, -1 short, 0 flat",
		},
	)

	mtxLastCandle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "candlebot_last_candle_timestamp_seconds",
			Help: "Open time of the newest closed candle",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxTicks, mtxFetchErrors, mtxCandles, mtxSignals)
	prometheus.MustRegister(mtxExits, mtxEquity, mtxPosition, mtxLastCandle)
}

const (
	TickNewCandle = "new_candle"
	TickNoChange  = "no_change"
	TickError     = "error"
)

func Tick(result string) { mtxTicks.WithLabelValues(result).Inc() }

func FetchError() { mtxFetchErrors.Inc() }

// Candle records a closed candle appended at t.
func Candle(t time.Time) {
	mtxCandles.Inc()
	mtxLastCandle.Set(float64(t.Unix()))
}

func Signal(s market.Side) {
	label := "hold"
	switch s {
	case market.Long:
		label = "long"
	case market.Short:
		label = "short"
	}
	mtxSignals.WithLabelValues(label).Inc()
}

func Exit(reason string, side market.Side) {
	mtxExits.WithLabelValues(reason, strings.ToLower(side.String())).Inc()
}

func Equity(v float64) { mtxEquity.Set(v) }

func Position(s market.Side) { mtxPosition.Set(float64(s)) }
