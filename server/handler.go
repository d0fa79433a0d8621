package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/candlebot/market"
)

// GetData handles GET /data: stats, trades newest first and live status.
func (s *Server) GetData(c *gin.Context) {
	snap := s.source.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"symbol":           snap.Symbol,
		"timeframe":        snap.Timeframe,
		"stats":            snap.Stats,
		"max_drawdown_pct": snap.MaxDrawdownPct,
		"trades":           snap.Trades,
		"live_status":      snap.Status,
	})
}

// GetEquity handles GET /equity.
func (s *Server) GetEquity(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Snapshot().Equity)
}

// candleRow is a candle with its indicator values; undefined values are null.
type candleRow struct {
	market.Candle
	Indicators map[string]*float64 `json:"indicators"`
}

// GetCandles handles GET /candles?limit=N, newest N candles in time order.
func (s *Server) GetCandles(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "limit must be a positive integer",
				"request_id": c.GetString(RequestIDContextKey),
			})
			return
		}
		limit = n
	}

	snap := s.source.Snapshot()
	start := 0
	if limit > 0 && limit < len(snap.Candles) {
		start = len(snap.Candles) - limit
	}

	rows := make([]candleRow, 0, len(snap.Candles)-start)
	for i := start; i < len(snap.Candles); i++ {
		row := candleRow{Candle: snap.Candles[i], Indicators: make(map[string]*float64, len(snap.Indicators))}
		for name, col := range snap.Indicators {
			if i < len(col) && !math.IsNaN(col[i]) {
				v := col[i]
				row.Indicators[name] = &v
			} else {
				row.Indicators[name] = nil
			}
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, rows)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(c *gin.Context) {
	st := s.source.Snapshot().Status
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"version":   s.version,
		"loop":      st.State,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
