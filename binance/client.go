package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/candlebot/market"
)

const (
	// BaseURL is Binance's public spot REST endpoint
	BaseURL = "https://api.binance.com"

	// MaxLimit is the most klines one request may return
	MaxLimit = 1000
)

var intervals = map[string]bool{
	"1s": true, "1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// Client reads public kline data. It implements market.Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a client against baseURL, or BaseURL when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// Symbol converts "BTC/USDT" to Binance's "BTCUSDT".
func Symbol(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "/", ""))
}

// FetchHistory returns up to limit closed klines opening at or after since.
// The kline still forming is dropped so it is never cached as history.
func (c *Client) FetchHistory(ctx context.Context, symbol, timeframe string, since time.Time, limit int) ([]market.Candle, error) {
	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	rows, err := c.klines(ctx, symbol, timeframe, limit, params)
	if err != nil {
		return nil, err
	}

	now := c.now()
	candles := make([]market.Candle, 0, len(rows))
	for _, k := range rows {
		if !k.closed(now) {
			break
		}
		candles = append(candles, k.Candle)
	}
	return candles, nil
}

// FetchRecent returns the newest limit klines. The last one is still forming.
func (c *Client) FetchRecent(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error) {
	rows, err := c.klines(ctx, symbol, timeframe, limit, url.Values{})
	if err != nil {
		return nil, err
	}
	candles := make([]market.Candle, len(rows))
	for i, k := range rows {
		candles[i] = k.Candle
	}
	return candles, nil
}

// kline is one parsed row. CloseTime is zero when the row omits it.
type kline struct {
	market.Candle
	CloseTime time.Time
}

// closed reports whether the kline's interval has ended by now.
func (k kline) closed(now time.Time) bool {
	return k.CloseTime.IsZero() || k.CloseTime.Before(now)
}

func (c *Client) klines(ctx context.Context, symbol, timeframe string, limit int, params url.Values) ([]kline, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if !intervals[timeframe] {
		return nil, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	params.Set("symbol", Symbol(symbol))
	params.Set("interval", timeframe)
	params.Set("limit", strconv.Itoa(limit))

	apiURL := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: klines %s: %w", market.ErrDataFetch, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: klines %s: API error (status %d): %s",
			market.ErrDataFetch, symbol, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Rows mix JSON numbers and numeric strings:
	// [openTime, "o", "h", "l", "c", "v", closeTime, ...]
	var raw [][]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: klines %s: decode response: %w", market.ErrDataFetch, symbol, err)
	}

	out := make([]kline, 0, len(raw))
	for i, row := range raw {
		k, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("%w: klines %s: row %d: %w", market.ErrDataFetch, symbol, i, err)
		}
		out = append(out, k)
	}
	return out, nil
}

func parseKline(row []json.Number) (kline, error) {
	if len(row) < 6 {
		return kline{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	ms, err := row[0].Int64()
	if err != nil {
		return kline{}, fmt.Errorf("parse open time: %w", err)
	}

	var vals [5]float64
	for i := range vals {
		v, err := row[i+1].Float64()
		if err != nil {
			return kline{}, fmt.Errorf("parse field %d: %w", i+1, err)
		}
		vals[i] = v
	}

	k := kline{Candle: market.Candle{
		Time:   time.UnixMilli(ms).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}}
	if len(row) > 6 {
		closeMs, err := row[6].Int64()
		if err != nil {
			return kline{}, fmt.Errorf("parse close time: %w", err)
		}
		k.CloseTime = time.UnixMilli(closeMs).UTC()
	}
	return k, nil
}
