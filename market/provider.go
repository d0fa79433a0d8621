package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Provider is a source of exchange candles.
//
// FetchRecent returns the newest candles in ascending order; the last
// element is the candle still forming.
type Provider interface {
	FetchHistory(ctx context.Context, symbol, timeframe string, since time.Time, limit int) ([]Candle, error)
	FetchRecent(ctx context.Context, symbol, timeframe string, limit int) ([]Candle, error)
}

// FetchAll pages through provider history from since up to now, advancing
// one millisecond past the last candle of each page.
func FetchAll(ctx context.Context, p Provider, symbol, timeframe string, since, now time.Time, pageLimit int) ([]Candle, error) {
	if pageLimit <= 0 {
		pageLimit = 1000
	}

	var all []Candle
	for since.Before(now) {
		page, err := p.FetchHistory(ctx, symbol, timeframe, since, pageLimit)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		next := page[len(page)-1].Time.Add(time.Millisecond)
		if !next.After(since) {
			// provider ignored since; stop rather than spin
			break
		}
		since = next
	}

	out, _ := Normalize(all)
	return out, nil
}

// LoadOrFetch returns the stored series for symbol/timeframe. When nothing
// is stored it fetches days of history, saves it and returns it. A stored
// series is first topped up with the candles closed since its last one; if
// that fetch fails the stored series is returned as is.
func LoadOrFetch(ctx context.Context, s Store, p Provider, symbol, timeframe string, days int, now time.Time) (*CandleSet, error) {
	cs, err := s.Load(symbol, timeframe)
	if err == nil {
		if cs.Len() == 0 {
			return nil, fmt.Errorf("%s %s: %w", symbol, timeframe, ErrInsufficientData)
		}
		if p != nil {
			if err := topUp(ctx, s, p, cs, now); err != nil {
				slog.Warn("candle cache not topped up", "symbol", symbol, "timeframe", timeframe, "err", err)
			}
		}
		return cs, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if p == nil {
		return nil, err
	}

	if days <= 0 {
		days = 30
	}
	since := now.Add(-time.Duration(days) * 24 * time.Hour)
	candles, err := FetchAll(ctx, p, symbol, timeframe, since, now, 1000)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s %s: %w", symbol, timeframe, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("fetch history %s %s: %w", symbol, timeframe, ErrInsufficientData)
	}

	cs = NewCandleSet(symbol, timeframe, candles)
	if err := s.Save(cs); err != nil {
		return nil, fmt.Errorf("save %s %s: %w", symbol, timeframe, err)
	}
	return cs, nil
}

// topUp appends the candles after the last stored one and saves the result.
func topUp(ctx context.Context, s Store, p Provider, cs *CandleSet, now time.Time) error {
	since := cs.LastTime().Add(time.Millisecond)
	candles, err := FetchAll(ctx, p, cs.Symbol, cs.Timeframe, since, now, 1000)
	if err != nil {
		return err
	}

	added := 0
	for _, c := range candles {
		if cs.Append(c) {
			added++
		}
	}
	if added == 0 {
		return nil
	}
	if err := s.Save(cs); err != nil {
		return fmt.Errorf("save %s %s: %w", cs.Symbol, cs.Timeframe, err)
	}
	return nil
}
