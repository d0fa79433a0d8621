package market

import "errors"

var (
	// ErrNotFound is returned by a Store when no series has been saved
	// for the symbol/timeframe.
	ErrNotFound = errors.New("candles not found")

	// ErrInsufficientData is returned when a provider returns no candles
	// where history was required.
	ErrInsufficientData = errors.New("insufficient candle data")

	// ErrDataFetch wraps network or exchange failures from a Provider.
	ErrDataFetch = errors.New("data fetch failed")
)
