package journal

import "time"

// TradeRecord is one closed trade as persisted by a Journal.
type TradeRecord struct {
	RunID      string
	TradeID    string
	Symbol     string
	Side       string // Long | Short
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	PnL        float64 // account currency
	PnLPct     float64 // percent, e.g. -2.0
	Reason     string
}

// EquitySnapshot is one point of the equity curve.
type EquitySnapshot struct {
	RunID    string
	Time     time.Time
	Equity   float64 // marked to market
	Realized float64
	Position string // Flat | Long | Short
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
