package cmd

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/rustyeddy/candlebot/binance"
	"github.com/rustyeddy/candlebot/config"
	"github.com/rustyeddy/candlebot/journal"
	"github.com/rustyeddy/candlebot/market"
	"github.com/rustyeddy/candlebot/sim"
	"github.com/spf13/cobra"
)

// strategyFlags are shared by backtest and live; they override the config
// file only when set on the command line.
type strategyFlags struct {
	name      string
	symbol    string
	timeframe string
	equity    float64
	sl        float64
	tp        float64
	trail     float64
	fast      int
	slow      int
	dataDir   string
	days      int
}

func (f *strategyFlags) register(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().StringVarP(&f.name, "strategy", "s", d.Strategy.Name, "strategy name (noop, mean-reversion, trend-following, ema-cross, ema-cross-adx)")
	cmd.Flags().StringVar(&f.symbol, "symbol", d.Strategy.Symbol, "market symbol, e.g. BTC/USDT")
	cmd.Flags().StringVarP(&f.timeframe, "timeframe", "t", d.Strategy.Timeframe, "candle timeframe, e.g. 1h")
	cmd.Flags().Float64VarP(&f.equity, "equity", "e", d.Strategy.InitialEquity, "initial equity")
	cmd.Flags().Float64Var(&f.sl, "sl", d.Strategy.StopLossPct, "stop loss as a fraction of entry (0.02 = 2%)")
	cmd.Flags().Float64Var(&f.tp, "tp", d.Strategy.TakeProfitPct, "take profit as a fraction of entry")
	cmd.Flags().Float64Var(&f.trail, "trail", 0, "trailing stop as a fraction of the best price (0 disables)")
	cmd.Flags().IntVar(&f.fast, "fast", d.Strategy.Fast, "trend-following: fast SMA period")
	cmd.Flags().IntVar(&f.slow, "slow", d.Strategy.Slow, "trend-following: slow SMA period")
	cmd.Flags().StringVar(&f.dataDir, "data", d.Data.Dir, "candle cache directory")
	cmd.Flags().IntVar(&f.days, "days", d.Data.HistoryDays, "days of history to fetch when nothing is cached")
}

// load reads the config file (or defaults) and applies changed flags.
func (f *strategyFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	}

	fl := cmd.Flags()
	if fl.Changed("strategy") {
		cfg.Strategy.Name = f.name
	}
	if fl.Changed("symbol") {
		cfg.Strategy.Symbol = f.symbol
	}
	if fl.Changed("timeframe") {
		cfg.Strategy.Timeframe = f.timeframe
	}
	if fl.Changed("equity") {
		cfg.Strategy.InitialEquity = f.equity
	}
	if fl.Changed("sl") {
		cfg.Strategy.StopLossPct = f.sl
	}
	if fl.Changed("tp") {
		cfg.Strategy.TakeProfitPct = f.tp
	}
	if fl.Changed("trail") {
		cfg.Strategy.TrailingStopPct = f.trail
	}
	if fl.Changed("fast") {
		cfg.Strategy.Fast = f.fast
	}
	if fl.Changed("slow") {
		cfg.Strategy.Slow = f.slow
	}
	if fl.Changed("data") {
		cfg.Data.Dir = f.dataDir
	}
	if fl.Changed("days") {
		cfg.Data.HistoryDays = f.days
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadSeries returns cached candles, fetching and caching history when
// nothing is stored. A nil provider means offline.
func loadSeries(ctx context.Context, cfg *config.Config, p market.Provider) (*market.CandleSet, *market.CSVStore, error) {
	store := market.NewCSVStore(cfg.Data.Dir)
	cs, err := market.LoadOrFetch(ctx, store, p, cfg.Strategy.Symbol, cfg.Strategy.Timeframe, cfg.Data.HistoryDays, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}
	return cs, store, nil
}

func newProvider(cfg *config.Config, offline bool) market.Provider {
	if offline {
		return nil
	}
	return binance.NewClient(cfg.Data.BaseURL)
}

// openJournal opens the configured journal. The SQLite handle is returned
// separately so callers can record run summaries; both are nil for "none".
func openJournal(jc config.JournalConfig) (journal.Journal, *journal.SQLite, error) {
	switch jc.Type {
	case "csv":
		j, err := journal.NewCSV(jc.TradesFile, jc.EquityFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil, nil
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		return j, j, nil
	default:
		return nil, nil, nil
	}
}

// engineConfig builds a fresh run identity. Trade IDs are seeded from the
// run ID, so replaying a run ID reproduces its trade IDs.
func engineConfig(cfg *config.Config) sim.Config {
	runID := uuid.New().String()
	h := fnv.New64a()
	_, _ = h.Write([]byte(runID))
	return sim.Config{
		RunID:         runID,
		Symbol:        cfg.Strategy.Symbol,
		InitialEquity: cfg.Strategy.InitialEquity,
		Risk:          cfg.Strategy.RiskParams(),
		IDSeed:        int64(h.Sum64()),
	}
}
