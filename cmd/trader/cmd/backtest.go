package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rustyeddy/candlebot/backtest"
	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy over historical candles",
	Long: `Backtest replays cached candles through a strategy in one pass.

When no candles are cached for the symbol and timeframe, history is
downloaded first (unless --offline is set) and saved to the data directory.

Supported strategies:
  - noop: Never trades (baseline)
  - mean-reversion: RSI below lower goes long, above upper goes short
  - trend-following: Fast SMA above slow goes long, below goes short
  - ema-cross: Fast EMA above slow goes long, exits on the opposite cross
  - ema-cross-adx: ema-cross entries only while ADX shows a trend

Example:
  trader backtest --symbol BTC/USDT -t 1h -s trend-following --fast 10 --slow 30`,
	RunE: runBacktest,
}

var (
	btFlags   strategyFlags
	btOffline bool
	btTrades  bool
	btOrgPath string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	btFlags.register(backtestCmd)
	backtestCmd.Flags().BoolVar(&btOffline, "offline", false, "use cached candles only, never fetch")
	backtestCmd.Flags().BoolVar(&btTrades, "trades", true, "print the trade report")
	backtestCmd.Flags().StringVar(&btOrgPath, "org", "", "write an Org-mode run summary to this path")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := btFlags.load(cmd)
	if err != nil {
		return err
	}
	strat, err := cfg.Strategy.Build()
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	ctx := cmd.Context()
	cs, store, err := loadSeries(ctx, cfg, newProvider(cfg, btOffline))
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	j, db, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	fmt.Printf("Running backtest with strategy: %s\n", strat.Name())
	fmt.Printf("  Candles: %s (%d)\n", store.Path(cs.Symbol, cs.Timeframe), cs.Len())
	if cfg.Journal.Type != "" && cfg.Journal.Type != "none" {
		fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	}
	fmt.Println()

	runner := &backtest.Runner{
		Candles:  cs,
		Strategy: strat,
		Config:   engineConfig(cfg),
		Journal:  j,
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	slog.Debug("backtest finished", "run_id", res.RunID, "trades", res.Stats.Trades)

	backtest.PrintResult(os.Stdout, res)
	if btTrades {
		fmt.Println()
		backtest.PrintTrades(os.Stdout, res.Trades)
	}

	run := res.BacktestRun(store.Path(cs.Symbol, cs.Timeframe), cfg.YAML())
	if db != nil {
		if err := db.RecordRun(run); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if btOrgPath != "" {
		run.OrgPath = btOrgPath
		if err := run.WriteBacktestOrg(); err != nil {
			return err
		}
		fmt.Printf("\n✓ Wrote %s\n", btOrgPath)
	}
	return nil
}
