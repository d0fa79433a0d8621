package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/candlebot/binance"
	"github.com/rustyeddy/candlebot/config"
	"github.com/rustyeddy/candlebot/market"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download candle history into the data directory",
	Long: `Fetch pages through exchange history and writes one CSV per symbol and
timeframe (timestamp,open,high,low,close,volume).

Example:
  trader fetch --symbol ETH/USDT -t 1h --days 90`,
	RunE: runFetch,
}

var (
	fetchSymbol    string
	fetchTimeframe string
	fetchDays      int
	fetchDataDir   string
	fetchBaseURL   string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	d := config.Default()
	fetchCmd.Flags().StringVar(&fetchSymbol, "symbol", d.Strategy.Symbol, "market symbol, e.g. BTC/USDT")
	fetchCmd.Flags().StringVarP(&fetchTimeframe, "timeframe", "t", d.Strategy.Timeframe, "candle timeframe")
	fetchCmd.Flags().IntVar(&fetchDays, "days", d.Data.HistoryDays, "days of history")
	fetchCmd.Flags().StringVar(&fetchDataDir, "data", d.Data.Dir, "output directory")
	fetchCmd.Flags().StringVar(&fetchBaseURL, "base-url", binance.BaseURL, "exchange REST endpoint")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	now := time.Now().UTC()
	since := now.Add(-time.Duration(fetchDays) * 24 * time.Hour)

	fmt.Printf("Fetching %s %s since %s\n", fetchSymbol, fetchTimeframe, since.Format(time.RFC3339))

	p := binance.NewClient(fetchBaseURL)
	candles, err := market.FetchAll(cmd.Context(), p, fetchSymbol, fetchTimeframe, since, now, binance.MaxLimit)
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return fmt.Errorf("fetch %s %s: %w", fetchSymbol, fetchTimeframe, market.ErrInsufficientData)
	}

	store := market.NewCSVStore(fetchDataDir)
	cs := market.NewCandleSet(fetchSymbol, fetchTimeframe, candles)
	if err := store.Save(cs); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	fmt.Printf("✓ Saved %d candles to %s\n", cs.Len(), store.Path(fetchSymbol, fetchTimeframe))
	fmt.Printf("  First: %s\n", cs.Candles[0].Time.Format(time.RFC3339))
	fmt.Printf("  Last:  %s\n", cs.LastTime().Format(time.RFC3339))
	return nil
}
