package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/candlebot/backtest"
	"github.com/rustyeddy/candlebot/live"
	"github.com/rustyeddy/candlebot/server"
	"github.com/spf13/cobra"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Replay history, then follow the live feed",
	Long: `Live replays cached history through the strategy, then polls the exchange
and applies each newly closed candle to the same simulation.

Stats, trades, the equity curve and loop status are served over HTTP:
  GET /data  GET /equity  GET /candles  GET /health  GET /metrics

Example:
  trader live --symbol BTC/USDT -t 1m -s mean-reversion --addr :5000`,
	RunE: runLive,
}

var (
	liveFlags    strategyFlags
	liveAddr     string
	liveInterval string
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveFlags.register(liveCmd)
	liveCmd.Flags().StringVar(&liveAddr, "addr", "", "HTTP listen address (default from config, :5000)")
	liveCmd.Flags().StringVar(&liveInterval, "interval", "", "poll interval, e.g. 10s (default from config)")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := liveFlags.load(cmd)
	if err != nil {
		return err
	}
	if liveAddr != "" {
		cfg.Server.Addr = liveAddr
	}
	if liveInterval != "" {
		cfg.Live.Interval = liveInterval
	}
	interval, err := cfg.Live.IntervalDuration()
	if err != nil {
		return err
	}
	backoff, err := cfg.Live.BackoffDuration()
	if err != nil {
		return err
	}

	strat, err := cfg.Strategy.Build()
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := newProvider(cfg, false)
	cs, store, err := loadSeries(ctx, cfg, provider)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	j, _, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

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
	backtest.PrintResult(os.Stdout, res)
	fmt.Println()

	logger := slog.Default()
	bot, err := live.New(cs, res.Engine, provider, store, live.Options{
		Interval: interval,
		Backoff:  backoff,
		Window:   cfg.Live.Window,
	}, logger)
	if err != nil {
		return err
	}

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.New(bot, version, logger).Run(ctx, cfg.Server.Addr)
	}()

	if !cfg.Live.Enabled {
		logger.Info("live loop disabled, serving backtest only", "addr", cfg.Server.Addr)
		<-ctx.Done()
	} else if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		stop()
		<-srvErr
		return err
	}

	stop()
	if err := <-srvErr; err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
