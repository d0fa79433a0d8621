package cmd

import (
	"fmt"

	"github.com/rustyeddy/candlebot/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files for backtests and live runs.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  trader config init -o candlebot.yaml
  trader config validate -f candlebot.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings.

Example:
  trader config init -o candlebot.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  trader config validate -f candlebot.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "candlebot.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  trader backtest -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s := cfg.Strategy
	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Strategy: %s on %s %s\n", s.Name, s.Symbol, s.Timeframe)
	fmt.Printf("  Equity: %.2f (SL %.1f%%, TP %.1f%%)\n", s.InitialEquity, s.StopLossPct*100, s.TakeProfitPct*100)
	if s.TrailingStopPct > 0 {
		fmt.Printf("  Trailing stop: %.1f%%\n", s.TrailingStopPct*100)
	}
	fmt.Printf("  Live: every %s (backoff %s)\n", cfg.Live.Interval, cfg.Live.Backoff)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
