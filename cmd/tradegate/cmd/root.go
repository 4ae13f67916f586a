package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "tradegate",
	Short: "An adaptive order-admission and market-decision engine",
	Long: `Tradegate runs a layered trading pipeline with hard safety rails.

It provides tools for:
  - Live decision loops on Binance kline streams
  - Deterministic replays of recorded candle data
  - VWAP, regime and stress analytics per bar
  - Risk-budgeted position sizing with adaptive stops
  - An execution gate with kill switch, dedup and reject feedback
  - CSV and SQLite audit journals`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the process logger honoring the --verbose flag.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
