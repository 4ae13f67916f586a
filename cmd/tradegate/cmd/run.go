package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkrein/tradegate/config"
	"github.com/mkrein/tradegate/engine"
	"github.com/mkrein/tradegate/execution"
	"github.com/mkrein/tradegate/feed"
	"github.com/mkrein/tradegate/journal"
	"github.com/mkrein/tradegate/monitor"
	"github.com/mkrein/tradegate/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live decision loop against a Binance kline stream",
	Long: `Run the full pipeline against live market data.

Candles arrive over the Binance kline websocket. Every interval the
engine recomputes VWAP, regime and stress, asks the decision core for
a verdict and routes accepted orders through the execution gate. The
gate uses a dry-run adapter: orders fill instantly at the limit price
and are journaled, nothing reaches a real broker.

Example:
  tradegate run --config tradegate.yaml --interval 1m --equity 25000`,
	RunE: runRun,
}

var (
	runConfigPath string
	runInterval   string
	runEquity     float64
	runPointValue float64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runInterval, "interval", "i", "1m", "kline interval (1m, 5m, 15m, ...)")
	runCmd.Flags().Float64Var(&runEquity, "equity", 10000, "account equity in USD")
	runCmd.Flags().Float64Var(&runPointValue, "point-value", 1.0, "P/L per unit per point of price movement")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jrnl, err := journal.Open(cfg.Journal.Type, cfg.Journal.TradesFile, cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	reg := prometheus.NewRegistry()
	telemetry.Register(reg)
	telemetry.Serve(ctx, cfg.Metrics.Addr, reg, log)

	barInterval, err := klineDuration(runInterval)
	if err != nil {
		return err
	}

	f := feed.NewBinanceKlineFeed(cfg.Symbol, runInterval, 500, runEquity, runPointValue, log)
	go func() {
		if err := f.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("market data feed stopped", zap.Error(err))
		}
	}()

	kill := monitor.New(cfg.Kill.MaxDrawdownPct, cfg.Kill.MaxRejections, cfg.Kill.CooldownSeconds, cfg.Kill.MaxStress)
	gate := execution.NewGate(execution.MockAdapter{}, kill, execution.GateConfig{
		MaxRecords:          cfg.Registry.MaxRecords,
		WindowSec:           cfg.Registry.WindowSec,
		SoftRejectRatio:     cfg.Feedback.SoftRejectRatio,
		CriticalRejectRatio: cfg.Feedback.CriticalRejectRatio,
		MinThrottle:         cfg.Feedback.MinThrottle,
		MinSizeMultiplier:   cfg.Feedback.MinSizeMultiplier,
	}, log)

	orch := engine.New(*cfg, f, gate, kill, jrnl, log)

	log.Info("pipeline starting",
		zap.String("symbol", cfg.Symbol),
		zap.String("interval", runInterval),
		zap.Float64("equity", runEquity),
	)

	if err := orch.Run(ctx, barInterval); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	printSummary(gate)
	log.Info("pipeline stopped")
	return nil
}

// klineDuration maps a Binance interval token to the engine tick period.
func klineDuration(interval string) (time.Duration, error) {
	switch interval {
	case "1m":
		return time.Minute, nil
	case "3m":
		return 3 * time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "30m":
		return 30 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unsupported interval: %s", interval)
}

func printSummary(gate *execution.Gate) {
	stats := gate.Registry().Stats()
	fmt.Printf("\nExecution summary:\n")
	fmt.Printf("  Orders: %d\n", stats.Total)
	fmt.Printf("  Filled: %d (%.0f%%)\n", stats.Filled, stats.FillRatio*100)
	fmt.Printf("  Rejected: %d (%.0f%%)\n", stats.Rejected, stats.RejectRatio*100)
}
