package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrein/tradegate/config"
	"github.com/mkrein/tradegate/engine"
	"github.com/mkrein/tradegate/execution"
	"github.com/mkrein/tradegate/feed"
	"github.com/mkrein/tradegate/journal"
	"github.com/mkrein/tradegate/market"
	"github.com/mkrein/tradegate/monitor"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay recorded candle data through the full pipeline",
	Long: `Replay historical data to test decision and execution behavior.

Candles come either from a CSV file (time,open,high,low,close,volume)
or from an hourly bi5 tick archive aggregated into bars. Each bar runs
one full pipeline iteration against a dry-run adapter, so the replay is
deterministic and journaled like a live session.

Examples:
  tradegate replay --config tradegate.yaml --candles data/xauusd_m1.csv
  tradegate replay --config tradegate.yaml --ticks data/2024-03-05/10h_ticks.bi5 --tick-hour 2024-03-05T10:00:00Z`,
	RunE: runReplay,
}

var (
	replayConfigPath  string
	replayCandlesPath string
	replayTicksPath   string
	replayTickHour    string
	replayTickScale   float64
	replayBars        int
	replayEquity      float64
	replayPointValue  float64
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	replayCmd.Flags().StringVarP(&replayCandlesPath, "candles", "c", "", "CSV file of candles")
	replayCmd.Flags().StringVarP(&replayTicksPath, "ticks", "t", "", "bi5 tick archive (one hour of ticks)")
	replayCmd.Flags().StringVar(&replayTickHour, "tick-hour", "", "archive hour as RFC3339, required with --ticks")
	replayCmd.Flags().Float64Var(&replayTickScale, "tick-scale", 1e-5, "price scale of archived integer ticks")
	replayCmd.Flags().IntVar(&replayBars, "bars", 500, "sliding window size in bars")
	replayCmd.Flags().Float64Var(&replayEquity, "equity", 10000, "account equity in USD")
	replayCmd.Flags().Float64Var(&replayPointValue, "point-value", 1.0, "P/L per unit per point of price movement")
	replayCmd.MarkFlagRequired("config")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(replayConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	candles, err := loadReplayCandles()
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return fmt.Errorf("no candles to replay")
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	jrnl, err := journal.Open(cfg.Journal.Type, cfg.Journal.TradesFile, cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	f := feed.NewReplayFeed(cfg.Symbol, candles, replayBars, replayEquity, replayPointValue)
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

	fmt.Printf("Replaying %d candles for %s\n\n", len(candles), cfg.Symbol)

	ctx := context.Background()
	actions := map[string]int{}
	for f.Advance() {
		res := orch.RunOnce(ctx)
		actions[res.Action]++
		switch res.Action {
		case engine.ActionOrderSent, engine.ActionOrderRejected, engine.ActionExitPartial, engine.ActionExitFull:
			fmt.Printf("  %-14s %s\n", res.Action, res.Reason)
		}
	}

	fmt.Printf("\nReplay results:\n")
	fmt.Printf("  Bars processed: %d\n", len(candles))
	for _, action := range []string{
		engine.ActionSkip, engine.ActionHold,
		engine.ActionOrderSent, engine.ActionOrderRejected,
		engine.ActionExitPartial, engine.ActionExitFull,
	} {
		if n := actions[action]; n > 0 {
			fmt.Printf("  %-14s %d\n", action, n)
		}
	}
	if pos := orch.Position(); pos != nil {
		fmt.Printf("  Open position: %s %.2f @ %.4f\n", pos.Side, pos.Size, pos.EntryPrice)
	}
	printSummary(gate)
	return nil
}

func loadReplayCandles() ([]market.Candle, error) {
	switch {
	case replayCandlesPath != "":
		candles, err := feed.LoadCSV(replayCandlesPath)
		if err != nil {
			return nil, fmt.Errorf("load candles: %w", err)
		}
		return candles, nil
	case replayTicksPath != "":
		if replayTickHour == "" {
			return nil, fmt.Errorf("--tick-hour is required with --ticks")
		}
		hour, err := time.Parse(time.RFC3339, replayTickHour)
		if err != nil {
			return nil, fmt.Errorf("parse tick hour: %w", err)
		}
		ticks, err := feed.LoadTickArchive(replayTicksPath, hour, replayTickScale)
		if err != nil {
			return nil, fmt.Errorf("load tick archive: %w", err)
		}
		return feed.AggregateTicks(ticks, time.Minute), nil
	}
	return nil, fmt.Errorf("either --candles or --ticks is required")
}
