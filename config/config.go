package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete pipeline configuration. Every safety and
// decision threshold the engine consumes lives here so deployments can
// retune without code changes.
type Config struct {
	Symbol   string         `json:"symbol" yaml:"symbol"`
	Kill     KillConfig     `json:"kill_switch" yaml:"kill_switch"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Stop     StopConfig     `json:"stop" yaml:"stop"`
	Feedback FeedbackConfig `json:"feedback" yaml:"feedback"`
	NDS      NDSConfig      `json:"nds" yaml:"nds"`
	Exit     ExitConfig     `json:"exit" yaml:"exit"`
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// KillConfig contains kill-switch thresholds.
type KillConfig struct {
	MaxDrawdownPct  float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	MaxRejections   int     `json:"max_rejections" yaml:"max_rejections"`
	CooldownSeconds int     `json:"cooldown_seconds" yaml:"cooldown_seconds"`
	MaxStress       float64 `json:"max_stress" yaml:"max_stress"`
}

// RiskConfig contains risk-budget bounds.
type RiskConfig struct {
	MinRiskUSD float64 `json:"min_risk_usd" yaml:"min_risk_usd"`
	MaxRiskPct float64 `json:"max_risk_pct" yaml:"max_risk_pct"`
	MinSize    float64 `json:"min_size" yaml:"min_size"`

	// ForceTrade substitutes ForceMinRiskUSD when the computed budget is
	// zero. Wiring/dry-run validation only; must stay off in production.
	ForceTrade      bool    `json:"force_trade" yaml:"force_trade"`
	ForceMinRiskUSD float64 `json:"force_min_risk_usd" yaml:"force_min_risk_usd"`
}

// StopConfig contains stop-engine parameters.
type StopConfig struct {
	Alpha      float64 `json:"alpha" yaml:"alpha"`
	MinSamples int     `json:"min_samples" yaml:"min_samples"`
}

// FeedbackConfig contains adaptive execution-feedback thresholds.
type FeedbackConfig struct {
	SoftRejectRatio     float64 `json:"soft_reject_ratio" yaml:"soft_reject_ratio"`
	CriticalRejectRatio float64 `json:"critical_reject_ratio" yaml:"critical_reject_ratio"`
	MinThrottle         float64 `json:"min_throttle" yaml:"min_throttle"`
	MinSizeMultiplier   float64 `json:"min_size_multiplier" yaml:"min_size_multiplier"`
}

// NDSConfig contains decision-chain thresholds, including the adaptive
// confirmation gate.
type NDSConfig struct {
	OverrideEnabled   bool    `json:"override_enabled" yaml:"override_enabled"`
	MinTrendExpansion float64 `json:"min_trend_expansion" yaml:"min_trend_expansion"`
	MinVWAPDev        float64 `json:"min_vwap_dev" yaml:"min_vwap_dev"`
	MaxTradeStress    float64 `json:"max_trade_stress" yaml:"max_trade_stress"`
}

// ExitConfig contains exit-cascade knobs.
type ExitConfig struct {
	MinWarnConfidence    float64 `json:"min_warn_confidence" yaml:"min_warn_confidence"`
	MinConfirmConfidence float64 `json:"min_confirm_confidence" yaml:"min_confirm_confidence"`
	PartialCloseRatio    float64 `json:"partial_close_ratio" yaml:"partial_close_ratio"`
	PnLProtectThreshold  float64 `json:"pnl_protect_threshold" yaml:"pnl_protect_threshold"`
}

// RegistryConfig bounds the in-memory execution audit log.
type RegistryConfig struct {
	MaxRecords int `json:"max_records" yaml:"max_records"`
	WindowSec  int `json:"window_sec" yaml:"window_sec"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// JournalConfig contains audit journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Kill.MaxDrawdownPct <= 0 {
		return fmt.Errorf("kill_switch.max_drawdown_pct must be positive")
	}
	if c.Kill.MaxRejections <= 0 {
		return fmt.Errorf("kill_switch.max_rejections must be positive")
	}
	if c.Kill.CooldownSeconds <= 0 {
		return fmt.Errorf("kill_switch.cooldown_seconds must be positive")
	}
	if c.Kill.MaxStress <= 0 || c.Kill.MaxStress > 1 {
		return fmt.Errorf("kill_switch.max_stress must be in (0,1]")
	}
	if c.Risk.MaxRiskPct <= 0 || c.Risk.MaxRiskPct > 1 {
		return fmt.Errorf("risk.max_risk_pct must be in (0,1]")
	}
	if c.Stop.Alpha <= 0 || c.Stop.Alpha >= 1 {
		return fmt.Errorf("stop.alpha must be in (0,1)")
	}
	if c.Stop.MinSamples <= 0 {
		return fmt.Errorf("stop.min_samples must be positive")
	}
	if c.Feedback.SoftRejectRatio <= 0 || c.Feedback.SoftRejectRatio >= c.Feedback.CriticalRejectRatio {
		return fmt.Errorf("feedback.soft_reject_ratio must be positive and below critical_reject_ratio")
	}
	if c.Feedback.MinThrottle <= 0 || c.Feedback.MinThrottle > 1 {
		return fmt.Errorf("feedback.min_throttle must be in (0,1]")
	}
	if c.Feedback.MinSizeMultiplier <= 0 || c.Feedback.MinSizeMultiplier > 1 {
		return fmt.Errorf("feedback.min_size_multiplier must be in (0,1]")
	}
	if c.Exit.PartialCloseRatio < 0 || c.Exit.PartialCloseRatio > 1 {
		return fmt.Errorf("exit.partial_close_ratio must be in [0,1]")
	}
	if c.Registry.MaxRecords <= 0 {
		return fmt.Errorf("registry.max_records must be positive")
	}
	if c.Registry.WindowSec <= 0 {
		return fmt.Errorf("registry.window_sec must be positive")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal.trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with the standard safety thresholds.
func Default() *Config {
	return &Config{
		Symbol: "XAUUSD",
		Kill: KillConfig{
			MaxDrawdownPct:  3.0,
			MaxRejections:   3,
			CooldownSeconds: 300,
			MaxStress:       0.95,
		},
		Risk: RiskConfig{
			MinRiskUSD:      0.0,
			MaxRiskPct:      0.015,
			MinSize:         0.01,
			ForceTrade:      false,
			ForceMinRiskUSD: 0.25,
		},
		Stop: StopConfig{
			Alpha:      0.05,
			MinSamples: 50,
		},
		Feedback: FeedbackConfig{
			SoftRejectRatio:     0.25,
			CriticalRejectRatio: 0.50,
			MinThrottle:         0.25,
			MinSizeMultiplier:   0.30,
		},
		NDS: NDSConfig{
			OverrideEnabled:   true,
			MinTrendExpansion: 0.7,
			MinVWAPDev:        0.0025,
			MaxTradeStress:    0.35,
		},
		Exit: ExitConfig{
			MinWarnConfidence:    0.55,
			MinConfirmConfidence: 0.60,
			PartialCloseRatio:    0.33,
			PnLProtectThreshold:  0.0,
		},
		Registry: RegistryConfig{
			MaxRecords: 1000,
			WindowSec:  60,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
