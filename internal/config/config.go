// Package config handles loading and validating GOLDBOT configuration from
// YAML files, with environment overrides for deployment secrets.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure. It is loaded once at startup
// and immutable for the lifetime of the process; nothing mutates these
// values mid-cycle.
type Config struct {
	App      AppConfig      `yaml:"app" validate:"required"`
	Bridge   BridgeConfig   `yaml:"bridge" validate:"required"`
	Strategy StrategyConfig `yaml:"strategy" validate:"required"`
	API      APIConfig      `yaml:"api" validate:"required"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string `yaml:"env" validate:"required,oneof=dev staging prod"`
	LogLevel string `yaml:"logLevel" validate:"required,oneof=debug info warn error"`
}

// BridgeConfig configures the TCP bridge to the terminal-side expert advisor.
type BridgeConfig struct {
	Address          string `yaml:"address" validate:"required,hostname_port"`
	RequestTimeoutMs int    `yaml:"requestTimeoutMs" validate:"gt=0"`
	DialTimeoutMs    int    `yaml:"dialTimeoutMs" validate:"gt=0"`
}

// StrategyConfig holds the per-instrument strategy settings.
type StrategyConfig struct {
	Symbol          string  `yaml:"symbol" validate:"required"`
	Timeframe       string  `yaml:"timeframe" validate:"required,oneof=M1 M5 M15 H1"`
	CandleCount     int     `yaml:"candleCount" validate:"gt=0"`
	RSIPeriod       int     `yaml:"rsiPeriod" validate:"gt=0"`
	Oversold        float64 `yaml:"oversold" validate:"gte=0,ltfield=Overbought"`
	Overbought      float64 `yaml:"overbought" validate:"lte=100"`
	StopLossDist    float64 `yaml:"stopLossDist" validate:"gt=0"`
	TakeProfitDist  float64 `yaml:"takeProfitDist" validate:"gt=0"`
	Volume          float64 `yaml:"volume" validate:"gt=0"`
	Magic           int     `yaml:"magic" validate:"gt=0"`
	CycleIntervalMs int     `yaml:"cycleIntervalMs" validate:"gt=0"`
}

// APIConfig holds the operator HTTP surface settings.
type APIConfig struct {
	ListenAddress string `yaml:"listenAddress" validate:"required"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listenAddress"`
}

// Load reads and parses a YAML configuration file, applies defaults and
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional; used for deployment overrides.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg.setDefaults()
	cfg.applyEnvOverrides()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults applies sensible defaults for optional fields.
func (c *Config) setDefaults() {
	if c.Bridge.RequestTimeoutMs == 0 {
		c.Bridge.RequestTimeoutMs = 3000
	}
	if c.Bridge.DialTimeoutMs == 0 {
		c.Bridge.DialTimeoutMs = 2000
	}
	if c.Strategy.Timeframe == "" {
		c.Strategy.Timeframe = "M1"
	}
	if c.Strategy.CandleCount == 0 {
		c.Strategy.CandleCount = 100
	}
	if c.Strategy.RSIPeriod == 0 {
		c.Strategy.RSIPeriod = 14
	}
	if c.Strategy.Oversold == 0 {
		c.Strategy.Oversold = 30
	}
	if c.Strategy.Overbought == 0 {
		c.Strategy.Overbought = 70
	}
	if c.Strategy.CycleIntervalMs == 0 {
		c.Strategy.CycleIntervalMs = 5000
	}
	if c.Metrics.ListenAddress == "" {
		c.Metrics.ListenAddress = ":9101"
	}
}

// applyEnvOverrides lets deployments override connection endpoints without
// editing the YAML file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GOLDBOT_BRIDGE_ADDRESS"); v != "" {
		c.Bridge.Address = v
	}
	if v := os.Getenv("GOLDBOT_API_LISTEN"); v != "" {
		c.API.ListenAddress = v
	}
	if v := os.Getenv("GOLDBOT_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
}
