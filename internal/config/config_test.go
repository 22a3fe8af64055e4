package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

const minimalYAML = `
app:
  env: dev
  logLevel: info
bridge:
  address: 127.0.0.1:7788
strategy:
  symbol: XAUUSD
  stopLossDist: 5.0
  takeProfitDist: 5.0
  volume: 0.01
  magic: 202401
api:
  listenAddress: :8080
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Strategy.RSIPeriod != 14 {
		t.Errorf("rsiPeriod default = %d, want 14", cfg.Strategy.RSIPeriod)
	}
	if cfg.Strategy.Oversold != 30 || cfg.Strategy.Overbought != 70 {
		t.Errorf("bands default = %v/%v, want 30/70", cfg.Strategy.Oversold, cfg.Strategy.Overbought)
	}
	if cfg.Strategy.Timeframe != "M1" {
		t.Errorf("timeframe default = %q, want M1", cfg.Strategy.Timeframe)
	}
	if cfg.Strategy.CandleCount != 100 {
		t.Errorf("candleCount default = %d, want 100", cfg.Strategy.CandleCount)
	}
	if cfg.Bridge.RequestTimeoutMs != 3000 {
		t.Errorf("requestTimeoutMs default = %d, want 3000", cfg.Bridge.RequestTimeoutMs)
	}
	if cfg.Strategy.CycleIntervalMs != 5000 {
		t.Errorf("cycleIntervalMs default = %d, want 5000", cfg.Strategy.CycleIntervalMs)
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	yaml := `
app:
  env: dev
  logLevel: info
bridge:
  address: 127.0.0.1:7788
strategy:
  symbol: XAUUSD
api:
  listenAddress: :8080
`
	// No SL/TP distances, volume, or magic.
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatal("want validation error for missing risk fields, got nil")
	}
}

func TestLoad_RejectsInvertedBands(t *testing.T) {
	yaml := `
app:
  env: dev
  logLevel: info
bridge:
  address: 127.0.0.1:7788
strategy:
  symbol: XAUUSD
  oversold: 80
  overbought: 70
  stopLossDist: 5.0
  takeProfitDist: 5.0
  volume: 0.01
  magic: 202401
api:
  listenAddress: :8080
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatal("want validation error for oversold >= overbought, got nil")
	}
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	yaml := `
app:
  env: dev
  logLevel: loud
bridge:
  address: 127.0.0.1:7788
strategy:
  symbol: XAUUSD
  stopLossDist: 5.0
  takeProfitDist: 5.0
  volume: 0.01
  magic: 202401
api:
  listenAddress: :8080
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatal("want validation error for unknown log level, got nil")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GOLDBOT_BRIDGE_ADDRESS", "10.0.0.5:9900")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Bridge.Address != "10.0.0.5:9900" {
		t.Errorf("bridge address = %q, want env override", cfg.Bridge.Address)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("want error for missing file, got nil")
	}
}
