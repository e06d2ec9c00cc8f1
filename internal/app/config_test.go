package app

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.TickRate != 10 {
		t.Fatalf("expected default tick rate 10, got %d", cfg.TickRate)
	}
	if cfg.CheckpointTicks() != 300 {
		t.Fatalf("expected 300 checkpoint ticks, got %d", cfg.CheckpointTicks())
	}
	if cfg.KeyframeTicks() != 50 {
		t.Fatalf("expected 50 keyframe ticks, got %d", cfg.KeyframeTicks())
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ERYNDOR_ADDR", ":9999")
	t.Setenv("ERYNDOR_TICK_RATE", "20")
	t.Setenv("ERYNDOR_LOG_SINKS", "console,json")
	t.Setenv("ERYNDOR_CHECKPOINT_INTERVAL", "10s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("expected addr :9999, got %q", cfg.Addr)
	}
	if cfg.TickRate != 20 {
		t.Fatalf("expected tick rate 20, got %d", cfg.TickRate)
	}
	if len(cfg.LogSinks) != 2 || cfg.LogSinks[1] != "json" {
		t.Fatalf("expected sinks [console json], got %v", cfg.LogSinks)
	}
	if cfg.CheckpointInterval != 10*time.Second {
		t.Fatalf("expected 10s checkpoint interval, got %s", cfg.CheckpointInterval)
	}
	if cfg.CheckpointTicks() != 200 {
		t.Fatalf("expected 200 checkpoint ticks at 20 Hz, got %d", cfg.CheckpointTicks())
	}
}

func TestLoadConfigRejectsBadTickRate(t *testing.T) {
	t.Setenv("ERYNDOR_TICK_RATE", "0")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error for zero tick rate")
	}
	if !strings.Contains(err.Error(), "tick rate") {
		t.Fatalf("expected tick rate error, got %v", err)
	}
}

func TestDurationTicksNeverZero(t *testing.T) {
	if got := durationTicks(time.Millisecond, 10); got != 1 {
		t.Fatalf("expected sub-tick interval to round up to 1, got %d", got)
	}
}
