package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"dice-lite/dicegame"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	unsetEnv(t, "DICE_ADDR", "DICE_TARGET_SCORE", "DICE_SEED", "DICE_RECENT_LIMIT",
		"DICE_TRACE_NPC", "DICE_TALLY_STORE", "DICE_IDLE_TTL")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv err: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.TargetScore != 101 || cfg.Seed != 0 || cfg.RecentLimit != 20 || cfg.TraceNPC {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TallyStore != "sqlite" || cfg.IdleTTL != 30*time.Minute {
		t.Fatalf("unexpected store defaults: %+v", cfg)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DICE_ADDR", ":9999")
	t.Setenv("DICE_TARGET_SCORE", "50")
	t.Setenv("DICE_SEED", "42")
	t.Setenv("DICE_TRACE_NPC", "true")
	t.Setenv("DICE_IDLE_TTL", "5m")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv err: %v", err)
	}
	if cfg.IdleTTL != 5*time.Minute {
		t.Fatalf("expected 5m idle ttl, got %s", cfg.IdleTTL)
	}
	if cfg.Addr != ":9999" || cfg.TargetScore != 50 || cfg.Seed != 42 || !cfg.TraceNPC {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadFromEnv_RejectsLowTarget(t *testing.T) {
	t.Setenv("DICE_TARGET_SCORE", "9")
	_, err := LoadFromEnv()
	if !errors.Is(err, dicegame.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadFromEnv_RejectsGarbage(t *testing.T) {
	t.Setenv("DICE_SEED", "not-a-number")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadFromEnv_RejectsShortIdleTTL(t *testing.T) {
	t.Setenv("DICE_IDLE_TTL", "10s")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error for short idle ttl")
	}
}
