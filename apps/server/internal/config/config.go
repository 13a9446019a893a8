package config

import (
	"fmt"
	"time"

	"dice-lite/dicegame"

	"github.com/caarlos0/env/v11"
)

// Config is the server's environment-driven configuration.
type Config struct {
	Addr string `env:"DICE_ADDR" envDefault:":8080"`
	// TargetScore every new session races to until the client picks another.
	TargetScore int `env:"DICE_TARGET_SCORE" envDefault:"101"`
	// Seed 0 => each session is time-seeded. Otherwise sessions get Seed,
	// Seed+1, ... in opening order.
	Seed int64 `env:"DICE_SEED" envDefault:"0"`
	// RecentLimit caps match history rows returned by the tally endpoint.
	RecentLimit int `env:"DICE_RECENT_LIMIT" envDefault:"20"`
	// TraceNPC logs every computer decision.
	TraceNPC bool `env:"DICE_TRACE_NPC" envDefault:"false"`
	// TallyStore is "sqlite" (in-memory) or "none".
	TallyStore string `env:"DICE_TALLY_STORE" envDefault:"sqlite"`
	// IdleTTL closes sessions that saw no command for this long.
	IdleTTL time.Duration `env:"DICE_IDLE_TTL" envDefault:"30m"`
}

// LoadFromEnv parses and validates the configuration.
func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("DICE_ADDR must not be empty")
	}
	if c.TargetScore < dicegame.MinTargetScore {
		return fmt.Errorf("%w: DICE_TARGET_SCORE %d must be >= %d", dicegame.ErrInvalidConfiguration, c.TargetScore, dicegame.MinTargetScore)
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("DICE_RECENT_LIMIT must be > 0")
	}
	if c.IdleTTL < time.Minute {
		return fmt.Errorf("DICE_IDLE_TTL must be >= 1m, got %s", c.IdleTTL)
	}
	return nil
}
