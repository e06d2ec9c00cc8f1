package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, sourced from environment variables.
type Config struct {
	Addr               string        `env:"ERYNDOR_ADDR" envDefault:":8080"`
	TickRate           int           `env:"ERYNDOR_TICK_RATE" envDefault:"10"`
	ContentDir         string        `env:"ERYNDOR_CONTENT_DIR" envDefault:"content"`
	DatabasePath       string        `env:"ERYNDOR_DB_PATH" envDefault:"eryndor.db"`
	Seed               int64         `env:"ERYNDOR_SEED" envDefault:"0"`
	LogSinks           []string      `env:"ERYNDOR_LOG_SINKS" envSeparator:"," envDefault:"console"`
	LogJSONPath        string        `env:"ERYNDOR_LOG_JSON_PATH"`
	CheckpointInterval time.Duration `env:"ERYNDOR_CHECKPOINT_INTERVAL" envDefault:"30s"`
	KeyframeInterval   time.Duration `env:"ERYNDOR_KEYFRAME_INTERVAL" envDefault:"5s"`
	CommandCapacity    int           `env:"ERYNDOR_COMMAND_CAPACITY" envDefault:"1024"`
	PerActorCommands   int           `env:"ERYNDOR_PER_ACTOR_COMMANDS" envDefault:"16"`
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("config: tick rate must be positive, got %d", c.TickRate)
	}
	if c.CheckpointInterval <= 0 {
		return fmt.Errorf("config: checkpoint interval must be positive, got %s", c.CheckpointInterval)
	}
	if c.KeyframeInterval <= 0 {
		return fmt.Errorf("config: keyframe interval must be positive, got %s", c.KeyframeInterval)
	}
	if c.CommandCapacity <= 0 {
		return fmt.Errorf("config: command capacity must be positive, got %d", c.CommandCapacity)
	}
	return nil
}

// CheckpointTicks converts the checkpoint interval into simulation ticks.
func (c Config) CheckpointTicks() uint64 {
	return durationTicks(c.CheckpointInterval, c.TickRate)
}

// KeyframeTicks converts the keyframe interval into simulation ticks.
func (c Config) KeyframeTicks() uint64 {
	return durationTicks(c.KeyframeInterval, c.TickRate)
}

func durationTicks(d time.Duration, tickRate int) uint64 {
	ticks := uint64(d.Seconds() * float64(tickRate))
	if ticks == 0 {
		ticks = 1
	}
	return ticks
}
