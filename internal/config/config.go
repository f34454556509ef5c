// Package config loads server configuration from a YAML file with
// environment-variable overrides (FRONTIER_ prefix).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Cards   CardsConfig   `mapstructure:"cards"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig covers the websocket listener and the cross-player
// selection deadline.
type ServerConfig struct {
	Address          string        `mapstructure:"address"`
	SelectionTimeout time.Duration `mapstructure:"selection_timeout"`
	AIPacing         time.Duration `mapstructure:"ai_pacing"`
	// ReplayDir enables replay persistence when non-empty.
	ReplayDir string `mapstructure:"replay_dir"`
}

// GameConfig tunes per-engine rules.
type GameConfig struct {
	HandLimit       int `mapstructure:"hand_limit"`
	CountersPerTurn int `mapstructure:"counters_per_turn"`
	OpeningHand     int `mapstructure:"opening_hand"`
}

// CardsConfig points at an external card catalog. An empty path means
// the built-in demo set.
type CardsConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}

// LoggingConfig selects zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path. A missing file is not an error;
// defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.selection_timeout", 60*time.Second)
	v.SetDefault("server.ai_pacing", 300*time.Millisecond)
	v.SetDefault("server.replay_dir", "")
	v.SetDefault("game.hand_limit", 7)
	v.SetDefault("game.counters_per_turn", 7)
	v.SetDefault("game.opening_hand", 7)
	v.SetDefault("cards.catalog_path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix("FRONTIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// Tolerate a missing file, reject a malformed one.
			if !os.IsNotExist(err) && !strings.Contains(err.Error(), "no such file") {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.SelectionTimeout <= 0 {
		return fmt.Errorf("server.selection_timeout must be positive")
	}
	if c.Game.HandLimit <= 0 {
		return fmt.Errorf("game.hand_limit must be positive")
	}
	if c.Game.OpeningHand < 0 {
		return fmt.Errorf("game.opening_hand must not be negative")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
