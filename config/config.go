package config

import (
	"fmt"
	"strings"

	"gomoku/evaluator"
	"gomoku/game"
	"gomoku/searcher"

	"github.com/spf13/viper"
)

const (
	AgentEvaluation = "evaluation"
	AgentTraining   = "training"
	AgentHuman      = "human" // Moves typed on the console
)

type Config struct {
	Log       LogConfig        `mapstructure:"log"`
	Search    searcher.Config  `mapstructure:"search"`
	Evaluator evaluator.Config `mapstructure:"evaluator"`
	Match     MatchConfig      `mapstructure:"match"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// MatchConfig describes the games played by cmd/gomoku.
type MatchConfig struct {
	Games          int     `mapstructure:"games"`
	MaxMoves       int     `mapstructure:"max_moves"`
	StartingPlayer int     `mapstructure:"starting_player"`
	Black          string  `mapstructure:"black"` // Agent mode
	White          string  `mapstructure:"white"`
	Temperature    float64 `mapstructure:"temperature"`
	Seed           uint64  `mapstructure:"seed"`
	MetricsDir     string  `mapstructure:"metrics_dir"`
}

var defaults = map[string]any{
	"log.level":  "info",
	"log.pretty": true,

	"search.c_puct":             1.5,
	"search.num_simulations":    150,
	"search.winning_run_length": game.DefaultRunLength,
	"search.board_size":         15,
	"search.goroutines":         1,
	"search.duration":           "0s",
	"search.virtual_loss":       1,

	"evaluator.kind":       evaluator.KindRollout,
	"evaluator.url":        "",
	"evaluator.timeout":    "10s",
	"evaluator.seed":       1,
	"evaluator.cutoff":     100,
	"evaluator.batch_size": 0,
	"evaluator.batch_wait": "2ms",
	"evaluator.listen":     ":8080",

	"match.games":           1,
	"match.max_moves":       300,
	"match.starting_player": game.Black,
	"match.black":           AgentEvaluation,
	"match.white":           AgentEvaluation,
	"match.temperature":     1.0,
	"match.seed":            1,
	"match.metrics_dir":     "",
}

// Load reads the config file at path, if any, over the defaults. Environment
// variables such as GOMOKU_SEARCH_C_PUCT override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("GOMOKU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Evaluator.Validate(); err != nil {
		return fmt.Errorf("evaluator: %w", err)
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	return nil
}

func (m MatchConfig) Validate() error {
	if m.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", m.Games)
	}
	if m.StartingPlayer != game.Black && m.StartingPlayer != game.White {
		return fmt.Errorf("starting_player must be %d or %d, got %d", game.Black, game.White, m.StartingPlayer)
	}
	for _, mode := range []string{m.Black, m.White} {
		if mode != AgentEvaluation && mode != AgentTraining && mode != AgentHuman {
			return fmt.Errorf("unknown agent mode %q", mode)
		}
	}
	if m.Temperature < 0 {
		return fmt.Errorf("temperature cannot be negative")
	}
	return nil
}
