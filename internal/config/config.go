// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file, the file wins over
// defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"timingchallenge/internal/game"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`

	Game GameSettings `yaml:"game"`
}

// GameSettings is the tunable subset of the round state machine. Zero
// values mean "use the default".
type GameSettings struct {
	MaxRoomSize          int `yaml:"max_room_size"`
	RoundPairs           int `yaml:"round_pairs"`
	CountdownSeconds     int `yaml:"countdown_seconds"`
	InterRoundSeconds    int `yaml:"inter_round_seconds"`
	ResetSeconds         int `yaml:"reset_seconds"`
	SubmitTimeoutSeconds int `yaml:"submit_timeout_seconds"`
}

// Load reads .env (when present), then the YAML file named by GAME_CONFIG
// (when set), then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:     "8080",
		LogLevel: "info",
	}

	if path := os.Getenv("GAME_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Game.MaxRoomSize = getEnvInt("MAX_ROOM_SIZE", cfg.Game.MaxRoomSize)
	cfg.Game.RoundPairs = getEnvInt("ROUND_PAIRS", cfg.Game.RoundPairs)
	cfg.Game.CountdownSeconds = getEnvInt("COUNTDOWN_SECONDS", cfg.Game.CountdownSeconds)
	cfg.Game.InterRoundSeconds = getEnvInt("INTER_ROUND_SECONDS", cfg.Game.InterRoundSeconds)
	cfg.Game.ResetSeconds = getEnvInt("RESET_SECONDS", cfg.Game.ResetSeconds)
	cfg.Game.SubmitTimeoutSeconds = getEnvInt("SUBMIT_TIMEOUT_SECONDS", cfg.Game.SubmitTimeoutSeconds)

	return cfg, nil
}

// GameConfig applies the loaded overrides on top of the game defaults.
func (c Config) GameConfig() game.Config {
	gc := game.DefaultConfig()
	if c.Game.MaxRoomSize > 0 {
		gc.MaxRoomSize = c.Game.MaxRoomSize
	}
	if c.Game.RoundPairs > 0 {
		gc.RoundPairs = c.Game.RoundPairs
	}
	if c.Game.CountdownSeconds > 0 {
		gc.Countdown = time.Duration(c.Game.CountdownSeconds) * time.Second
	}
	if c.Game.InterRoundSeconds > 0 {
		gc.InterRoundDelay = time.Duration(c.Game.InterRoundSeconds) * time.Second
	}
	if c.Game.ResetSeconds > 0 {
		gc.ResetDelay = time.Duration(c.Game.ResetSeconds) * time.Second
	}
	if c.Game.SubmitTimeoutSeconds > 0 {
		gc.SubmitTimeout = time.Duration(c.Game.SubmitTimeoutSeconds) * time.Second
	}
	return gc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
