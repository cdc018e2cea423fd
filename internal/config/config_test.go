package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearGameEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "LOG_LEVEL", "GAME_CONFIG",
		"MAX_ROOM_SIZE", "ROUND_PAIRS", "COUNTDOWN_SECONDS",
		"INTER_ROUND_SECONDS", "RESET_SECONDS", "SUBMIT_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearGameEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}

	gc := cfg.GameConfig()
	if gc.MaxRoomSize != 4 || gc.RoundPairs != 5 {
		t.Errorf("game defaults = %d players / %d pairs, want 4 / 5", gc.MaxRoomSize, gc.RoundPairs)
	}
	if gc.Countdown != 3*time.Second || gc.InterRoundDelay != 5*time.Second || gc.ResetDelay != 10*time.Second {
		t.Errorf("game delays = %v/%v/%v, want 3s/5s/10s", gc.Countdown, gc.InterRoundDelay, gc.ResetDelay)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearGameEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/timing")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_ROOM_SIZE", "8")
	t.Setenv("COUNTDOWN_SECONDS", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.DatabaseURL != "postgres://localhost/timing" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}

	gc := cfg.GameConfig()
	if gc.MaxRoomSize != 8 {
		t.Errorf("MaxRoomSize = %d, want 8", gc.MaxRoomSize)
	}
	if gc.Countdown != time.Second {
		t.Errorf("Countdown = %v, want 1s", gc.Countdown)
	}
}

func TestLoad_YAMLFileAndPrecedence(t *testing.T) {
	clearGameEnv(t)
	path := filepath.Join(t.TempDir(), "game.yaml")
	body := []byte("port: \"4000\"\nlog_level: warn\ngame:\n  round_pairs: 3\n  reset_seconds: 7\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GAME_CONFIG", path)
	t.Setenv("PORT", "5000") // env beats the file

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want env override 5000", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn from file", cfg.LogLevel)
	}

	gc := cfg.GameConfig()
	if gc.RoundPairs != 3 {
		t.Errorf("RoundPairs = %d, want 3 from file", gc.RoundPairs)
	}
	if gc.ResetDelay != 7*time.Second {
		t.Errorf("ResetDelay = %v, want 7s from file", gc.ResetDelay)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearGameEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GAME_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	clearGameEnv(t)
	t.Setenv("ROUND_PAIRS", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if gc := cfg.GameConfig(); gc.RoundPairs != 5 {
		t.Errorf("RoundPairs = %d, want default 5", gc.RoundPairs)
	}
}
