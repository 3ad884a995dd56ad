package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("QUIZ_API_URL", "")
	t.Setenv("ROOM_API_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QuizAPI.BaseURL != DefaultQuizAPIURL || cfg.Room.BaseURL != DefaultQuizAPIURL {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected info log level, got %s", cfg.Log.Level)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
quiz_api:
  base_url: http://quiz.local
  fetch_timeout: 3s
room:
  poll_interval: 250ms
  lock_delay: 2s
  publish_questions: true
redis:
  addr: localhost:6379
  ttl: 1h
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUIZ_API_URL", "")
	t.Setenv("ROOM_API_URL", "http://rooms.local")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QuizAPI.BaseURL != "http://quiz.local" || cfg.Room.BaseURL != "http://rooms.local" {
		t.Fatalf("unexpected urls %+v", cfg)
	}
	if !cfg.Room.PublishQuestions || cfg.Redis.Addr != "localhost:6379" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if d := TTLDuration(cfg.Room.PollInterval, time.Second); d != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", d)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for empty, got %s", d)
	}
	if d := TTLDuration("soon", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for garbage, got %s", d)
	}
}

func TestLoadEnvMissingFileIsFine(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
