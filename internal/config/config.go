package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultQuizAPIURL = "https://festquiz.onrender.com"
	DefaultConfigPath = "config/config.yaml"
)

type Config struct {
	QuizAPI struct {
		BaseURL      string `yaml:"base_url"`
		FetchTimeout string `yaml:"fetch_timeout"`
	} `yaml:"quiz_api"`
	Room struct {
		BaseURL          string `yaml:"base_url"`
		PollInterval     string `yaml:"poll_interval"`
		PollTimeout      string `yaml:"poll_timeout"`
		LockDelay        string `yaml:"lock_delay"`
		PublishQuestions bool   `yaml:"publish_questions"`
	} `yaml:"room"`
	Spectator struct {
		Addr string `yaml:"addr"`
	} `yaml:"spectator"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields the defaults so the
// CLI works without any setup. QUIZ_API_URL and ROOM_API_URL override the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("QUIZ_API_URL"); v != "" {
		cfg.QuizAPI.BaseURL = v
	}
	if v := os.Getenv("ROOM_API_URL"); v != "" {
		cfg.Room.BaseURL = v
	}
	if cfg.QuizAPI.BaseURL == "" {
		cfg.QuizAPI.BaseURL = DefaultQuizAPIURL
	}
	if cfg.Room.BaseURL == "" {
		cfg.Room.BaseURL = cfg.QuizAPI.BaseURL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}

// LoadEnv reads an optional .env file into the process environment.
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
