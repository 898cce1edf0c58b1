package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TimerDuration    string `yaml:"timer_duration"`
		TotalQuestions   int    `yaml:"total_questions"`
		MarksPerQuestion int    `yaml:"marks_per_question"`
		SelectionDelay   string `yaml:"selection_delay"`
		TransitionDelay  string `yaml:"transition_delay"`
		DefaultTopic     string `yaml:"default_topic"`
		DataDir          string `yaml:"data_dir"`
		DataURL          string `yaml:"data_url"`
		CacheTTL         string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// every setting falls back to its default.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Int returns v, or the fallback when v is not positive.
func Int(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// String returns v, or the fallback when v is empty.
func String(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
