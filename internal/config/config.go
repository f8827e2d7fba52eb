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
		Port      string `yaml:"port"`
		PublicURL string `yaml:"public_url"`
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
	Content struct {
		Dir string `yaml:"dir"`
		TTL string `yaml:"ttl"`
	} `yaml:"content"`
	Game Game `yaml:"game"`
}

// Game holds the board rules.
type Game struct {
	AnswerTimeout      string `yaml:"answer_timeout"`
	Players            int    `yaml:"players"`
	MaxSelectionBuzzes int    `yaml:"max_selection_buzzes"`
	ScoreIncrement     int    `yaml:"score_increment"`
	Highlight          string `yaml:"highlight"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.PublicURL = "http://localhost:8080"
	cfg.Redis.TTL = "10m"
	cfg.Content.Dir = "assets"
	cfg.Content.TTL = "10m"
	cfg.Game = Game{
		AnswerTimeout:      "6s",
		Players:            4,
		MaxSelectionBuzzes: 20,
		ScoreIncrement:     100,
		Highlight:          "3s",
	}
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file
// yields the defaults and found=false.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, true, err
	}
	return cfg, true, nil
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
