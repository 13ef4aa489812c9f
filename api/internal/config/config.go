package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"5000"`

	APIKey      string `env:"API_KEY,required"`
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	FetchMaxBytes int64         `env:"FETCH_MAX_BYTES" envDefault:"33554432"`
	ModelTimeout  time.Duration `env:"MODEL_TIMEOUT" envDefault:"180s"`

	CacheSize int           `env:"CACHE_SIZE" envDefault:"512"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	DatabaseURL    string        `env:"DATABASE_URL"`
	DocumentMaxAge time.Duration `env:"DOCUMENT_MAX_AGE" envDefault:"24h"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey == "" {
		return errors.New("API_KEY is not set. Please configure your environment variables")
	}
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "5000"
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("CACHE_SIZE must not be negative, got %d", c.CacheSize)
	}
	if c.CacheTTL < 0 || c.FetchTimeout < 0 || c.ModelTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
