package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values come from environment variables, an optional .env file and an
// optional config.yaml, in that order of precedence.
type Config struct {
	BotToken    string        `mapstructure:"telegram_bot_token"`
	APIBaseURL  string        `mapstructure:"api_base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	CompletionDelay      time.Duration `mapstructure:"completion_delay"`
	SessionIdleTTL       time.Duration `mapstructure:"session_idle_ttl"`
	SessionSweepInterval time.Duration `mapstructure:"session_sweep_interval"`

	// FallbackDataset is a .json or .xlsx file replacing the bundled exercises
	FallbackDataset string `mapstructure:"fallback_dataset"`
	// InitData is a raw init data string for running outside Telegram
	InitData string `mapstructure:"init_data"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ErrMissingToken is returned by RequireBotToken
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")

// Load reads configuration from dir. Missing .env and config files are not
// errors.
func Load(dir string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("completion_delay", "1500ms")
	v.SetDefault("session_idle_ttl", "30m")
	v.SetDefault("session_sweep_interval", "5m")
	v.SetDefault("fallback_dataset", "")
	v.SetDefault("init_data", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible zero
func (c Config) Validate() error {
	durations := map[string]time.Duration{
		"HTTP_TIMEOUT":           c.HTTPTimeout,
		"COMPLETION_DELAY":       c.CompletionDelay,
		"SESSION_IDLE_TTL":       c.SessionIdleTTL,
		"SESSION_SWEEP_INTERVAL": c.SessionSweepInterval,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", name, d)
		}
	}
	if c.APIBaseURL == "" {
		return errors.New("config: API_BASE_URL is empty")
	}
	return nil
}

// RequireBotToken fails when the bot token is not configured
func (c Config) RequireBotToken() error {
	if c.BotToken == "" {
		return ErrMissingToken
	}
	return nil
}
