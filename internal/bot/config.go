package bot

import (
	"time"

	"github.com/example/fitgram/pkg/models"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Base URL of the fitness API
	APIBaseURL string
	// Per-request timeout of the API client
	HTTPTimeout time.Duration
	// Pause between "mark complete" and the return to the group
	CompletionDelay time.Duration
	// Sessions without activity for this long are closed
	SessionIdleTTL time.Duration
	// How often idle sessions are looked for
	SessionSweepInterval time.Duration
	// Longest wait for a level load before the message is re-rendered anyway
	SettleTimeout time.Duration
	// Replacement for the bundled fallback exercises, nil keeps the bundled set
	Fallback []models.Exercise
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		APIBaseURL:           "http://localhost:8080",
		HTTPTimeout:          10 * time.Second,
		CompletionDelay:      1500 * time.Millisecond,
		SessionIdleTTL:       30 * time.Minute,
		SessionSweepInterval: 5 * time.Minute,
		SettleTimeout:        3 * time.Second,
	}
}
