// Package profile resolves the user summary shown on the profile tab.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/example/fitgram/pkg/models"
)

// FallbackName is shown when neither the profile nor the host knows a name
const FallbackName = "Athlete"

// DefaultBanner is the inline message for a failed profile load
const DefaultBanner = "Failed to load profile"

var errNoFetcher = errors.New("profile: no profile source configured")

// Fetcher loads the current user's profile; the identity token travels with
// the request.
type Fetcher interface {
	Profile(ctx context.Context) (models.Profile, error)
}

// Summary is everything the profile view renders
type Summary struct {
	Loaded      bool
	Profile     models.Profile
	DisplayName string
	// Handle is "@username" when the host reports one
	Handle string
	Err    error
}

// Banner is the inline error text, "" when the load succeeded
func (s Summary) Banner() string {
	if s.Err == nil {
		return ""
	}
	return DefaultBanner
}

// ResolveDisplayName picks profile.Name, then hostName, then FallbackName
func ResolveDisplayName(p *models.Profile, hostName string) string {
	if p != nil {
		if name := strings.TrimSpace(p.Name); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(hostName); name != "" {
		return name
	}
	return FallbackName
}

// Aggregator combines the remote profile with what the host knows
type Aggregator struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewAggregator creates an aggregator. A nil fetcher makes every load fail
// softly.
func NewAggregator(fetcher Fetcher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{fetcher: fetcher, logger: logger.With("component", "profile")}
}

// Load fetches the profile once. It never fails; a failed fetch yields an
// unloaded summary whose name still comes from the host or the fallback.
func (a *Aggregator) Load(ctx context.Context, hostUser *models.TelegramUser) Summary {
	var hostName, handle string
	if hostUser != nil {
		hostName = hostUser.FullName()
		if hostUser.Username != "" {
			handle = "@" + hostUser.Username
		}
	}

	s := Summary{Handle: handle}
	if a.fetcher == nil {
		s.Err = errNoFetcher
		s.DisplayName = ResolveDisplayName(nil, hostName)
		return s
	}

	p, err := a.fetcher.Profile(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("profile load failed", "error", err)
		}
		s.Err = err
		s.DisplayName = ResolveDisplayName(nil, hostName)
		return s
	}

	s.Loaded = true
	s.Profile = p
	s.DisplayName = ResolveDisplayName(&p, hostName)
	return s
}
