// Package host abstracts the runtime that embeds the mini app: readiness
// signaling, the opaque identity token and the single back-navigation control.
package host

import (
	"github.com/google/uuid"

	"github.com/example/fitgram/pkg/models"
)

// WebApp is the capability surface a hosting runtime provides
type WebApp interface {
	Ready()
	Expand()
	// InitData returns the raw, signed init data string, or "" when there is none
	InitData() string
	// User returns the unverified host user, if the host knows one
	User() (models.TelegramUser, bool)
	// BackButton returns the host back control; never nil
	BackButton() BackButton
}

// BackButton is the host-level "go back" affordance
type BackButton interface {
	Show()
	Hide()
	OnClick(h *BackHandler)
	OffClick(h *BackHandler)
}

// BackHandler is a registered reaction to a host back press. Registrations
// are matched by ID.
type BackHandler struct {
	ID uuid.UUID
	fn func()
}

// NewBackHandler wraps fn in a uniquely identified handler
func NewBackHandler(fn func()) *BackHandler {
	return &BackHandler{ID: uuid.New(), fn: fn}
}

// Invoke runs the handler; a nil handler does nothing
func (h *BackHandler) Invoke() {
	if h == nil || h.fn == nil {
		return
	}
	h.fn()
}

// Standalone is the WebApp used when no host is present. Every capability is
// a no-op and there is no identity.
type Standalone struct{}

func (Standalone) Ready()                            {}
func (Standalone) Expand()                           {}
func (Standalone) InitData() string                  { return "" }
func (Standalone) User() (models.TelegramUser, bool) { return models.TelegramUser{}, false }
func (Standalone) BackButton() BackButton            { return noopBackButton{} }

type noopBackButton struct{}

func (noopBackButton) Show()                {}
func (noopBackButton) Hide()                {}
func (noopBackButton) OnClick(*BackHandler)  {}
func (noopBackButton) OffClick(*BackHandler) {}

// Static serves a fixed init data string, e.g. one copied from a real
// Telegram session for local development. It has no back control.
type Static struct {
	Standalone
	raw  string
	user *models.TelegramUser
}

// NewStatic parses raw without verifying its signature. Verification is the
// server's job; the client only needs the unsafe user fields for display.
func NewStatic(raw string) (*Static, error) {
	s := &Static{raw: raw}
	if raw == "" {
		return s, nil
	}
	data, err := ParseInitData(raw)
	if err != nil {
		return nil, err
	}
	s.user = data.User
	return s, nil
}

func (s *Static) InitData() string { return s.raw }

func (s *Static) User() (models.TelegramUser, bool) {
	if s.user == nil {
		return models.TelegramUser{}, false
	}
	return *s.user, true
}
