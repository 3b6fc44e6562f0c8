package host

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/example/fitgram/pkg/models"
)

// ErrHandlerActive is returned when a back handler is registered while
// another one is still active.
var ErrHandlerActive = errors.New("host: back handler already registered")

// Bridge is the single accessor the rest of the app uses to talk to the host
type Bridge struct {
	app    WebApp
	logger *slog.Logger

	once  sync.Once
	ready atomic.Bool

	mu      sync.Mutex
	current *BackHandler
	visible bool
}

// NewBridge wraps app. A nil app means the code runs outside any host.
func NewBridge(app WebApp, logger *slog.Logger) *Bridge {
	if app == nil {
		app = Standalone{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{app: app, logger: logger.With("component", "host")}
}

// Initialize signals readiness and asks for the full viewport. Only the first
// call reaches the host.
func (b *Bridge) Initialize() {
	b.once.Do(func() {
		b.app.Ready()
		b.app.Expand()
		b.ready.Store(true)
		if b.app.InitData() == "" {
			b.logger.Debug("no host identity, requests will be anonymous")
		}
	})
}

// IsReady reports whether Initialize has run
func (b *Bridge) IsReady() bool {
	return b.ready.Load()
}

// IdentityToken returns the opaque token for outbound requests, "" when the
// host provides none.
func (b *Bridge) IdentityToken() string {
	return b.app.InitData()
}

// HostUser returns the user the host reports, if any
func (b *Bridge) HostUser() (models.TelegramUser, bool) {
	return b.app.User()
}

// HostUserName is the host user's full name or ""
func (b *Bridge) HostUserName() string {
	u, ok := b.app.User()
	if !ok {
		return ""
	}
	return u.FullName()
}

// RegisterBackHandler binds h to the host back control. The previous handler
// must be unregistered first.
func (b *Bridge) RegisterBackHandler(h *BackHandler) error {
	if h == nil {
		return errors.New("host: nil back handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		return ErrHandlerActive
	}
	b.current = h
	b.app.BackButton().OnClick(h)
	b.logger.Debug("back handler registered", "handler_id", h.ID.String())
	return nil
}

// UnregisterBackHandler removes h. Removing a handler that is not the current
// one is a no-op.
func (b *Bridge) UnregisterBackHandler(h *BackHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h == nil || b.current == nil || b.current.ID != h.ID {
		return
	}
	b.app.BackButton().OffClick(h)
	b.current = nil
	b.logger.Debug("back handler unregistered", "handler_id", h.ID.String())
}

// SetBackVisible shows or hides the host back control
func (b *Bridge) SetBackVisible(visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = visible
	if visible {
		b.app.BackButton().Show()
	} else {
		b.app.BackButton().Hide()
	}
}

// BackVisible reports the last visibility set on the host control
func (b *Bridge) BackVisible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// ActiveHandlers returns how many back handlers are registered (0 or 1)
func (b *Bridge) ActiveHandlers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return 0
	}
	return 1
}

// PressBack delivers a host back press to the current handler. It returns
// false when nothing is registered.
func (b *Bridge) PressBack() bool {
	b.mu.Lock()
	h := b.current
	b.mu.Unlock()
	if h == nil {
		return false
	}
	h.Invoke()
	return true
}
