package bot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/example/fitgram/internal/host"
	"github.com/example/fitgram/pkg/models"
)

// initDataTTL is how long a minted init data string is reused
const initDataTTL = 10 * time.Minute

// chatWebApp plays the Telegram WebApp runtime for one chat. Its back button
// is the "Back" row of the inline keyboard.
type chatWebApp struct {
	token  string
	user   models.TelegramUser
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	initData string
	mintedAt time.Time
	back     chatBackButton
}

func newChatWebApp(token string, user models.TelegramUser, logger *slog.Logger) *chatWebApp {
	return &chatWebApp{token: token, user: user, logger: logger, now: time.Now}
}

func (w *chatWebApp) Ready()  { w.logger.Debug("web app ready", "user_id", w.user.ID) }
func (w *chatWebApp) Expand() {}

// InitData signs init data for the chat's user the way Telegram does for a
// Mini App launch, refreshing it before the API would consider it stale.
func (w *chatWebApp) InitData() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.token == "" || w.user.ID == 0 {
		return ""
	}
	now := w.now()
	if w.initData != "" && now.Sub(w.mintedAt) < initDataTTL {
		return w.initData
	}
	raw, err := host.SignInitData(w.token, w.user, now)
	if err != nil {
		w.logger.Warn("failed to sign init data", "user_id", w.user.ID, "error", err)
		return ""
	}
	w.initData, w.mintedAt = raw, now
	return raw
}

func (w *chatWebApp) User() (models.TelegramUser, bool) {
	return w.user, w.user.ID != 0
}

func (w *chatWebApp) BackButton() host.BackButton { return &w.back }

// chatBackButton records whether the keyboard should carry a back row. The
// press itself is routed through the bridge.
type chatBackButton struct {
	mu      sync.Mutex
	visible bool
	handler *host.BackHandler
}

func (b *chatBackButton) Show() {
	b.mu.Lock()
	b.visible = true
	b.mu.Unlock()
}

func (b *chatBackButton) Hide() {
	b.mu.Lock()
	b.visible = false
	b.mu.Unlock()
}

func (b *chatBackButton) OnClick(h *host.BackHandler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

func (b *chatBackButton) OffClick(h *host.BackHandler) {
	b.mu.Lock()
	if h != nil && b.handler != nil && b.handler.ID == h.ID {
		b.handler = nil
	}
	b.mu.Unlock()
}

// Visible reports whether a back row should be rendered
func (b *chatBackButton) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible && b.handler != nil
}
