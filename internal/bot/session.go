package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/fitgram/internal/api"
	"github.com/example/fitgram/internal/catalog"
	"github.com/example/fitgram/internal/host"
	"github.com/example/fitgram/internal/miniapp"
	"github.com/example/fitgram/internal/profile"
	"github.com/example/fitgram/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatSession is one chat's mini app and the message it is drawn into
type chatSession struct {
	chatID  int64
	api     sender
	logger  *slog.Logger
	webApp  *chatWebApp
	app     *miniapp.App
	timeout time.Duration
	// ready is closed once start has drawn the first view
	ready chan struct{}

	mu        sync.Mutex
	messageID int
	lastText  string
	lastKeys  string
}

func newChatSession(b *Bot, chatID int64, user models.TelegramUser) *chatSession {
	logger := b.logger.With("chat_id", chatID)
	webApp := newChatWebApp(b.token, user, logger)
	bridge := host.NewBridge(webApp, logger)

	client := api.NewClient(b.config.APIBaseURL, bridge.IdentityToken, api.WithTimeout(b.config.HTTPTimeout))
	loaderOpts := []catalog.LoaderOption{catalog.WithLogger(logger)}
	if len(b.config.Fallback) > 0 {
		loaderOpts = append(loaderOpts, catalog.WithFallback(b.config.Fallback))
	}

	app := miniapp.New(context.Background(), miniapp.Deps{
		Bridge:       bridge,
		Loader:       catalog.NewLoader(client, loaderOpts...),
		Profiles:     profile.NewAggregator(client, logger),
		Scheduler:    b.scheduler,
		Logger:       logger,
		ConfirmDelay: b.config.CompletionDelay,
	})

	s := &chatSession{
		chatID:  chatID,
		api:     b.api,
		logger:  logger,
		webApp:  webApp,
		app:     app,
		timeout: b.config.SettleTimeout,
		ready:   make(chan struct{}),
	}
	app.OnChange(func() { s.render(false) })
	return s
}

func (s *chatSession) start() {
	defer close(s.ready)
	s.app.Start()
	s.settle()
	s.render(true)
}

func (s *chatSession) close() {
	s.app.Close()
}

// settle waits for in-flight loads, at most the configured timeout
func (s *chatSession) settle() {
	done := make(chan struct{})
	go func() {
		s.app.Settle()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.timeout):
		s.logger.Debug("render before loads settled", "timeout", s.timeout)
	}
}

// resend makes the next render post a new message instead of editing
func (s *chatSession) resend() {
	s.mu.Lock()
	s.messageID = 0
	s.lastText, s.lastKeys = "", ""
	s.mu.Unlock()
}

// render draws the current view. Unforced renders only edit an existing
// message and skip loading states, so a navigation shows up as one edit once
// its data is in.
func (s *chatSession) render(force bool) {
	v := s.app.View()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && (s.messageID == 0 || v.Loading) {
		return
	}
	if hostBack := s.webApp.back.Visible(); hostBack != v.BackVisible {
		s.logger.Debug("host back control moved after view snapshot", "view", v.BackVisible, "host", hostBack)
	}
	text, keys := renderView(v)
	keysKey := fmt.Sprint(keys)
	if s.messageID != 0 && text == s.lastText && keysKey == s.lastKeys {
		return
	}

	markup := createKeyboard(keys)
	if s.messageID == 0 {
		msg := tgbotapi.NewMessage(s.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = markup
		sent, err := s.api.Send(msg)
		if err != nil {
			s.logger.Warn("failed to send view", "error", err)
			return
		}
		s.messageID = sent.MessageID
	} else {
		edit := tgbotapi.NewEditMessageTextAndMarkup(s.chatID, s.messageID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := s.api.Send(edit); err != nil {
			s.logger.Warn("failed to edit view", "message_id", s.messageID, "error", err)
			return
		}
	}
	s.lastText, s.lastKeys = text, keysKey
}

func telegramUser(u *tgbotapi.User) models.TelegramUser {
	if u == nil {
		return models.TelegramUser{}
	}
	return models.TelegramUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}
