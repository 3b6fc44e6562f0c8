package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/fitgram/internal/scheduler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Bot API the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot application. Every chat gets its own
// mini app session rendered into a single message.
type Bot struct {
	api       sender
	botAPI    *tgbotapi.BotAPI
	token     string
	config    *BotConfig
	scheduler *scheduler.Scheduler
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*chatSession

	handlers sync.WaitGroup
}

// New creates a new bot instance
func New(token string, config *BotConfig, logger *slog.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		token:     token,
		config:    config,
		scheduler: scheduler.New(logger),
		logger:    logger.With("component", "bot"),
		sessions:  make(map[int64]*chatSession),
	}, nil
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.botAPI = botAPI
	b.api = botAPI
	b.logger.Info("authorized", "account", botAPI.Self.UserName)

	b.scheduler.Start()
	if err := b.scheduler.Every(b.config.SessionSweepInterval, b.sweepSessions); err != nil {
		return err
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.Add(1)
			go func() {
				defer b.handlers.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// Stop gracefully stops the bot, closing every session
func (b *Bot) Stop(ctx context.Context) error {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}

	done := make(chan struct{})
	go func() {
		b.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for update handlers: %w", ctx.Err())
	}

	b.mu.Lock()
	sessions := b.sessions
	b.sessions = make(map[int64]*chatSession)
	b.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}

	b.scheduler.Stop()
	b.logger.Info("bot stopped", "sessions_closed", len(sessions))
	return nil
}

// session returns the chat's session, creating it when missing or when fresh
// is set. A session is returned only after it has started.
func (b *Bot) session(chatID int64, from *tgbotapi.User, fresh bool) *chatSession {
	b.mu.Lock()
	old, ok := b.sessions[chatID]
	if ok && !fresh {
		b.mu.Unlock()
		<-old.ready
		return old
	}
	s := newChatSession(b, chatID, telegramUser(from))
	b.sessions[chatID] = s
	b.mu.Unlock()

	if ok {
		old.close()
	}
	s.start()
	return s
}

// sweepSessions closes sessions idle for longer than SessionIdleTTL
func (b *Bot) sweepSessions() {
	cutoff := time.Now().Add(-b.config.SessionIdleTTL)

	b.mu.Lock()
	var idle []*chatSession
	for chatID, s := range b.sessions {
		if s.app.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(b.sessions, chatID)
		}
	}
	b.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	if len(idle) > 0 {
		b.logger.Info("closed idle sessions", "count", len(idle))
	}
}

// ActiveSessions returns the number of open chat sessions
func (b *Bot) ActiveSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}
