package bot

import (
	"context"
	"errors"

	"github.com/example/fitgram/internal/miniapp"
	"github.com/example/fitgram/internal/navigation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		if err := b.HandleCommand(ctx, update.Message); err != nil {
			b.logger.Warn("command failed", "command", update.Message.Command(), "error", err)
		}
	case update.Message != nil:
		b.reply(update.Message.Chat.ID, "I don't understand. Use /catalog to browse exercises.")
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return errors.New("invalid message: chat is missing")
	}
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.session(chatID, message.From, true)
		return nil
	case "catalog":
		s := b.session(chatID, message.From, false)
		s.resend()
		if err := s.app.ReturnToRoot(); err != nil {
			return err
		}
		if err := s.app.ShowTab(miniapp.TabGroups); err != nil {
			return err
		}
		s.settle()
		s.render(true)
		return nil
	case "profile":
		s := b.session(chatID, message.From, false)
		s.resend()
		if err := s.app.ShowTab(miniapp.TabProfile); err != nil {
			return err
		}
		if err := s.app.RefreshProfile(); err != nil {
			return err
		}
		s.settle()
		s.render(true)
		return nil
	case "help":
		b.reply(chatID, helpText)
		return nil
	default:
		b.reply(chatID, "Unknown command. Use /help to see what I can do.")
		return nil
	}
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	notice := ""
	s := b.session(chatID, callback.From, false)
	if err := b.dispatch(s, callback.Data); err != nil {
		switch {
		case errors.Is(err, navigation.ErrInvalidTransition), errors.Is(err, miniapp.ErrClosed):
			b.logger.Debug("ignored stale button", "chat_id", chatID, "data", callback.Data, "error", err)
			notice = "This button is no longer active"
		default:
			b.logger.Warn("callback failed", "chat_id", chatID, "data", callback.Data, "error", err)
			notice = "Something went wrong"
		}
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, notice)); err != nil {
		b.logger.Debug("failed to answer callback", "error", err)
	}
	s.settle()
	s.render(true)
}

func (b *Bot) dispatch(s *chatSession, data string) error {
	cb, err := parseCallback(data)
	if err != nil {
		return err
	}

	app := s.app
	switch cb.action {
	case callbackGroupPrefix:
		return app.SelectGroup(cb.group)
	case callbackExercisePrefix:
		return app.SelectExercise(cb.id)
	case callbackBack:
		handled, err := app.PressBack()
		if err == nil && !handled {
			return navigation.ErrInvalidTransition
		}
		return err
	case callbackChangeGroup:
		return app.ChangeGroup()
	case callbackComplete:
		return app.MarkComplete()
	case callbackRoot:
		return app.ReturnToRoot()
	case callbackProfile:
		if err := app.ShowTab(miniapp.TabProfile); err != nil {
			return err
		}
		return app.RefreshProfile()
	case callbackCatalog:
		return app.ShowTab(miniapp.TabGroups)
	case callbackRefresh:
		if app.View().Tab == miniapp.TabProfile {
			return app.RefreshProfile()
		}
		return app.Refresh()
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}
