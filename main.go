package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/fitgram/internal/bot"
	"github.com/example/fitgram/internal/config"
	"github.com/example/fitgram/internal/excel"
	"github.com/example/fitgram/internal/logging"
)

func main() {
	// Канал для сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Контекст с отменой
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireBotToken(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	botCfg := bot.DefaultConfig()
	botCfg.APIBaseURL = cfg.APIBaseURL
	botCfg.HTTPTimeout = cfg.HTTPTimeout
	botCfg.CompletionDelay = cfg.CompletionDelay
	botCfg.SessionIdleTTL = cfg.SessionIdleTTL
	botCfg.SessionSweepInterval = cfg.SessionSweepInterval
	if cfg.FallbackDataset != "" {
		list, err := excel.LoadDataset(cfg.FallbackDataset)
		if err != nil {
			log.Fatalf("Failed to load fallback dataset: %v", err)
		}
		botCfg.Fallback = list
		log.Printf("Loaded %d fallback exercises from %s", len(list), cfg.FallbackDataset)
	}

	b, err := bot.New(cfg.BotToken, botCfg, logger)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Канал для ожидания завершения бота
	done := make(chan struct{})

	// Горутина для обработки сигналов
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v\n", sig)
		cancel()

		// Даем время на graceful shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := b.Stop(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}

		close(done)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Bot error: %v", err)
			sigChan <- syscall.SIGTERM
		}
	}()

	<-done
	log.Println("Bot stopped successfully")
}
