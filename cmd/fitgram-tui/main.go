package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/example/fitgram/internal/api"
	"github.com/example/fitgram/internal/catalog"
	"github.com/example/fitgram/internal/config"
	"github.com/example/fitgram/internal/excel"
	"github.com/example/fitgram/internal/host"
	"github.com/example/fitgram/internal/logging"
	"github.com/example/fitgram/internal/miniapp"
	"github.com/example/fitgram/internal/profile"
	"github.com/example/fitgram/internal/scheduler"
	"github.com/example/fitgram/internal/tui"
)

// Flags
var (
	configDir string
	logPath   string
	initData  string
)

var rootCmd = &cobra.Command{
	Use:   "fitgram-tui",
	Short: "Browse the exercise catalog in the terminal",
	Long: `Browse the exercise catalog in the terminal.

Runs the same session core as the Telegram bot without a host. Set
INIT_DATA (or --init-data) to a copied Telegram init data string to
call the API as that user.

Examples:
  fitgram-tui
  fitgram-tui --config-dir ./deploy --log-file /tmp/fitgram.log`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configDir, "config-dir", ".", "Directory holding .env and config.yaml")
	rootCmd.Flags().StringVar(&logPath, "log-file", "fitgram-tui.log", "Log file path")
	rootCmd.Flags().StringVar(&initData, "init-data", "", "Telegram init data (overrides INIT_DATA)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if initData != "" {
		cfg.InitData = initData
	}

	// The terminal belongs to the UI, logs go to a file
	logFile, err := tea.LogToFile(logPath, "")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.New(logFile, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	log.SetOutput(logFile)

	var webApp host.WebApp = host.Standalone{}
	if cfg.InitData != "" {
		static, err := host.NewStatic(cfg.InitData)
		if err != nil {
			return fmt.Errorf("parse INIT_DATA: %w", err)
		}
		webApp = static
	}
	bridge := host.NewBridge(webApp, logger)

	loaderOpts := []catalog.LoaderOption{catalog.WithLogger(logger)}
	if cfg.FallbackDataset != "" {
		list, err := excel.LoadDataset(cfg.FallbackDataset)
		if err != nil {
			return fmt.Errorf("load fallback dataset: %w", err)
		}
		loaderOpts = append(loaderOpts, catalog.WithFallback(list))
	}
	client := api.NewClient(cfg.APIBaseURL, bridge.IdentityToken, api.WithTimeout(cfg.HTTPTimeout))

	sched := scheduler.New(logger)
	sched.Start()
	defer sched.Stop()

	app := miniapp.New(context.Background(), miniapp.Deps{
		Bridge:       bridge,
		Loader:       catalog.NewLoader(client, loaderOpts...),
		Profiles:     profile.NewAggregator(client, logger),
		Scheduler:    sched,
		Logger:       logger,
		ConfirmDelay: cfg.CompletionDelay,
	})
	defer app.Close()

	p := tea.NewProgram(tui.New(app), tea.WithAltScreen())
	app.OnChange(tui.Notify(p))

	logger.Info("session started", "session", app.ID.String(), "api", cfg.APIBaseURL)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
