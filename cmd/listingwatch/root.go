package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/amishk599/listingwatch/internal/config"
	"github.com/amishk599/listingwatch/internal/dedup"
	"github.com/amishk599/listingwatch/internal/metrics"
	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/notifier"
	"github.com/amishk599/listingwatch/internal/poller"
	"github.com/amishk599/listingwatch/internal/ratelimit"
	"github.com/amishk599/listingwatch/internal/source"
	"github.com/amishk599/listingwatch/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "listingwatch",
	Short: "Watch a job listing feed and get pinged about new postings",
	Long:  "listingwatch polls a public listings endpoint and sends a chat message for every listing it has not seen before.",
	// Default to `start` so that `listingwatch` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: LISTINGWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig loads .env, then resolves the config path and parses it.
// Priority: --config > LISTINGWATCH_CONFIG env var > "./config.yaml"
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return config.Load(config.ResolvePath(cfgPath))
}

// bootstrapLogger is used until the config tells us where the log file is.
func bootstrapLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// setupLogger writes to stdout and appends to the configured log file,
// which the dashboard tails. When file is false only stdout is used.
func setupLogger(cfg config.LogConfig, dbg, file bool) (*slog.Logger, func()) {
	level := cfg.Level
	if dbg {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	stdout := slog.NewTextHandler(os.Stdout, opts)

	if !file || cfg.File == "" {
		return slog.New(stdout), func() {}
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		logger := slog.New(stdout)
		logger.Warn("cannot open log file, logging to stdout only", "path", cfg.File, "error", err)
		return logger, func() {}
	}

	logger := slog.New(slogmulti.Fanout(stdout, slog.NewTextHandler(f, opts)))
	return logger, func() { f.Close() }
}

// setupFileLogger logs only to the log file, for commands that own the terminal.
func setupFileLogger(cfg config.LogConfig, dbg bool) (*slog.Logger, func()) {
	level := cfg.Level
	if dbg {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, opts)), func() {}
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { f.Close() }
}

func setupNotifier(cfg *config.Config, logger *slog.Logger) (model.Notifier, error) {
	httpClient := &http.Client{Timeout: cfg.Notification.Timeout}

	var n model.Notifier
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		n = notifier.NewSlackNotifier(cfg.Notification.Slack.WebhookURL, httpClient, logger)
	case "telegram":
		tg, err := notifier.NewTelegramNotifier(notifier.TelegramConfig{
			Token:   cfg.Notification.Telegram.Token,
			ChatID:  cfg.Notification.Telegram.ChatID,
			Timeout: cfg.Notification.Timeout,
		}, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		logger.Info("using telegram notifier", "configured", tg.Configured())
		n = tg
	default:
		n = notifier.NewLogNotifier(logger)
	}

	return ratelimit.NewPacedNotifier(n, ratelimit.NewPacer(cfg.Notification.MinDelay)), nil
}

// setupStore opens the known-listings backend. The returned func closes it.
func setupStore(cfg config.StoreConfig) (model.KnownStore, func(), error) {
	switch cfg.Type {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return s, func() { s.Close() }, nil
	default:
		return store.NewJSONStore(cfg.Path), func() {}, nil
	}
}

func newSource(cfg *config.Config) *source.HTTPSource {
	return source.NewHTTPSource(cfg.Source.URL, &http.Client{Timeout: cfg.Source.Timeout})
}

func buildPoller(cfg *config.Config, backend model.KnownStore, n model.Notifier, m *metrics.Metrics, logger *slog.Logger) (*poller.ListingPoller, *notifier.Formatter) {
	format := notifier.NewFormatter(cfg.Source.JobURLTemplate)
	known := dedup.NewStore(backend, logger)
	return poller.NewListingPoller(newSource(cfg), known, n, format, m, logger), format
}
