package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/amishk599/listingwatch/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramConfig holds bot credentials and transport settings.
type TelegramConfig struct {
	Token     string
	ChatID    string
	ServerURL string        // API base URL; empty uses api.telegram.org
	Timeout   time.Duration // per-message timeout
}

// TelegramNotifier sends HTML messages to one chat through the Bot API.
// Without both a token and a chat ID it is a logging no-op.
type TelegramNotifier struct {
	chatID  string
	timeout time.Duration
	bot     *bot.Bot // nil when not configured
	logger  *slog.Logger
}

// NewTelegramNotifier builds a notifier. Missing credentials are not an
// error; the notifier just reports Configured() == false.
func NewTelegramNotifier(cfg TelegramConfig, httpClient *http.Client, logger *slog.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{
		chatID:  cfg.ChatID,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	if n.timeout <= 0 {
		n.timeout = 10 * time.Second
	}

	if cfg.Token == "" || cfg.ChatID == "" {
		if cfg.Token == "" {
			logger.Warn("telegram bot token not set, notifications disabled")
		}
		if cfg.ChatID == "" {
			logger.Warn("telegram chat id not set, notifications disabled")
		}
		return n, nil
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(n.timeout, httpClient),
	}
	if cfg.ServerURL != "" {
		opts = append(opts, bot.WithServerURL(cfg.ServerURL))
	}

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	n.bot = b
	return n, nil
}

// Configured reports whether both token and chat ID were supplied.
func (n *TelegramNotifier) Configured() bool {
	return n.bot != nil
}

// Send makes one delivery attempt. When unconfigured it logs and returns nil
// without any network call.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if !n.Configured() {
		n.logger.Info("telegram not configured, skipping notification")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: bot.True(),
		},
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	n.logger.Info("telegram notification sent")
	return nil
}
