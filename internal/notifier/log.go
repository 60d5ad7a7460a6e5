package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/listingwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier is the fallback when no messaging channel is set up. It never
// reports itself as configured and writes each message to the logger instead.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each message via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Configured() bool { return false }

// Send logs the message. Returns nil (logging does not fail).
func (n *LogNotifier) Send(_ context.Context, text string) error {
	n.logger.Info("notifier not configured, skipping notification")
	n.logger.Debug("notification text", "text", text)
	return nil
}
