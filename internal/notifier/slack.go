package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/amishk599/listingwatch/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts messages to a Slack channel via an Incoming Webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts to webhookURL.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Configured reports whether a webhook URL was supplied.
func (s *SlackNotifier) Configured() bool {
	return s.webhookURL != ""
}

type slackPayload struct {
	Text   string `json:"text"`
	Mrkdwn bool   `json:"mrkdwn"`
}

// Send converts text to Slack mrkdwn and posts it once.
func (s *SlackNotifier) Send(ctx context.Context, text string) error {
	if !s.Configured() {
		s.logger.Info("slack not configured, skipping notification")
		return nil
	}

	body, err := json.Marshal(slackPayload{Text: toMrkdwn(text), Mrkdwn: true})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("slack returned %d", resp.StatusCode),
		}
	}
	s.logger.Info("slack notification sent")
	return nil
}

var anchorRegex = regexp.MustCompile(`<a href="([^"]*)">([^<]*)</a>`)

// Placeholders for link brackets so they survive entity escaping.
const (
	linkOpen  = "\x00"
	linkClose = "\x01"
)

var mrkdwnTags = strings.NewReplacer(
	"<b>", "*", "</b>", "*",
	"<i>", "_", "</i>", "_",
)

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// toMrkdwn converts the Telegram HTML subset used by Formatter into Slack mrkdwn.
func toMrkdwn(text string) string {
	s := anchorRegex.ReplaceAllString(text, linkOpen+"$1|$2"+linkClose)
	s = mrkdwnTags.Replace(s)
	s = html.UnescapeString(s)
	s = slackEscaper.Replace(s)
	return strings.NewReplacer(linkOpen, "<", linkClose, ">").Replace(s)
}
