package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"PapersNotifier/internal/domain"
	"PapersNotifier/internal/ports"
)

// Notifier posts Block Kit messages to an incoming webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook endpoint.
func NewNotifier(webhookURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Announce builds the message for papers and posts it in a single attempt.
// The webhook acknowledges with status 200 and the literal body "ok"; any
// other combination, and any transport error, is returned as a failure.
func (n *Notifier) Announce(ctx context.Context, papers []domain.Paper, now time.Time) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack webhook url is not configured (set SLACK_WEBHOOK_URL)")
	}

	// mrkdwn hyperlinks use literal angle brackets, so HTML escaping must stay off.
	var body bytes.Buffer
	encoder := json.NewEncoder(&body)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(BuildMessage(papers, now)); err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, &body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || string(reply) != "ok" {
		return fmt.Errorf("unexpected webhook response %s: %s", resp.Status, strings.TrimSpace(string(reply)))
	}

	if n.logger != nil {
		n.logger.Info("slack message sent", "papers", len(papers))
	}
	return nil
}
