package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// SlackNotifier posts SlackActions to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a SlackNotifier. An empty webhookURL is allowed
// and makes every post fail with a configuration message.
func NewSlackNotifier(webhookURL string, client *http.Client) *SlackNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &SlackNotifier{webhookURL: webhookURL, client: client}
}

// Configured reports whether a webhook URL is set.
func (n *SlackNotifier) Configured() bool {
	return n.webhookURL != ""
}

// Notify posts a. It never returns an error; the outcome is in the result.
func (n *SlackNotifier) Notify(ctx context.Context, a SlackAction) (bool, string) {
	if !n.Configured() {
		return false, "Slack Webhook URL is not configured (set SLACK_WEBHOOK_URL)."
	}
	if a.Message == "" {
		return false, "No message provided for Slack notification."
	}

	msg := &slack.WebhookMessage{Text: a.Message, Channel: a.Channel}
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, msg); err != nil {
		var statusErr slack.StatusCodeError
		if errors.As(err, &statusErr) {
			return false, fmt.Sprintf("Failed to send Slack notification: webhook returned HTTP %d", statusErr.Code)
		}
		return false, fmt.Sprintf("Failed to send Slack notification: %v", err)
	}
	return true, "Slack notification sent successfully."
}
