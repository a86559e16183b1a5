package slack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	slackapi "github.com/slack-go/slack"
)

// WebhookProvider posts to a Slack incoming webhook.
type WebhookProvider struct {
	url        string
	httpClient *http.Client
}

func NewWebhook(url string, httpClient *http.Client) *WebhookProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &WebhookProvider{url: url, httpClient: httpClient}
}

func (p *WebhookProvider) PostMessage(ctx context.Context, channelID string, message string) error {
	msg := &slackapi.WebhookMessage{
		Channel: channelID,
		Text:    message,
	}
	if err := slackapi.PostWebhookCustomHTTPContext(ctx, p.url, p.httpClient, msg); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}
