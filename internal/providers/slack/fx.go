package slack

import (
	"github.com/smallbiznis/bookneo/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.slack",
	fx.Provide(NewFromConfig),
)

// NewFromConfig returns a webhook poster, or a no-op one when SLACK_WEBHOOK_URL is unset.
func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.Slack.WebhookURL == "" {
		log.Named("providers.slack").Info("SLACK_WEBHOOK_URL not set; payment anomalies are logged only")
		return &NoOpProvider{}
	}
	return NewWebhook(cfg.Slack.WebhookURL, nil)
}
