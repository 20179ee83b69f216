package notify

import (
	"context"
	"net/http"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/models"
)

// SlackChannel posts payloads unchanged to a Slack incoming webhook.
type SlackChannel struct {
	cfg    config.SlackConfig
	client *http.Client
}

// NewSlack creates a SlackChannel from cfg.
func NewSlack(cfg config.SlackConfig) *SlackChannel {
	return &SlackChannel{cfg: cfg, client: newHTTPClient()}
}

func (s *SlackChannel) Name() string       { return "slack" }
func (s *SlackChannel) IsConfigured() bool { return s.cfg.WebhookURL != "" }

func (s *SlackChannel) Send(ctx context.Context, p *models.Payload) error {
	return postJSON(ctx, s.client, "slack", s.cfg.WebhookURL, p, nil)
}
