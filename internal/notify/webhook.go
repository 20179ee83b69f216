package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/models"
)

// SignatureHeader carries "sha256=" plus the hex HMAC-SHA256 of the body.
const SignatureHeader = "X-Qgnotify-Signature"

// WebhookChannel forwards payloads to a generic HTTP endpoint, signing the
// body when a secret is configured.
type WebhookChannel struct {
	cfg    config.WebhookConfig
	client *http.Client
	now    func() time.Time
}

// webhookEnvelope is the body posted to generic webhooks.
type webhookEnvelope struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel"`
	Text    string          `json:"text"`
	Payload *models.Payload `json:"payload"`
	TS      string          `json:"ts"`
}

// NewWebhook creates a WebhookChannel from cfg.
func NewWebhook(cfg config.WebhookConfig) *WebhookChannel {
	return &WebhookChannel{cfg: cfg, client: newHTTPClient(), now: time.Now}
}

func (w *WebhookChannel) Name() string       { return "webhook" }
func (w *WebhookChannel) IsConfigured() bool { return w.cfg.URL != "" }

func (w *WebhookChannel) Send(ctx context.Context, p *models.Payload) error {
	env := webhookEnvelope{
		Type:    "quality_gate",
		Channel: p.Channel,
		Text:    p.Text,
		Payload: p,
		TS:      w.now().UTC().Format(time.RFC3339),
	}
	var sign func(http.Header, []byte)
	if w.cfg.Secret != "" {
		sign = func(h http.Header, raw []byte) { h.Set(SignatureHeader, "sha256="+Sign(w.cfg.Secret, raw)) }
	}
	return postJSON(ctx, w.client, "webhook", w.cfg.URL, env, sign)
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
