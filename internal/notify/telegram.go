package notify

import (
	"context"
	"net/http"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/models"
)

const (
	telegramAPIBase = "https://api.telegram.org"
	telegramMaxText = 4096
)

// TelegramChannel sends the plain-text rendering of a payload through the
// Telegram Bot API.
type TelegramChannel struct {
	cfg     config.TelegramConfig
	client  *http.Client
	apiBase string
}

// NewTelegram creates a TelegramChannel from cfg.
func NewTelegram(cfg config.TelegramConfig) *TelegramChannel {
	return &TelegramChannel{cfg: cfg, client: newHTTPClient(), apiBase: telegramAPIBase}
}

func (t *TelegramChannel) Name() string       { return "telegram" }
func (t *TelegramChannel) IsConfigured() bool { return t.cfg.BotToken != "" && t.cfg.ChatID != "" }

func (t *TelegramChannel) Send(ctx context.Context, p *models.Payload) error {
	text := []rune(PlainText(p))
	if len(text) > telegramMaxText {
		text = append(text[:telegramMaxText-1], '…')
	}
	msg := map[string]any{
		"chat_id":                  t.cfg.ChatID,
		"text":                     string(text),
		"disable_web_page_preview": true,
	}
	return postJSON(ctx, t.client, "telegram", t.apiBase+"/bot"+t.cfg.BotToken+"/sendMessage", msg, nil)
}
