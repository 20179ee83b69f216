package config

import "github.com/CosmoTheDev/qgnotify/models"

// Config is the root configuration structure for qgnotify.
// Serialised to ~/.qgnotify/config.json.
type Config struct {
	Slack    SlackConfig            `mapstructure:"slack"    json:"slack"`
	Webhook  WebhookConfig          `mapstructure:"webhook"  json:"webhook"`
	Telegram TelegramConfig         `mapstructure:"telegram" json:"telegram"`
	Email    EmailConfig            `mapstructure:"email"    json:"email"`
	Sonar    SonarConfig            `mapstructure:"sonar"    json:"sonar"`
	Server   ServerConfig           `mapstructure:"server"   json:"server"`
	Database DatabaseConfig         `mapstructure:"database" json:"database"`
	I18n     I18nConfig             `mapstructure:"i18n"     json:"i18n"`
	History  HistoryConfig          `mapstructure:"history"  json:"history"`
	Projects []models.ProjectConfig `mapstructure:"projects" json:"projects"`
}

// SlackConfig controls delivery to a Slack incoming webhook.
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
	// Username is the display name the message is posted as.
	Username string `mapstructure:"username" json:"username"`
	// DefaultChannel is used for projects without an entry in Projects.
	DefaultChannel string `mapstructure:"default_channel" json:"default_channel"`
}

// WebhookConfig controls the optional generic JSON webhook.
type WebhookConfig struct {
	URL string `mapstructure:"url" json:"url"`
	// Secret signs the request body (HMAC-SHA256) when set.
	Secret string `mapstructure:"secret" json:"secret"`
}

// TelegramConfig controls delivery through a Telegram bot.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" json:"bot_token"`
	ChatID   string `mapstructure:"chat_id"   json:"chat_id"`
}

// EmailConfig controls delivery over SMTP.
type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host" json:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" json:"smtp_port"`
	Username string `mapstructure:"username"  json:"username"`
	Password string `mapstructure:"password"  json:"password"`
	From     string `mapstructure:"from"      json:"from"`
	To       string `mapstructure:"to"        json:"to"`
	UseTLS   bool   `mapstructure:"use_tls"   json:"use_tls"`
}

// SonarConfig describes the analysis host that calls us.
type SonarConfig struct {
	// BaseURL builds project dashboard links when the webhook carries none.
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	// WebhookSecret verifies X-Sonar-Webhook-HMAC-SHA256 when set.
	WebhookSecret string `mapstructure:"webhook_secret" json:"webhook_secret"`
}

// ServerConfig controls the webhook receiver.
type ServerConfig struct {
	// Port is the HTTP port the receiver listens on (default: 6090).
	Port int `mapstructure:"port" json:"port"`
	// Bind is the listen address (default: 127.0.0.1).
	Bind string `mapstructure:"bind" json:"bind"`
}

// DatabaseConfig controls the delivery log backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string `mapstructure:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path"   json:"path"`
	// DSN is the MySQL data source name (used when Driver == "mysql").
	DSN string `mapstructure:"dsn"    json:"dsn"`
}

// I18nConfig controls metric display names.
type I18nConfig struct {
	// Dir holds <locale>.yaml overrides of the bundled names.
	Dir string `mapstructure:"dir" json:"dir"`
}

// HistoryConfig controls delivery log retention.
type HistoryConfig struct {
	RetentionDays int    `mapstructure:"retention_days" json:"retention_days"`
	PruneSchedule string `mapstructure:"prune_schedule" json:"prune_schedule"`
}

// Project returns the notification settings for projectKey. Projects without
// an explicit entry use the Slack default channel and are never fail-only.
func (c *Config) Project(projectKey string) *models.ProjectConfig {
	for i := range c.Projects {
		if c.Projects[i].ProjectKey == projectKey {
			p := c.Projects[i]
			if p.Channel == "" {
				p.Channel = c.Slack.DefaultChannel
			}
			return &p
		}
	}
	return &models.ProjectConfig{
		ProjectKey: projectKey,
		Channel:    c.Slack.DefaultChannel,
	}
}
