package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CosmoTheDev/qgnotify/models"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Slack.Username != "SonarQube" {
		t.Errorf("Slack.Username = %q, want SonarQube", cfg.Slack.Username)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if want := filepath.Join(home, DefaultDBFile); cfg.Database.Path != want {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, want)
	}
	if cfg.History.RetentionDays != 30 || cfg.History.PruneSchedule != "@daily" {
		t.Errorf("unexpected history defaults: %+v", cfg.History)
	}
}

func TestLoadFileAndProjects(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
  "slack": {"webhook_url": "https://hooks.slack.test/x", "default_channel": "#quality"},
  "database": {"path": "~/data/qg.db"},
  "projects": [
    {"project_key": "widgets", "channel": "#widgets", "qg_fail_only": true},
    {"project_key": "gadgets"}
  ]
}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Slack.WebhookURL != "https://hooks.slack.test/x" {
		t.Errorf("WebhookURL = %q", cfg.Slack.WebhookURL)
	}
	if want := filepath.Join(home, "data/qg.db"); cfg.Database.Path != want {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, want)
	}

	tests := []struct {
		key      string
		channel  string
		failOnly bool
	}{
		{key: "widgets", channel: "#widgets", failOnly: true},
		{key: "gadgets", channel: "#quality"},
		{key: "unknown", channel: "#quality"},
	}
	for _, tt := range tests {
		p := cfg.Project(tt.key)
		if p.ProjectKey != tt.key || p.Channel != tt.channel || p.QGFailOnly != tt.failOnly {
			t.Errorf("Project(%q) = %+v", tt.key, p)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := &Config{}
	cfg.Slack.WebhookURL = "https://hooks.slack.test/y"
	cfg.Slack.Username = "qg-bot"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Slack.Username != "qg-bot" || loaded.Slack.WebhookURL != cfg.Slack.WebhookURL {
		t.Errorf("round trip lost values: %+v", loaded.Slack)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QGNOTIFY_SLACK_DEFAULT_CHANNEL", "#from-env")
	t.Setenv("QGNOTIFY_SERVER_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Slack.DefaultChannel != "#from-env" || cfg.Server.Port != 7070 {
		t.Fatalf("env not applied: channel=%q port=%d", cfg.Slack.DefaultChannel, cfg.Server.Port)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no username", mutate: func(c *Config) { c.Slack.Username = "" }, wantErr: "slack.username"},
		{name: "mysql without dsn", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database.dsn"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{
			name: "duplicate project",
			mutate: func(c *Config) {
				c.Projects = append(c.Projects, c.Projects[0])
			},
			wantErr: "duplicate project_key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Slack.Username = "SonarQube"
			cfg.Server.Port = DefaultServerPort
			cfg.Projects = []models.ProjectConfig{{ProjectKey: "widgets", Channel: "#w"}}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
