package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".qgnotify"
	DefaultConfigFile = "config.json"
	DefaultDBFile     = ".qgnotify/qgnotify.db"
	DefaultI18nDir    = ".qgnotify/i18n"

	DefaultServerPort = 6090

	envPrefix = "QGNOTIFY"
)

// Load reads the config file and returns a populated Config. A missing file
// is not an error; defaults and QGNOTIFY_* environment variables apply.
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}
	for key, val := range defaults(home) {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Database.Path = expandHome(cfg.Database.Path, home)
	cfg.I18n.Dir = expandHome(cfg.I18n.Dir, home)
	return &cfg, nil
}

// defaults lists every key that has a non-zero out-of-the-box value. Keys
// must be registered for AutomaticEnv to see them during Unmarshal, so the
// empty secrets are listed too.
func defaults(home string) map[string]any {
	return map[string]any{
		"slack.webhook_url":      "",
		"slack.username":         "SonarQube",
		"slack.default_channel":  "",
		"webhook.url":            "",
		"webhook.secret":         "",
		"telegram.bot_token":     "",
		"telegram.chat_id":       "",
		"email.password":         "",
		"sonar.base_url":         "",
		"sonar.webhook_secret":   "",
		"server.port":            DefaultServerPort,
		"server.bind":            "127.0.0.1",
		"database.driver":        "sqlite",
		"database.path":          filepath.Join(home, DefaultDBFile),
		"database.dsn":           "",
		"i18n.dir":               filepath.Join(home, DefaultI18nDir),
		"history.retention_days": 30,
		"history.prune_schedule": "@daily",
	}
}

// Validate reports settings that would make every delivery fail.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Slack.Username) == "" {
		errs = append(errs, errors.New("slack.username is required"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Database.Driver == "mysql" && c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required for the mysql driver"))
	}
	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		switch {
		case p.ProjectKey == "":
			errs = append(errs, fmt.Errorf("projects[%d]: project_key is required", i))
		case seen[p.ProjectKey]:
			errs = append(errs, fmt.Errorf("projects[%d]: duplicate project_key %q", i, p.ProjectKey))
		}
		seen[p.ProjectKey] = true
	}
	return errors.Join(errs...)
}

// Save writes the config to disk as indented JSON, readable only by the owner.
func Save(cfg *Config, configPath string) error {
	if configPath == "" {
		p, err := ConfigPath("")
		if err != nil {
			return err
		}
		configPath = p
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	return os.WriteFile(configPath, data, 0o600)
}

// ConfigPath returns the effective config file path.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// EnsureDir creates ~/.qgnotify and its i18n override directory.
func EnsureDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	for _, d := range []string{DefaultConfigDir, DefaultI18nDir} {
		if err := os.MkdirAll(filepath.Join(home, d), 0o700); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
