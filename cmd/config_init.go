package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup of Slack, SonarQube and receiver settings",
	Long: `Walks through the settings qgnotify needs to run and writes them to the
config file. Existing values are offered as defaults; per-project channel
mappings are edited in the file directly ('qgnotify config edit').`,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	fmt.Println()
	fmt.Println(headerStyle.Render("  qgnotify setup"))
	fmt.Println(dimStyle.Render("  SonarQube quality gate notifications for Slack.\n"))

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var (
		slackURL      = cfg.Slack.WebhookURL
		username      = cfg.Slack.Username
		channel       = cfg.Slack.DefaultChannel
		sonarURL      = cfg.Sonar.BaseURL
		sonarSecret   = cfg.Sonar.WebhookSecret
		portStr       = strconv.Itoa(cfg.Server.Port)
		retentionStr  = strconv.Itoa(cfg.History.RetentionDays)
		webhookURL    = cfg.Webhook.URL
		webhookSecret = cfg.Webhook.Secret
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Slack Webhook URL").
				Placeholder("https://hooks.slack.com/services/...").
				EchoMode(huh.EchoModePassword).
				Value(&slackURL),
			huh.NewInput().
				Title("Post as").
				Description("Display name of the notification").
				Value(&username).
				Validate(requireText("username")),
			huh.NewInput().
				Title("Default Channel").
				Description("Used for projects without their own mapping").
				Placeholder("#quality").
				Value(&channel),
		).Title("Slack"),
		huh.NewGroup(
			huh.NewInput().
				Title("SonarQube Base URL").
				Description("Builds dashboard links when a webhook carries none").
				Placeholder("https://sonar.example.com").
				Value(&sonarURL),
			huh.NewInput().
				Title("SonarQube Webhook Secret").
				Description("Leave empty to accept unsigned webhooks").
				EchoMode(huh.EchoModePassword).
				Value(&sonarSecret),
		).Title("SonarQube"),
		huh.NewGroup(
			huh.NewInput().
				Title("Receiver Port").
				Value(&portStr).
				Validate(positiveInt),
			huh.NewInput().
				Title("Keep delivery history (days)").
				Description("0 keeps everything").
				Value(&retentionStr).
				Validate(nonNegativeInt),
			huh.NewInput().
				Title("Generic Webhook URL (optional)").
				Placeholder("https://your-endpoint.com/webhook").
				Value(&webhookURL),
			huh.NewInput().
				Title("Generic Webhook Secret (optional)").
				Placeholder("HMAC signing key").
				EchoMode(huh.EchoModePassword).
				Value(&webhookSecret),
		).Title("Receiver"),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Slack.WebhookURL = strings.TrimSpace(slackURL)
	cfg.Slack.Username = strings.TrimSpace(username)
	cfg.Slack.DefaultChannel = strings.TrimSpace(channel)
	cfg.Sonar.BaseURL = strings.TrimSpace(sonarURL)
	cfg.Sonar.WebhookSecret = strings.TrimSpace(sonarSecret)
	cfg.Server.Port = parseIntOrDefault(portStr, config.DefaultServerPort)
	cfg.History.RetentionDays = parseIntOrDefault(retentionStr, 30)
	cfg.Webhook.URL = strings.TrimSpace(webhookURL)
	cfg.Webhook.Secret = strings.TrimSpace(webhookSecret)

	if err := config.EnsureDir(); err != nil {
		return err
	}
	configPath, err := config.ConfigPath(cfgFile)
	if err != nil {
		return fmt.Errorf("getting config path: %w", err)
	}
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println(successStyle.Render("  ✓ Configuration saved to " + configPath))
	fmt.Println(dimStyle.Render("  Run 'qgnotify doctor' to verify, then 'qgnotify serve'."))
	return nil
}

func requireText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter zero or a positive number")
	}
	return nil
}

func parseIntOrDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
