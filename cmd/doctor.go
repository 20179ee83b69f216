package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/database"
	"github.com/CosmoTheDev/qgnotify/internal/i18n"
	"github.com/CosmoTheDev/qgnotify/internal/notify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify configuration, storage and channels",
	Long: `Checks that the database can be reached, metric names load, at least one
notification channel is configured, every project has a channel and the
prune schedule parses.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	allOK := true

	fmt.Println("=== qgnotify doctor ===")
	fmt.Println()

	fmt.Print("Config ................... ")
	if err := cfg.Validate(); err != nil {
		fmt.Printf("FAIL (%s)\n", strings.ReplaceAll(err.Error(), "\n", "; "))
		allOK = false
	} else {
		path, _ := config.ConfigPath(cfgFile)
		fmt.Printf("OK (%s)\n", path)
	}

	fmt.Print("Database ................. ")
	db, err := database.New(cfg.Database)
	if err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		if err := db.Ping(ctx); err != nil {
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		} else {
			fmt.Printf("OK (%s)\n", db.Driver())
		}
		db.Close()
	}

	fmt.Print("Metric names ............. ")
	if catalog, err := loadCatalog(cfg); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%d names, locales %v)\n", catalog.Len(i18n.DefaultLocale), catalog.Locales())
	}

	fmt.Print("Channels ................. ")
	dispatcher := notify.NewDispatcher(cfg, nil)
	if !dispatcher.IsAnyConfigured() {
		fmt.Println("WARN (none configured: run 'qgnotify config init')")
		allOK = false
	} else {
		fmt.Printf("OK (%v)\n", dispatcher.Channels())
	}

	fmt.Print("Post as .................. ")
	if cfg.Slack.Username == "" {
		fmt.Println("FAIL (slack.username is empty)")
		allOK = false
	} else {
		fmt.Printf("OK (%s)\n", cfg.Slack.Username)
	}

	fmt.Print("Webhook signature ........ ")
	if cfg.Sonar.WebhookSecret == "" {
		fmt.Println("WARN (sonar.webhook_secret not set; unsigned webhooks accepted)")
	} else {
		fmt.Println("OK")
	}

	fmt.Print("Prune schedule ........... ")
	if cfg.History.RetentionDays <= 0 {
		fmt.Println("disabled (history kept forever)")
	} else if _, err := cron.ParseStandard(cfg.History.PruneSchedule); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%s, keep %d days)\n", cfg.History.PruneSchedule, cfg.History.RetentionDays)
	}

	fmt.Println()
	fmt.Println("Projects:")
	if cfg.Slack.DefaultChannel != "" {
		fmt.Printf("  %-24s ... %s\n", "(default)", cfg.Slack.DefaultChannel)
	}
	if len(cfg.Projects) == 0 && cfg.Slack.DefaultChannel == "" {
		fmt.Println("  none: every analysis will be rejected until a channel is configured")
		allOK = false
	}
	for _, p := range cfg.Projects {
		eff := cfg.Project(p.ProjectKey)
		fmt.Printf("  %-24s ... ", p.ProjectKey)
		switch {
		case eff.Channel == "":
			fmt.Println("FAIL (no channel)")
			allOK = false
		case eff.QGFailOnly:
			fmt.Printf("OK (%s, failures only)\n", eff.Channel)
		default:
			fmt.Printf("OK (%s)\n", eff.Channel)
		}
	}

	fmt.Println()
	if allOK {
		fmt.Println(successStyle.Render("All checks passed: qgnotify is ready!"))
	} else {
		fmt.Println(warnStyle.Render("Some checks failed: run 'qgnotify config init' to fix."))
	}
	return nil
}
