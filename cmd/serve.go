package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/notify"
	"github.com/CosmoTheDev/qgnotify/internal/relay"
	"github.com/CosmoTheDev/qgnotify/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SonarQube webhook receiver",
	Long: `Starts a long-running HTTP receiver. Point a SonarQube project or global
webhook at /api/webhooks/sonarqube and every finished analysis is posted
to the configured channels.

Quick API reference:
  GET  /health                       liveness check
  POST /api/webhooks/sonarqube       SonarQube webhook target
  GET  /api/deliveries               recent deliveries (?project=&limit=)
  GET  /events                       SSE stream of delivery events

The delivery log is pruned on history.prune_schedule (default "@daily"),
keeping history.retention_days days (default 30).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		fmt.Sprintf("HTTP port to listen on (default %d, overrides config)", config.DefaultServerPort))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	db, store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(cfg, store)
	if !dispatcher.IsAnyConfigured() {
		fmt.Println(warnStyle.Render("  No notification channel configured; deliveries will only be logged."))
	}

	srv := server.New(cfg, store, relay.New(cfg, catalog, dispatcher))

	fmt.Printf("qgnotify receiver starting\n")
	fmt.Printf("  Webhook   : http://%s/api/webhooks/sonarqube\n", srv.Addr())
	fmt.Printf("  Events    : http://%s/events\n", srv.Addr())
	fmt.Printf("  Channels  : %v\n", dispatcher.Channels())
	fmt.Printf("  Database  : %s\n\n", db.Driver())
	fmt.Println("Press Ctrl+C to stop gracefully.")
	fmt.Println()

	return srv.Start(ctx)
}
