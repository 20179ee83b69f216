package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/notify"
	"github.com/CosmoTheDev/qgnotify/internal/relay"
	"github.com/spf13/cobra"
)

var (
	sendFile   string
	sendDryRun bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the notification for a saved webhook body",
	Long: `Reads a SonarQube webhook body from --file ("-" for stdin), builds the
notification and delivers it to every configured channel, exactly as the
receiver would. With --dry-run the payload is printed instead of sent.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "webhook body JSON file (\"-\" for stdin)")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "print the payload instead of sending it")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	analysis, err := readAnalysis(sendFile)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if sendDryRun {
		_, p, err := relay.New(cfg, catalog, nil).Build(analysis)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	db, store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	dispatcher := notify.NewDispatcher(cfg, store)
	if !dispatcher.IsAnyConfigured() {
		return fmt.Errorf("no notification channel configured (run 'qgnotify config init')")
	}

	out, err := relay.New(cfg, catalog, dispatcher).Handle(ctx, analysis)
	if err != nil {
		return err
	}
	switch {
	case out.Result.Skipped:
		fmt.Println(dimStyle.Render(fmt.Sprintf("  Skipped: %s is fail-only and the gate passed.", analysis.Project.Key)))
	case out.Result.Failed > 0:
		fmt.Println(warnStyle.Render(fmt.Sprintf("  Sent to %d channel(s), %d failed (see 'qgnotify history').", out.Result.Sent, out.Result.Failed)))
	default:
		fmt.Println(successStyle.Render(fmt.Sprintf("  ✓ Sent to %s via %d channel(s)", out.Project.Channel, out.Result.Sent)))
	}
	return nil
}
