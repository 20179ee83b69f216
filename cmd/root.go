package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "qgnotify",
	Short: "Relay SonarQube quality gate results to Slack",
	Long: `qgnotify receives SonarQube "analysis finished" webhooks and posts a
colour-coded quality gate summary to Slack, with optional copies to a
generic webhook, Telegram or email.

Get started:
  qgnotify config init    Interactive setup
  qgnotify doctor         Verify configuration and storage
  qgnotify preview -f a.json
                          Render the message for a saved webhook body
  qgnotify serve          Start the webhook receiver
  qgnotify ui             Browse recent deliveries`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.qgnotify/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		serveCmd,
		sendCmd,
		previewCmd,
		historyCmd,
		configCmd,
		doctorCmd,
		uiCmd,
	)
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	slog.SetDefault(slog.New(handler))
	slog.Debug("Verbose logging enabled")
}
