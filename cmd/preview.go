package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/preview"
	"github.com/CosmoTheDev/qgnotify/internal/relay"
	"github.com/CosmoTheDev/qgnotify/models"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var (
	previewFile   string
	previewOutput string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the notification for a saved webhook body",
	Long: `Builds the notification for a SonarQube webhook body without sending it.

Output formats:
  text   coloured terminal rendering (default)
  json   the exact Slack payload
  yaml   the payload as YAML`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "webhook body JSON file (\"-\" for stdin)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "text", "output format: text, json or yaml")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	analysis, err := readAnalysis(previewFile)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	_, p, err := relay.New(cfg, catalog, nil).Build(analysis)
	if err != nil {
		return err
	}
	return writePayload(os.Stdout, p, previewOutput)
}

func writePayload(w io.Writer, p *models.Payload, format string) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprintln(w, preview.Render(p))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (valid: text, json, yaml)", format)
	}
}
