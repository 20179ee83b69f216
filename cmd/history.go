package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/models"
	"github.com/spf13/cobra"
)

var (
	historyProject string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent deliveries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		db, store, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := store.List(ctx, historyProject, historyLimit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No deliveries recorded yet.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tPROJECT\tGATE\tCHANNEL\tNOTIFIER\tOUTCOME")
		for _, d := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				d.CreatedAt, d.ProjectKey, orDash(d.GateStatus), d.Channel, orDash(d.Notifier), outcomeLabel(d))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyProject, "project", "p", "", "only show deliveries for this project key")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum rows to show")
}

func outcomeLabel(d models.Delivery) string {
	if d.Outcome == models.DeliveryFailed && d.ErrorMsg != "" {
		return d.Outcome + ": " + d.ErrorMsg
	}
	return d.Outcome
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
