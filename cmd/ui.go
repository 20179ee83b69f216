package cmd

import (
	"context"
	"fmt"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/tui"
	"github.com/spf13/cobra"
)

var uiProject string

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Browse the delivery log in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		db, store, err := openHistory(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return tui.NewApp(store, uiProject).Run()
	},
}

func init() {
	uiCmd.Flags().StringVarP(&uiProject, "project", "p", "", "only show deliveries for this project key")
}
