package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/database"
	"github.com/CosmoTheDev/qgnotify/internal/history"
	"github.com/CosmoTheDev/qgnotify/internal/i18n"
	"github.com/CosmoTheDev/qgnotify/internal/sonar"
	"github.com/CosmoTheDev/qgnotify/models"
)

// openHistory opens and migrates the delivery log database.
func openHistory(ctx context.Context, cfg *config.Config) (database.DB, *history.Store, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, history.NewStore(db), nil
}

func loadCatalog(cfg *config.Config) (*i18n.Catalog, error) {
	catalog, err := i18n.Load(cfg.I18n.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading metric names: %w", err)
	}
	return catalog, nil
}

// readAnalysis decodes a saved SonarQube webhook body from path ("-" for stdin).
func readAnalysis(path string) (*models.AnalysisResult, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	var (
		body []byte
		err  error
	)
	if path == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sonar.Decode(body)
}
