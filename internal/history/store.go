// Package history records every notification attempt in the delivery log.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/CosmoTheDev/qgnotify/internal/database"
	"github.com/CosmoTheDev/qgnotify/models"
)

const (
	table        = "deliveries"
	defaultLimit = 50
	maxLimit     = 500
)

// Store reads and writes the delivery log.
type Store struct {
	db  database.DB
	now func() time.Time
}

// NewStore returns a Store backed by db. db must already be migrated.
func NewStore(db database.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record appends d to the log, stamping CreatedAt when unset.
func (s *Store) Record(ctx context.Context, d models.Delivery) (int64, error) {
	if d.CreatedAt == "" {
		d.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	d.ID = 0
	id, err := s.db.Insert(ctx, table, d)
	if err != nil {
		return 0, fmt.Errorf("history: record delivery: %w", err)
	}
	return id, nil
}

// List returns the most recent deliveries, newest first. An empty projectKey
// lists all projects. limit <= 0 uses the default page size.
func (s *Store) List(ctx context.Context, projectKey string, limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	query := `SELECT id, project_key, channel, notifier, gate_status, outcome, error_msg, created_at
		FROM deliveries`
	var args []any
	if projectKey != "" {
		query += " WHERE project_key = ?"
		args = append(args, projectKey)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	out := []models.Delivery{}
	if err := s.db.Select(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("history: list deliveries: %w", err)
	}
	return out, nil
}

// Prune deletes deliveries older than retention and returns how many rows
// were removed. retention <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention).UTC().Format(time.RFC3339)
	n, err := s.db.Exec(ctx, "DELETE FROM deliveries WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: prune deliveries: %w", err)
	}
	return n, nil
}
