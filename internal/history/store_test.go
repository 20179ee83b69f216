package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/database"
	"github.com/CosmoTheDev/qgnotify/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewSQLite(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "history-test.db")})
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return NewStore(db)
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []models.Delivery{
		{ProjectKey: "widgets", Channel: "#w", Notifier: "slack", GateStatus: "FAIL", Outcome: models.DeliverySent},
		{ProjectKey: "gadgets", Channel: "#g", Notifier: "slack", GateStatus: "PASS", Outcome: models.DeliverySkipped},
		{ProjectKey: "widgets", Channel: "#w", Notifier: "webhook", GateStatus: "FAIL", Outcome: models.DeliveryFailed, ErrorMsg: "boom"},
	}
	for i, d := range seed {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		if _, err := s.Record(ctx, d); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(all))
	}
	if all[0].Notifier != "webhook" || all[0].ErrorMsg != "boom" {
		t.Fatalf("expected newest first, got %+v", all[0])
	}

	widgets, err := s.List(ctx, "widgets", 1)
	if err != nil {
		t.Fatalf("List(widgets) error = %v", err)
	}
	if len(widgets) != 1 || widgets[0].ProjectKey != "widgets" || widgets[0].Outcome != models.DeliveryFailed {
		t.Fatalf("unexpected filtered list: %+v", widgets)
	}

	none, err := s.List(ctx, "nobody", 10)
	if err != nil {
		t.Fatalf("List(nobody) error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestPruneRemovesOnlyOldRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, 2 * 24 * time.Hour} {
		d := models.Delivery{
			ProjectKey: "widgets",
			Outcome:    models.DeliverySent,
			CreatedAt:  now.Add(-age).Format(time.RFC3339),
		}
		if _, err := s.Record(ctx, d); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	s.now = func() time.Time { return now }
	n, err := s.Prune(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Prune() removed %d rows, want 2", n)
	}
	left, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("expected 1 remaining delivery, got %d", len(left))
	}

	if n, err := s.Prune(ctx, 0); err != nil || n != 0 {
		t.Fatalf("Prune(0) = %d, %v; want 0, nil", n, err)
	}
}
