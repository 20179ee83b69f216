package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// pruneFunc deletes delivery rows older than the retention window.
type pruneFunc func(ctx context.Context, retention time.Duration) (int64, error)

// Pruner runs delivery-log retention on a cron schedule.
type Pruner struct {
	cron      *cron.Cron
	expr      string
	retention time.Duration
	prune     pruneFunc
	broadcast func(Event)
}

func newPruner(expr string, retentionDays int, prune pruneFunc, broadcast func(Event)) *Pruner {
	if expr == "" {
		expr = "@daily"
	}
	return &Pruner{
		cron:      cron.New(),
		expr:      expr,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		prune:     prune,
		broadcast: broadcast,
	}
}

// Start registers the prune job and starts the cron runner. A zero
// retention disables pruning entirely.
func (p *Pruner) Start() error {
	if p.retention <= 0 {
		slog.Info("server: delivery pruning disabled")
		return nil
	}
	if _, err := p.cron.AddFunc(p.expr, func() { p.run(context.Background()) }); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.expr, err)
	}
	p.cron.Start()
	slog.Info("server: delivery pruning scheduled", "expr", p.expr, "retention", p.retention)
	return nil
}

// Stop halts the cron runner and waits for a running prune to finish.
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Pruner) run(ctx context.Context) {
	n, err := p.prune(ctx, p.retention)
	if err != nil {
		slog.Warn("server: pruning deliveries failed", "error", err)
		return
	}
	slog.Info("server: pruned deliveries", "removed", n)
	if p.broadcast != nil {
		p.broadcast(Event{Type: "deliveries.pruned", Payload: map[string]int64{"removed": n}})
	}
}
