// Package server is the long-running receiver: it accepts SonarQube
// webhooks over HTTP, relays them to the notification channels, streams
// delivery events over SSE and prunes the delivery log on a schedule.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/history"
	"github.com/CosmoTheDev/qgnotify/internal/relay"
)

// Server combines the webhook receiver, the delivery API and the pruner.
type Server struct {
	cfg         *config.Config
	store       *history.Store
	relay       *relay.Relay
	broadcaster *Broadcaster
	pruner      *Pruner
	startedAt   time.Time
}

// New creates a Server. Call Start to begin serving.
func New(cfg *config.Config, store *history.Store, r *relay.Relay) *Server {
	b := newBroadcaster()
	return &Server{
		cfg:         cfg,
		store:       store,
		relay:       r,
		broadcaster: b,
		pruner:      newPruner(cfg.History.PruneSchedule, cfg.History.RetentionDays, store.Prune, b.send),
		startedAt:   time.Now(),
	}
}

// Addr returns the listen address derived from the server config.
func (s *Server) Addr() string {
	bind := s.cfg.Server.Bind
	if bind == "" {
		bind = "127.0.0.1"
	}
	port := s.cfg.Server.Port
	if port == 0 {
		port = config.DefaultServerPort
	}
	return fmt.Sprintf("%s:%d", bind, port)
}

// Handler returns the HTTP routes without starting a listener.
func (s *Server) Handler() http.Handler {
	return buildHandler(s)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.pruner.Start(); err != nil {
		return fmt.Errorf("starting pruner: %w", err)
	}

	addr := s.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           buildHandler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.pruner.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server: listening", "addr", "http://"+addr)
	s.broadcaster.send(Event{Type: "server.started", Payload: map[string]string{"addr": "http://" + addr}})

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.pruner.Stop()
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
