package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/CosmoTheDev/qgnotify/internal/payload"
	"github.com/CosmoTheDev/qgnotify/internal/sonar"
	"github.com/CosmoTheDev/qgnotify/models"
)

// buildHandler wires the REST and SSE routes onto a new ServeMux.
func buildHandler(s *Server) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/webhooks/sonarqube", s.handleSonarWebhook)
	mux.HandleFunc("GET /api/deliveries", s.handleListDeliveries)

	mux.HandleFunc("GET /events", s.handleEvents)

	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   "qgnotify",
		"status": "running",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		"endpoints": []string{
			"GET /health",
			"POST /api/webhooks/sonarqube",
			"GET /api/deliveries?project=&limit=",
			"GET /events",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSonarWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	if err := sonar.Verify(body, s.cfg.Sonar.WebhookSecret, r.Header.Get(sonar.SignatureHeader)); err != nil {
		slog.Warn("server: rejected webhook", "remote", r.RemoteAddr, "error", err)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	analysis, err := sonar.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.relay.Handle(r.Context(), analysis)
	if err != nil {
		if errors.Is(err, payload.ErrInvalidConfiguration) {
			slog.Warn("server: cannot build notification", "project", analysis.Project.Key, "error", err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := webhookResponse{
		Status:  outcomeStatus(out.Result.Skipped, out.Result.Sent, out.Result.Failed),
		Project: analysis.Project.Key,
		Channel: out.Project.Channel,
		Sent:    out.Result.Sent,
		Failed:  out.Result.Failed,
	}
	s.broadcaster.send(Event{Type: "delivery." + resp.Status, Payload: map[string]any{
		"project": resp.Project,
		"channel": resp.Channel,
		"gate":    gateStatus(analysis),
		"sent":    resp.Sent,
		"failed":  resp.Failed,
	}})
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.List(r.Context(), r.URL.Query().Get("project"), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleEvents streams delivery events as SSE. Clients get a "connected"
// event immediately, then live updates.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := s.broadcaster.subscribe()
	defer s.broadcaster.unsubscribe(ch)

	connected, err := sseFrame(Event{Type: "connected", Payload: map[string]string{"started_at": s.startedAt.UTC().Format(time.RFC3339)}})
	if err != nil {
		return
	}
	_, _ = w.Write(connected)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame := <-ch:
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// outcomeStatus summarises a dispatch for the webhook response.
func outcomeStatus(skipped bool, sent, failed int) string {
	switch {
	case skipped, sent+failed == 0:
		return models.DeliverySkipped
	case sent == 0 && failed > 0:
		return models.DeliveryFailed
	default:
		return models.DeliverySent
	}
}

func gateStatus(analysis *models.AnalysisResult) string {
	if analysis.QualityGate == nil {
		return ""
	}
	return analysis.QualityGate.Status.String()
}
