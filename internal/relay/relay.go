// Package relay wires an analysis result through project lookup, payload
// building and delivery.
package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/notify"
	"github.com/CosmoTheDev/qgnotify/internal/payload"
	"github.com/CosmoTheDev/qgnotify/internal/sonar"
	"github.com/CosmoTheDev/qgnotify/models"
)

// Sender delivers a built payload.
type Sender interface {
	Notify(ctx context.Context, analysis *models.AnalysisResult, project *models.ProjectConfig, p *models.Payload) notify.Result
}

// Relay turns analyses into notifications. It is safe for concurrent use;
// every call builds its own payload.Builder.
type Relay struct {
	cfg    *config.Config
	names  payload.Resolver
	sender Sender
}

// New creates a Relay. sender may be nil for build-only use (preview, dry runs).
func New(cfg *config.Config, names payload.Resolver, sender Sender) *Relay {
	return &Relay{cfg: cfg, names: names, sender: sender}
}

// Outcome is the result of Relay.Handle.
type Outcome struct {
	Project *models.ProjectConfig
	Payload *models.Payload
	Result  notify.Result
}

// Build resolves the project settings for analysis and builds its payload.
func (r *Relay) Build(analysis *models.AnalysisResult) (*models.ProjectConfig, *models.Payload, error) {
	if analysis == nil {
		return nil, nil, &payload.ConfigError{Field: "analysis"}
	}
	project := r.cfg.Project(analysis.Project.Key)
	if project.Channel == "" {
		return project, nil, fmt.Errorf("%w: no channel configured for project %q",
			payload.ErrInvalidConfiguration, analysis.Project.Key)
	}
	p, err := payload.For(analysis).
		ProjectConfig(project).
		Username(r.cfg.Slack.Username).
		ProjectURL(r.projectURL(analysis)).
		Names(r.names).
		Build()
	if err != nil {
		return project, nil, err
	}
	return project, p, nil
}

// Handle builds the payload for analysis and hands it to the sender.
func (r *Relay) Handle(ctx context.Context, analysis *models.AnalysisResult) (Outcome, error) {
	project, p, err := r.Build(analysis)
	if err != nil {
		return Outcome{Project: project}, err
	}
	out := Outcome{Project: project, Payload: p}
	if r.sender == nil {
		return out, nil
	}
	out.Result = r.sender.Notify(ctx, analysis, project, p)
	slog.Info("relay: analysis handled",
		"project", analysis.Project.Key,
		"channel", project.Channel,
		"sent", out.Result.Sent,
		"failed", out.Result.Failed,
		"skipped", out.Result.Skipped)
	return out, nil
}

func (r *Relay) projectURL(analysis *models.AnalysisResult) string {
	if analysis.Project.URL != "" {
		return analysis.Project.URL
	}
	return sonar.DashboardURL(r.cfg.Sonar.BaseURL, analysis.Project.Key)
}
