package notify

import (
	"context"
	"log/slog"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/models"
)

// Dispatcher fans payloads out to all configured channels and applies the
// per-project fail-only policy.
type Dispatcher struct {
	channels []Channel
	recorder Recorder
}

const errNoChannel = "no channel configured"

// Result summarises one Notify call.
type Result struct {
	Skipped bool
	Sent    int
	Failed  int
}

// NewDispatcher creates a Dispatcher from the given config.
// Only channels with IsConfigured() == true are active. recorder may be nil.
func NewDispatcher(cfg *config.Config, recorder Recorder) *Dispatcher {
	return NewDispatcherWithChannels(recorder,
		NewSlack(cfg.Slack),
		NewWebhook(cfg.Webhook),
		NewTelegram(cfg.Telegram),
		NewEmail(cfg.Email),
	)
}

// NewDispatcherWithChannels is NewDispatcher with an explicit channel list.
func NewDispatcherWithChannels(recorder Recorder, channels ...Channel) *Dispatcher {
	d := &Dispatcher{recorder: recorder}
	for _, ch := range channels {
		if ch.IsConfigured() {
			d.channels = append(d.channels, ch)
		}
	}
	return d
}

// IsAnyConfigured returns true if at least one channel is ready to send.
func (d *Dispatcher) IsAnyConfigured() bool {
	return len(d.channels) > 0
}

// Channels returns the names of the active channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// ShouldNotify reports whether an analysis warrants a notification under
// project. Fail-only projects are notified only when a gate exists and did
// not pass.
func ShouldNotify(analysis *models.AnalysisResult, project *models.ProjectConfig) bool {
	if project == nil || !project.QGFailOnly {
		return true
	}
	gate := analysis.QualityGate
	return gate != nil && gate.Status != models.StatusPass
}

// Notify sends p to all configured channels. Channel errors are logged and
// recorded but never returned; nothing is retried.
func (d *Dispatcher) Notify(ctx context.Context, analysis *models.AnalysisResult, project *models.ProjectConfig, p *models.Payload) Result {
	base := models.Delivery{
		ProjectKey: analysis.Project.Key,
		Channel:    p.Channel,
	}
	if analysis.QualityGate != nil {
		base.GateStatus = analysis.QualityGate.Status.String()
	}

	if !ShouldNotify(analysis, project) {
		slog.Info("notify: skipped, project is fail-only", "project", base.ProjectKey, "gate_status", base.GateStatus)
		skipped := base
		skipped.Outcome = models.DeliverySkipped
		d.record(ctx, skipped)
		return Result{Skipped: true}
	}

	if len(d.channels) == 0 {
		slog.Warn("notify: skipped, no channel configured", "project", base.ProjectKey)
		skipped := base
		skipped.Outcome = models.DeliverySkipped
		skipped.ErrorMsg = errNoChannel
		d.record(ctx, skipped)
		return Result{Skipped: true}
	}

	var res Result
	for _, ch := range d.channels {
		row := base
		row.Notifier = ch.Name()
		if err := ch.Send(ctx, p); err != nil {
			slog.Warn("notify: channel send failed", "channel", ch.Name(), "project", base.ProjectKey, "error", err)
			row.Outcome = models.DeliveryFailed
			row.ErrorMsg = err.Error()
			res.Failed++
		} else {
			slog.Debug("notify: sent", "channel", ch.Name(), "project", base.ProjectKey)
			row.Outcome = models.DeliverySent
			res.Sent++
		}
		d.record(ctx, row)
	}
	return res
}

func (d *Dispatcher) record(ctx context.Context, row models.Delivery) {
	if d.recorder == nil {
		return
	}
	if _, err := d.recorder.Record(ctx, row); err != nil {
		slog.Warn("notify: recording delivery failed", "project", row.ProjectKey, "error", err)
	}
}
