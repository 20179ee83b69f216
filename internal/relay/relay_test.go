package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/internal/i18n"
	"github.com/CosmoTheDev/qgnotify/internal/notify"
	"github.com/CosmoTheDev/qgnotify/internal/payload"
	"github.com/CosmoTheDev/qgnotify/models"
)

type fakeSender struct {
	calls   int
	project *models.ProjectConfig
}

func (f *fakeSender) Notify(_ context.Context, _ *models.AnalysisResult, project *models.ProjectConfig, _ *models.Payload) notify.Result {
	f.calls++
	f.project = project
	return notify.Result{Sent: 1}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Slack.Username = "SonarQube"
	cfg.Slack.DefaultChannel = "#quality"
	cfg.Sonar.BaseURL = "https://sonar.example.com"
	cfg.Projects = []models.ProjectConfig{{ProjectKey: "widgets", Channel: "#widgets", QGFailOnly: true}}
	return cfg
}

func failingAnalysis(key string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Project: models.Project{Key: key, Name: "Widgets"},
		QualityGate: &models.QualityGate{
			Status: models.StatusFail,
			Conditions: []models.Condition{
				{MetricKey: "critical_violations", Value: "3", Status: models.StatusFail},
				{MetricKey: "coverage", Value: "42%", Status: models.StatusWarn},
			},
		},
	}
}

func TestHandleUsesProjectSettings(t *testing.T) {
	catalog, err := i18n.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	sender := &fakeSender{}
	r := New(testConfig(), catalog, sender)

	out, err := r.Handle(context.Background(), failingAnalysis("widgets"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if sender.calls != 1 || out.Result.Sent != 1 {
		t.Fatalf("expected one send, got calls=%d result=%+v", sender.calls, out.Result)
	}
	if !sender.project.QGFailOnly || out.Payload.Channel != "#widgets" {
		t.Fatalf("project settings not applied: %+v / %+v", sender.project, out.Payload)
	}
	if out.Payload.Username != "SonarQube" {
		t.Errorf("Username = %q", out.Payload.Username)
	}
	if got := out.Payload.Attachments[0].Fields[0].Title; got != "Critical Issues" {
		t.Errorf("counter field title = %q, want Critical Issues", got)
	}
}

func TestBuildFallsBackToDefaultChannel(t *testing.T) {
	r := New(testConfig(), i18n.New(nil), nil)
	project, p, err := r.Build(failingAnalysis("gadgets"))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if project.Channel != "#quality" || p.Channel != "#quality" {
		t.Fatalf("channel = %q / %q, want #quality", project.Channel, p.Channel)
	}
	if got := p.Attachments[1].Title; got != "coverage" {
		t.Errorf("title without catalog entry = %q, want raw key", got)
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Slack.DefaultChannel = ""
	r := New(cfg, i18n.New(nil), nil)

	if _, _, err := r.Build(failingAnalysis("gadgets")); !errors.Is(err, payload.ErrInvalidConfiguration) {
		t.Fatalf("missing channel error = %v, want ErrInvalidConfiguration", err)
	}
	if _, _, err := r.Build(nil); !errors.Is(err, payload.ErrInvalidConfiguration) {
		t.Fatalf("nil analysis error = %v, want ErrInvalidConfiguration", err)
	}

	cfg = testConfig()
	cfg.Sonar.BaseURL = ""
	r = New(cfg, i18n.New(nil), nil)
	var cfgErr *payload.ConfigError
	if _, _, err := r.Build(failingAnalysis("widgets")); !errors.As(err, &cfgErr) || cfgErr.Field != "projectUrl" {
		t.Fatalf("missing project url error = %v", err)
	}
}

func TestHandleWithoutSenderOnlyBuilds(t *testing.T) {
	r := New(testConfig(), i18n.New(nil), nil)
	out, err := r.Handle(context.Background(), failingAnalysis("widgets"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out.Payload == nil || out.Result != (notify.Result{}) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}
