package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/models"
)

func samplePayload() *models.Payload {
	return &models.Payload{
		Channel:  "#builds",
		Username: "SonarQube",
		Text:     "Project [Widgets] analyzed. Quality gate status: Error :facepalm_skype:",
		Attachments: []models.Attachment{
			{Color: "#2d9ee0", Fields: []models.Field{{Title: "Critical Issues", Value: "3", Short: true}}},
			{Title: "Coverage", Text: "42%", Color: "warning"},
		},
	}
}

func TestSlackChannel_Send(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "successful POST returns no error", statusCode: http.StatusOK},
		{name: "server error returns error", statusCode: http.StatusInternalServerError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.Payload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Errorf("decode body: %v", err)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			err := NewSlack(config.SlackConfig{WebhookURL: srv.URL}).Send(context.Background(), samplePayload())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Send() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Channel != "#builds" || len(got.Attachments) != 2 || got.Attachments[0].Fields[0].Value != "3" {
				t.Errorf("unexpected body: %+v", got)
			}
		})
	}
}

func TestSlackPayloadWireShape(t *testing.T) {
	b, err := json.Marshal(&models.Payload{Text: "Project [Widgets] analyzed."})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"text":"Project [Widgets] analyzed."}` {
		t.Fatalf("payload JSON = %s", b)
	}
}

func TestWebhookChannel_Signs(t *testing.T) {
	var body []byte
	var sig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		sig = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ch := NewWebhook(config.WebhookConfig{URL: srv.URL, Secret: "s3cret"})
	ch.now = func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) }
	if err := ch.Send(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if want := "sha256=" + Sign("s3cret", body); sig != want {
		t.Fatalf("signature = %q, want %q", sig, want)
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["type"] != "quality_gate" || decoded["ts"] != "2026-01-15T10:00:00Z" {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestTelegramChannel_SendsPlainText(t *testing.T) {
	var path string
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewTelegram(config.TelegramConfig{BotToken: "tok", ChatID: "42"})
	ch.apiBase = srv.URL
	if err := ch.Send(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if path != "/bottok/sendMessage" {
		t.Errorf("path = %q", path)
	}
	text, _ := got["text"].(string)
	if got["chat_id"] != "42" || !strings.Contains(text, "Coverage: 42%") {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText(samplePayload())
	want := "Project [Widgets] analyzed. Quality gate status: Error :facepalm_skype:\n" +
		"\nCritical Issues: 3" +
		"\n[warn] Coverage: 42%"
	if got != want {
		t.Fatalf("PlainText() =\n%q\nwant\n%q", got, want)
	}
	if got := PlainText(&models.Payload{Text: "Project [W] analyzed."}); got != "Project [W] analyzed." {
		t.Fatalf("PlainText() without attachments = %q", got)
	}
}

func TestPostJSONReportsResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("channel_not_found"))
	}))
	defer srv.Close()

	err := NewSlack(config.SlackConfig{WebhookURL: srv.URL}).Send(context.Background(), samplePayload())
	if err == nil || !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestEmailCompose(t *testing.T) {
	ch := NewEmail(config.EmailConfig{SMTPHost: "smtp.test", From: "qg@example.com", To: "a@example.com, b@example.com"})
	ch.now = func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) }
	if !ch.IsConfigured() {
		t.Fatal("expected channel to be configured")
	}
	if got := ch.recipients(); len(got) != 2 || got[1] != "b@example.com" {
		t.Fatalf("recipients() = %q", got)
	}

	msg := string(ch.compose(samplePayload()))
	for _, want := range []string{
		"Subject: Project [Widgets] analyzed. Quality gate status: Error\r\n",
		"To: a@example.com, b@example.com\r\n",
		"Date: Thu, 15 Jan 2026 10:00:00 +0000\r\n",
		"\r\n\r\nProject [Widgets] analyzed.",
		"\r\n[warn] Coverage: 42%",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	if NewEmail(config.EmailConfig{SMTPHost: "smtp.test", From: "qg@example.com", To: " , "}).IsConfigured() {
		t.Error("blank recipient list should not count as configured")
	}
}

func TestSubjectStripsEmoji(t *testing.T) {
	got := subject("Project [Widgets] analyzed. Quality gate status: Ok :party_parrot:")
	if got != "Project [Widgets] analyzed. Quality gate status: Ok" {
		t.Fatalf("subject() = %q", got)
	}
}

type fakeChannel struct {
	name       string
	configured bool
	err        error
	sent       []*models.Payload
}

func (f *fakeChannel) Name() string       { return f.name }
func (f *fakeChannel) IsConfigured() bool { return f.configured }
func (f *fakeChannel) Send(_ context.Context, p *models.Payload) error {
	f.sent = append(f.sent, p)
	return f.err
}

type fakeRecorder struct {
	rows []models.Delivery
}

func (f *fakeRecorder) Record(_ context.Context, d models.Delivery) (int64, error) {
	f.rows = append(f.rows, d)
	return int64(len(f.rows)), nil
}

func analysisWith(status models.Status) *models.AnalysisResult {
	return &models.AnalysisResult{
		Project:     models.Project{Key: "widgets", Name: "Widgets"},
		QualityGate: &models.QualityGate{Status: status},
	}
}

func TestDispatcherNotify(t *testing.T) {
	tests := []struct {
		name        string
		analysis    *models.AnalysisResult
		failOnly    bool
		wantSkipped bool
	}{
		{name: "passing gate, notify always", analysis: analysisWith(models.StatusPass)},
		{name: "passing gate, fail only", analysis: analysisWith(models.StatusPass), failOnly: true, wantSkipped: true},
		{name: "failed gate, fail only", analysis: analysisWith(models.StatusFail), failOnly: true},
		{name: "warning gate, fail only", analysis: analysisWith(models.StatusWarn), failOnly: true},
		{
			name:        "no gate, fail only",
			analysis:    &models.AnalysisResult{Project: models.Project{Key: "widgets"}},
			failOnly:    true,
			wantSkipped: true,
		},
		{name: "no gate, notify always", analysis: &models.AnalysisResult{Project: models.Project{Key: "widgets"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok := &fakeChannel{name: "slack", configured: true}
			broken := &fakeChannel{name: "webhook", configured: true, err: errors.New("boom")}
			off := &fakeChannel{name: "telegram"}
			rec := &fakeRecorder{}
			d := NewDispatcherWithChannels(rec, ok, broken, off)

			res := d.Notify(context.Background(), tt.analysis,
				&models.ProjectConfig{Channel: "#builds", QGFailOnly: tt.failOnly}, samplePayload())

			if res.Skipped != tt.wantSkipped {
				t.Fatalf("Skipped = %v, want %v", res.Skipped, tt.wantSkipped)
			}
			if len(off.sent) != 0 {
				t.Fatal("unconfigured channel must not be called")
			}
			if tt.wantSkipped {
				if len(ok.sent) != 0 || len(broken.sent) != 0 {
					t.Fatal("expected no channel calls when skipped")
				}
				if len(rec.rows) != 1 || rec.rows[0].Outcome != models.DeliverySkipped {
					t.Fatalf("expected one skipped row, got %+v", rec.rows)
				}
				return
			}
			if res.Sent != 1 || res.Failed != 1 {
				t.Fatalf("Result = %+v, want 1 sent 1 failed", res)
			}
			if len(rec.rows) != 2 {
				t.Fatalf("expected 2 recorded rows, got %+v", rec.rows)
			}
			if rec.rows[0].Notifier != "slack" || rec.rows[0].Outcome != models.DeliverySent {
				t.Errorf("row 0 = %+v", rec.rows[0])
			}
			if rec.rows[1].Notifier != "webhook" || rec.rows[1].Outcome != models.DeliveryFailed || rec.rows[1].ErrorMsg != "boom" {
				t.Errorf("row 1 = %+v", rec.rows[1])
			}
			if rec.rows[0].ProjectKey != "widgets" || rec.rows[0].Channel != "#builds" {
				t.Errorf("row 0 identity = %+v", rec.rows[0])
			}
		})
	}
}

func TestDispatcherWithoutChannelsRecordsSkip(t *testing.T) {
	rec := &fakeRecorder{}
	d := NewDispatcher(&config.Config{}, rec)

	res := d.Notify(context.Background(), analysisWith(models.StatusFail),
		&models.ProjectConfig{Channel: "#builds"}, samplePayload())
	if !res.Skipped || res.Sent != 0 || res.Failed != 0 {
		t.Fatalf("Result = %+v, want skipped", res)
	}
	if len(rec.rows) != 1 {
		t.Fatalf("expected one recorded row, got %+v", rec.rows)
	}
	row := rec.rows[0]
	if row.Outcome != models.DeliverySkipped || row.ErrorMsg != "no channel configured" || row.GateStatus != "FAIL" {
		t.Errorf("row = %+v", row)
	}
}

func TestNewDispatcherActivatesConfiguredChannels(t *testing.T) {
	cfg := &config.Config{}
	if NewDispatcher(cfg, nil).IsAnyConfigured() {
		t.Fatal("expected no channels without config")
	}
	cfg.Slack.WebhookURL = "https://hooks.slack.test/x"
	cfg.Telegram = config.TelegramConfig{BotToken: "t", ChatID: "c"}
	d := NewDispatcher(cfg, nil)
	got := strings.Join(d.Channels(), ",")
	if got != "slack,telegram" {
		t.Fatalf("Channels() = %q, want slack,telegram", got)
	}
}
