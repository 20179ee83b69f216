package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBundledDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Message("en", "metric.critical_violations.name", "critical_violations"); got != "Critical Issues" {
		t.Fatalf("Message() = %q, want Critical Issues", got)
	}
	if c.Len("en") == 0 {
		t.Fatal("expected bundled English messages")
	}
}

func TestMessageFallsBackToRawKey(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Message("en", "metric.custom_metric.name", "custom_metric"); got != "custom_metric" {
		t.Fatalf("Message() = %q, want fallback", got)
	}
}

func TestMessageLocaleCandidates(t *testing.T) {
	c := New(map[string]map[string]string{
		"en":    {"metric.coverage.name": "Coverage"},
		"fr":    {"metric.coverage.name": "Couverture"},
		"en-GB": {"metric.coverage.name": "Coverage (GB)"},
	})
	tests := []struct {
		name   string
		locale string
		want   string
	}{
		{name: "exact", locale: "fr", want: "Couverture"},
		{name: "region", locale: "en_GB", want: "Coverage (GB)"},
		{name: "language of region", locale: "fr_CA", want: "Couverture"},
		{name: "default locale", locale: "de", want: "Coverage"},
		{name: "empty locale", locale: "", want: "Coverage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Message(tt.locale, "metric.coverage.name", "coverage"); got != tt.want {
				t.Errorf("Message(%q) = %q, want %q", tt.locale, got, tt.want)
			}
		})
	}
}

func TestLoadUserOverridesShadowBundled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en.yaml"), "metric.coverage.name: Test Coverage\nmetric.team_score.name: Team Score\n")
	writeFile(t, filepath.Join(dir, "de.yml"), "metric.coverage.name: Abdeckung\n")
	writeFile(t, filepath.Join(dir, "broken.yaml"), "- not\n- a map\n")
	writeFile(t, filepath.Join(dir, "README.md"), "ignored")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Message("en", "metric.coverage.name", "coverage"); got != "Test Coverage" {
		t.Errorf("override = %q, want Test Coverage", got)
	}
	if got := c.Message("en", "metric.team_score.name", "team_score"); got != "Team Score" {
		t.Errorf("user-only key = %q, want Team Score", got)
	}
	if got := c.Message("en", "metric.bugs.name", "bugs"); got != "Bugs" {
		t.Errorf("bundled key = %q, want Bugs", got)
	}
	if got := c.Message("de", "metric.coverage.name", "coverage"); got != "Abdeckung" {
		t.Errorf("de = %q, want Abdeckung", got)
	}
}

func TestLoadMissingDir(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len("en") == 0 {
		t.Fatal("expected bundled messages when user dir is missing")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
