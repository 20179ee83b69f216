package models

import "time"

// Project identifies the analysed project.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Condition is one evaluated metric threshold of a quality gate.
type Condition struct {
	MetricKey string `json:"metric_key"` // e.g. critical_violations, coverage
	Value     string `json:"value"`      // already formatted for display
	Status    Status `json:"status"`
}

// QualityGate is the verdict of an analysis run. Status is computed by the
// analysis host and is rendered as-is.
type QualityGate struct {
	Name       string      `json:"name,omitempty"`
	Status     Status      `json:"status"`
	Conditions []Condition `json:"conditions"`
}

// AnalysisResult is the outcome of one completed analysis, handed over by the
// host once per run. QualityGate is nil when no gate was evaluated.
type AnalysisResult struct {
	Project     Project      `json:"project"`
	Branch      string       `json:"branch,omitempty"`
	AnalysedAt  time.Time    `json:"analysed_at"`
	QualityGate *QualityGate `json:"quality_gate,omitempty"`
}

// ProjectConfig holds the per-project notification settings.
type ProjectConfig struct {
	ProjectKey string `mapstructure:"project_key"  json:"project_key"`
	Channel    string `mapstructure:"channel"      json:"channel"`
	// QGFailOnly suppresses notifications for passing quality gates.
	QGFailOnly bool `mapstructure:"qg_fail_only" json:"qg_fail_only"`
}
