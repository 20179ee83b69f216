// Package payload turns an analysis result into a chat notification payload.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CosmoTheDev/qgnotify/models"
)

// ErrInvalidConfiguration is returned by Build when a required input is missing.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigError names the missing builder input.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrInvalidConfiguration, e.Field)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// Resolver looks up a localized message, returning fallback when no
// translation exists.
type Resolver interface {
	Message(locale, key, fallback string) string
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(locale, key, fallback string) string

func (f ResolverFunc) Message(locale, key, fallback string) string { return f(locale, key, fallback) }

// nameLocale is the locale metric names are rendered in.
const nameLocale = "en"

// Builder assembles one payload for one analysis event. Use a fresh Builder
// per event; it is not safe for concurrent use.
type Builder struct {
	analysis   *models.AnalysisResult
	project    *models.ProjectConfig
	username   string
	projectURL string
	names      Resolver
}

// For starts a Builder for analysis.
func For(analysis *models.AnalysisResult) *Builder {
	return &Builder{analysis: analysis}
}

// ProjectConfig sets the target channel and fail-only flag.
func (b *Builder) ProjectConfig(cfg *models.ProjectConfig) *Builder {
	b.project = cfg
	return b
}

// Username sets the display name the message is posted as.
func (b *Builder) Username(username string) *Builder {
	b.username = username
	return b
}

// ProjectURL sets the link to the project dashboard.
func (b *Builder) ProjectURL(url string) *Builder {
	b.projectURL = url
	return b
}

// Names sets the resolver used for metric display names.
func (b *Builder) Names(names Resolver) *Builder {
	b.names = names
	return b
}

// Build validates the inputs and returns a new payload. On a missing input it
// returns a *ConfigError and no payload.
func (b *Builder) Build() (*models.Payload, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	gate := b.analysis.QualityGate
	p := &models.Payload{
		Channel:  b.project.Channel,
		Username: b.username,
		Text:     summary(b.analysis.Project.Name, gate),
	}
	if gate != nil {
		p.Attachments = b.conditionAttachments(gate)
	}
	return p, nil
}

func (b *Builder) validate() error {
	switch {
	case b.project == nil:
		return &ConfigError{Field: "projectConfig"}
	case b.projectURL == "":
		return &ConfigError{Field: "projectUrl"}
	case b.username == "":
		return &ConfigError{Field: "username"}
	case b.names == nil:
		return &ConfigError{Field: "i18n"}
	case b.analysis == nil:
		return &ConfigError{Field: "analysis"}
	}
	return nil
}

func summary(projectName string, gate *models.QualityGate) string {
	var sb strings.Builder
	sb.WriteString("Project [")
	sb.WriteString(projectName)
	sb.WriteString("] analyzed")
	if gate == nil {
		sb.WriteString(".")
	} else {
		sb.WriteString(". Quality gate status: ")
		sb.WriteString(StatusPhrase(gate.Status))
	}
	return sb.String()
}

// conditionAttachments emits the counters block first (when any counter
// condition exists), then one block per remaining condition in gate order.
func (b *Builder) conditionAttachments(gate *models.QualityGate) []models.Attachment {
	var fields []models.Field
	individual := make([]models.Attachment, 0, len(gate.Conditions))
	for _, c := range gate.Conditions {
		if IsCounterMetric(c.MetricKey) {
			fields = append(fields, models.Field{
				Title: b.metricName(c.MetricKey),
				Value: c.Value,
				Short: true,
			})
			continue
		}
		individual = append(individual, models.Attachment{
			Title: b.metricName(c.MetricKey),
			Text:  c.Value,
			Color: StatusColor(c.Status),
		})
	}

	attachments := make([]models.Attachment, 0, len(individual)+1)
	if len(fields) > 0 {
		attachments = append(attachments, models.Attachment{
			Color:  colorCounters,
			Fields: fields,
		})
	}
	return append(attachments, individual...)
}

// metricName resolves "metric.<key>.name", falling back to the raw key.
func (b *Builder) metricName(key string) string {
	return b.names.Message(nameLocale, "metric."+key+".name", key)
}
