package payload

import "github.com/CosmoTheDev/qgnotify/models"

// Slack attachment colours.
const (
	colorGood     = "good"
	colorWarning  = "warning"
	colorDanger   = "danger"
	colorCounters = "#2d9ee0"
)

var statusColors = map[models.Status]string{
	models.StatusPass: colorGood,
	models.StatusWarn: colorWarning,
	models.StatusFail: colorDanger,
}

// counterMetricKeys are the violation counters grouped into a single
// attachment instead of one attachment each.
var counterMetricKeys = map[string]struct{}{
	"critical_violations": {},
	"blocker_violations":  {},
	"major_violations":    {},
	"minor_violations":    {},
}

// IsCounterMetric reports whether key is one of the grouped violation counters.
func IsCounterMetric(key string) bool {
	_, ok := counterMetricKeys[key]
	return ok
}

// StatusColor returns the attachment colour for s. Unknown statuses get the
// warning colour.
func StatusColor(s models.Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return colorWarning
}

// StatusPhrase returns the summary suffix for a gate status.
func StatusPhrase(s models.Status) string {
	switch s {
	case models.StatusPass:
		return "Ok :party_parrot:"
	case models.StatusFail:
		return "Error :facepalm_skype:"
	default:
		return "Warning :alert:"
	}
}
