package notify

import (
	"strings"

	"github.com/CosmoTheDev/qgnotify/models"
)

// PlainText flattens a payload for channels without attachment support:
// the summary line, then one "title: value" line per field or attachment.
func PlainText(p *models.Payload) string {
	var sb strings.Builder
	sb.WriteString(p.Text)
	if len(p.Attachments) == 0 {
		return sb.String()
	}
	sb.WriteString("\n")
	for _, a := range p.Attachments {
		for _, f := range a.Fields {
			sb.WriteString("\n")
			sb.WriteString(f.Title)
			sb.WriteString(": ")
			sb.WriteString(f.Value)
		}
		if a.Title == "" && a.Text == "" {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(statusMark(a.Color))
		sb.WriteString(a.Title)
		if a.Text != "" {
			sb.WriteString(": ")
			sb.WriteString(a.Text)
		}
	}
	return sb.String()
}

func statusMark(color string) string {
	switch color {
	case "good":
		return "[ok] "
	case "danger":
		return "[error] "
	case "warning":
		return "[warn] "
	default:
		return ""
	}
}
