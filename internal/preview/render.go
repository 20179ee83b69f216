// Package preview renders a notification payload for the terminal.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CosmoTheDev/qgnotify/models"
)

// fieldsPerRow is how many short fields share a row, as chat clients do.
const fieldsPerRow = 2

// Render draws the summary line followed by one left-bordered block per
// attachment, bordered in the attachment's colour.
func Render(p *models.Payload) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(p.Text))
	if p.Channel != "" || p.Username != "" {
		sb.WriteString("\n")
		sb.WriteString(metaStyle.Render("to " + orDash(p.Channel) + " as " + orDash(p.Username)))
	}
	for _, a := range p.Attachments {
		sb.WriteString("\n")
		sb.WriteString(renderAttachment(a))
	}
	return sb.String()
}

func renderAttachment(a models.Attachment) string {
	var parts []string
	if a.Title != "" {
		parts = append(parts, titleStyle.Render(a.Title))
	}
	if a.Text != "" {
		parts = append(parts, a.Text)
	}
	if len(a.Fields) > 0 {
		parts = append(parts, renderFields(a.Fields))
	}
	if len(parts) == 0 {
		parts = append(parts, metaStyle.Render("(empty)"))
	}
	style := boxStyle.BorderForeground(attachmentColor(a.Color))
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderFields(fields []models.Field) string {
	var rows []string
	var row []string
	flush := func() {
		if len(row) > 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	for _, f := range fields {
		cell := lipgloss.NewStyle().Width(28).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				fieldTitleStyle.Render(f.Title),
				fieldValueStyle.Render(f.Value),
			))
		if !f.Short {
			flush()
			rows = append(rows, cell)
			continue
		}
		row = append(row, cell)
		if len(row) == fieldsPerRow {
			flush()
		}
	}
	flush()
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
