package preview

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#14B8A6") // teal
	green  = lipgloss.Color("#22C55E")
	yellow = lipgloss.Color("#F59E0B")
	red    = lipgloss.Color("#EF4444")
	blue   = lipgloss.Color("#2D9EE0")
	slate  = lipgloss.Color("#94A3B8")
	line   = lipgloss.Color("#1F2937")
	ink    = lipgloss.Color("#E5E7EB")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ink).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderForeground(accent).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().Foreground(slate)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ink)

	fieldTitleStyle = lipgloss.NewStyle().Foreground(slate)

	fieldValueStyle = lipgloss.NewStyle().Bold(true).Foreground(ink)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderLeft(true).
			Padding(0, 1).
			MarginTop(1)
)

// attachmentColor maps Slack colour names (good/warning/danger) and hex
// codes to a terminal colour.
func attachmentColor(c string) lipgloss.TerminalColor {
	switch c {
	case "good":
		return green
	case "warning":
		return yellow
	case "danger":
		return red
	case "":
		return line
	case "#2d9ee0", "#2D9EE0":
		return blue
	default:
		return lipgloss.Color(c)
	}
}
