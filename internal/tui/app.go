// Package tui is a terminal browser for the delivery log.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/CosmoTheDev/qgnotify/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	refreshEvery = 30 * time.Second
	loadLimit    = 200
)

// Lister is the read side of the delivery log.
type Lister interface {
	List(ctx context.Context, projectKey string, limit int) ([]models.Delivery, error)
}

var filters = []struct {
	label, value, key string
}{
	{"All", "", "0"},
	{"Sent", models.DeliverySent, "s"},
	{"Failed", models.DeliveryFailed, "f"},
	{"Skipped", models.DeliverySkipped, "x"},
}

// App is the root bubbletea model.
type App struct {
	store   Lister
	project string

	width, height int
	rows          []models.Delivery
	filter        string
	cursor        int
	loading       bool
	err           error
	loadedAt      time.Time
}

type deliveriesLoadedMsg struct {
	rows []models.Delivery
	err  error
	at   time.Time
}

type tickMsg struct{}

// NewApp creates the browser. project limits the view to one project key
// when non-empty.
func NewApp(store Lister, project string) *App {
	return &App{store: store, project: project, loading: true}
}

// Run starts the bubbletea program.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg { return tickMsg{} })
}

func (a *App) loadCmd() tea.Cmd {
	store, project := a.store, a.project
	return func() tea.Msg {
		rows, err := store.List(context.Background(), project, loadLimit)
		return deliveriesLoadedMsg{rows: rows, err: err, at: time.Now()}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case deliveriesLoadedMsg:
		a.loading = false
		a.err = msg.err
		if msg.err == nil {
			a.rows = msg.rows
			a.loadedAt = msg.at
		}
		a.clampCursor()

	case tickMsg:
		return a, tea.Batch(a.loadCmd(), tick())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "j", "down":
			a.cursor++
		case "k", "up":
			if a.cursor > 0 {
				a.cursor--
			}
		case "r":
			a.loading = true
			return a, a.loadCmd()
		default:
			for _, f := range filters {
				if msg.String() == f.key {
					a.filter = f.value
					a.cursor = 0
				}
			}
		}
		a.clampCursor()
	}
	return a, nil
}

// visible returns the rows matching the active outcome filter.
func (a *App) visible() []models.Delivery {
	if a.filter == "" {
		return a.rows
	}
	out := make([]models.Delivery, 0, len(a.rows))
	for _, d := range a.rows {
		if d.Outcome == a.filter {
			out = append(out, d)
		}
	}
	return out
}

func (a *App) count(outcome string) int {
	if outcome == "" {
		return len(a.rows)
	}
	n := 0
	for _, d := range a.rows {
		if d.Outcome == outcome {
			n++
		}
	}
	return n
}

func (a *App) clampCursor() {
	total := len(a.visible())
	switch {
	case total == 0, a.cursor < 0:
		a.cursor = 0
	case a.cursor >= total:
		a.cursor = total - 1
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}
	width := max(40, a.width-2)

	scope := "all projects"
	if a.project != "" {
		scope = a.project
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("qgnotify"),
		"  ",
		dimStyle.Render("deliveries · "+scope),
	)

	var body string
	switch {
	case a.loading && len(a.rows) == 0:
		body = "Loading deliveries..."
	case a.err != nil:
		body = failedStyle.Render("Error: " + a.err.Error())
	default:
		body = a.renderTable(width)
	}

	status := "j/k navigate  0 all  s sent  f failed  x skipped  r refresh  q quit"
	if !a.loadedAt.IsZero() {
		status += "  ·  updated " + a.loadedAt.Format("15:04:05")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			panelHeaderStyle.Render("Recent Deliveries"),
			a.renderFilters(),
			"",
			body,
		)),
		dimStyle.Render(status),
	)
}

func (a *App) renderFilters() string {
	chips := make([]string, 0, len(filters)*2+2)
	for _, f := range filters {
		text := fmt.Sprintf("%s %d", f.label, a.count(f.value))
		if a.filter == f.value {
			chips = append(chips, activeTabStyle.Render(text), " ")
		} else {
			chips = append(chips, tabStyle.Render(text+" ["+f.key+"]"), " ")
		}
	}
	chips = append(chips, " ", keycapStyle.Render("r"), " ", dimStyle.Render("refresh"))
	return lipgloss.JoinHorizontal(lipgloss.Center, chips...)
}

func (a *App) renderTable(width int) string {
	rows := a.visible()
	if len(rows) == 0 {
		return dimStyle.Render("No deliveries.")
	}

	limit := max(5, a.height-14)
	start := 0
	if a.cursor >= limit {
		start = a.cursor - limit + 1
	}
	end := min(len(rows), start+limit)

	out := dimStyle.Render("  Time                  Project               Gate  Channel          Notifier  Outcome") + "\n"
	for i := start; i < end; i++ {
		out += a.renderRow(i, rows[i], width) + "\n"
	}
	if sel := rows[a.cursor]; sel.ErrorMsg != "" {
		out += "\n" + failedStyle.Render("error: ") + truncate(sel.ErrorMsg, width-12)
	}
	return out
}

func (a *App) renderRow(idx int, d models.Delivery, width int) string {
	cursor := " "
	if idx == a.cursor {
		cursor = "▌"
	}
	row := lipgloss.JoinHorizontal(lipgloss.Left,
		lipgloss.NewStyle().Width(2).Foreground(accent).Render(cursor),
		lipgloss.NewStyle().Width(22).Foreground(slate).Render(truncate(d.CreatedAt, 20)),
		lipgloss.NewStyle().Width(22).Foreground(ink).Render(truncate(d.ProjectKey, 20)),
		lipgloss.NewStyle().Width(6).Render(gateStyle(d.GateStatus).Render(orDash(d.GateStatus))),
		lipgloss.NewStyle().Width(17).Foreground(slate).Render(truncate(d.Channel, 15)),
		lipgloss.NewStyle().Width(10).Foreground(slate).Render(orDash(d.Notifier)),
		outcomeStyle(d.Outcome).Render(d.Outcome),
	)
	if idx == a.cursor {
		return selectedRowStyle.Width(max(20, width-6)).Render(row)
	}
	return row
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
