// Package ui is the interactive terminal dashboard. It renders the figure
// set as text charts, one figure per tab, with a summary sidebar and live
// reload when the backup file changes on disk.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/spdash/pkg/aggregate"
	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/dashboard"
	"github.com/vanderheijden86/spdash/pkg/debug"
	"github.com/vanderheijden86/spdash/pkg/loader"
	"github.com/vanderheijden86/spdash/pkg/version"
	"github.com/vanderheijden86/spdash/pkg/watcher"
)

// FileChangedMsg is sent when the watched backup file changes on disk.
type FileChangedMsg struct{}

// RenderMsg carries a completed pipeline run.
type RenderMsg struct {
	Render *dashboard.Render
	Err    error
}

// WatchFileCmd waits for the next change notification and re-arms itself
// from the Update handler.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// sidebarWidth is the fixed width of the summary pane; the figure pane
// takes the rest.
const sidebarWidth = 34

// Model is the bubbletea model for the dashboard.
type Model struct {
	locations []loader.SearchLocation
	loadOpts  loader.Options
	opts      dashboard.Options

	render  *dashboard.Render
	loadErr error

	watcher *watcher.Watcher

	tab       int
	width     int
	height    int
	figPane   viewport.Model
	statusMsg string

	loading   bool
	refreshed time.Time
}

// New builds the initial model. The watcher may be nil, in which case
// reloads happen only on manual refresh.
func New(locations []loader.SearchLocation, loadOpts loader.Options, opts dashboard.Options, w *watcher.Watcher) Model {
	return Model{
		locations: locations,
		loadOpts:  loadOpts,
		opts:      opts,
		watcher:   w,
		loading:   true,
	}
}

// refreshCmd runs the full pipeline off the update loop.
func (m Model) refreshCmd() tea.Cmd {
	locations, loadOpts, opts := m.locations, m.loadOpts, m.opts
	return func() tea.Msg {
		render, err := dashboard.Run(locations, loadOpts, opts)
		return RenderMsg{Render: render, Err: err}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.figPane.Width = m.figurePaneWidth() - 2
		m.figPane.Height = m.height - 8
		if m.figPane.Height < 4 {
			m.figPane.Height = 4
		}
		m.syncFigurePane()

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "q", "ctrl+c":
			if m.watcher != nil {
				m.watcher.Stop()
			}
			return m, tea.Quit
		case "r":
			m.loading = true
			cmds = append(cmds, m.refreshCmd())
		case "c":
			if m.render != nil {
				if err := clipboard.WriteAll(m.render.File.Path); err != nil {
					m.statusMsg = "clipboard: " + err.Error()
				} else {
					m.statusMsg = "copied backup path"
				}
			}
		case "tab", "right", "l":
			if n := m.figureCount(); n > 0 {
				m.tab = (m.tab + 1) % n
				m.syncFigurePane()
			}
		case "shift+tab", "left", "h":
			if n := m.figureCount(); n > 0 {
				m.tab = (m.tab + n - 1) % n
				m.syncFigurePane()
			}
		default:
			var cmd tea.Cmd
			m.figPane, cmd = m.figPane.Update(msg)
			cmds = append(cmds, cmd)
		}

	case FileChangedMsg:
		debug.Log("backup changed, reloading")
		m.loading = true
		cmds = append(cmds, m.refreshCmd())
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}

	case RenderMsg:
		m.loading = false
		m.loadErr = msg.Err
		if msg.Err == nil {
			m.render = msg.Render
			m.refreshed = time.Now()
			if m.tab >= len(m.render.Figures) {
				m.tab = 0
			}
			m.syncFigurePane()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) figureCount() int {
	if m.render == nil {
		return 0
	}
	return len(m.render.Figures)
}

func (m Model) figurePaneWidth() int {
	w := m.width - sidebarWidth - 6
	if w < 20 {
		w = 20
	}
	return w
}

// syncFigurePane refreshes the viewport content for the selected figure and
// scrolls back to the top.
func (m *Model) syncFigurePane() {
	if m.render == nil || m.tab >= len(m.render.Figures) {
		return
	}
	m.figPane.SetContent(m.figureView(m.figurePaneWidth() - 2))
	m.figPane.GotoTop()
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.render == nil {
		if m.loadErr != nil {
			b.WriteString(errorStyle.Render("load failed: " + m.loadErr.Error()))
		} else {
			b.WriteString(statusStyle.Render("loading backup..."))
		}
		b.WriteString("\n")
		b.WriteString(m.footerView())
		return b.String()
	}

	sidebar := paneStyle.Width(sidebarWidth).Render(m.summaryView())
	figure := paneStyle.Width(m.figurePaneWidth()).Render(m.figPane.View())

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, figure))
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("Super Productivity Dashboard " + version.Version)
	if m.render == nil {
		return title
	}
	src := headerStyle.Render(fmt.Sprintf("  %s  (modified %s)",
		m.render.File.Path,
		m.render.File.ModTime.Format("2006-01-02 15:04:05")))
	return title + src
}

// summaryView lists per-project totals and the tag breakdown as colored
// proportional bars.
func (m Model) summaryView() string {
	render := m.render
	totals := aggregate.TotalsByProject(render.Records)

	var total float64
	for _, t := range totals {
		total += t.Minutes
	}

	var b strings.Builder
	b.WriteString(valueStyle.Render("Total: " + chart.FormatMinutes(total)))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Projects"))
	b.WriteString("\n")

	sort.Slice(totals, func(i, j int) bool { return totals[i].Minutes > totals[j].Minutes })
	for _, t := range totals {
		name := render.Resolver.ProjectDisplayName(t.Project)
		b.WriteString(m.summaryRow(name, t.Minutes, total, render.Resolver.ProjectColor(t.Project)))
	}

	breakdown := aggregate.TagTime(render.Tasks, render.Snapshot)
	if len(breakdown.ByTag) > 0 || breakdown.Untagged > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Tags"))
		b.WriteString("\n")
		tags := append([]aggregate.TagTotal(nil), breakdown.ByTag...)
		sort.Slice(tags, func(i, j int) bool { return tags[i].Minutes > tags[j].Minutes })
		var tagTotal float64
		for _, t := range tags {
			tagTotal += t.Minutes
		}
		tagTotal += breakdown.Untagged
		for _, t := range tags {
			if t.Minutes <= 0 {
				continue
			}
			name := render.Resolver.TagDisplayName(t.Tag)
			b.WriteString(m.summaryRow(name, t.Minutes, tagTotal, render.Resolver.TagColor(t.Tag)))
		}
		if breakdown.Untagged > 0 {
			b.WriteString(m.summaryRow("Untagged", breakdown.Untagged, tagTotal, "#888888"))
		}
	}
	return b.String()
}

func (m Model) summaryRow(name string, minutes, total float64, color string) string {
	const barWidth = 10
	name = runewidth.Truncate(name, sidebarWidth-barWidth-10, "…")
	filled := 0
	if total > 0 {
		filled = int(minutes / total * barWidth)
	}
	bar := barStyle(color).Render(strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %s %s\n",
		runewidth.FillRight(name, sidebarWidth-barWidth-10),
		bar,
		headerStyle.Render(chart.FormatMinutes(minutes)))
}

// figureView renders the selected figure as a horizontal text chart.
func (m Model) figureView(width int) string {
	fig := m.render.Figures[m.tab]

	var b strings.Builder
	b.WriteString(titleStyle.Render(fig.Title))
	b.WriteString("\n\n")

	rows := figureRows(fig)
	if len(rows) == 0 {
		b.WriteString(statusStyle.Render("no data"))
		return b.String()
	}

	var max float64
	for _, r := range rows {
		if r.value > max {
			max = r.value
		}
	}
	if max <= 0 {
		max = 1
	}

	labelWidth := 18
	barWidth := width - labelWidth - 12
	if barWidth < 8 {
		barWidth = 8
	}
	for _, r := range rows {
		filled := int(r.value / max * float64(barWidth))
		label := runewidth.FillRight(runewidth.Truncate(r.label, labelWidth, "…"), labelWidth)
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			headerStyle.Render(label),
			barStyle(r.color).Render(strings.Repeat("▇", filled)),
			headerStyle.Render(formatRowValue(fig, r.value))))
	}
	for _, line := range fig.RefLines {
		if line.Label != "" {
			b.WriteString(statusStyle.Render(fmt.Sprintf("― %s (%.0f)\n", line.Label, line.Value)))
		}
	}
	return b.String()
}

type figureRow struct {
	label string
	value float64
	color string
}

// figureRows flattens a figure's traces into label/value rows. Stacked bar
// figures sum segments per category; pies list slices; scatter and line
// traces list series totals.
func figureRows(fig chart.Figure) []figureRow {
	var rows []figureRow
	switch {
	case len(fig.Traces) == 1 && fig.Traces[0].Type == chart.TracePie:
		trace := fig.Traces[0]
		for i, label := range trace.Labels {
			row := figureRow{label: label, value: trace.Values[i]}
			if i < len(trace.Colors) {
				row.color = trace.Colors[i]
			}
			rows = append(rows, row)
		}
	case len(fig.Traces) == 1 && fig.Traces[0].Type == chart.TraceHistogram:
		// Histograms summarize as count only.
		rows = append(rows, figureRow{
			label: fmt.Sprintf("%d samples", len(fig.Traces[0].Samples)),
			value: float64(len(fig.Traces[0].Samples)),
			color: fig.Traces[0].Color,
		})
	default:
		for _, trace := range fig.Traces {
			var total float64
			for _, y := range trace.Y {
				total += y
			}
			name := trace.Name
			if name == "" {
				name = fig.Title
			}
			color := trace.Color
			if color == "" && len(trace.Colors) > 0 {
				color = trace.Colors[0]
			}
			rows = append(rows, figureRow{label: name, value: total, color: color})
		}
	}
	for i := range rows {
		if rows[i].color == "" {
			rows[i].color = "#636EFA"
		}
	}
	return rows
}

func formatRowValue(fig chart.Figure, v float64) string {
	if strings.Contains(fig.YAxisTitle, "Minutes") || fig.Traces[0].Type == chart.TracePie {
		return chart.FormatMinutes(v)
	}
	return fmt.Sprintf("%.1f", v)
}

func (m Model) tabsView() string {
	var tabs []string
	for i, fig := range m.render.Figures {
		name := chart.DisplayName(fig.Key)
		if i == m.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	return runewidth.Truncate(strings.Join(tabs, "  "), m.width, "…")
}

func (m Model) footerView() string {
	var parts []string
	if m.loading {
		parts = append(parts, statusStyle.Render("reloading..."))
	} else if !m.refreshed.IsZero() {
		parts = append(parts, statusStyle.Render("refreshed "+m.refreshed.Format("15:04:05")))
	}
	if m.loadErr != nil {
		parts = append(parts, errorStyle.Render(m.loadErr.Error()))
	}
	if m.render != nil {
		for _, err := range m.render.WidgetErrors {
			parts = append(parts, errorStyle.Render(err.Error()))
		}
	}
	if m.statusMsg != "" {
		parts = append(parts, statusStyle.Render(m.statusMsg))
	}
	if m.watcher != nil && m.watcher.IsPolling() {
		parts = append(parts, statusStyle.Render("(polling)"))
	}
	parts = append(parts, helpStyle.Render("tab/←→ switch · ↑↓ scroll · c copy path · r refresh · q quit"))
	return strings.Join(parts, "  ")
}
