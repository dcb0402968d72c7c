package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/statedb"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/winctl"
)

const (
	refreshEvery = 2 * time.Second
	historyRows  = 8
)

type tickMsg time.Time

type themeChangeMsg bool

// snapshotMsg carries one refresh of everything the dashboard shows.
type snapshotMsg struct {
	windows []winctl.Window
	runs    []*statedb.RunRow
	stats   *statedb.RunStats
	err     error
}

// Model is the live dashboard: the target application's windows on one side,
// recent activity runs on the other.
type Model struct {
	dir    *winctl.Directory
	db     *statedb.StateDB
	marker string

	spinner   spinner.Model
	filter    textinput.Model
	filtering bool

	windows []winctl.Window
	runs    []*statedb.RunRow
	stats   *statedb.RunStats
	lastErr error

	themes *ThemeWatcher

	width  int
	height int
}

// NewModel builds the dashboard. db and themes may be nil.
func NewModel(dir *winctl.Directory, db *statedb.StateDB, marker string, themes *ThemeWatcher) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AccentStyle

	fi := textinput.New()
	fi.Placeholder = "filter windows"
	fi.Prompt = "/ "
	fi.CharLimit = 64

	return Model{
		dir:     dir,
		db:      db,
		marker:  marker,
		spinner: sp,
		filter:  fi,
		themes:  themes,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh(), m.waitTheme())
}

// refresh gathers a fresh snapshot off the Update loop.
func (m Model) refresh() tea.Cmd {
	dir, db := m.dir, m.db
	return func() tea.Msg {
		var snap snapshotMsg
		if dir != nil && dir.Available() {
			ws, err := dir.List()
			snap.windows = ws
			snap.err = err
		}
		if db != nil {
			runs, err := db.RecentRuns(historyRows)
			if err != nil && snap.err == nil {
				snap.err = err
			}
			snap.runs = runs
			if stats, err := db.Stats(); err == nil {
				snap.stats = stats
			}
		}
		return snap
	}
}

func (m Model) waitTheme() tea.Cmd {
	if m.themes == nil {
		return nil
	}
	ch := m.themes.ChangeChannel()
	return func() tea.Msg {
		isDark, ok := <-ch
		if !ok {
			return nil
		}
		return themeChangeMsg(isDark)
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "esc":
				m.filtering = false
				m.filter.Blur()
				m.filter.SetValue("")
				return m, nil
			case "enter":
				m.filtering = false
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.filtering = true
			return m, m.filter.Focus()
		case "r":
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, m.refresh()

	case snapshotMsg:
		m.windows = msg.windows
		m.runs = msg.runs
		m.stats = msg.stats
		m.lastErr = msg.err
		return m, scheduleTick()

	case themeChangeMsg:
		if bool(msg) {
			InitTheme("dark")
		} else {
			InitTheme("light")
		}
		return m, m.waitTheme()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	inner := width - 6

	var b strings.Builder
	b.WriteString(TitleStyle.Render("pc-activity-simulator"))
	b.WriteString(" ")
	b.WriteString(m.spinner.View())
	b.WriteString("\n\n")

	b.WriteString(m.windowsPanel(inner))
	b.WriteString("\n")
	b.WriteString(m.historyPanel(inner))
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(ErrStyle.Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}
	if m.filtering {
		b.WriteString(m.filter.View())
	} else {
		b.WriteString(HelpStyle.Render("q quit · / filter · r refresh"))
	}
	return b.String()
}

func (m Model) windowsPanel(width int) string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("Windows"))

	ws := filterWindows(m.windows, m.filter.Value())
	if len(ws) == 0 {
		lines = append(lines, DimStyle.Render("  (none visible)"))
	}
	for _, w := range ws {
		line := "  " + truncate(w.Title, width-4)
		if m.marker != "" && strings.Contains(w.Title, m.marker) {
			line = OKStyle.Render(line + "  ●")
		}
		lines = append(lines, line)
	}
	return PanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) historyPanel(width int) string {
	var lines []string
	header := "Recent runs"
	if m.stats != nil {
		header = fmt.Sprintf("Recent runs · %d total, %d failed", m.stats.Total, m.stats.Failed)
	}
	lines = append(lines, HeaderStyle.Render(header))

	if len(m.runs) == 0 {
		lines = append(lines, DimStyle.Render("  (no runs recorded)"))
	}
	for _, r := range m.runs {
		lines = append(lines, "  "+runLine(r, width-4))
	}
	return PanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// runLine renders one history row: time, kind, outcome, detail.
func runLine(r *statedb.RunRow, width int) string {
	outcome := r.Outcome
	style := OKStyle
	switch {
	case r.Err != "":
		outcome = "error"
		style = ErrStyle
	case r.Outcome == "not_found":
		style = WarnStyle
	}
	line := fmt.Sprintf("%s  %-6s %-9s %s",
		r.StartedAt.Format("15:04:05"), r.Kind, outcome, r.Detail)
	return style.Render(truncate(line, width))
}

// filterWindows narrows the window list with fuzzy matching on titles.
// An empty query returns the list unchanged.
func filterWindows(ws []winctl.Window, query string) []winctl.Window {
	if query == "" {
		return ws
	}
	titles := make([]string, len(ws))
	for i, w := range ws {
		titles[i] = w.Title
	}
	matches := fuzzy.Find(query, titles)
	out := make([]winctl.Window, 0, len(matches))
	for _, mt := range matches {
		out = append(out, ws[mt.Index])
	}
	return out
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

var _ tea.Model = Model{}
