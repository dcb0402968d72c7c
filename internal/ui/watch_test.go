package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/statedb"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/winctl"
)

func testWindows() []winctl.Window {
	return []winctl.Window{
		{ID: "w1", Title: "Untitled - Notepad", Class: "Notepad"},
		{ID: "w2", Title: "[Activity Simulation] - Notepad", Class: "Notepad"},
		{ID: "w3", Title: "report.txt - Notepad", Class: "Notepad"},
	}
}

func TestFilterWindowsEmptyQueryKeepsAll(t *testing.T) {
	ws := testWindows()
	assert.Equal(t, ws, filterWindows(ws, ""))
}

func TestFilterWindowsFuzzyMatch(t *testing.T) {
	ws := testWindows()

	out := filterWindows(ws, "report")
	require.Len(t, out, 1)
	assert.Equal(t, "w3", out[0].ID)

	// Fuzzy: non-contiguous characters still match.
	out = filterWindows(ws, "actsim")
	require.Len(t, out, 1)
	assert.Equal(t, "w2", out[0].ID)
}

func TestFilterWindowsNoMatch(t *testing.T) {
	assert.Empty(t, filterWindows(testWindows(), "zzzzzz"))
}

func TestTruncateRespectsWidth(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestRunLineShowsErrorState(t *testing.T) {
	row := &statedb.RunRow{
		Kind:      "editor",
		Outcome:   "found",
		StartedAt: time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		Err:       "no display",
	}
	line := runLine(row, 80)
	assert.Contains(t, line, "error")
	assert.Contains(t, line, "10:30:00")
}

func TestViewRendersPanels(t *testing.T) {
	m := NewModel(nil, nil, "[Activity Simulation]", nil)
	m.windows = testWindows()
	m.runs = []*statedb.RunRow{{
		Kind:      "mouse",
		Outcome:   "ok",
		Detail:    "moved (+1, -2)",
		StartedAt: time.Now(),
	}}
	m.stats = &statedb.RunStats{Total: 4, Failed: 1}
	m.width = 100

	view := m.View()
	assert.Contains(t, view, "pc-activity-simulator")
	assert.Contains(t, view, "Windows")
	assert.Contains(t, view, "Recent runs")
	assert.Contains(t, view, "4 total, 1 failed")
	assert.Contains(t, view, "moved (+1, -2)")
}

func TestViewEmptyStateIsCalm(t *testing.T) {
	m := NewModel(nil, nil, "", nil)
	view := m.View()
	assert.Contains(t, view, "(none visible)")
	assert.Contains(t, view, "(no runs recorded)")
}

func TestUpdateQuitKeys(t *testing.T) {
	m := NewModel(nil, nil, "", nil)
	for _, key := range []string{"q", "ctrl+c"} {
		_, cmd := m.Update(keyMsg(key))
		require.NotNil(t, cmd, "key %q should quit", key)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestUpdateFilterFlow(t *testing.T) {
	m := NewModel(nil, nil, "", nil)

	next, _ := m.Update(keyMsg("/"))
	m = next.(Model)
	assert.True(t, m.filtering)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	m = next.(Model)
	assert.Equal(t, "abc", m.filter.Value())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.False(t, m.filtering)
	assert.Empty(t, m.filter.Value(), "esc clears the filter")
}

func TestSnapshotUpdatesStateAndReschedules(t *testing.T) {
	m := NewModel(nil, nil, "", nil)

	next, cmd := m.Update(snapshotMsg{
		windows: testWindows(),
		stats:   &statedb.RunStats{Total: 1},
	})
	m = next.(Model)
	assert.Len(t, m.windows, 3)
	assert.Equal(t, 1, m.stats.Total)
	assert.NotNil(t, cmd, "a snapshot schedules the next tick")
}

func TestThemeChangeSwitchesPalette(t *testing.T) {
	defer InitTheme("dark")

	m := NewModel(nil, nil, "", nil)
	_, _ = m.Update(themeChangeMsg(false))
	assert.Equal(t, ThemeLight, CurrentTheme())

	_, _ = m.Update(themeChangeMsg(true))
	assert.Equal(t, ThemeDark, CurrentTheme())
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
