package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
)

var uiLog = logging.ForComponent(logging.CompUI)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// currentTheme holds the active theme (set at init)
var currentTheme Theme = ThemeDark

// Dark Theme - Tokyo Night
var darkColors = struct {
	Border, Text, TextDim      lipgloss.Color
	Accent, Green, Yellow, Red lipgloss.Color
}{
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Red:     lipgloss.Color("#f7768e"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Border, Text, TextDim      lipgloss.Color
	Accent, Green, Yellow, Red lipgloss.Color
}{
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Red:     lipgloss.Color("#8c4351"),
}

// Active color variables (set by InitTheme)
var (
	ColorBorder  lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
)

// Styles rebuilt by InitTheme
var (
	TitleStyle  lipgloss.Style
	PanelStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	DimStyle    lipgloss.Style
	OKStyle     lipgloss.Style
	WarnStyle   lipgloss.Style
	ErrStyle    lipgloss.Style
	AccentStyle lipgloss.Style
	HelpStyle   lipgloss.Style
)

// themeMu protects global color/style variables during live theme switches.
var themeMu sync.RWMutex

// InitTheme sets the active color palette based on theme name.
// Must be called before any UI rendering.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == "light" {
		currentTheme = ThemeLight
		ColorBorder = lightColors.Border
		ColorText = lightColors.Text
		ColorTextDim = lightColors.TextDim
		ColorAccent = lightColors.Accent
		ColorGreen = lightColors.Green
		ColorYellow = lightColors.Yellow
		ColorRed = lightColors.Red
	} else {
		currentTheme = ThemeDark
		ColorBorder = darkColors.Border
		ColorText = darkColors.Text
		ColorTextDim = darkColors.TextDim
		ColorAccent = darkColors.Accent
		ColorGreen = darkColors.Green
		ColorYellow = darkColors.Yellow
		ColorRed = darkColors.Red
	}

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	DimStyle = lipgloss.NewStyle().Foreground(ColorTextDim)
	OKStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	WarnStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	ErrStyle = lipgloss.NewStyle().Foreground(ColorRed)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	HelpStyle = lipgloss.NewStyle().Foreground(ColorTextDim)
}

// CurrentTheme returns the active theme name.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

func init() {
	InitTheme("dark")
}
