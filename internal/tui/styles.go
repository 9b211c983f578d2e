package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorBg      lipgloss.Color = "#1e1e2e"
	colorMantle  lipgloss.Color = "#181825"
	colorSurface lipgloss.Color = "#313244"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorWarn    lipgloss.Color = "#f9e2af"
	colorError   lipgloss.Color = "#f38ba8"
	colorTabOff  lipgloss.Color = "#7f849c"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)
	connUpStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)
	connDownStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)
	connBusyStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().
				Background(colorMantle).
				Foreground(colorTabOff).
				Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorSurface).
			Padding(0, 1)
	statusErrStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Background(colorSurface).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)
	metricStyle = lipgloss.NewStyle().
			Foreground(colorText)
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	keyStyle      = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorMuted)
)
