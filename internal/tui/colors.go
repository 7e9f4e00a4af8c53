package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for the pilotlog TUI theme
const (
	// Base Colors
	ColorCardBackground = "#111B2E" // Night sky
	ColorBorder         = "#34405A" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#A9B4C8"
	ColorDisabledText  = "#6D7383"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors
	ColorAccentMain   = "#2F7DE1" // Titles, active borders
	ColorAccentBright = "#7FB4FF" // Headers, current selection

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorAccentBright))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimaryText))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorDisabledText)).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1)
)
