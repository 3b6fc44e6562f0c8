package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#71717A")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtitleStyle = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	bannerStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	panelStyle    = lipgloss.NewStyle().Padding(1, 2)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	activeTab     = tabStyle.Bold(true).Foreground(colorAccent).Underline(true)
)
