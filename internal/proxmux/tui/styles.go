package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("236"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleRunning  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleStopped  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	stylePaused   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleTabOn    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	styleTabOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	styleBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	styleConfirm  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1)
	styleFrame    = lipgloss.NewStyle().Padding(0, 1)
)
