package tui

import "github.com/charmbracelet/lipgloss"

// Palette (ANSI 256).
const (
	colorAccent  = lipgloss.Color("212")
	colorMuted   = lipgloss.Color("241")
	colorSubtle  = lipgloss.Color("245")
	colorText    = lipgloss.Color("252")
	colorOK      = lipgloss.Color("78")
	colorFail    = lipgloss.Color("196")
	colorUser    = lipgloss.Color("111")
	colorContext = lipgloss.Color("109")
	colorBar     = lipgloss.Color("236")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorSubtle)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listItemStyle = lipgloss.NewStyle().Foreground(colorText)

	successStyle = lipgloss.NewStyle().Foreground(colorOK)
	errorStyle   = lipgloss.NewStyle().Foreground(colorFail)
	dimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	helpStyle    = dimStyle

	userMsgStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorUser)
	assistantMsgStyle = lipgloss.NewStyle().Foreground(colorText)
	contextStyle      = lipgloss.NewStyle().Foreground(colorContext)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorBar).
			Padding(0, 1)
)
