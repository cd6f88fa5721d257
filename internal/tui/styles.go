package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	paneStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1)
	activePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(1)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	promptLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	promptHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("196")).
			PaddingLeft(1)
	buttonStyle       = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("238"))
	activeButtonStyle = lipgloss.NewStyle().Padding(0, 2).
				Background(lipgloss.Color("212")).
				Foreground(lipgloss.Color("0")).
				Bold(true)
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
)
