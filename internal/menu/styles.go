package menu

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("205")
	Secondary = lipgloss.Color("86")
	Subtle    = lipgloss.Color("241")
	Success   = lipgloss.Color("46")
	Warning   = lipgloss.Color("214")
	Error     = lipgloss.Color("196")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(Primary).
			Padding(0, 1)

	CursorStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ActiveStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	RowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	ActionStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(Subtle)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Subtle).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Subtle).
			Width(10)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Secondary)
)
