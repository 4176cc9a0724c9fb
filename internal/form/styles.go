package form

import "github.com/charmbracelet/lipgloss"

// Styles contains the form's style definitions.
var Styles = struct {
	Title        lipgloss.Style
	Section      lipgloss.Style
	Label        lipgloss.Style
	Required     lipgloss.Style
	Issue        lipgloss.Style
	Button       lipgloss.Style
	ButtonFocus  lipgloss.Style
	Primary      lipgloss.Style
	PrimaryFocus lipgloss.Style
	Status       lipgloss.Style
	Help         lipgloss.Style
	AlertBox     lipgloss.Style
	AlertError   lipgloss.Style
	AlertTitle   lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		MarginBottom(1),
	Section: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginTop(1),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),
	Required: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),
	Issue: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Italic(true),
	Button: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1),
	ButtonFocus: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Foreground(lipgloss.Color("205")).
		Padding(0, 1),
	Primary: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Bold(true).
		Padding(0, 2),
	PrimaryFocus: lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color("86")).
		Foreground(lipgloss.Color("86")).
		Bold(true).
		Padding(0, 2),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		MarginTop(1),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1),
	AlertBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(1, 2).
		Margin(1),
	AlertError: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2).
		Margin(1),
	AlertTitle: lipgloss.NewStyle().
		Bold(true),
}
