package main

import "github.com/charmbracelet/lipgloss"

// Theme centralizes the styles every panel draws with, the same role
// mcpcli's theme.go plays for its HTTP-transaction viewer (that file exists
// only in an older generation of the teacher's client; this one speaks its
// own transport but keeps the same lipgloss-based styling approach rather
// than the newer generation's hand-rolled ANSI color type).
type Theme struct {
	Title        lipgloss.Style
	ActiveBorder lipgloss.Style
	Border       lipgloss.Style
	Help         lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	StatusBar    lipgloss.Style
}

func NewTheme() *Theme {
	active := lipgloss.Color("205")
	dim := lipgloss.Color("240")
	return &Theme{
		Title: lipgloss.NewStyle().Bold(true).Foreground(active),
		ActiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(active).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(dim),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")).Padding(0, 1),
	}
}

func (t *Theme) panelBorder(active bool) lipgloss.Style {
	if active {
		return t.ActiveBorder
	}
	return t.Border
}
