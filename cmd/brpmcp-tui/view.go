package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	switch m.state {
	case StateLoading:
		return m.theme.Title.Render("loading tools...")
	case StateError:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Error.Render(fmt.Sprintf("error: %v", m.err)),
			m.theme.Help.Render("esc: back to tool list  ctrl+c: quit"),
		)
	}

	left := m.theme.panelBorder(m.activePanel == PanelTools).Render(m.toolList.View())

	var right string
	switch m.state {
	case StateArgs:
		name := ""
		if m.selected != nil {
			name = m.selected.Name
		}
		right = lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Title.Render("arguments for "+name),
			m.theme.panelBorder(m.activePanel == PanelArgs).Render(m.argsInput.View()),
			m.theme.Help.Render("enter: call tool  esc: cancel"),
		)
	case StateResult:
		right = m.theme.panelBorder(m.activePanel == PanelResult).Render(m.resultViewport.View())
	default:
		right = m.theme.Help.Render("enter: select a tool to call it")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	status := m.theme.StatusBar.Width(m.windowWidth).Render(m.statusLine())
	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}

func (m Model) statusLine() string {
	switch m.state {
	case StateResult:
		if m.lastCall != nil && m.lastCall.Err != nil {
			return "last call failed: " + m.lastCall.Err.Error()
		}
		return "tab: switch panel  r: refresh  ctrl+c: quit"
	default:
		return "tab: switch panel  r: refresh  ctrl+c: quit"
	}
}
