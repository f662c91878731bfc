package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bevyremote/brpmcp/internal/aids"
	"github.com/bevyremote/brpmcp/internal/mcp"
)

// AppState is the top-level screen the model is showing, mirroring
// mcpcli's AppState enum (StateLoading/StateToolList/StateShowingResult/...)
// collapsed to the states this bridge's simpler two-panel flow needs.
type AppState int

const (
	StateLoading AppState = iota
	StateToolList
	StateArgs
	StateResult
	StateError
)

type PanelType int

const (
	PanelTools PanelType = iota
	PanelArgs
	PanelResult
)

const (
	minWindowWidth  = 60
	minWindowHeight = 16
)

type toolItem struct{ tool mcp.Tool }

func (i toolItem) Title() string { return i.tool.Name }
func (i toolItem) Description() string {
	if i.tool.Description != nil {
		return *i.tool.Description
	}
	return ""
}
func (i toolItem) FilterValue() string { return i.tool.Name }

// Model is brpmcp-tui's bubbletea model: a tool list on the left, a JSON
// argument editor and result viewport on the right, driving a brpmcp child
// process over stdio instead of mcpcli's HTTP server.
type Model struct {
	state AppState
	err   error

	client *stdioClient
	theme  *Theme
	keys   KeyMap

	tools    []mcp.Tool
	toolList list.Model

	selected  *mcp.Tool
	argsInput textinput.Model

	lastCall        *toolCall
	resultViewport  viewport.Model
	formattedResult string

	activePanel PanelType

	windowWidth  int
	windowHeight int
}

func newModel(client *stdioClient) Model {
	argsInput := textinput.New()
	argsInput.Placeholder = `{}`
	return Model{
		state:        StateLoading,
		client:       client,
		theme:        NewTheme(),
		keys:         defaultKeyMap(),
		argsInput:    argsInput,
		activePanel:  PanelTools,
		windowWidth:  80,
		windowHeight: minWindowHeight,
	}
}

func (m Model) Init() tea.Cmd { return m.loadTools() }

type toolsLoadedMsg struct {
	tools []mcp.Tool
	err   error
}

type toolCallMsg struct{ call toolCall }

func (m Model) loadTools() tea.Cmd {
	return func() tea.Msg {
		tools, err := m.client.listTools()
		return toolsLoadedMsg{tools: tools, err: err}
	}
}

func (m Model) runTool(name, args string) tea.Cmd {
	return func() tea.Msg {
		return toolCallMsg{call: m.client.callTool(name, args)}
	}
}

func (m *Model) setWindowSize(w, h int) {
	if w < minWindowWidth {
		w = minWindowWidth
	}
	if h < minWindowHeight {
		h = minWindowHeight
	}
	m.windowWidth, m.windowHeight = w, h
}

func (m *Model) initToolList() {
	m.toolList = list.New(nil, list.NewDefaultDelegate(), m.windowWidth/2, m.windowHeight-4)
	m.toolList.Title = "tools"
	m.toolList.SetShowStatusBar(false)
}

func (m *Model) syncToolItems() {
	items := make([]list.Item, len(m.tools))
	for i, t := range m.tools {
		items[i] = toolItem{tool: t}
	}
	m.toolList.SetItems(items)
}

func (m *Model) initResultViewport() {
	m.resultViewport = viewport.New(m.windowWidth/2-4, m.windowHeight-8)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWindowSize(msg.Width, msg.Height)
		if m.toolList.Width() == 0 {
			m.initToolList()
			m.syncToolItems()
		} else {
			m.toolList.SetSize(m.windowWidth/2, m.windowHeight-4)
		}
		if m.resultViewport.Width == 0 {
			m.initResultViewport()
		} else {
			m.resultViewport.Width = m.windowWidth/2 - 4
			m.resultViewport.Height = m.windowHeight - 8
		}
		return m, nil

	case toolsLoadedMsg:
		if aids.IsError(msg.err) {
			m.err = msg.err
			m.state = StateError
			return m, nil
		}
		m.tools = msg.tools
		if m.toolList.Width() != 0 {
			m.syncToolItems()
		}
		m.state = StateToolList
		m.err = nil
		return m, nil

	case toolCallMsg:
		call := msg.call
		m.lastCall = &call
		m.formattedResult = formatResult(call)
		if m.resultViewport.Width != 0 {
			m.resultViewport.SetContent(m.formattedResult)
		}
		m.state = StateResult
		m.activePanel = PanelResult
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.state == StateArgs && m.argsInput.Focused() {
		switch {
		case key.Matches(msg, m.keys.Execute):
			if m.selected == nil {
				return m, nil
			}
			return m, m.runTool(m.selected.Name, m.argsInput.Value())
		case key.Matches(msg, m.keys.Cancel):
			m.state = StateToolList
			m.activePanel = PanelTools
			m.argsInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.argsInput, cmd = m.argsInput.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.NextPanel) {
		m.activePanel = nextPanel(m.activePanel)
		return m, nil
	}
	if key.Matches(msg, m.keys.PrevPanel) {
		m.activePanel = prevPanel(m.activePanel)
		return m, nil
	}
	if key.Matches(msg, m.keys.Refresh) {
		m.state = StateLoading
		return m, m.loadTools()
	}

	switch m.state {
	case StateToolList:
		if m.activePanel == PanelTools {
			if key.Matches(msg, m.keys.Execute) {
				if item, ok := m.toolList.SelectedItem().(toolItem); ok {
					tool := item.tool
					m.selected = &tool
					m.argsInput.SetValue("")
					m.argsInput.Focus()
					m.state = StateArgs
					m.activePanel = PanelArgs
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.toolList, cmd = m.toolList.Update(msg)
			return m, cmd
		}
	case StateResult:
		if m.activePanel == PanelResult {
			var cmd tea.Cmd
			m.resultViewport, cmd = m.resultViewport.Update(msg)
			return m, cmd
		}
		if key.Matches(msg, m.keys.Cancel) {
			m.state = StateToolList
			m.activePanel = PanelTools
		}
	case StateError:
		if key.Matches(msg, m.keys.Cancel) {
			m.state = StateToolList
			m.activePanel = PanelTools
		}
	}
	return m, nil
}

func nextPanel(p PanelType) PanelType {
	switch p {
	case PanelTools:
		return PanelArgs
	case PanelArgs:
		return PanelResult
	default:
		return PanelTools
	}
}

func prevPanel(p PanelType) PanelType {
	switch p {
	case PanelArgs:
		return PanelTools
	case PanelResult:
		return PanelArgs
	default:
		return PanelResult
	}
}

func formatResult(call toolCall) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tool: %s\nduration: %s\n\n", call.ToolName, call.Duration)
	if aids.IsError(call.Err) {
		fmt.Fprintf(&b, "error: %v\n", call.Err)
	}
	if call.Result != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, []byte(call.Result), "", "  "); err == nil {
			b.WriteString(pretty.String())
		} else {
			b.WriteString(call.Result)
		}
	}
	return b.String()
}
