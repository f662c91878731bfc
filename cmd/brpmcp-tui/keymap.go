package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap centralizes all key bindings, trimmed from mcpcli's to the subset
// this simpler two-panel (tool list, arguments/result) debug client needs:
// no Approve/Decline/PathInput/KillProc, since this bridge has no
// elicitation flow or local-server-path spawning to drive.
type KeyMap struct {
	Quit      key.Binding
	NextPanel key.Binding
	PrevPanel key.Binding
	Refresh   key.Binding
	Execute   key.Binding
	Cancel    key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		NextPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh tools")),
		Execute:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "call tool")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}
