// Command brpmcp-tui is a debug client for exercising a brpmcp server the
// same way mcpcli exercises the teacher's HTTP-based MCP server: spawn it,
// list its tools, and call them interactively while watching the result.
// Unlike mcpcli, there is no remote server URL to point at; brpmcp only
// speaks stdio, so this client always spawns and owns its own child process.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/bevyremote/brpmcp/internal/aids"
)

func main() {
	serverPath := flag.String("server", "brpmcp", "path to the brpmcp binary to spawn")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "brpmcp-tui: stdout is not a terminal")
		os.Exit(1)
	}

	client, err := spawnServer(*serverPath)
	if aids.IsError(err) {
		fmt.Fprintf(os.Stderr, "brpmcp-tui: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if _, err := client.initialize(); aids.IsError(err) {
		fmt.Fprintf(os.Stderr, "brpmcp-tui: initialize: %v\n", err)
		os.Exit(1)
	}

	model := newModel(client)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); aids.IsError(err) {
		fmt.Fprintf(os.Stderr, "brpmcp-tui: %v\n", err)
		os.Exit(1)
	}
}
