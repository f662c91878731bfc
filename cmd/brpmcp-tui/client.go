package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/bevyremote/brpmcp/internal/aids"
	"github.com/bevyremote/brpmcp/internal/mcp"
)

// stdioClient drives a brpmcp child process over its stdin/stdout pipes,
// framing one JSON-RPC request per line the same way mcpserver.Server reads
// them, rather than mcpcli's HTTP request/response cycle: this bridge has no
// HTTP surface at all, so the debug client must speak its own transport.
type stdioClient struct {
	cmd    *exec.Cmd
	pipeIn io.WriteCloser
	out    *bufio.Scanner
	nextID atomic.Int64
}

// spawnServer starts path as a child process and wires its stdio, mirroring
// mcpcli's SpawnMCPServer helper which launches a local mcpsvr binary and
// captures its first line of output; here every line matters, not just the
// first, so stdout is wrapped in a scanner instead of read once.
func spawnServer(path string) (*stdioClient, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if aids.IsError(err) {
		return nil, fmt.Errorf("opening brpmcp stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if aids.IsError(err) {
		return nil, fmt.Errorf("opening brpmcp stdout: %w", err)
	}
	if err := cmd.Start(); aids.IsError(err) {
		return nil, fmt.Errorf("starting brpmcp: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	c := &stdioClient{cmd: cmd, pipeIn: stdin, out: scanner}
	return c, nil
}

func (c *stdioClient) Close() error {
	_ = c.pipeIn.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	return c.cmd.Wait()
}

// call sends one JSON-RPC request and blocks for its matching response line.
// The server answers requests strictly in the order it reads them, so a
// single in-flight call at a time (the only thing this debug UI ever does)
// needs no correlation beyond reusing the id it sent.
func (c *stdioClient) call(method string, params any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	paramsRaw, err := json.Marshal(params)
	if aids.IsError(err) {
		return nil, fmt.Errorf("encoding %s params: %w", method, err)
	}
	req := mcp.JSONRPCRequest{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      json.RawMessage(fmt.Sprintf("%d", id)),
		Method:  method,
		Params:  paramsRaw,
	}
	line, err := json.Marshal(req)
	if aids.IsError(err) {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	if _, err := c.pipeIn.Write(append(line, '\n')); aids.IsError(err) {
		return nil, fmt.Errorf("writing %s request: %w", method, err)
	}

	if !c.out.Scan() {
		if err := c.out.Err(); aids.IsError(err) {
			return nil, fmt.Errorf("reading %s response: %w", method, err)
		}
		return nil, fmt.Errorf("brpmcp closed stdout before answering %s", method)
	}

	var resp struct {
		Result json.RawMessage   `json:"result"`
		Error  *mcp.JSONRPCErrror `json:"error"`
	}
	if err := json.Unmarshal(c.out.Bytes(), &resp); aids.IsError(err) {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: %s", method, resp.Error.Message)
	}
	return resp.Result, nil
}

// notify sends a notification (no id, no response expected), used only for
// the "initialized" handshake notice the protocol requires after initialize.
func (c *stdioClient) notify(method string) error {
	req := mcp.JSONRPCRequest{JSONRPC: mcp.JSONRPCVersion, Method: method}
	line, err := json.Marshal(req)
	if aids.IsError(err) {
		return err
	}
	_, err = c.pipeIn.Write(append(line, '\n'))
	return err
}

func (c *stdioClient) initialize() (mcp.InitializeResult, error) {
	var result mcp.InitializeResult
	raw, err := c.call("initialize", mcp.InitializeRequestParams{
		ProtocolVersion: mcp.LatestProtocolVersion,
		ClientInfo:      mcp.Implementation{BaseMetadata: mcp.BaseMetadata{Name: "brpmcp-tui"}, Version: "0.1.0"},
	})
	if aids.IsError(err) {
		return result, err
	}
	if err := json.Unmarshal(raw, &result); aids.IsError(err) {
		return result, err
	}
	return result, c.notify("notifications/initialized")
}

func (c *stdioClient) listTools() ([]mcp.Tool, error) {
	raw, err := c.call("tools/list", struct{}{})
	if aids.IsError(err) {
		return nil, err
	}
	var result mcp.ListToolsResult
	if err := json.Unmarshal(raw, &result); aids.IsError(err) {
		return nil, err
	}
	return result.Tools, nil
}

// toolCall is the result of one tools/call round trip, timed the way
// mcpcli's HTTPTransaction records a request's wall-clock duration for
// on-screen display.
type toolCall struct {
	ToolName string
	Args     string
	Result   string
	Err      error
	Duration time.Duration
}

func (c *stdioClient) callTool(name, argsJSON string) toolCall {
	start := time.Now()
	tc := toolCall{ToolName: name, Args: argsJSON}

	var argsRaw json.RawMessage
	if argsJSON == "" {
		argsRaw = json.RawMessage("{}")
	} else {
		argsRaw = json.RawMessage(argsJSON)
	}

	raw, err := c.call("tools/call", mcp.CallToolRequestParams{Name: name, Arguments: argsRaw})
	tc.Duration = time.Since(start)
	if aids.IsError(err) {
		tc.Err = err
		return tc
	}

	// mcp.CallToolResult.Content is a []ContentBlock interface slice, which
	// encoding/json can't decode back into concrete types; decode the one
	// shape this bridge ever emits (a single TextContent block) directly.
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	if err := json.Unmarshal(raw, &result); aids.IsError(err) {
		tc.Err = err
		return tc
	}
	for _, block := range result.Content {
		if block.Type == "text" {
			tc.Result = block.Text
			break
		}
	}
	if result.IsError {
		tc.Err = fmt.Errorf("tool reported an error")
	}
	return tc
}
