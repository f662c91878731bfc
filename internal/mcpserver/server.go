package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/bevyremote/brpmcp/internal/aids"
	"github.com/bevyremote/brpmcp/internal/brp"
	"github.com/bevyremote/brpmcp/internal/config"
	"github.com/bevyremote/brpmcp/internal/mcp"
	"github.com/bevyremote/brpmcp/internal/watch"
)

// Server is the stdio MCP front-end. One Server serves exactly one agent
// connection for the life of the process, matching spec §5's single-agent
// assumption: concurrency only exists among the BRP calls a single
// agent's tool calls trigger, never among multiple agent connections.
type Server struct {
	cfg    *config.Config
	client *brp.Client
	watch  *watch.Manager
	log    *slog.Logger

	tools map[string]toolHandler
}

func New(cfg *config.Config, client *brp.Client, watchMgr *watch.Manager, log *slog.Logger) *Server {
	s := &Server{cfg: cfg, client: client, watch: watchMgr, log: log}
	s.tools = buildToolTable(s)
	return s
}

// Serve runs the stdio read/dispatch loop until r is exhausted or ctx is
// canceled (spec §1's "MCP transport layer"): one JSON-RPC request per
// line in, one response per line out.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req mcp.JSONRPCRequest
		if err := json.Unmarshal(line, &req); aids.IsError(err) {
			s.log.Error("malformed jsonrpc request", "error", err)
			_ = enc.Encode(mcp.NewJSONRPCError(nil, mcp.ParseError, "parse error: "+err.Error(), nil))
			continue
		}
		resp := s.handle(ctx, req)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); aids.IsError(err) {
			return fmt.Errorf("writing mcp response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, req mcp.JSONRPCRequest) any {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil // no response expected for notifications
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return mcp.NewJSONRPCError(req.ID, mcp.MethodNotFound, "method not found: "+req.Method, nil)
	}
}

func (s *Server) handleInitialize(req mcp.JSONRPCRequest) any {
	result := mcp.InitializeResult{
		ProtocolVersion: mcp.LatestProtocolVersion,
		Capabilities: mcp.ServerCapabilities{
			Tools: &struct {
				ListChanged *bool `json:"listChanged,omitempty"`
			}{ListChanged: aids.New(false)},
		},
		ServerInfo: mcp.Implementation{
			BaseMetadata: mcp.BaseMetadata{Name: "brpmcp"},
			Version:      "0.1.0",
		},
	}
	return mcp.NewJSONRPCResponse(req.ID, result)
}

func (s *Server) handleToolsList(req mcp.JSONRPCRequest) any {
	tools := make([]mcp.Tool, 0, len(s.tools))
	for _, h := range s.tools {
		tools = append(tools, h.def)
	}
	return mcp.NewJSONRPCResponse(req.ID, mcp.ListToolsResult{Tools: tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req mcp.JSONRPCRequest) any {
	var params mcp.CallToolRequestParams
	if err := json.Unmarshal(req.Params, &params); aids.IsError(err) {
		return mcp.NewJSONRPCError(req.ID, mcp.InvalidParams, "invalid tools/call params: "+err.Error(), nil)
	}

	handler, known := s.tools[params.Name]
	if !known {
		return mcp.NewJSONRPCError(req.ID, mcp.MethodNotFound, "unknown tool: "+params.Name, nil)
	}

	envelope := handler.run(ctx, s, params.Arguments)
	body, err := json.Marshal(envelope)
	if aids.IsError(err) {
		return mcp.NewJSONRPCError(req.ID, mcp.InternalError, "encoding tool result: "+err.Error(), nil)
	}

	return mcp.NewJSONRPCResponse(req.ID, mcp.CallToolResult{
		Content: []mcp.ContentBlock{mcp.NewTextContent(string(body))},
		IsError: envelope.Status == StatusError,
	})
}
