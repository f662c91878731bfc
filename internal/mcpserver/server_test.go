package mcpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/bevyremote/brpmcp/internal/brp"
	"github.com/bevyremote/brpmcp/internal/config"
	"github.com/bevyremote/brpmcp/internal/mcp"
	"github.com/bevyremote/brpmcp/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, brpHandler http.HandlerFunc) (*Server, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(brpHandler)
	t.Cleanup(srv.Close)

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := &config.Config{
		DefaultHost:         "127.0.0.1",
		DefaultPort:         port,
		JSONRPCPath:         "/",
		RecursionDepthLimit: 10,
		WatchLogDir:         t.TempDir(),
	}
	pool := brp.NewPool(cfg)
	client := brp.NewClient(pool, cfg)
	watchMgr := watch.NewManager(cfg, srv.Client())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, client, watchMgr, logger), srv
}

func callLine(t *testing.T, s *Server, line string) map[string]any {
	t.Helper()
	var in, out bytes.Buffer
	in.WriteString(line + "\n")
	err := s.Serve(t.Context(), &in, &out)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	return resp
}

func TestServer_Initialize(t *testing.T) {
	s, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
	resp := callLine(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	result := resp["result"].(map[string]any)
	assert.Equal(t, mcp.LatestProtocolVersion, result["protocolVersion"])
}

func TestServer_ToolsList(t *testing.T) {
	s, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
	resp := callLine(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`)
	result := resp["result"].(map[string]any)
	tools := result["tools"].([]any)
	assert.NotEmpty(t, tools)

	names := map[string]bool{}
	for _, raw := range tools {
		tool := raw.(map[string]any)
		names[tool["name"].(string)] = true
	}
	assert.True(t, names["bevy_get"])
	assert.True(t, names["brp_type_guide"])
	assert.True(t, names["brp_registry_schema"])
}

func TestServer_ToolsCall_BevyGet(t *testing.T) {
	s, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"glam::Vec3":[1.0,2.0,3.0]}}`))
	})
	line := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"bevy_get","arguments":{"entity":1,"components":["glam::Vec3"]}}}`
	resp := callLine(t, s, line)

	result := resp["result"].(map[string]any)
	content := result["content"].([]any)[0].(map[string]any)
	text := content["text"].(string)

	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(text), &envelope))
	assert.Equal(t, StatusOK, envelope.Status)
	assert.Contains(t, string(envelope.Result), "glam::Vec3")
}

func TestServer_ToolsCall_BrpAllTypeGuides(t *testing.T) {
	registry := `{"$defs":{
		"glam::Vec3":{"kind":"Struct","reflectTypes":["Component"],"shortPath":"Vec3"},
		"core::bool":{"kind":"Value","reflectTypes":["Component"],"shortPath":"bool"}
	}}`
	s, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, registry)
	})
	line := `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"brp_all_type_guides","arguments":{}}}`
	resp := callLine(t, s, line)

	result := resp["result"].(map[string]any)
	content := result["content"].([]any)[0].(map[string]any)
	text := content["text"].(string)

	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(text), &envelope))
	assert.Equal(t, StatusOK, envelope.Status)

	var guides []map[string]any
	require.NoError(t, json.Unmarshal(envelope.Result, &guides))
	assert.Len(t, guides, 2)
}

func TestServer_UnknownTool(t *testing.T) {
	s, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
	line := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"not_a_tool","arguments":{}}}`
	resp := callLine(t, s, line)
	errObj := resp["error"].(map[string]any)
	assert.Contains(t, errObj["message"], "unknown tool")
}

func TestServer_MalformedJSON(t *testing.T) {
	s, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
	var in, out bytes.Buffer
	in.WriteString(strings.TrimSpace(`not json`) + "\n")
	err := s.Serve(t.Context(), &in, &out)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	errObj := resp["error"].(map[string]any)
	assert.Contains(t, errObj["message"], "parse error")
}
