package brp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bevyremote/brpmcp/internal/aids"
	"github.com/bevyremote/brpmcp/internal/brperr"
	"github.com/bevyremote/brpmcp/internal/config"
)

// Request is the JSON-RPC 2.0 envelope BRP expects (spec §6.2).
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is the JSON-RPC 2.0 envelope BRP returns: exactly one of
// Result/Error is populated (spec §6.2).
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

var nextID atomic.Int64

// Client talks JSON-RPC to a single Bevy process's BRP endpoint. It holds
// no connection state itself beyond the shared Pool, matching spec §5's
// requirement that the client be safe to call concurrently from many
// goroutines without a session lock.
type Client struct {
	pool *Pool
	cfg  *config.Config
}

func NewClient(pool *Pool, cfg *config.Config) *Client {
	return &Client{pool: pool, cfg: cfg}
}

func (c *Client) url(port int) string {
	host := c.cfg.DefaultHost
	if port == 0 {
		port = c.cfg.DefaultPort
	}
	return fmt.Sprintf("http://%s:%d%s", host, port, c.cfg.JSONRPCPath)
}

// Execute performs one BRP method call and decodes its result, per spec
// §4.2: non-2xx HTTP status, transport failure, and a JSON-RPC {error:...}
// payload are all distinguished in the returned *brperr.Error so Format
// Discovery can choose a recovery path based on which one happened.
func (c *Client) Execute(ctx context.Context, method string, params json.RawMessage, port int) (json.RawMessage, error) {
	reqBody := Request{
		JSONRPC: "2.0",
		ID:      nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if aids.IsError(err) {
		return nil, brperr.New(brperr.CodeInternal, "encoding brp request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(port), bytes.NewReader(body))
	if aids.IsError(err) {
		return nil, brperr.New(brperr.CodeInternal, "building brp request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.pool.Calls().Do(httpReq)
	if aids.IsError(err) {
		kind := brperr.TransportTimeout
		if ctx.Err() == nil {
			kind = brperr.TransportConnect
		}
		snapshotErr(c.cfg.WatchLogDir, method, err)
		return nil, brperr.Wrap(brperr.CodeTransport, err.Error(), "brp transport failure (%s) calling %s", kind, method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if aids.IsError(err) {
		return nil, brperr.Wrap(brperr.CodeTransport, err.Error(), "reading brp response body for %s", method)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, brperr.New(brperr.CodeTransport, "brp endpoint returned HTTP %d for %s: %s", resp.StatusCode, method, string(raw))
	}

	var rpcResp Response
	if err := json.Unmarshal(raw, &rpcResp); aids.IsError(err) {
		return nil, brperr.Wrap(brperr.CodeTransport, err.Error(), "decoding brp JSON-RPC envelope for %s", method)
	}
	if rpcResp.Error != nil {
		return nil, brperr.Wrap(brperr.CodeProtocol, rpcResp.Error.Message, "%s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

// snapshotErr writes a small post-mortem file recording a transport
// failure, per spec §4.2's "temp-file post-mortem snapshots" requirement,
// so an agent debugging a crashed/unreachable Bevy process can inspect
// what the last attempted call looked like. Best-effort: a failure to
// write the file is ignored, never returned.
func snapshotErr(dir, method string, cause error) {
	if dir == "" {
		return
	}
	safeMethod := strings.ReplaceAll(method, "/", "_")
	name := filepath.Join(dir, fmt.Sprintf("brpmcp-transport-error-%s-%d.log", safeMethod, time.Now().UnixNano()))
	content := fmt.Sprintf("method=%s\nerror=%s\ntime=%s\n", method, cause, time.Now().Format(time.RFC3339))
	_ = os.WriteFile(name, []byte(content), 0o644)
}
