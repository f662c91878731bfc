package brp

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bevyremote/brpmcp/internal/brperr"
	"github.com/bevyremote/brpmcp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, int) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := &config.Config{
		DefaultHost:         "127.0.0.1",
		DefaultPort:         port,
		JSONRPCPath:         "/",
		RequestTimeout:      2 * time.Second,
		ConnectTimeout:      time.Second,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     time.Minute,
		WatchLogDir:         t.TempDir(),
	}
	return NewClient(NewPool(cfg), cfg), port
}

func TestClient_Execute_Success(t *testing.T) {
	client, port := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "bevy/get", req.Method)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`))
	})
	result, err := client.Execute(t.Context(), "bevy/get", json.RawMessage(`{}`), port)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
}

func TestClient_Execute_ProtocolError(t *testing.T) {
	client, port := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-1,"message":"entity not found"}}`))
	})
	_, err := client.Execute(t.Context(), "bevy/get", json.RawMessage(`{}`), port)
	require.Error(t, err)
	brpErr, ok := err.(*brperr.Error)
	require.True(t, ok)
	assert.Equal(t, brperr.CodeProtocol, brpErr.Code)
	assert.Contains(t, brpErr.Message, "entity not found")
}

func TestClient_Execute_NonOKStatus(t *testing.T) {
	client, port := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})
	_, err := client.Execute(t.Context(), "bevy/get", json.RawMessage(`{}`), port)
	require.Error(t, err)
	brpErr, ok := err.(*brperr.Error)
	require.True(t, ok)
	assert.Equal(t, brperr.CodeTransport, brpErr.Code)
}
