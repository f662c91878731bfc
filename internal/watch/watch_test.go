package watch

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/bevyremote/brpmcp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DefaultHost: "127.0.0.1",
		JSONRPCPath: "/",
		WatchLogDir: dir,
	}
}

func sseServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, f := range frames {
			w.Write([]byte("data: " + f + "\n\n"))
			flusher.Flush()
		}
	}))
}

func TestManager_StartAndStop(t *testing.T) {
	srv := sseServer(t, []string{`{"tick":1}`, `{"tick":2}`})
	defer srv.Close()

	cfg := testConfig(t)
	port := serverPort(t, srv)
	cfg.DefaultPort = port

	mgr := NewManager(cfg, srv.Client())
	handle, err := mgr.Start(t.Context(), "bevy/get+watch", json.RawMessage(`{}`), port)
	require.NoError(t, err)
	require.NotEmpty(t, handle.ID)

	list := mgr.List()
	require.Len(t, list, 1)

	ok := mgr.Stop(handle.ID)
	assert.True(t, ok)

	_, found := mgr.Lookup(handle.ID)
	assert.False(t, found)
}

func TestManager_StopUnknownID(t *testing.T) {
	cfg := testConfig(t)
	mgr := NewManager(cfg, http.DefaultClient)
	assert.False(t, mgr.Stop(ID("nope")))
}

func TestManager_WritesEventsToLogFile(t *testing.T) {
	srv := sseServer(t, []string{`{"tick":1}`})
	defer srv.Close()

	cfg := testConfig(t)
	port := serverPort(t, srv)
	cfg.DefaultPort = port

	mgr := NewManager(cfg, srv.Client())
	handle, err := mgr.Start(t.Context(), "bevy/get+watch", json.RawMessage(`{}`), port)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(handle.LogPath)
		return err == nil && len(data) > 0
	}, time.Second, 10*time.Millisecond)

	mgr.Stop(handle.ID)
}

func serverPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}
