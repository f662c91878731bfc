// Package watch implements C10: the watch manager that turns a BRP
// bevy/get+watch or bevy/list+watch subscription into a background
// goroutine streaming Server-Sent Events into its own log file (one file
// per watch, appended to and never rotated). The SSE line-parsing loop is grounded on the "id:"/
// "event:"/"data:" field shape exercised by the pack's
// middlewares/sse test fixtures (go-mizu-mizu), since the teacher itself
// only ever polls over plain HTTP (zstream/main.go) rather than reading a
// true event stream.
package watch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bevyremote/brpmcp/internal/brperr"
	"github.com/bevyremote/brpmcp/internal/config"
)

// ID identifies one active watch subscription (spec §3.1's WatchId).
type ID string

// Event is one decoded SSE frame from a BRP watch stream.
type Event struct {
	Data json.RawMessage
	Time time.Time
}

// Handle is the live state of one subscription: the manager hands these
// out from Start and accepts their IDs back in Stop.
type Handle struct {
	ID        ID
	Method    string
	Port      int
	StartedAt time.Time
	LogPath   string

	cancel context.CancelFunc
	done   chan struct{}
	err    atomic.Value // error
}

// Err reports the terminal error a watch's background goroutine exited
// with, or nil if it is still running or its stream reached its end.
// Stop cancels the stream's request, so the read error caused by that
// cancellation is recorded here as well.
func (h *Handle) Err() error {
	v := h.err.Load()
	if v == nil {
		return nil
	}
	return v.(error)
}

var idCounter atomic.Int64

func nextID() ID {
	return ID(strconv.FormatInt(idCounter.Add(1), 10))
}

// Manager owns the concurrent map of active watches (spec §4.10, §5: a
// single process-wide registry any tool-dispatch goroutine can read/write
// safely).
type Manager struct {
	cfg    *config.Config
	client *http.Client

	mu      sync.RWMutex
	watches map[ID]*Handle
}

func NewManager(cfg *config.Config, watchClient *http.Client) *Manager {
	return &Manager{
		cfg:     cfg,
		client:  watchClient,
		watches: map[ID]*Handle{},
	}
}

// Start opens a new SSE subscription against method/params on port, and
// begins streaming decoded events into a per-watch log file (not rotated) under the
// configured watch-log directory (spec §4.10, §6.3's watch log path).
func (m *Manager) Start(ctx context.Context, method string, params json.RawMessage, port int) (*Handle, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	id := nextID()
	// The watch id stays a small sequential integer (spec §3.1) since agents
	// reference it directly in stop/list calls; the log filename instead
	// gets a uuid suffix so log files from different process runs (which
	// both start their id counter back at 1) never collide on disk.
	logPath := filepath.Join(m.cfg.WatchLogDir, fmt.Sprintf("brpmcp-watch-%s-%s.log", id, uuid.NewString()))
	logFile, err := os.Create(logPath)
	if err != nil {
		cancel()
		return nil, brperr.Wrap(brperr.CodeTransport, err.Error(), "opening watch log file for %s", method)
	}

	url := fmt.Sprintf("http://%s:%d%s", m.cfg.DefaultHost, port, m.cfg.JSONRPCPath)
	body := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params}
	payload, _ := json.Marshal(body)

	httpReq, err := http.NewRequestWithContext(watchCtx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		cancel()
		logFile.Close()
		return nil, brperr.New(brperr.CodeInternal, "building watch request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		cancel()
		logFile.Close()
		return nil, brperr.Wrap(brperr.CodeTransport, err.Error(), "opening watch stream for %s", method)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cancel()
		logFile.Close()
		resp.Body.Close()
		return nil, brperr.New(brperr.CodeTransport, "watch stream for %s returned HTTP %d", method, resp.StatusCode)
	}

	handle := &Handle{
		ID:        id,
		Method:    method,
		Port:      port,
		StartedAt: time.Now(),
		LogPath:   logPath,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.watches[id] = handle
	m.mu.Unlock()

	go m.pump(handle, resp.Body, logFile)

	return handle, nil
}

// pump reads SSE frames until the stream ends or is canceled, writing each
// decoded event as one JSON line to the watch's log file (spec §4.10).
func (m *Manager) pump(h *Handle, body io.ReadCloser, logFile *os.File) {
	defer close(h.done)
	defer body.Close()
	defer logFile.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var dataBuf strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "data:"):
			dataBuf.WriteString(strings.TrimPrefix(line, "data:"))
		case line == "":
			if dataBuf.Len() > 0 {
				m.writeEvent(h, logFile, dataBuf.String())
				dataBuf.Reset()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		h.err.Store(brperr.Wrap(brperr.CodeTransport, err.Error(), "watch stream %s for %s ended", h.ID, h.Method))
	}
}

func (m *Manager) writeEvent(h *Handle, logFile *os.File, raw string) {
	line := fmt.Sprintf(`{"time":%q,"data":%s}`+"\n", time.Now().Format(time.RFC3339Nano), strings.TrimSpace(raw))
	_, _ = logFile.WriteString(line)
}

// Stop cancels a watch's underlying request and removes it from the
// registry. ok is false if id is unknown.
func (m *Manager) Stop(id ID) (ok bool) {
	m.mu.Lock()
	h, found := m.watches[id]
	if found {
		delete(m.watches, id)
	}
	m.mu.Unlock()
	if !found {
		return false
	}
	h.cancel()
	<-h.done
	return true
}

// List returns a snapshot of every active watch (spec §6.1's
// brp_list_active_watches tool).
func (m *Manager) List() []*Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Handle, 0, len(m.watches))
	for _, h := range m.watches {
		out = append(out, h)
	}
	return out
}

// Lookup returns the handle for id, or nil, false if unknown.
func (m *Manager) Lookup(id ID) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.watches[id]
	return h, ok
}
