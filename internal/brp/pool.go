// Package brp implements C7 (the HTTP connection pool) and C8 (the BRP
// JSON-RPC client) of spec §4.1-§4.2. It is grounded on the teacher's
// mcpcli/http.go: a wrapped *http.Client, context.WithTimeout around each
// call, and the isError(err != nil) idiom used throughout this codebase
// (internal/aids.IsError is the shared form of that same helper).
package brp

import (
	"net"
	"net/http"

	"github.com/bevyremote/brpmcp/internal/config"
)

// Pool owns the two long-lived *http.Client instances this server needs:
// one for ordinary request/response BRP calls (bounded timeout, per
// spec §4.1), and one for SSE watch subscriptions (no response timeout,
// since a watch stream is expected to stay open indefinitely until the
// agent stops it).
type Pool struct {
	calls *http.Client
	watch *http.Client
}

// NewPool builds a Pool from the process configuration (spec §4.1: ~50
// idle conns/host, 5s connect timeout, 30s request timeout, 5m idle
// timeout).
func NewPool(cfg *config.Config) *Pool {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
	return &Pool{
		calls: &http.Client{Transport: transport, Timeout: cfg.RequestTimeout},
		watch: &http.Client{Transport: transport}, // no Timeout: streams stay open
	}
}

// Calls returns the client used for bounded request/response BRP calls.
func (p *Pool) Calls() *http.Client { return p.calls }

// Watch returns the client used for long-lived SSE subscriptions.
func (p *Pool) Watch() *http.Client { return p.watch }
