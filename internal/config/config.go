// Package config loads process configuration from the environment with
// caarlos0/env, parsed and validated once behind a sync.OnceValue.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the bridge server's process-wide configuration. Per-call
// parameters (port, entity, component names, ...) arrive as MCP tool
// arguments instead; nothing here is request-scoped.
type Config struct {
	// DefaultPort is used by tools that accept an optional port argument.
	DefaultPort int `env:"DEFAULT_PORT" envDefault:"15702"`

	// DefaultHost is the loopback host the BRP client connects to.
	DefaultHost string `env:"DEFAULT_HOST" envDefault:"127.0.0.1"`

	// JSONRPCPath is the HTTP path BRP's JSON-RPC endpoint is served on.
	JSONRPCPath string `env:"JSONRPC_PATH" envDefault:"/"`

	// RequestTimeout bounds a single JSON-RPC round trip.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// ConnectTimeout bounds the TCP connect phase of a JSON-RPC round trip.
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`

	// MaxIdleConnsPerHost bounds the pooled idle HTTP connections kept per port.
	MaxIdleConnsPerHost int `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"50"`

	// IdleConnTimeout closes pooled connections that have sat idle this long.
	IdleConnTimeout time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"5m"`

	// RecursionDepthLimit bounds mutation-path descent (spec invariant #2).
	RecursionDepthLimit int `env:"RECURSION_DEPTH_LIMIT" envDefault:"10"`

	// WatchLogDir is where per-watch event logs and HTTP post-mortem
	// snapshots are written. Defaults to the OS temp directory.
	WatchLogDir string `env:"WATCH_LOG_DIR"`

	// LogLevel controls the verbosity of the error/diagnostic logger.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) validate() error {
	if c.DefaultPort <= 0 || c.DefaultPort > 65535 {
		return errors.New("DEFAULT_PORT must be between 1 and 65535")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.RecursionDepthLimit <= 0 {
		return errors.New("RECURSION_DEPTH_LIMIT must be positive")
	}
	if c.WatchLogDir == "" {
		c.WatchLogDir = os.TempDir()
	}
	return nil
}

// Get returns the process-wide Config, parsed and validated once.
var Get = sync.OnceValue(func() *Config {
	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{Prefix: "BRPMCP_"})
	if err == nil {
		err = cfg.validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
})
