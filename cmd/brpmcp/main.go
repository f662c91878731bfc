// Command brpmcp bridges an MCP agent (speaking JSON-RPC over stdio) to a
// locally running Bevy process's Remote Protocol endpoint. It wires the
// ambient stack (config, logging, shutdown) and the domain components
// (C1-C11) together, following mcpsvr/main.go's wiring shape: build the
// loggers, build the shutdown manager, build the policy/handler chain,
// then run.
package main

import (
	"os"
	"time"

	"github.com/bevyremote/brpmcp/internal/brp"
	"github.com/bevyremote/brpmcp/internal/config"
	"github.com/bevyremote/brpmcp/internal/lifecycle"
	applog "github.com/bevyremote/brpmcp/internal/log"
	"github.com/bevyremote/brpmcp/internal/mcpserver"
	"github.com/bevyremote/brpmcp/internal/watch"
)

const drainTimeout = 3 * time.Second

func main() {
	cfg := config.Get()
	errorLogger, metricsLogger := applog.New(applog.ParseLevel(cfg.LogLevel))

	shutdownMgr := lifecycle.New(lifecycle.Config{Logger: errorLogger, DrainTimeout: drainTimeout})

	pool := brp.NewPool(cfg)
	client := brp.NewClient(pool, cfg)
	watchMgr := watch.NewManager(cfg, pool.Watch())
	server := mcpserver.New(cfg, client, watchMgr, errorLogger)

	metricsLogger.Info("brpmcp starting", "default_port", cfg.DefaultPort, "default_host", cfg.DefaultHost)

	if err := server.Serve(shutdownMgr.Context, os.Stdin, os.Stdout); err != nil && shutdownMgr.Context.Err() == nil {
		errorLogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
