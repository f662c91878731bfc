package mcpserver

import (
	"context"

	"github.com/bevyremote/brpmcp/internal/brp"
	"github.com/bevyremote/brpmcp/internal/brpschema"
)

// fetchRegistry retrieves a fresh reflection-registry snapshot for port
// (spec §3.2 invariant 1: fetched once per tool invocation, never cached
// across calls, since the running Bevy app's registered types can change
// between hot-reloads).
func fetchRegistry(ctx context.Context, client *brp.Client, port int) (*brpschema.RegistrySchema, error) {
	raw, err := client.Execute(ctx, "bevy/registry/schema", nil, port)
	if err != nil {
		return nil, err
	}
	return brpschema.ParseRegistry(raw)
}
