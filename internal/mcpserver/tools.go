package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/bevyremote/brpmcp/internal/mcp"
)

// toolHandler pairs a tool's MCP schema (shown to the agent via
// tools/list) with the function that actually runs it.
type toolHandler struct {
	def mcp.Tool
	run func(ctx context.Context, s *Server, args json.RawMessage) Envelope
}

func tool(name, description string, run func(context.Context, *Server, json.RawMessage) Envelope) toolHandler {
	return toolHandler{
		def: mcp.Tool{
			BaseMetadata: mcp.BaseMetadata{Name: name},
			Description:  &description,
			InputSchema:  mcp.JSONSchema{Type: "object"},
		},
		run: run,
	}
}

// buildToolTable registers every tool named in spec §6.1, plus the
// supplemented brp_registry_schema tool (SPEC_FULL.md's Supplemented
// Features).
func buildToolTable(s *Server) map[string]toolHandler {
	entries := []toolHandler{
		tool("bevy_get", "Get one or more components from an entity.", handleBevyGet),
		tool("bevy_query", "Query entities matching component filters.", handleBevyQuery),
		tool("bevy_spawn", "Spawn a new entity with the given components.", handleBevySpawn),
		tool("bevy_insert", "Insert components onto an existing entity.", handleBevyInsert),
		tool("bevy_mutate_component", "Mutate a single field of a component on an entity.", handleBevyMutateComponent),
		tool("bevy_mutate_resource", "Mutate a single field of a resource.", handleBevyMutateResource),
		tool("bevy_get_resource", "Get the current value of a resource.", handleBevyGetResource),
		tool("bevy_insert_resource", "Insert or replace a resource.", handleBevyInsertResource),
		tool("bevy_remove_resource", "Remove a resource.", handleBevyRemoveResource),
		tool("bevy_destroy", "Despawn an entity and all its components.", handleBevyDestroy),
		tool("bevy_remove", "Remove one or more components from an entity.", handleBevyRemove),
		tool("bevy_reparent", "Change an entity's parent in the hierarchy.", handleBevyReparent),
		tool("bevy_get_watch", "Start a watch subscription for component changes on an entity.", handleBevyGetWatch),
		tool("bevy_list_watch", "Start a watch subscription for entities matching a query.", handleBevyListWatch),
		tool("brp_stop_watch", "Stop an active watch subscription.", handleBrpStopWatch),
		tool("brp_list_active_watches", "List all currently active watch subscriptions.", handleBrpListActiveWatches),
		tool("brp_execute", "Execute an arbitrary BRP method with raw params (escape hatch).", handleBrpExecute),
		tool("brp_type_guide", "Get a spawn/insert example and mutation-path map for one reflected type.", handleBrpTypeGuide),
		tool("brp_all_type_guides", "Get type guides for every type in the reflection registry.", handleBrpAllTypeGuides),
		tool("brp_registry_schema", "Get the raw reflection-registry schema document for one type.", handleBrpRegistrySchema),
	}
	table := make(map[string]toolHandler, len(entries))
	for _, e := range entries {
		table[e.def.Name] = e
	}
	return table
}
