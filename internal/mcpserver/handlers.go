package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bevyremote/brpmcp/internal/aids"
	"github.com/bevyremote/brpmcp/internal/brperr"
	"github.com/bevyremote/brpmcp/internal/brptype"
	"github.com/bevyremote/brpmcp/internal/discovery"
	"github.com/bevyremote/brpmcp/internal/mutpath"
	"github.com/bevyremote/brpmcp/internal/watch"
)

// typeGuideFanOut bounds how many types brp_all_type_guides descends
// concurrently; registries commonly hold several hundred types and
// unbounded fan-out would spawn that many goroutines at once for no benefit.
const typeGuideFanOut = 16

// callBRP executes one BRP method and, on a protocol-level failure,
// drives the Format Discovery Engine (C9) before giving up: if the engine
// finds a correction it retries exactly once with the corrected params
// and reports the correction in the envelope's metadata (spec §4.9's
// single-retry rule — Format Discovery does not loop indefinitely).
func (s *Server) callBRP(ctx context.Context, toolName, method string, typeName brptype.TypeName, params json.RawMessage, port int) Envelope {
	start := time.Now()
	if port == 0 {
		port = s.cfg.DefaultPort
	}

	result, err := s.client.Execute(ctx, method, params, port)
	if !aids.IsError(err) {
		return ok(toolName, method, port, start, result, nil)
	}

	brpErr, isBRPErr := err.(*brperr.Error)
	if !isBRPErr {
		brpErr = brperr.Wrap(brperr.CodeInternal, err.Error(), "unexpected error type from brp client")
	}
	if brpErr.Code != brperr.CodeProtocol || typeName.IsUnknown() {
		return fail(toolName, method, port, start, brpErr, "")
	}

	registry, regErr := fetchRegistry(ctx, s.client, port)
	if aids.IsError(regErr) {
		return fail(toolName, method, port, start, brpErr, "")
	}
	outcome := discovery.Run(ctx, registry, method, typeName, params, brpErr)
	if outcome.Kind != discovery.OutcomeRetry {
		return fail(toolName, method, port, start, brpErr, outcome.Message)
	}

	retryResult, retryErr := s.client.Execute(ctx, method, outcome.NewParams, port)
	if aids.IsError(retryErr) {
		retryBRPErr, ok2 := retryErr.(*brperr.Error)
		if !ok2 {
			retryBRPErr = brperr.Wrap(brperr.CodeInternal, retryErr.Error(), "unexpected error type from brp client")
		}
		return fail(toolName, method, port, start, retryBRPErr, "format discovery correction was also rejected by BRP")
	}
	return ok(toolName, method, port, start, retryResult, map[string]any{
		"format_discovery_corrected": true,
		"corrected_params":           json.RawMessage(outcome.NewParams),
	})
}

type entityArgs struct {
	Entity    uint64          `json:"entity"`
	Component string          `json:"component,omitempty"`
	Path      string          `json:"path,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Port      int             `json:"port,omitempty"`
}

func handleBevyGet(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Entity     uint64   `json:"entity"`
		Components []string `json:"components"`
		Port       int      `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_get", err)
	}
	params, _ := json.Marshal(map[string]any{"entity": a.Entity, "components": a.Components})
	return s.callBRP(ctx, "bevy_get", "bevy/get", brptype.Unknown, params, a.Port)
}

func handleBevyQuery(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Data json.RawMessage `json:"data"`
		Filter json.RawMessage `json:"filter,omitempty"`
		Port int             `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_query", err)
	}
	params, _ := json.Marshal(map[string]any{"data": a.Data, "filter": a.Filter})
	return s.callBRP(ctx, "bevy_query", "bevy/query", brptype.Unknown, params, a.Port)
}

func handleBevySpawn(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Components json.RawMessage `json:"components"`
		Port       int             `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_spawn", err)
	}
	params, _ := json.Marshal(map[string]any{"components": a.Components})
	return s.callBRP(ctx, "bevy_spawn", "bevy/spawn", brptype.Unknown, params, a.Port)
}

func handleBevyInsert(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Entity     uint64          `json:"entity"`
		Components json.RawMessage `json:"components"`
		Port       int             `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_insert", err)
	}
	params, _ := json.Marshal(map[string]any{"entity": a.Entity, "components": a.Components})
	return s.callBRP(ctx, "bevy_insert", "bevy/insert", brptype.Unknown, params, a.Port)
}

func handleBevyMutateComponent(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a entityArgs
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_mutate_component", err)
	}
	params, _ := json.Marshal(map[string]any{"entity": a.Entity, "component": a.Component, "path": a.Path, "value": a.Value})
	return s.callBRP(ctx, "bevy_mutate_component", "bevy/mutate_component", brptype.TypeName(a.Component), params, a.Port)
}

func handleBevyMutateResource(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Resource string          `json:"resource"`
		Path     string          `json:"path"`
		Value    json.RawMessage `json:"value"`
		Port     int             `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_mutate_resource", err)
	}
	params, _ := json.Marshal(map[string]any{"resource": a.Resource, "path": a.Path, "value": a.Value})
	return s.callBRP(ctx, "bevy_mutate_resource", "bevy/mutate_resource", brptype.TypeName(a.Resource), params, a.Port)
}

func handleBevyGetResource(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Resource string `json:"resource"`
		Port     int    `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_get_resource", err)
	}
	params, _ := json.Marshal(map[string]any{"resource": a.Resource})
	return s.callBRP(ctx, "bevy_get_resource", "bevy/get_resource", brptype.TypeName(a.Resource), params, a.Port)
}

func handleBevyInsertResource(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Resource string          `json:"resource"`
		Value    json.RawMessage `json:"value"`
		Port     int             `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_insert_resource", err)
	}
	params, _ := json.Marshal(map[string]any{"resource": a.Resource, "value": a.Value})
	return s.callBRP(ctx, "bevy_insert_resource", "bevy/insert_resource", brptype.TypeName(a.Resource), params, a.Port)
}

func handleBevyRemoveResource(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Resource string `json:"resource"`
		Port     int    `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_remove_resource", err)
	}
	params, _ := json.Marshal(map[string]any{"resource": a.Resource})
	return s.callBRP(ctx, "bevy_remove_resource", "bevy/remove_resource", brptype.Unknown, params, a.Port)
}

func handleBevyDestroy(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Entity uint64 `json:"entity"`
		Port   int    `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_destroy", err)
	}
	params, _ := json.Marshal(map[string]any{"entity": a.Entity})
	return s.callBRP(ctx, "bevy_destroy", "bevy/destroy", brptype.Unknown, params, a.Port)
}

func handleBevyRemove(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Entity     uint64   `json:"entity"`
		Components []string `json:"components"`
		Port       int      `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_remove", err)
	}
	params, _ := json.Marshal(map[string]any{"entity": a.Entity, "components": a.Components})
	return s.callBRP(ctx, "bevy_remove", "bevy/remove", brptype.Unknown, params, a.Port)
}

func handleBevyReparent(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Entity uint64  `json:"entity"`
		Parent *uint64 `json:"parent,omitempty"`
		Port   int     `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_reparent", err)
	}
	params, _ := json.Marshal(map[string]any{"entity": a.Entity, "parent": a.Parent})
	return s.callBRP(ctx, "bevy_reparent", "bevy/reparent", brptype.Unknown, params, a.Port)
}

func handleBevyGetWatch(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Entity     uint64   `json:"entity"`
		Components []string `json:"components"`
		Port       int      `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_get_watch", err)
	}
	return startWatch(ctx, s, "bevy_get_watch", "bevy/get+watch", map[string]any{"entity": a.Entity, "components": a.Components}, a.Port)
}

func handleBevyListWatch(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Data   json.RawMessage `json:"data"`
		Filter json.RawMessage `json:"filter,omitempty"`
		Port   int             `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("bevy_list_watch", err)
	}
	return startWatch(ctx, s, "bevy_list_watch", "bevy/list+watch", map[string]any{"data": a.Data, "filter": a.Filter}, a.Port)
}

func startWatch(ctx context.Context, s *Server, toolName, method string, params map[string]any, port int) Envelope {
	start := time.Now()
	if port == 0 {
		port = s.cfg.DefaultPort
	}
	raw, _ := json.Marshal(params)
	handle, err := s.watch.Start(ctx, method, raw, port)
	if aids.IsError(err) {
		brpErr, ok2 := err.(*brperr.Error)
		if !ok2 {
			brpErr = brperr.Wrap(brperr.CodeTransport, err.Error(), "starting watch")
		}
		return fail(toolName, method, port, start, brpErr, "")
	}
	result, _ := json.Marshal(map[string]any{"watch_id": handle.ID, "log_path": handle.LogPath})
	return ok(toolName, method, port, start, result, nil)
}

func handleBrpStopWatch(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	start := time.Now()
	var a struct {
		WatchID string `json:"watch_id"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("brp_stop_watch", err)
	}
	if !s.watch.Stop(watch.ID(a.WatchID)) {
		return fail("brp_stop_watch", "", 0, start, brperr.New(brperr.CodeNotFoundWatch, "no active watch with id %s", a.WatchID), "")
	}
	result, _ := json.Marshal(map[string]any{"stopped": a.WatchID})
	return ok("brp_stop_watch", "", 0, start, result, nil)
}

func handleBrpListActiveWatches(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	start := time.Now()
	handles := s.watch.List()
	type activeWatch struct {
		WatchID   string `json:"watch_id"`
		Method    string `json:"method"`
		Port      int    `json:"port"`
		StartedAt string `json:"started_at"`
	}
	out := make([]activeWatch, 0, len(handles))
	for _, h := range handles {
		out = append(out, activeWatch{WatchID: string(h.ID), Method: h.Method, Port: h.Port, StartedAt: h.StartedAt.Format(time.RFC3339)})
	}
	result, _ := json.Marshal(out)
	return ok("brp_list_active_watches", "", 0, start, result, nil)
}

func handleBrpExecute(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	var a struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params,omitempty"`
		Port   int             `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("brp_execute", err)
	}
	return s.callBRP(ctx, "brp_execute", a.Method, brptype.Unknown, a.Params, a.Port)
}

func handleBrpTypeGuide(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	start := time.Now()
	var a struct {
		Type string `json:"type"`
		Port int    `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("brp_type_guide", err)
	}
	port := a.Port
	if port == 0 {
		port = s.cfg.DefaultPort
	}
	registry, err := fetchRegistry(ctx, s.client, port)
	if aids.IsError(err) {
		brpErr, ok2 := err.(*brperr.Error)
		if !ok2 {
			brpErr = brperr.Wrap(brperr.CodeTransport, err.Error(), "fetching registry")
		}
		return fail("brp_type_guide", "bevy/registry/schema", port, start, brpErr, "")
	}
	guide := mutpath.BuildType(registry, brptype.TypeName(a.Type), s.cfg.RecursionDepthLimit)
	result, _ := json.Marshal(guide)
	return ok("brp_type_guide", "bevy/registry/schema", port, start, result, nil)
}

func handleBrpAllTypeGuides(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	start := time.Now()
	var a struct {
		Port int `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("brp_all_type_guides", err)
	}
	port := a.Port
	if port == 0 {
		port = s.cfg.DefaultPort
	}
	registry, err := fetchRegistry(ctx, s.client, port)
	if aids.IsError(err) {
		brpErr, ok2 := err.(*brperr.Error)
		if !ok2 {
			brpErr = brperr.Wrap(brperr.CodeTransport, err.Error(), "fetching registry")
		}
		return fail("brp_all_type_guides", "bevy/registry/schema", port, start, brpErr, "")
	}
	names := registry.TypeNames()
	guides := make([]mutpath.TypeGuide, len(names))
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(typeGuideFanOut)
	for i, n := range names {
		i, n := i, n
		group.Go(func() error {
			guides[i] = mutpath.BuildType(registry, n, s.cfg.RecursionDepthLimit)
			return nil
		})
	}
	_ = group.Wait() // BuildType never returns an error; it reports per-path NotMutable instead
	result, _ := json.Marshal(guides)
	return ok("brp_all_type_guides", "bevy/registry/schema", port, start, result, map[string]any{"type_count": len(names)})
}

func handleBrpRegistrySchema(ctx context.Context, s *Server, args json.RawMessage) Envelope {
	start := time.Now()
	var a struct {
		Type string `json:"type"`
		Port int     `json:"port,omitempty"`
	}
	if err := json.Unmarshal(args, &a); aids.IsError(err) {
		return invalidParams("brp_registry_schema", err)
	}
	port := a.Port
	if port == 0 {
		port = s.cfg.DefaultPort
	}
	registry, err := fetchRegistry(ctx, s.client, port)
	if aids.IsError(err) {
		brpErr, ok2 := err.(*brperr.Error)
		if !ok2 {
			brpErr = brperr.Wrap(brperr.CodeTransport, err.Error(), "fetching registry")
		}
		return fail("brp_registry_schema", "bevy/registry/schema", port, start, brpErr, "")
	}
	schema, found := registry.Lookup(brptype.TypeName(a.Type))
	if !found {
		return fail("brp_registry_schema", "bevy/registry/schema", port, start,
			brperr.New(brperr.CodeNotInRegistry, "type %s not found in registry", a.Type), "")
	}
	result, _ := json.Marshal(schema)
	return ok("brp_registry_schema", "bevy/registry/schema", port, start, result, nil)
}
