package mutpath

import (
	"encoding/json"

	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// descendValue is the fallback for an opaque/leaf Value kind that carries
// no knowledge-table entry: bevy_asset::handle::Handle<T> wrappers and any
// other reflected-but-structurally-opaque type fall here (spec §4.6, §9).
// A Handle always reports NotMutable with ReasonOpaqueHandle since it
// addresses an asset by an internal slot index an agent cannot
// plausibly construct (spec §4.9).
func descendValue(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	if t.Base() == brptype.TypeHandleBase {
		return descentResult{
			Example: json.RawMessage(`null`),
			Paths:   []MutationPath{notMutableLeaf(ctx, t, ReasonOpaqueHandle)},
		}
	}
	example := json.RawMessage(`null`)
	if !schema.HasSerialize() {
		return descentResult{Example: example, Paths: []MutationPath{notMutableLeaf(ctx, t, ReasonMissingSerialize)}}
	}
	if !schema.HasDeserialize() {
		return descentResult{Example: example, Paths: []MutationPath{notMutableLeaf(ctx, t, ReasonMissingDeserialize)}}
	}
	return descentResult{Example: example, Paths: []MutationPath{mutableLeaf(ctx, t, example)}}
}

// supportedOperations derives the reflectTypes-backed capability set a
// type exposes (spec §4.8): spawn/insert require Component+Serialize+
// Deserialize, mutation requires Serialize+Deserialize on the path's own
// type (checked per-path during descent; this is the type-level gate),
// and get/query are available to anything the registry knows about at all.
func supportedOperations(schema *brpschema.TypeSchema) []string {
	ops := []string{"get", "query"}
	hasComponent := hasReflect(schema.ReflectTypes, "Component")
	hasResource := hasReflect(schema.ReflectTypes, "Resource")
	canRoundTrip := schema.HasSerialize() && schema.HasDeserialize()

	if hasComponent && canRoundTrip {
		ops = append(ops, "spawn", "insert", "mutate_component", "remove")
	}
	if hasResource && canRoundTrip {
		ops = append(ops, "insert_resource", "mutate_resource", "remove_resource")
	}
	return ops
}

func hasReflect(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// buildGuidance synthesizes the agent_guidance text (spec §4.8, §6.4): a
// short human-readable note, always suffixed with the Entity-containment
// warning iff any emitted mutation path's type name contains a bare Entity
// (spec §4.8's Entity-warning heuristic, §9) — not just the root type,
// since a nested field (e.g. a relationship struct holding an Entity) is
// just as surprising to an agent hardcoding the example as a root Entity.
func buildGuidance(t brptype.TypeName, schema *brpschema.TypeSchema, ops []string, paths []MutationPath) string {
	guidance := t.Short() + " supports: " + joinOps(ops) + "."
	if anyPathReferencesEntity(t, paths) {
		guidance += " This type references Entity; entity IDs are not stable across" +
			" app restarts or scene reloads and should be re-queried rather than hardcoded."
	}
	return guidance
}

func anyPathReferencesEntity(root brptype.TypeName, paths []MutationPath) bool {
	if brptype.ContainsEntity(root) {
		return true
	}
	for _, p := range paths {
		if brptype.ContainsEntity(p.TypeName) {
			return true
		}
	}
	return false
}

func joinOps(ops []string) string {
	out := ""
	for i, op := range ops {
		if i > 0 {
			out += ", "
		}
		out += op
	}
	return out
}
