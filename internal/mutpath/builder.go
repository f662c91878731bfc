package mutpath

import (
	"encoding/json"

	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// descentResult is what every per-kind builder produces: the example value
// to embed in the parent's own example (spec §4.6's assemble_from_children)
// plus the mutation-path leaves/subtrees collected along the way.
type descentResult struct {
	Example json.RawMessage
	Paths   []MutationPath
}

// BuildType runs the full descent for one root type: registry lookup,
// knowledge-table short-circuit, kind dispatch, and root-path assembly
// (C4-C6, spec §4.5-§4.8). It never returns an error; an unresolvable type
// is represented as an in_registry:false guide instead (spec §4.3, §9).
func BuildType(registry *brpschema.RegistrySchema, root brptype.TypeName, maxDepth int) TypeGuide {
	schema, inRegistry := registry.Lookup(root)
	if !inRegistry {
		return TypeGuide{
			TypeName:      root,
			InRegistry:    false,
			AgentGuidance: notInRegistryGuidance(root),
		}
	}

	ctx := NewRootContext(registry, maxDepth)
	ctx.Visiting[root] = true

	var res descentResult
	if k, ok := brptype.Lookup("", "", root); ok {
		res = descentResult{Example: k.Example, Paths: []MutationPath{mutableLeaf(ctx, root, k.Example)}}
	} else {
		res = descend(ctx, root, schema)
	}

	ops := supportedOperations(schema)
	guide := TypeGuide{
		TypeName:      root,
		Kind:          schema.TypeKind(),
		MutationPaths: res.Paths,
		SupportedOps:  ops,
		SchemaInfo:    schema,
		InRegistry:    true,
	}
	if containsOp(ops, "spawn") {
		guide.SpawnExample = res.Example
	}
	if containsOp(ops, "insert") || containsOp(ops, "insert_resource") {
		guide.InsertExample = res.Example
	}
	guide.AgentGuidance = buildGuidance(root, schema, ops, res.Paths)
	return guide
}

// descend is the C5 kind dispatcher: given a type already known to be in
// the registry and not short-circuited by the knowledge table, it fans out
// to the per-kind collect_children/assemble_from_children pair (spec
// §4.6). Callers are responsible for the knowledge-table, cycle, and
// recursion-limit checks beforehand (descendField/descendIndexed do this
// for every non-root type; BuildType does it for the root).
func descend(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	switch schema.TypeKind() {
	case brpschema.KindStruct:
		return descendStruct(ctx, t, schema)
	case brpschema.KindTupleStruct:
		return descendTupleStruct(ctx, t, schema)
	case brpschema.KindTuple:
		return descendTuple(ctx, t, schema)
	case brpschema.KindArray:
		return descendArray(ctx, t, schema)
	case brpschema.KindList, brpschema.KindSet:
		return descendList(ctx, t, schema)
	case brpschema.KindMap:
		return descendMap(ctx, t, schema)
	case brpschema.KindEnum:
		return descendEnum(ctx, t, schema)
	default: // Value
		return descendValue(ctx, t, schema)
	}
}

// descendField resolves one named field of a Struct/TupleStruct/Enum
// variant: knowledge-table short-circuit, cycle guard, recursion-limit
// guard, registry lookup, and the Serialize/Deserialize capability check
// of spec §4.9, before finally recursing (spec §4.4's single lookup
// point, §4.5's create_field_context transition). The returned Paths
// already carries the field's own path as its first element, emitted by
// whichever builder descend dispatches to (or by the guard/knowledge-table
// short-circuit below) — descendField itself never fabricates one.
func descendField(ctx RecursionContext, parent brptype.TypeName, fieldName string, childType brptype.TypeName) descentResult {
	childCtx := ctx.WithField(fieldName, childType)

	if k, ok := brptype.Lookup(parent, fieldName, childType); ok {
		return descentResult{
			Example: k.Example,
			Paths:   []MutationPath{mutableLeaf(childCtx, childType, k.Example)},
		}
	}
	if leaf, blocked := guardChild(ctx, childCtx, childType); blocked {
		return descentResult{Example: json.RawMessage(`null`), Paths: []MutationPath{leaf}}
	}

	childSchema, _ := ctx.Registry.Lookup(childType)
	return descend(childCtx, childType, childSchema)
}

// descendIndexed is descendField's counterpart for Array/List/Set
// elements, using "[index]" path segments (spec §4.5's
// create_indexed_context transition).
func descendIndexed(ctx RecursionContext, index int, childType brptype.TypeName) descentResult {
	return descendAtIndex(ctx, childType, ctx.WithIndex(index, childType))
}

// descendTupleElem is descendIndexed's counterpart for Tuple/TupleStruct
// elements, using ".index" path segments (spec §3.2 invariant 3).
func descendTupleElem(ctx RecursionContext, index int, childType brptype.TypeName) descentResult {
	return descendAtIndex(ctx, childType, ctx.WithTupleIndex(index, childType))
}

func descendAtIndex(ctx RecursionContext, childType brptype.TypeName, childCtx RecursionContext) descentResult {
	if k, ok := brptype.Lookup("", "", childType); ok {
		return descentResult{
			Example: k.Example,
			Paths:   []MutationPath{mutableLeaf(childCtx, childType, k.Example)},
		}
	}
	if leaf, blocked := guardChild(ctx, childCtx, childType); blocked {
		return descentResult{Example: json.RawMessage(`null`), Paths: []MutationPath{leaf}}
	}

	childSchema, _ := ctx.Registry.Lookup(childType)
	return descend(childCtx, childType, childSchema)
}

// guardChild applies the cycle/recursion-limit/registry/capability guards
// shared by descendField and descendIndexed. blocked is true if descent
// must stop here with the returned NotMutable leaf rather than recurse.
func guardChild(parentCtx, childCtx RecursionContext, childType brptype.TypeName) (MutationPath, bool) {
	if parentCtx.IsVisiting(childType) {
		return notMutableLeaf(childCtx, childType, ReasonCyclicReference), true
	}
	if childCtx.AtLimit() {
		return notMutableLeaf(childCtx, childType, ReasonRecursionLimit), true
	}
	childSchema, inRegistry := parentCtx.Registry.Lookup(childType)
	if !inRegistry {
		return notMutableLeaf(childCtx, childType, ReasonNotInRegistry), true
	}
	if !childSchema.HasSerialize() {
		return notMutableLeaf(childCtx, childType, ReasonMissingSerialize), true
	}
	if !childSchema.HasDeserialize() {
		return notMutableLeaf(childCtx, childType, ReasonMissingDeserialize), true
	}
	return MutationPath{}, false
}

func mutableLeaf(ctx RecursionContext, t brptype.TypeName, example json.RawMessage) MutationPath {
	return MutationPath{
		Path:         ctx.Path,
		Kind:         ctx.Kind,
		TypeName:     t,
		Mutability:   Mutable,
		Example:      example,
		VariantChain: ctx.VariantChain,
	}
}

func notMutableLeaf(ctx RecursionContext, t brptype.TypeName, reason NotMutableReason) MutationPath {
	return MutationPath{
		Path:             ctx.Path,
		Kind:             ctx.Kind,
		TypeName:         t,
		Mutability:       NotMutable,
		NotMutableReason: reason,
		VariantChain:     ctx.VariantChain,
	}
}

// selfPath builds the node's own mutation-path entry (spec §8.3/§8.4: every
// kind reports a path at its own ctx.Path, not just its children), with
// Mutability aggregated from its direct children's statuses rather than
// hardcoded (spec §3.1 invariant 5, §8.1).
func selfPath(ctx RecursionContext, t brptype.TypeName, example json.RawMessage, children []Mutability) MutationPath {
	mutability, reason := aggregateMutability(children)
	return MutationPath{
		Path:             ctx.Path,
		Kind:             ctx.Kind,
		TypeName:         t,
		Mutability:       mutability,
		NotMutableReason: reason,
		Example:          example,
		VariantChain:     ctx.VariantChain,
	}
}

// leadMutability returns the Mutability a descendField/descendIndexed/
// descendTupleElem result contributes as a direct child for aggregation
// purposes: the first path in its Paths is always that child's own node,
// emitted by whichever builder produced it.
func leadMutability(res descentResult) (Mutability, bool) {
	if len(res.Paths) == 0 {
		return Mutable, false
	}
	return res.Paths[0].Mutability, true
}

func containsOp(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func notInRegistryGuidance(t brptype.TypeName) string {
	return "Type " + t.Display() + " is not present in the reflection registry; " +
		"no example or mutation paths can be derived for it."
}
