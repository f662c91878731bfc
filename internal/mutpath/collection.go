package mutpath

import (
	"encoding/json"

	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// descendArray builds a fixed-length "[T; N]" example by descending into
// the element type once and repeating it N times (spec §4.6, Array row).
// Only element [0] reports mutation paths, since every slot shares one
// element type.
func descendArray(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	n, ok := brpschema.ArrayLength(t)
	if !ok {
		n = 1
	}
	childType, ok := brpschema.ExtractFieldType(schema.Items)
	if !ok {
		example := json.RawMessage(`[]`)
		return descentResult{Example: example, Paths: []MutationPath{mutableLeaf(ctx, t, example)}}
	}
	res := descendIndexed(ctx, 0, childType)
	elems := make([]json.RawMessage, n)
	for i := range elems {
		elems[i] = res.Example
	}
	var children []Mutability
	if m, ok := leadMutability(res); ok {
		children = append(children, m)
	}
	example := marshalArray(elems)
	self := selfPath(ctx, t, example, children)
	return descentResult{Example: example, Paths: append([]MutationPath{self}, res.Paths...)}
}

// descendList handles variable-length List/Set collections. Per spec
// §4.6's List row, only one representative element is emitted (index 0)
// since the collection's length is runtime state, not part of the type's
// shape; mutation paths into element 0 are still reported so an agent
// knows what a list element looks like.
func descendList(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	childType, ok := brpschema.ExtractFieldType(schema.Items)
	if !ok {
		example := json.RawMessage(`[]`)
		return descentResult{Example: example, Paths: []MutationPath{mutableLeaf(ctx, t, example)}}
	}
	res := descendIndexed(ctx, 0, childType)
	var children []Mutability
	if m, ok := leadMutability(res); ok {
		children = append(children, m)
	}
	example := marshalArray([]json.RawMessage{res.Example})
	self := selfPath(ctx, t, example, children)
	return descentResult{Example: example, Paths: append([]MutationPath{self}, res.Paths...)}
}

// descendMap handles Map collections. Per spec §4.6's Map row, children are
// never exposed as their own mutation paths (Skip): the whole map is
// addressable only at its own path, whose example is a one-entry object.
// The complex-key guard reports a key type that is itself a Struct/Enum/
// Tuple (not a primitive Value) as NotMutable(ComplexMapKey) rather than
// attempting a misleading example.
func descendMap(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	keyType, keyOK := brpschema.ExtractFieldType(schema.KeyType)
	valueType, valOK := brpschema.ExtractFieldType(schema.ValueType)
	if !keyOK || !valOK {
		example := json.RawMessage(`{}`)
		return descentResult{Example: example, Paths: []MutationPath{mutableLeaf(ctx, t, example)}}
	}
	if hasComplexKey(ctx.Registry, keyType) {
		return descentResult{
			Example: json.RawMessage(`{}`),
			Paths:   []MutationPath{notMutableLeaf(ctx, t, ReasonComplexMapKey)},
		}
	}
	valueExample := exampleOnly(ctx, valueType)
	key, _ := json.Marshal(string(keyType.Short()))
	obj := json.RawMessage(append(append(append([]byte("{"), key...), ':'), append(valueExample, '}')...))
	return descentResult{Example: obj, Paths: []MutationPath{mutableLeaf(ctx, t, obj)}}
}

// exampleOnly resolves just the assembled example for t, discarding any
// mutation paths it would otherwise contribute. Used where spec's
// child_path_action is Skip (Map values, per §4.6) so a value type's own
// subtree (e.g. ".rotation") never leaks into the map's mutation_paths.
func exampleOnly(ctx RecursionContext, t brptype.TypeName) json.RawMessage {
	if k, ok := brptype.Lookup("", "", t); ok {
		return k.Example
	}
	if ctx.IsVisiting(t) {
		return json.RawMessage(`null`)
	}
	schema, ok := ctx.Registry.Lookup(t)
	if !ok {
		return json.RawMessage(`null`)
	}
	childCtx := ctx.WithField("<value>", t)
	if childCtx.AtLimit() {
		return json.RawMessage(`null`)
	}
	return descend(childCtx, t, schema).Example
}

func hasComplexKey(registry *brpschema.RegistrySchema, keyType brptype.TypeName) bool {
	schema, ok := registry.Lookup(keyType)
	if !ok {
		return false // unknown key types are treated leniently, not as a guard trigger
	}
	switch schema.TypeKind() {
	case brpschema.KindStruct, brpschema.KindEnum, brpschema.KindTuple, brpschema.KindTupleStruct, brpschema.KindMap, brpschema.KindSet:
		return true
	default:
		return false
	}
}
