package mutpath

import (
	"encoding/json"
	"sort"

	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// descendStruct collects one child per named property and assembles a JSON
// object example (spec §4.6, Struct row).
func descendStruct(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic example/path ordering across runs

	obj := make(map[string]json.RawMessage, len(names))
	var paths []MutationPath
	var children []Mutability
	for _, name := range names {
		ref := schema.Properties[name]
		childType, ok := brpschema.ExtractFieldType(&ref)
		if !ok {
			continue
		}
		res := descendField(ctx, t, name, childType)
		obj[name] = res.Example
		if m, ok := leadMutability(res); ok {
			children = append(children, m)
		}
		paths = append(paths, res.Paths...)
	}
	example := marshalObject(obj, names)
	self := selfPath(ctx, t, example, children)
	return descentResult{Example: example, Paths: append([]MutationPath{self}, paths...)}
}

// descendTupleStruct unwraps the spec §4.6 single-field-tuple-struct rule:
// a one-element tuple struct (e.g. newtype wrappers like Speed(f32)) has
// ".0" as its only child mutation path, next to its own path, and its
// example *is* the inner value's
// example, not a single-element array wrapping it.
func descendTupleStruct(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	if len(schema.PrefixItems) == 1 {
		childType, ok := brpschema.ExtractFieldType(&schema.PrefixItems[0])
		if !ok {
			example := json.RawMessage(`null`)
			return descentResult{Example: example, Paths: []MutationPath{mutableLeaf(ctx, t, example)}}
		}
		res := descendField(ctx, t, "0", childType)
		var children []Mutability
		if m, ok := leadMutability(res); ok {
			children = append(children, m)
		}
		self := selfPath(ctx, t, res.Example, children)
		return descentResult{Example: res.Example, Paths: append([]MutationPath{self}, res.Paths...)}
	}
	return descendTupleLike(ctx, t, schema)
}

// descendTuple handles multi-field tuples, assembling a JSON array example
// with one indexed mutation path per element (spec §4.6, Tuple row).
func descendTuple(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	return descendTupleLike(ctx, t, schema)
}

func descendTupleLike(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	elems := make([]json.RawMessage, 0, len(schema.PrefixItems))
	var paths []MutationPath
	var children []Mutability
	for i := range schema.PrefixItems {
		childType, ok := brpschema.ExtractFieldType(&schema.PrefixItems[i])
		if !ok {
			elems = append(elems, json.RawMessage(`null`))
			continue
		}
		res := descendTupleElem(ctx, i, childType)
		elems = append(elems, res.Example)
		if m, ok := leadMutability(res); ok {
			children = append(children, m)
		}
		paths = append(paths, res.Paths...)
	}
	example := marshalArray(elems)
	self := selfPath(ctx, t, example, children)
	return descentResult{Example: example, Paths: append([]MutationPath{self}, paths...)}
}

func marshalObject(obj map[string]json.RawMessage, orderedNames []string) json.RawMessage {
	buf := []byte("{")
	for i, name := range orderedNames {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, _ := json.Marshal(name)
		buf = append(buf, key...)
		buf = append(buf, ':')
		v := obj[name]
		if len(v) == 0 {
			v = json.RawMessage(`null`)
		}
		buf = append(buf, v...)
	}
	buf = append(buf, '}')
	return json.RawMessage(buf)
}

func marshalArray(elems []json.RawMessage) json.RawMessage {
	buf := []byte("[")
	for i, v := range elems {
		if i > 0 {
			buf = append(buf, ',')
		}
		if len(v) == 0 {
			v = json.RawMessage(`null`)
		}
		buf = append(buf, v...)
	}
	buf = append(buf, ']')
	return json.RawMessage(buf)
}
