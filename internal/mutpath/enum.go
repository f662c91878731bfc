package mutpath

import (
	"encoding/json"

	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// descendEnum handles Rust-style tagged enums (spec §4.7). The example
// uses the first declared variant, matching BRP's own convention of
// picking oneOf[0] as the canonical representative. Every variant's own
// fields (if any) contribute mutation paths, each carrying a VariantChain
// recording that this variant must be active for the path to apply.
func descendEnum(ctx RecursionContext, t brptype.TypeName, schema *brpschema.TypeSchema) descentResult {
	if len(schema.OneOf) == 0 {
		return descentResult{Example: json.RawMessage(`null`)}
	}

	var example json.RawMessage
	var paths []MutationPath
	for _, variant := range schema.OneOf {
		sig := VariantSignature{TypeName: t, VariantName: variant.ShortPath}
		variantCtx := ctx.WithVariant(sig)

		var variantExample json.RawMessage
		switch {
		case len(variant.PrefixItems) == 1:
			// single-field tuple variant: unwraps like a tuple struct (spec §4.6/§4.7)
			childType, ok := brpschema.ExtractFieldType(&variant.PrefixItems[0])
			if !ok {
				variantExample = json.RawMessage(`null`)
				break
			}
			res := descendField(variantCtx, t, "0", childType)
			variantExample = wrapNamed(variant.ShortPath, res.Example)
			paths = append(paths, res.Paths...)
		case len(variant.PrefixItems) > 1:
			elems := make([]json.RawMessage, 0, len(variant.PrefixItems))
			for i := range variant.PrefixItems {
				childType, ok := brpschema.ExtractFieldType(&variant.PrefixItems[i])
				if !ok {
					elems = append(elems, json.RawMessage(`null`))
					continue
				}
				res := descendTupleElem(variantCtx, i, childType)
				elems = append(elems, res.Example)
				paths = append(paths, res.Paths...)
			}
			variantExample = wrapNamed(variant.ShortPath, marshalArray(elems))
		case len(variant.Properties) > 0:
			obj := make(map[string]json.RawMessage, len(variant.Properties))
			for name, ref := range variant.Properties {
				childType, ok := brpschema.ExtractFieldType(&ref)
				if !ok {
					continue
				}
				res := descendField(variantCtx, t, name, childType)
				obj[name] = res.Example
				paths = append(paths, res.Paths...)
			}
			names := make([]string, 0, len(obj))
			for name := range obj {
				names = append(names, name)
			}
			variantExample = wrapNamed(variant.ShortPath, marshalObject(obj, names))
		default:
			// unit variant: bare string (spec §8's mutate-enum-unit-variant scenario)
			quoted, _ := json.Marshal(variant.ShortPath)
			variantExample = quoted
		}

		if example == nil {
			example = variantExample
		}
	}

	// The enum's own root path is always mutable by replacing it wholesale
	// with any variant's example, independent of which variant is active.
	paths = append([]MutationPath{mutableLeaf(ctx, t, example)}, paths...)
	return descentResult{Example: example, Paths: paths}
}

func wrapNamed(name string, value json.RawMessage) json.RawMessage {
	key, _ := json.Marshal(name)
	return json.RawMessage(append(append(append([]byte("{"), key...), ':'), append(value, '}')...))
}
