package discovery

import (
	"encoding/json"
	"strings"

	"github.com/bevyremote/brpmcp/internal/brperr"
	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// corrector inspects req (the original error and params) and, if it
// recognizes a malformed-shape pattern it knows how to fix, returns the
// corrected params and true. Each one matches exactly one pattern from
// spec §4.9's PatternCorrection catalog.
type corrector func(req *request) (json.RawMessage, bool)

var correctors = []corrector{
	objectToArrayCorrector,
	stringTypeExtractionCorrector,
	tupleStructWrapCorrector,
	enumUnitVariantCorrector,
}

// objectToArrayCorrector handles glam math types and color types sent as a
// JSON object ({"x":1,"y":2,"z":3}) when BRP expects a flat array
// ([1,2,3]) — the single most common format-discovery case in spec §8.4's
// Vec3 retry scenario.
func objectToArrayCorrector(req *request) (json.RawMessage, bool) {
	if !looksLikeArrayShapeMismatch(req.originalErr) {
		return nil, false
	}
	base := req.typeName.Base()
	fields, ok := arrayFieldOrderFor(base)
	if !ok {
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(valueParam(req.origParams), &obj); err != nil {
		return nil, false
	}
	elems := make([]json.RawMessage, 0, len(fields))
	for _, f := range fields {
		v, present := obj[f]
		if !present {
			return nil, false
		}
		elems = append(elems, v)
	}
	arr, _ := json.Marshal(elems)
	return replaceValueParam(req.origParams, arr), true
}

func arrayFieldOrderFor(base brptype.TypeName) ([]string, bool) {
	switch base {
	case brptype.TypeVec2:
		return []string{"x", "y"}, true
	case brptype.TypeVec3:
		return []string{"x", "y", "z"}, true
	case brptype.TypeVec4, brptype.TypeQuat:
		return []string{"x", "y", "z", "w"}, true
	case brptype.TypeSrgba, brptype.TypeLinearRgba:
		return []string{"red", "green", "blue", "alpha"}, true
	default:
		return nil, false
	}
}

// stringTypeExtractionCorrector handles a bare string sent where BRP
// expects {"String": "..."} or vice versa, for alloc::string::String
// fields (spec §4.9).
func stringTypeExtractionCorrector(req *request) (json.RawMessage, bool) {
	if !looksLikeTypeMismatch(req.originalErr) || req.typeName.Base() != brptype.TypeString {
		return nil, false
	}
	v := valueParam(req.origParams)
	var wrapped struct {
		String *string `json:"String"`
	}
	if json.Unmarshal(v, &wrapped) == nil && wrapped.String != nil {
		quoted, _ := json.Marshal(*wrapped.String)
		return replaceValueParam(req.origParams, quoted), true
	}
	var bare string
	if json.Unmarshal(v, &bare) == nil {
		wrappedOut, _ := json.Marshal(map[string]string{"String": bare})
		return replaceValueParam(req.origParams, wrappedOut), true
	}
	return nil, false
}

// tupleStructWrapCorrector handles the single-field-tuple-struct
// unwrapping rule (spec §4.6, §4.9): a caller sending the inner value
// directly, where BRP actually expects it wrapped as the struct's ".0"
// element (i.e. itself, since prefixItems has one element — but some BRP
// versions require an explicit single-element array wrapper instead of
// the bare scalar).
func tupleStructWrapCorrector(req *request) (json.RawMessage, bool) {
	if !looksLikeArrayShapeMismatch(req.originalErr) || req.schema == nil {
		return nil, false
	}
	if req.schema.TypeKind() != brpschema.KindTupleStruct || len(req.schema.PrefixItems) != 1 {
		return nil, false
	}
	v := valueParam(req.origParams)
	var asArray []json.RawMessage
	if json.Unmarshal(v, &asArray) == nil {
		return nil, false // already an array; not this pattern
	}
	wrapped, _ := json.Marshal([]json.RawMessage{v})
	return replaceValueParam(req.origParams, wrapped), true
}

// enumUnitVariantCorrector handles a unit enum variant sent as
// {"VariantName": null} or {"VariantName": {}} where BRP expects the bare
// string "VariantName" (spec §4.7, §4.9, §8.4's mutate-enum-unit-variant
// scenario).
func enumUnitVariantCorrector(req *request) (json.RawMessage, bool) {
	if !looksLikeTypeMismatch(req.originalErr) || req.schema == nil || req.schema.TypeKind() != brpschema.KindEnum {
		return nil, false
	}
	v := valueParam(req.origParams)
	var asObj map[string]json.RawMessage
	if err := json.Unmarshal(v, &asObj); err != nil || len(asObj) != 1 {
		return nil, false
	}
	for variant := range asObj {
		for _, ov := range req.schema.OneOf {
			if ov.ShortPath == variant && len(ov.PrefixItems) == 0 && len(ov.Properties) == 0 {
				quoted, _ := json.Marshal(variant)
				return replaceValueParam(req.origParams, quoted), true
			}
		}
	}
	return nil, false
}

// valueParam extracts the "value" field BRP's mutate methods carry their
// payload in (spec §6.2); callers that don't use that shape get the raw
// params back unchanged.
func valueParam(params json.RawMessage) json.RawMessage {
	var withValue struct {
		Value json.RawMessage `json:"value"`
	}
	if json.Unmarshal(params, &withValue) == nil && len(withValue.Value) > 0 {
		return withValue.Value
	}
	return params
}

// replaceValueParam re-embeds a corrected value back into the original
// params envelope, preserving every other field (component/path/etc).
func replaceValueParam(params json.RawMessage, newValue json.RawMessage) json.RawMessage {
	var asMap map[string]json.RawMessage
	if json.Unmarshal(params, &asMap) != nil {
		return newValue
	}
	if _, hasValue := asMap["value"]; !hasValue {
		return newValue
	}
	asMap["value"] = newValue
	out, _ := json.Marshal(asMap)
	return out
}

func looksLikeArrayShapeMismatch(err *brperr.Error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.OriginalError + " " + err.Message)
	return strings.Contains(msg, "invalid type") || strings.Contains(msg, "expected a sequence") ||
		strings.Contains(msg, "expected array")
}

func looksLikeTypeMismatch(err *brperr.Error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.OriginalError + " " + err.Message)
	return strings.Contains(msg, "invalid type") || strings.Contains(msg, "expected") || strings.Contains(msg, "unknown variant")
}

// isRetryableHeuristic decides whether BRP's error text suggests another
// attempt (with different params) could succeed, versus a permanent
// failure no correction can fix (spec's Open Question: "exact boundary of
// the retryable-correction heuristic" — resolved here as: anything that
// looks like a shape/type mismatch is retryable in principle, even if this
// pass found no corrector for it; anything else (missing component,
// entity not found, registry errors) is not).
func isRetryableHeuristic(err *brperr.Error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.OriginalError + " " + err.Message)
	if strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "not registered") {
		return false
	}
	return looksLikeArrayShapeMismatch(err) || looksLikeTypeMismatch(err)
}

func guidanceFor(req *request) string {
	if req.originalErr == nil {
		return "No further correction is available for " + req.typeName.Display() + "."
	}
	return "Could not automatically correct the request for " + req.typeName.Display() +
		"; BRP reported: " + req.originalErr.Error()
}
