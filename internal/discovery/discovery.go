// Package discovery implements C9: the Format Discovery Engine of spec
// §3.3, §4.9. It is built on the teacher's generic Stage/Stages pipeline
// (internal/stages), generalized from a linear request-handling chain
// into the type-state graph TypeDiscovery -> SerializationCheck ->
// TypeSchemaDiscovery -> PatternCorrection -> {Retry, Guidance}: each
// stage either calls its remaining Stages.Next to advance, or returns a
// terminal Outcome directly, exactly like the teacher's request pipeline
// either forwarding a ReqRes along or answering it immediately.
package discovery

import (
	"context"
	"encoding/json"

	"github.com/bevyremote/brpmcp/internal/brperr"
	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
	"github.com/bevyremote/brpmcp/internal/stages"
)

// OutcomeKind is the engine's two terminal states (spec §3.3).
type OutcomeKind int

const (
	// OutcomeRetry means NewParams should be resent to BRP as a corrected
	// call; the original request is assumed to have failed for a reason
	// Format Discovery could mechanically fix.
	OutcomeRetry OutcomeKind = iota
	// OutcomeGuidance means no mechanical correction applies; Message
	// explains why to the agent instead.
	OutcomeGuidance
)

// Outcome is what the engine produces after walking the state graph.
type Outcome struct {
	Kind      OutcomeKind
	NewParams json.RawMessage
	Message   string
	Retryable bool
}

// request is the mutable state threaded through every stage (spec §3.3's
// per-attempt state). Each stage reads/writes fields relevant to its own
// concern, then calls remaining.Next to advance to whatever stage comes
// after it.
type request struct {
	remaining stages.Stages[*request, Outcome]

	registry    *brpschema.RegistrySchema
	method      string
	typeName    brptype.TypeName
	origParams  json.RawMessage
	originalErr *brperr.Error

	schema     *brpschema.TypeSchema
	inRegistry bool
}

// Run walks the Format Discovery state graph for one failed BRP call
// (spec §4.9). method is the BRP method that failed (e.g.
// "bevy/mutate_component"), typeName is the component/resource type
// involved, origParams is the params that were sent, and originalErr is
// the error BRP (or the transport) returned.
func Run(ctx context.Context, registry *brpschema.RegistrySchema, method string, typeName brptype.TypeName, origParams json.RawMessage, originalErr *brperr.Error) Outcome {
	req := &request{
		registry:    registry,
		method:      method,
		typeName:    typeName,
		origParams:  origParams,
		originalErr: originalErr,
	}
	req.remaining = stages.Stages[*request, Outcome]{
		typeDiscoveryStage,
		serializationCheckStage,
		typeSchemaDiscoveryStage,
		patternCorrectionStage,
	}
	return req.remaining.Next(ctx, req)
}

// typeDiscoveryStage resolves whether typeName is even known to the
// registry snapshot (spec §3.3's TypeDiscovery state).
func typeDiscoveryStage(ctx context.Context, req *request) Outcome {
	schema, ok := req.registry.Lookup(req.typeName)
	if !ok {
		return Outcome{
			Kind:      OutcomeGuidance,
			Retryable: false,
			Message: "Type " + req.typeName.Display() + " is not present in the reflection registry; it cannot be " +
				"spawned, inserted, or mutated by name. Confirm the type path is correct and that the crate " +
				"registering it is compiled into the running app.",
		}
	}
	req.schema = schema
	req.inRegistry = true
	return req.remaining.Next(ctx, req)
}

// serializationCheckStage verifies the type's reflectTypes carry the
// Serialize/Deserialize traits BRP's wire format requires (spec §3.3's
// SerializationCheck state, §4.9).
func serializationCheckStage(ctx context.Context, req *request) Outcome {
	if !req.schema.HasSerialize() || !req.schema.HasDeserialize() {
		return Outcome{
			Kind:      OutcomeGuidance,
			Retryable: false,
			Message: req.typeName.Display() + " does not implement Serialize+Deserialize and so cannot be sent " +
				"over BRP's JSON wire format at all; no retry can fix this.",
		}
	}
	return req.remaining.Next(ctx, req)
}

// typeSchemaDiscoveryStage is a no-op pass-through in this implementation:
// the schema was already fetched during typeDiscoveryStage and is reused
// here rather than re-fetched, since the registry snapshot is immutable
// for the lifetime of one tool call (spec §3.2 invariant 1). The stage
// still exists as a named transition so the state graph in code matches
// the one in spec §3.3.
func typeSchemaDiscoveryStage(ctx context.Context, req *request) Outcome {
	return req.remaining.Next(ctx, req)
}

// patternCorrectionStage is the heart of C9: given the error BRP actually
// returned, it tries a sequence of known malformed-shape correctors (spec
// §4.9) and returns OutcomeRetry with corrected params the moment one
// applies, or falls through to OutcomeGuidance.
func patternCorrectionStage(ctx context.Context, req *request) Outcome {
	for _, corrector := range correctors {
		if corrected, ok := corrector(req); ok {
			return Outcome{Kind: OutcomeRetry, NewParams: corrected, Retryable: true}
		}
	}
	return Outcome{
		Kind:      OutcomeGuidance,
		Retryable: isRetryableHeuristic(req.originalErr),
		Message:   guidanceFor(req),
	}
}
