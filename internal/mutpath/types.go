// Package mutpath implements C4 (recursion context), C5 (per-kind path
// builders), and C6 (the type-guide assembler) of the mutation-path
// compiler: a recursive descent over the registry schema that dispatches
// on each type's kind.
package mutpath

import (
	"encoding/json"

	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// PathKind distinguishes how a MutationPath's string was produced: named
// fields (including the ".0" of a single-field tuple struct or tuple
// variant) are PathField; multi-field tuple elements (".index") and
// array/list elements ("[index]") are PathIndex; the root ("") is PathRoot.
type PathKind int

const (
	PathField PathKind = iota
	PathIndex
	PathRoot
)

// Mutability reports whether a path can be sent to bevy/mutate_component
// as-is, and if not, why (spec §3.1, §4.9).
type Mutability int

const (
	Mutable Mutability = iota
	PartiallyMutable
	NotMutable
)

// NotMutableReason enumerates every reason descent can mark a path
// NotMutable (spec §3.1, §4.5-§4.9). Every builder that can produce
// NotMutable must use one of these, never a free-form string.
type NotMutableReason string

const (
	ReasonNone                NotMutableReason = ""
	ReasonMissingSerialize    NotMutableReason = "missing_serialize"
	ReasonMissingDeserialize  NotMutableReason = "missing_deserialize"
	ReasonNotInRegistry       NotMutableReason = "not_in_registry"
	ReasonComplexMapKey       NotMutableReason = "complex_map_key"
	ReasonOpaqueHandle        NotMutableReason = "opaque_handle"
	ReasonRecursionLimit      NotMutableReason = "recursion_limit"
	ReasonEnumVariantMismatch NotMutableReason = "enum_variant_mismatch"
	ReasonCyclicReference     NotMutableReason = "cyclic_reference"
	// ReasonNoMutableChildren marks a parent whose direct children are all
	// NotMutable, so the parent itself carries no mutable surface (spec
	// §3.1's NotMutableReason enumeration: "no mutable children").
	ReasonNoMutableChildren NotMutableReason = "no_mutable_children"
	// ReasonPartialChildMutability marks a PartiallyMutable parent: some but
	// not all direct children are mutable (spec §3.1: "partial-child
	// mutability").
	ReasonPartialChildMutability NotMutableReason = "partial_child_mutability"
)

// aggregateMutability computes a parent's Mutability from its direct
// children's statuses (spec §3.1's Mutability aggregation rule, invariant
// 5, §8.1): never derived from the parent's own reflection traits. An
// empty children slice (e.g. an empty struct) aggregates to Mutable.
func aggregateMutability(children []Mutability) (Mutability, NotMutableReason) {
	var hasMutable, hasPartial, hasNotMutable bool
	for _, m := range children {
		switch m {
		case Mutable:
			hasMutable = true
		case PartiallyMutable:
			hasPartial = true
		case NotMutable:
			hasNotMutable = true
		}
	}
	switch {
	case hasPartial || (hasMutable && hasNotMutable):
		return PartiallyMutable, ReasonPartialChildMutability
	case hasNotMutable:
		return NotMutable, ReasonNoMutableChildren
	default:
		return Mutable, ReasonNone
	}
}

// VariantSignature identifies one variant of an Enum type by name, so a
// mutation path nested inside a non-unit variant can record which variant
// must be active for the path to apply (spec §3.1, §4.7).
type VariantSignature struct {
	TypeName    brptype.TypeName
	VariantName string
}

// VariantChain is the ordered list of VariantSignatures an agent must set,
// outermost first, before a nested path becomes reachable (spec §3.1:
// "variant_chain ... ordered outermost-first").
type VariantChain []VariantSignature

// Clone returns a copy safe to append to independently of the receiver.
func (c VariantChain) Clone() VariantChain {
	if len(c) == 0 {
		return nil
	}
	out := make(VariantChain, len(c))
	copy(out, c)
	return out
}

// WithVariant returns a new chain with sig appended.
func (c VariantChain) WithVariant(sig VariantSignature) VariantChain {
	return append(c.Clone(), sig)
}

// MutationPath is one leaf or intermediate node of a type's mutation-path
// tree (spec §3.1, §6.4's mutation_paths).
type MutationPath struct {
	Path             string           `json:"path"`
	Kind             PathKind         `json:"-"`
	TypeName         brptype.TypeName `json:"type"`
	Mutability       Mutability       `json:"-"`
	NotMutableReason NotMutableReason `json:"not_mutable_reason,omitempty"`
	Example          json.RawMessage  `json:"example,omitempty"`
	VariantChain     VariantChain     `json:"variant_chain,omitempty"`
}

// IsMutable reports whether this path can be sent as-is.
func (p MutationPath) IsMutable() bool { return p.Mutability == Mutable }

// MarshalJSON renders the boolean "mutable" field expected on the wire
// (spec §6.4) from the internal Mutability enum, and omits
// not_mutable_reason when the path is mutable.
func (p MutationPath) MarshalJSON() ([]byte, error) {
	type wire struct {
		Path             string           `json:"path"`
		Type             brptype.TypeName `json:"type"`
		Mutable          bool             `json:"mutable"`
		NotMutableReason NotMutableReason `json:"not_mutable_reason,omitempty"`
		Example          json.RawMessage  `json:"example,omitempty"`
		VariantChain     VariantChain     `json:"variant_chain,omitempty"`
	}
	return json.Marshal(wire{
		Path:             p.Path,
		Type:             p.TypeName,
		Mutable:          p.IsMutable(),
		NotMutableReason: p.NotMutableReason,
		Example:          p.Example,
		VariantChain:     p.VariantChain,
	})
}

// TypeGuide is the fully-assembled response for one type (C6, spec §6.4).
type TypeGuide struct {
	TypeName          brptype.TypeName   `json:"type"`
	Kind              brpschema.TypeKind `json:"kind"`
	SpawnExample      json.RawMessage    `json:"spawn_example,omitempty"`
	InsertExample     json.RawMessage    `json:"insert_example,omitempty"`
	MutationPaths     []MutationPath     `json:"mutation_paths,omitempty"`
	SupportedOps      []string           `json:"supported_operations"`
	AgentGuidance     string             `json:"agent_guidance,omitempty"`
	SchemaInfo        *brpschema.TypeSchema `json:"schema_info,omitempty"`
	InRegistry        bool               `json:"in_registry"`
}
