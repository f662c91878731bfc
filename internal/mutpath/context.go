package mutpath

import (
	"strconv"

	"github.com/bevyremote/brpmcp/internal/brpschema"
	"github.com/bevyremote/brpmcp/internal/brptype"
)

// RecursionContext carries per-descent state down the type tree (C4, spec
// §3.1, §4.5). It is immutable by convention: every transition method
// returns a new value rather than mutating the receiver, mirroring the
// teacher's Stages[In,Out] pattern of passing a fresh value to each stage
// rather than sharing mutable state across them.
type RecursionContext struct {
	Registry     *brpschema.RegistrySchema
	Path         string
	Depth        int
	MaxDepth     int
	VariantChain VariantChain
	// Kind records how Path's last segment was produced, so a leaf built
	// at this context can report its PathKind without re-deriving it from
	// the path string (which can't distinguish a tuple's ".0" from a
	// struct field once both use dotted notation).
	Kind PathKind
	// Visiting guards against infinite recursion through cyclic type graphs
	// that aren't caught by the Entity special-case (spec §9): any type
	// name already on the current descent stack is treated as NotMutable
	// with ReasonCyclicReference rather than recursing forever.
	Visiting map[brptype.TypeName]bool
}

// NewRootContext starts a descent at the root of a type (spec §4.5: root
// context has Path == "" and Depth == 0).
func NewRootContext(registry *brpschema.RegistrySchema, maxDepth int) RecursionContext {
	return RecursionContext{
		Registry: registry,
		Path:     "",
		Depth:    0,
		MaxDepth: maxDepth,
		Kind:     PathRoot,
		Visiting: map[brptype.TypeName]bool{},
	}
}

// AtLimit reports whether descent has reached the configured depth bound
// (spec §4.5, §7: never fatal, just forces a NotMutable leaf).
func (c RecursionContext) AtLimit() bool {
	return c.Depth >= c.MaxDepth
}

// cloneVisiting copies the visiting set so children don't share the
// parent's map identity (each branch of the tree tracks its own stack).
func (c RecursionContext) cloneVisiting() map[brptype.TypeName]bool {
	out := make(map[brptype.TypeName]bool, len(c.Visiting)+1)
	for k, v := range c.Visiting {
		out[k] = v
	}
	return out
}

// WithField transitions into a named struct/tuple-struct/enum field (spec
// §4.5's create_field_context), appending ".name" to the path.
func (c RecursionContext) WithField(name string, entering brptype.TypeName) RecursionContext {
	next := c
	if c.Path == "" {
		next.Path = "." + name
	} else {
		next.Path = c.Path + "." + name
	}
	next.Depth = c.Depth + 1
	next.Kind = PathField
	next.Visiting = c.cloneVisiting()
	next.Visiting[entering] = true
	return next
}

// WithIndex transitions into an array/list element (spec §4.5's
// create_indexed_context), appending "[index]" to the path. Tuple and
// tuple-struct elements use WithTupleIndex instead (spec §3.2 invariant 3:
// array indexing and tuple indexing use distinct notations).
func (c RecursionContext) WithIndex(index int, entering brptype.TypeName) RecursionContext {
	next := c
	next.Path = c.Path + indexSuffix(index)
	next.Depth = c.Depth + 1
	next.Kind = PathIndex
	next.Visiting = c.cloneVisiting()
	next.Visiting[entering] = true
	return next
}

// WithTupleIndex transitions into a tuple/tuple-struct element, appending
// ".index" to the path (spec §3.2 invariant 3: "tuple indices prepend
// .n"), distinct from WithIndex's "[index]" used for array/list elements.
func (c RecursionContext) WithTupleIndex(index int, entering brptype.TypeName) RecursionContext {
	next := c
	next.Path = c.Path + "." + strconv.Itoa(index)
	next.Depth = c.Depth + 1
	next.Kind = PathIndex
	next.Visiting = c.cloneVisiting()
	next.Visiting[entering] = true
	return next
}

// WithVariant records that reaching this path requires the given variant
// to be active (spec §4.7), without changing Path or Depth by itself —
// callers combine this with WithField when descending into a variant's
// payload fields.
func (c RecursionContext) WithVariant(sig VariantSignature) RecursionContext {
	next := c
	next.VariantChain = c.VariantChain.WithVariant(sig)
	return next
}

// IsVisiting reports whether t is already on the current descent stack,
// i.e. whether entering it again would cycle (spec §9).
func (c RecursionContext) IsVisiting(t brptype.TypeName) bool {
	return c.Visiting[t]
}

func indexSuffix(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
