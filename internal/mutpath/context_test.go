package mutpath

import (
	"testing"

	"github.com/bevyremote/brpmcp/internal/brptype"
	"github.com/stretchr/testify/assert"
)

func TestRecursionContext_WithField(t *testing.T) {
	root := NewRootContext(nil, 10)
	child := root.WithField("translation", "glam::Vec3")
	assert.Equal(t, ".translation", child.Path)
	assert.Equal(t, 1, child.Depth)
	assert.True(t, child.IsVisiting("glam::Vec3"))
	assert.False(t, root.IsVisiting("glam::Vec3"))

	grandchild := child.WithField("x", "f32")
	assert.Equal(t, ".translation.x", grandchild.Path)
}

func TestRecursionContext_WithIndex(t *testing.T) {
	root := NewRootContext(nil, 10)
	child := root.WithIndex(2, "f32")
	assert.Equal(t, "[2]", child.Path)

	grandchild := child.WithIndex(0, "f32")
	assert.Equal(t, "[2][0]", grandchild.Path)
}

func TestRecursionContext_WithTupleIndex(t *testing.T) {
	root := NewRootContext(nil, 10)
	child := root.WithTupleIndex(0, "f32")
	assert.Equal(t, ".0", child.Path)
	assert.Equal(t, PathIndex, child.Kind)

	sibling := root.WithTupleIndex(1, "f32")
	assert.Equal(t, ".1", sibling.Path)

	indexed := root.WithIndex(0, "f32")
	assert.NotEqual(t, child.Path, indexed.Path, "tuple and array indexing must use distinct notations")
}

func TestRecursionContext_AtLimit(t *testing.T) {
	ctx := NewRootContext(nil, 2)
	assert.False(t, ctx.AtLimit())
	ctx.Depth = 2
	assert.True(t, ctx.AtLimit())
}

func TestRecursionContext_VisitingIsolatedPerBranch(t *testing.T) {
	root := NewRootContext(nil, 10)
	branchA := root.WithField("a", "type::A")
	branchB := root.WithField("b", "type::B")

	assert.True(t, branchA.IsVisiting("type::A"))
	assert.False(t, branchA.IsVisiting("type::B"))
	assert.True(t, branchB.IsVisiting("type::B"))
	assert.False(t, branchB.IsVisiting("type::A"))
}

func TestVariantChain_WithVariant(t *testing.T) {
	var chain VariantChain
	next := chain.WithVariant(VariantSignature{TypeName: "my::Enum", VariantName: "A"})
	assert.Len(t, next, 1)
	assert.Empty(t, chain, "original chain must not be mutated")

	next2 := next.WithVariant(VariantSignature{TypeName: "my::Enum", VariantName: "B"})
	assert.Len(t, next2, 2)
	assert.Len(t, next, 1, "appending to next must not mutate next")
}
