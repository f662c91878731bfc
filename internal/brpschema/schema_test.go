package brpschema

import (
	"testing"

	"github.com/bevyremote/brpmcp/internal/brptype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRef(t *testing.T) {
	name, ok := ResolveRef("#/$defs/glam::Vec3")
	require.True(t, ok)
	assert.Equal(t, brptype.TypeName("glam::Vec3"), name)

	_, ok = ResolveRef("glam::Vec3")
	assert.False(t, ok)
}

func TestTypeSchema_TypeKind(t *testing.T) {
	tests := []struct {
		name string
		kind string
		want TypeKind
	}{
		{"struct", "Struct", KindStruct},
		{"enum", "Enum", KindEnum},
		{"unrecognized falls back to value", "Bogus", KindValue},
		{"empty falls back to value", "", KindValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &TypeSchema{Kind: tt.kind}
			assert.Equal(t, tt.want, s.TypeKind())
		})
	}
}

func TestTypeSchema_ReflectTypes(t *testing.T) {
	s := &TypeSchema{ReflectTypes: []string{"Component", "Serialize"}}
	assert.True(t, s.HasSerialize())
	assert.False(t, s.HasDeserialize())
}

func TestArrayLength(t *testing.T) {
	n, ok := ArrayLength("[f32; 3]")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = ArrayLength("glam::Vec3")
	assert.False(t, ok)
}

func TestParseRegistry_WithDefsWrapper(t *testing.T) {
	raw := []byte(`{"$defs":{"glam::Vec3":{"kind":"Struct","properties":{"x":{"type":{"$ref":"#/$defs/f32"}}}}}}`)
	reg, err := ParseRegistry(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	schema, ok := reg.Lookup("glam::Vec3")
	require.True(t, ok)
	assert.Equal(t, KindStruct, schema.TypeKind())

	ref, ok := schema.Properties["x"]
	require.True(t, ok)
	typeName, ok := ExtractFieldType(&ref)
	require.True(t, ok)
	assert.Equal(t, brptype.TypeName("f32"), typeName)
}

func TestParseRegistry_BareMap(t *testing.T) {
	raw := []byte(`{"glam::Vec2":{"kind":"Struct"}}`)
	reg, err := ParseRegistry(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Lookup("glam::Vec2")
	assert.True(t, ok)
}

func TestRegistrySchema_LookupMissing(t *testing.T) {
	reg, err := ParseRegistry([]byte(`{"$defs":{}}`))
	require.NoError(t, err)
	_, ok := reg.Lookup("does::not::Exist")
	assert.False(t, ok)
}

func TestRegistrySchema_NilSafe(t *testing.T) {
	var reg *RegistrySchema
	assert.Equal(t, 0, reg.Len())
	_, ok := reg.Lookup("anything")
	assert.False(t, ok)
}
