package brptype

import "testing"

func TestTypeName_Base(t *testing.T) {
	cases := map[TypeName]TypeName{
		"core::option::Option<glam::Vec3>": "core::option::Option",
		"glam::Vec3":                       "glam::Vec3",
	}
	for in, want := range cases {
		if got := in.Base(); got != want {
			t.Errorf("Base(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTypeName_Short(t *testing.T) {
	cases := map[TypeName]string{
		"bevy_transform::components::transform::Transform": "Transform",
		"core::option::Option<glam::Vec3>":                  "Option<glam::Vec3>",
		"[f32; 3]":                                          "[f32; 3]",
	}
	for in, want := range cases {
		if got := in.Short(); got != want {
			t.Errorf("Short(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTypeName_IsUnknown(t *testing.T) {
	if !Unknown.IsUnknown() {
		t.Error("Unknown should report IsUnknown")
	}
	if !TypeName("").IsUnknown() {
		t.Error("empty TypeName should report IsUnknown")
	}
	if TypeVec3.IsUnknown() {
		t.Error("glam::Vec3 should not report IsUnknown")
	}
}

func TestTypeName_GenericArgs(t *testing.T) {
	args := TypeName("core::option::Option<glam::Vec3>").GenericArgs()
	if len(args) != 1 || args[0] != "glam::Vec3" {
		t.Fatalf("GenericArgs = %v, want [glam::Vec3]", args)
	}

	nested := TypeName("a::Map<b::Key, c::Option<d::Value>>").GenericArgs()
	if len(nested) != 2 || nested[0] != "b::Key" || nested[1] != "c::Option<d::Value>" {
		t.Fatalf("GenericArgs (nested) = %v", nested)
	}

	if args := TypeVec3.GenericArgs(); args != nil {
		t.Errorf("GenericArgs on a non-generic type should be nil, got %v", args)
	}
}

func TestContainsEntity(t *testing.T) {
	if !ContainsEntity("core::option::Option<bevy_ecs::entity::Entity>") {
		t.Error("expected ContainsEntity to match a wrapped Entity")
	}
	if ContainsEntity(TypeVec3) {
		t.Error("ContainsEntity should not match an unrelated type")
	}
}
