// Package brptype implements C1 (the TypeName primitive) and C3 (the static
// mutation-knowledge table) of the type-guide pipeline. It is grounded on
// the teacher's BaseMetadata/Implementation pattern of wrapping a bare
// string identifier with derived accessors (mcp/schema.go), generalized
// here to Rust's fully-qualified reflection type-path syntax.
package brptype

import "strings"

// Unknown is the canonical sentinel for a type name that could not be
// determined (spec §3.1: "canonical 'unknown' sentinel").
const Unknown = TypeName("<unknown>")

// TypeName wraps a fully-qualified reflected type path, e.g.
// "bevy_transform::components::transform::Transform" or
// "core::option::Option<glam::Vec3>". Equality and hashing are string-exact
// (spec §3.1), so TypeName is safe to use as a map key directly.
type TypeName string

// Base strips generic parameters, e.g. "core::option::Option<glam::Vec3>"
// becomes "core::option::Option".
func (t TypeName) Base() TypeName {
	s := string(t)
	if i := strings.IndexByte(s, '<'); i >= 0 {
		return TypeName(s[:i])
	}
	return t
}

// Short returns the last "::"-delimited segment, preserving fixed-array
// syntax "[T; N]" which has no "::" separators of its own to split on.
func (t TypeName) Short() string {
	s := string(t)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		if semi := strings.LastIndexByte(s, ';'); semi > 0 {
			return "[" + TypeName(s[1:semi]).Short() + s[semi:]
		}
	}
	base := s
	generics := ""
	if i := strings.IndexByte(s, '<'); i >= 0 {
		base, generics = s[:i], s[i:]
	}
	if idx := strings.LastIndex(base, "::"); idx >= 0 {
		base = base[idx+2:]
	}
	return base + generics
}

// Display is the human-facing rendering used in agent_guidance text.
func (t TypeName) Display() string { return string(t) }

// String implements fmt.Stringer so TypeName formats cleanly in logs/tests.
func (t TypeName) String() string { return string(t) }

// IsUnknown reports whether this TypeName is the canonical sentinel or empty.
func (t TypeName) IsUnknown() bool { return t == Unknown || t == "" }

// GenericArgs returns the comma-split contents of a single level of angle
// brackets, e.g. "Option<glam::Vec3>".GenericArgs() == ["glam::Vec3"].
// Returns nil if t carries no generic parameters.
func (t TypeName) GenericArgs() []TypeName {
	s := string(t)
	start := strings.IndexByte(s, '<')
	end := strings.LastIndexByte(s, '>')
	if start < 0 || end < 0 || end < start {
		return nil
	}
	inner := s[start+1 : end]
	depth := 0
	args := []TypeName{}
	last := 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, TypeName(strings.TrimSpace(inner[last:i])))
				last = i + 1
			}
		}
	}
	if last < len(inner) {
		args = append(args, TypeName(strings.TrimSpace(inner[last:])))
	}
	return args
}

// Well-known boundary types referenced throughout the descent engine
// (spec §9's cyclic-type-graph discussion, §4.8's Entity-warning heuristic).
const (
	TypeEntity      TypeName = "bevy_ecs::entity::Entity"
	TypeOptionBase  TypeName = "core::option::Option"
	TypeHandleBase  TypeName = "bevy_asset::handle::Handle"
	TypeColor       TypeName = "bevy_color::color::Color"
	TypeVec2        TypeName = "glam::Vec2"
	TypeVec3        TypeName = "glam::Vec3"
	TypeVec4        TypeName = "glam::Vec4"
	TypeQuat        TypeName = "glam::Quat"
	TypeMat3        TypeName = "glam::Mat3"
	TypeMat4        TypeName = "glam::Mat4"
	TypeSrgba       TypeName = "bevy_color::srgba::Srgba"
	TypeLinearRgba  TypeName = "bevy_color::linear_rgba::LinearRgba"
	TypeString      TypeName = "alloc::string::String"
	TypeClearColor  TypeName = "bevy_core_pipeline::clear_color::ClearColor"
	TypeTransform   TypeName = "bevy_transform::components::transform::Transform"
	TypeGlobalTrans TypeName = "bevy_transform::components::global_transform::GlobalTransform"
)

// ContainsEntity reports whether a type name's display text mentions the
// bare Entity type anywhere (spec §4.8, §9: the Entity-warning heuristic is
// "necessarily broad", a substring search, not semantic equality).
func ContainsEntity(t TypeName) bool {
	return strings.Contains(string(t), string(TypeEntity))
}
