package brptype

import "encoding/json"

// KnowledgeKind distinguishes the two outcomes the mutation-knowledge table
// can produce for a type, per spec §4.4.
type KnowledgeKind int

const (
	// KnowledgeExample supplies a canonical example value. The descent
	// engine emits the type as one mutable leaf carrying this example and
	// does not descend into its children, the same as for
	// KnowledgeTreatAsRootValue.
	KnowledgeExample KnowledgeKind = iota
	// KnowledgeTreatAsRootValue short-circuits further descent entirely: the
	// type is emitted as an opaque leaf even though its real schema kind may
	// be Struct/Enum/etc.
	KnowledgeTreatAsRootValue
)

// Knowledge is one entry of the static mutation-knowledge table (C3).
type Knowledge struct {
	Kind           KnowledgeKind
	Example        json.RawMessage
	SimplifiedType TypeName // only set for KnowledgeTreatAsRootValue
}

func example(v string) Knowledge { return Knowledge{Kind: KnowledgeExample, Example: json.RawMessage(v)} }

func rootValue(simplified TypeName, v string) Knowledge {
	return Knowledge{Kind: KnowledgeTreatAsRootValue, SimplifiedType: simplified, Example: json.RawMessage(v)}
}

// byExactType is the second lookup tier, consulted when no (parent, field)
// entry matches: an exact TypeName match.
var byExactType = map[TypeName]Knowledge{
	"bool":                       example(`false`),
	"char":                       example(`"x"`),
	"u8":                         example(`255`),
	"u16":                        example(`65535`),
	"u32":                        example(`4294967295`),
	"u64":                        example(`18446744073709551615`),
	"usize":                      example(`18446744073709551615`),
	"i8":                         example(`127`),
	"i16":                        example(`32767`),
	"i32":                        example(`2147483647`),
	"i64":                        example(`9223372036854775807`),
	"isize":                      example(`9223372036854775807`),
	"f32":                        example(`3.1415927`),
	"f64":                        example(`3.141592653589793`),
	TypeString:                   example(`"Hello, World!"`),
	"alloc::borrow::Cow<str>":    example(`"Hello, World!"`),
	TypeVec2:                     example(`[1.0,2.0]`),
	TypeVec3:                     example(`[1.0,2.0,3.0]`),
	TypeVec4:                     example(`[1.0,2.0,3.0,4.0]`),
	TypeQuat:                     example(`[0.0,0.0,0.0,1.0]`),
	TypeMat3:                     example(`[1.0,0.0,0.0,0.0,1.0,0.0,0.0,0.0,1.0]`),
	TypeMat4:                     example(`[1.0,0.0,0.0,0.0,0.0,1.0,0.0,0.0,0.0,0.0,1.0,0.0,0.0,0.0,0.0,1.0]`),
	TypeSrgba:                    example(`{"red":1.0,"green":1.0,"blue":1.0,"alpha":1.0}`),
	TypeLinearRgba:               example(`{"red":1.0,"green":1.0,"blue":1.0,"alpha":1.0}`),
	TypeColor:                    example(`{"Srgba":{"red":1.0,"green":1.0,"blue":1.0,"alpha":1.0}}`),
	"bevy_color::hsla::Hsla":     example(`{"hue":0.0,"saturation":1.0,"lightness":0.5,"alpha":1.0}`),
	"bevy_math::rects::Rect":     example(`{"min":[0.0,0.0],"max":[1.0,1.0]}`),
	"bevy_utils::Duration":       example(`{"secs":0,"nanos":0}`),

	// Entity is a well-known cyclic boundary (spec §9): descent never
	// enters World's graph through it.
	TypeEntity: rootValue(TypeEntity, `4294967295`),
}

// byFieldPair is the first lookup tier, keyed by (parent type, field name),
// for cases where the same field type needs a different example depending
// on which struct it appears in (spec §4.4: "struct-field pair").
type fieldKey struct {
	Parent TypeName
	Field  string
}

var byFieldPair = map[fieldKey]Knowledge{
	{Parent: TypeTransform, Field: "translation"}: example(`[1.0,2.0,3.0]`),
	{Parent: TypeTransform, Field: "scale"}:       example(`[1.0,1.0,1.0]`),
}

// Lookup resolves in two tiers: the (parent, field) pair first, then the
// exact type match. ok is false if neither tier has
// an entry, meaning ordinary kind-dispatch descent should proceed.
func Lookup(parent TypeName, field string, t TypeName) (Knowledge, bool) {
	if k, found := byFieldPair[fieldKey{Parent: parent, Field: field}]; found {
		return k, true
	}
	if k, found := byExactType[t]; found {
		return k, true
	}
	return Knowledge{}, false
}
