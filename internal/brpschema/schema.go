// Package brpschema implements C2 (typed accessors over the registry's JSON
// schema documents) and the RegistrySchema/TypeKind types of spec §3.1 and
// §6.3. Field access is centralized behind a small enum of known keys,
// mirroring the teacher's RequestHeader/ResponseHeader pattern in
// svrcore/reqres.go of naming every recognized wire field once and reading
// it through typed accessors rather than ad hoc map indexing scattered
// through the codebase.
package brpschema

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bevyremote/brpmcp/internal/brptype"
)

// Field enumerates the registry schema keys this component recognizes
// (spec §6.3). Accessors never panic; a missing or mistyped field yields a
// zero value / false ok, never an error (spec §4.3, §9).
type Field string

const (
	FieldKind         Field = "kind"
	FieldType         Field = "type"
	FieldRef          Field = "$ref"
	FieldItems        Field = "items"
	FieldPrefixItems  Field = "prefixItems"
	FieldProperties   Field = "properties"
	FieldKeyType      Field = "keyType"
	FieldValueType    Field = "valueType"
	FieldOneOf        Field = "oneOf"
	FieldReflectTypes Field = "reflectTypes"
	FieldRequired     Field = "required"
	FieldShortPath    Field = "shortPath"
	FieldTypePath     Field = "typePath"
	FieldModulePath   Field = "modulePath"
	FieldCrateName    Field = "crateName"
)

// TypeKind is the closed set of schema "kind" values (spec §3.1). A missing
// or unrecognized kind defaults to Value, per the same section.
type TypeKind string

const (
	KindStruct      TypeKind = "Struct"
	KindTuple       TypeKind = "Tuple"
	KindTupleStruct TypeKind = "TupleStruct"
	KindArray       TypeKind = "Array"
	KindList        TypeKind = "List"
	KindMap         TypeKind = "Map"
	KindSet         TypeKind = "Set"
	KindEnum        TypeKind = "Enum"
	KindValue       TypeKind = "Value"
)

// TypeRef is the shape {"type":{"$ref":"#/$defs/<TypeName>"}} that appears
// in properties/prefixItems/items/keyType/valueType entries.
type TypeRef struct {
	Type struct {
		Ref string `json:"$ref"`
	} `json:"type"`
}

// ResolveRef parses a "#/$defs/<TypeName>" ref into a TypeName. ok is false
// if the string doesn't match the expected shape.
func ResolveRef(ref string) (brptype.TypeName, bool) {
	const prefix = "#/$defs/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	return brptype.TypeName(ref[len(prefix):]), true
}

// VariantSchema is one entry of an Enum's "oneOf" array (spec §6.3).
type VariantSchema struct {
	ShortPath   string            `json:"shortPath"`
	TypePath    string            `json:"typePath"`
	PrefixItems []TypeRef         `json:"prefixItems,omitempty"`
	Properties  map[string]TypeRef `json:"properties,omitempty"`
}

// TypeSchema is one type's schema document, keyed by TypeName inside a
// RegistrySchema. All fields are exported for json.Unmarshal but callers
// should prefer the typed accessor methods below, which apply the
// missing-field/invalid-kind tolerance rules of spec §4.3/§9.
type TypeSchema struct {
	Kind         string                    `json:"kind"`
	Properties   map[string]TypeRef        `json:"properties,omitempty"`
	PrefixItems  []TypeRef                 `json:"prefixItems,omitempty"`
	Items        *TypeRef                  `json:"items,omitempty"`
	KeyType      *TypeRef                  `json:"keyType,omitempty"`
	ValueType    *TypeRef                  `json:"valueType,omitempty"`
	OneOf        []VariantSchema           `json:"oneOf,omitempty"`
	ReflectTypes []string                  `json:"reflectTypes,omitempty"`
	Required     []string                  `json:"required,omitempty"`
	ShortPath    string                    `json:"shortPath,omitempty"`
	TypePath     string                    `json:"typePath,omitempty"`
	ModulePath   string                    `json:"modulePath,omitempty"`
	CrateName    string                    `json:"crateName,omitempty"`
}

// TypeKind returns the schema's kind, defaulting to Value for a
// missing/unrecognized value (spec §3.1).
func (s *TypeSchema) TypeKind() TypeKind {
	switch TypeKind(s.Kind) {
	case KindStruct, KindTuple, KindTupleStruct, KindArray, KindList, KindMap, KindSet, KindEnum, KindValue:
		return TypeKind(s.Kind)
	default:
		return KindValue
	}
}

// HasSerialize reports whether reflectTypes includes "Serialize".
func (s *TypeSchema) HasSerialize() bool { return hasReflectType(s.ReflectTypes, "Serialize") }

// HasDeserialize reports whether reflectTypes includes "Deserialize".
func (s *TypeSchema) HasDeserialize() bool { return hasReflectType(s.ReflectTypes, "Deserialize") }

func hasReflectType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// ExtractFieldType composes the type.$ref resolution applied to
// properties/prefixItems/items/keyType/valueType entries; this is the only
// place that pattern is implemented, per spec §4.3.
func ExtractFieldType(ref *TypeRef) (brptype.TypeName, bool) {
	if ref == nil {
		return "", false
	}
	return ResolveRef(ref.Type.Ref)
}

// ArrayLength parses the "[T; N]" syntax embedded in an Array type's own
// TypeName (spec §4.6: "size parsed from [T;N]"). ok is false if the
// TypeName isn't in that syntax.
func ArrayLength(t brptype.TypeName) (n int, ok bool) {
	s := string(t)
	open := strings.LastIndexByte(s, '[')
	semi := strings.LastIndexByte(s, ';')
	close := strings.LastIndexByte(s, ']')
	if open < 0 || semi < 0 || close < 0 || !(open < semi && semi < close) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[semi+1 : close]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// RegistrySchema is the immutable per-request snapshot of spec §3.1/§3.2
// invariant 1: fetched once per tool invocation and shared by reference
// among all concurrent per-type traversals. Go's garbage collector retires
// it once the last reference (goroutine-local or otherwise) drops, so no
// manual reference count is needed, unlike a borrow-checked original.
type RegistrySchema struct {
	defs map[brptype.TypeName]*TypeSchema
}

// ParseRegistry builds a RegistrySchema from a raw BRP registry/schema
// response: {"$defs": {"<TypeName>": {...}, ...}} or a bare map of the same
// shape (both forms are seen from different BRP list methods).
func ParseRegistry(raw json.RawMessage) (*RegistrySchema, error) {
	var withDefs struct {
		Defs map[brptype.TypeName]*TypeSchema `json:"$defs"`
	}
	if err := json.Unmarshal(raw, &withDefs); err == nil && len(withDefs.Defs) > 0 {
		return &RegistrySchema{defs: withDefs.Defs}, nil
	}
	var bare map[brptype.TypeName]*TypeSchema
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, err
	}
	return &RegistrySchema{defs: bare}, nil
}

// Lookup returns the schema for t, or nil, false if t is absent from the
// registry snapshot.
func (r *RegistrySchema) Lookup(t brptype.TypeName) (*TypeSchema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.defs[t]
	return s, ok
}

// Len reports how many types the registry snapshot carries.
func (r *RegistrySchema) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// TypeNames returns every type name known to this registry snapshot, for
// the all_type_guides batched path (spec §4.8).
func (r *RegistrySchema) TypeNames() []brptype.TypeName {
	names := make([]brptype.TypeName, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}
