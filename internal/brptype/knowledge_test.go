package brptype

import "testing"

func TestLookup_ExactType(t *testing.T) {
	k, ok := Lookup("", "", TypeVec3)
	if !ok {
		t.Fatal("expected glam::Vec3 to resolve via exact-type tier")
	}
	if string(k.Example) != `[1.0,2.0,3.0]` {
		t.Errorf("example = %s", k.Example)
	}
}

func TestLookup_FieldPairTakesPriority(t *testing.T) {
	k, ok := Lookup(TypeTransform, "scale", TypeVec3)
	if !ok {
		t.Fatal("expected (Transform, scale) to resolve via field-pair tier")
	}
	if string(k.Example) != `[1.0,1.0,1.0]` {
		t.Errorf("expected scale override example, got %s", k.Example)
	}

	// A different parent falls back to the exact-type entry for Vec3.
	k2, ok := Lookup("some::Other", "scale", TypeVec3)
	if !ok {
		t.Fatal("expected fallback to exact-type tier")
	}
	if string(k2.Example) != `[1.0,2.0,3.0]` {
		t.Errorf("expected plain Vec3 example, got %s", k2.Example)
	}
}

func TestLookup_EntityIsRootValue(t *testing.T) {
	k, ok := Lookup("", "", TypeEntity)
	if !ok {
		t.Fatal("expected Entity in knowledge table")
	}
	if k.Kind != KnowledgeTreatAsRootValue {
		t.Errorf("expected Entity to short-circuit descent, got kind %v", k.Kind)
	}
	if k.SimplifiedType != TypeEntity {
		t.Errorf("expected SimplifiedType to be Entity, got %v", k.SimplifiedType)
	}
}

func TestLookup_Miss(t *testing.T) {
	_, ok := Lookup("", "", "some::Unknown::Type")
	if ok {
		t.Fatal("expected no knowledge-table entry for an arbitrary type")
	}
}
