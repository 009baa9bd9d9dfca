package attrib

import (
	"errors"
	"testing"
)

func TestAsRecoversConcreteType(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageNormal, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var erased AnyAttribute = a

	got, err := As[float64](erased)
	if err != nil {
		t.Fatalf("As failed: %v", err)
	}
	if got != a {
		t.Error("As should return the same attribute pointer")
	}
}

func TestAsWrongKind(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageNormal, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := As[float32](AnyAttribute(a)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("As with wrong kind error = %v, want ErrTypeMismatch", err)
	}
}

func TestAsOnIndexedAttribute(t *testing.T) {
	ia, err := NewIndexed[float32](UsageUV, 2)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}

	if _, err := As[float32](AnyAttribute(ia)); !errors.Is(err, ErrElementKindMismatch) {
		t.Errorf("As on indexed attribute error = %v, want ErrElementKindMismatch", err)
	}
}

func TestAsIndexed(t *testing.T) {
	ia, err := NewIndexed[float32](UsageUV, 2)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}

	got, err := AsIndexed[float32](AnyAttribute(ia))
	if err != nil {
		t.Fatalf("AsIndexed failed: %v", err)
	}
	if got != ia {
		t.Error("AsIndexed should return the same attribute pointer")
	}

	if _, err := AsIndexed[float64](AnyAttribute(ia)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("AsIndexed with wrong kind error = %v, want ErrTypeMismatch", err)
	}

	plain, err := New[float32](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := AsIndexed[float32](AnyAttribute(plain)); !errors.Is(err, ErrElementKindMismatch) {
		t.Errorf("AsIndexed on plain attribute error = %v, want ErrElementKindMismatch", err)
	}
}

func TestCloneAnyPreservesConcreteType(t *testing.T) {
	a, err := New[uint32](ElementCorner, UsageVertexIndex, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.InsertValues([]uint32{3, 1, 2}); err != nil {
		t.Fatalf("InsertValues failed: %v", err)
	}

	erased, err := a.CloneAny()
	if err != nil {
		t.Fatalf("CloneAny failed: %v", err)
	}

	typed, err := As[uint32](erased)
	if err != nil {
		t.Fatalf("As on clone failed: %v", err)
	}
	if typed.NumElements() != 3 || typed.Get(0) != 3 {
		t.Error("clone lost its contents")
	}
}

func TestAnyAttributeMetadataSurface(t *testing.T) {
	ia, err := NewIndexed[float32](UsageUV, 2)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}
	if err := ia.Indices().InsertValues(make([]Index, 6)); err != nil {
		t.Fatalf("inserting indices failed: %v", err)
	}

	var erased AnyAttribute = ia
	if erased.Element() != ElementIndexed {
		t.Errorf("Element() = %v, want ElementIndexed", erased.Element())
	}
	if erased.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", erased.NumElements())
	}
	if erased.Kind() != KindFloat32 {
		t.Errorf("Kind() = %v, want KindFloat32", erased.Kind())
	}

	indexed, ok := erased.(AnyIndexedAttribute)
	if !ok {
		t.Fatal("indexed attribute should satisfy AnyIndexedAttribute")
	}
	if indexed.AnyValues().Element() != ElementValue {
		t.Errorf("AnyValues().Element() = %v, want ElementValue", indexed.AnyValues().Element())
	}
}
