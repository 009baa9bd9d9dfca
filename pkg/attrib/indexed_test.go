package attrib

import (
	"errors"
	"testing"
)

func TestNewIndexed(t *testing.T) {
	ia, err := NewIndexed[float32](UsageUV, 2)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}

	if ia.Element() != ElementIndexed {
		t.Errorf("Element() = %v, want ElementIndexed", ia.Element())
	}
	if ia.Usage() != UsageUV {
		t.Errorf("Usage() = %v, want UsageUV", ia.Usage())
	}
	if ia.NumChannels() != 2 {
		t.Errorf("NumChannels() = %d, want 2", ia.NumChannels())
	}
	if ia.Kind() != KindFloat32 {
		t.Errorf("Kind() = %v, want KindFloat32", ia.Kind())
	}
	if !ia.Empty() {
		t.Error("new indexed attribute should be empty")
	}

	if ia.Values().Element() != ElementValue {
		t.Errorf("value buffer element = %v, want ElementValue", ia.Values().Element())
	}
	if ia.Indices().Element() != ElementCorner {
		t.Errorf("index buffer element = %v, want ElementCorner", ia.Indices().Element())
	}
	if ia.Indices().NumChannels() != 1 {
		t.Errorf("index buffer channels = %d, want 1", ia.Indices().NumChannels())
	}
}

func TestNewIndexedValidatesUsage(t *testing.T) {
	if _, err := NewIndexed[float32](UsageUV, 3); !errors.Is(err, ErrConfiguration) {
		t.Errorf("NewIndexed(UV, 3) error = %v, want ErrConfiguration", err)
	}
}

func TestIndexedSeamLayout(t *testing.T) {
	// Two triangles sharing an edge with a UV seam: six corners, four
	// deduplicated UV rows.
	ia, err := NewIndexed[float32](UsageUV, 2)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}

	uvs := []float32{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
	}
	if err := ia.Values().InsertValues(uvs); err != nil {
		t.Fatalf("inserting values failed: %v", err)
	}
	if err := ia.Indices().InsertValues([]Index{0, 1, 2, 1, 3, 2}); err != nil {
		t.Fatalf("inserting indices failed: %v", err)
	}

	if ia.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6 (corner count)", ia.NumElements())
	}
	if ia.Values().NumElements() != 4 {
		t.Errorf("value rows = %d, want 4", ia.Values().NumElements())
	}

	// Corner 4 references row 3
	row := ia.Values().GetRow(int(ia.Indices().Get(4)))
	if row[0] != 1 || row[1] != 1 {
		t.Errorf("corner 4 UV = %v, want [1 1]", row)
	}
}

func TestIndexedResizeTargetsIndices(t *testing.T) {
	ia, err := NewIndexed[float64](UsageNormal, 3)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}
	if err := ia.Values().InsertValues([]float64{0, 0, 1}); err != nil {
		t.Fatalf("inserting values failed: %v", err)
	}

	if err := ia.ResizeElements(9); err != nil {
		t.Fatalf("ResizeElements failed: %v", err)
	}
	if ia.NumElements() != 9 {
		t.Errorf("NumElements() = %d, want 9", ia.NumElements())
	}
	if ia.Indices().NumElements() != 9 {
		t.Errorf("index buffer elements = %d, want 9", ia.Indices().NumElements())
	}
	if ia.Values().NumElements() != 1 {
		t.Errorf("value buffer elements = %d, want 1 (untouched)", ia.Values().NumElements())
	}
}

func TestIndexedExternalFlags(t *testing.T) {
	ia, err := NewIndexed[float32](UsageUV, 2)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}

	if ia.IsExternal() || ia.IsReadOnly() {
		t.Error("fresh indexed attribute should be internal and writable")
	}

	values := []float32{0, 0, 1, 1}
	if err := ia.Values().WrapConst(values, 2); err != nil {
		t.Fatalf("WrapConst failed: %v", err)
	}

	if !ia.IsExternal() {
		t.Error("IsExternal() should reflect the value buffer")
	}
	if !ia.IsReadOnly() {
		t.Error("IsReadOnly() should reflect the value buffer")
	}
}

func TestIndexedClone(t *testing.T) {
	ia, err := NewIndexed[float32](UsageUV, 2)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}
	if err := ia.Values().InsertValues([]float32{0.5, 0.5}); err != nil {
		t.Fatalf("inserting values failed: %v", err)
	}
	if err := ia.Indices().InsertValues([]Index{0, 0, 0}); err != nil {
		t.Fatalf("inserting indices failed: %v", err)
	}

	c, err := ia.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	if err := c.Indices().Set(1, 7); err != nil {
		t.Fatalf("Set on clone failed: %v", err)
	}
	if got := ia.Indices().Get(1); got != 0 {
		t.Errorf("original index mutated by clone write: %v", got)
	}
	if got := c.Indices().Get(1); got != 7 {
		t.Errorf("clone index = %v, want 7", got)
	}
}

func TestIndexedShrinkToFit(t *testing.T) {
	ia, err := NewIndexed[float64](UsageNormal, 3)
	if err != nil {
		t.Fatalf("NewIndexed failed: %v", err)
	}
	if err := ia.Values().Reserve(100); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := ia.Values().InsertValues([]float64{1, 0, 0}); err != nil {
		t.Fatalf("inserting values failed: %v", err)
	}
	if err := ia.Indices().InsertValues([]Index{0, 0}); err != nil {
		t.Fatalf("inserting indices failed: %v", err)
	}

	if err := ia.ShrinkToFit(); err != nil {
		t.Fatalf("ShrinkToFit failed: %v", err)
	}
	if ia.Values().Capacity() != 3 {
		t.Errorf("value capacity after shrink = %d, want 3", ia.Values().Capacity())
	}
	if ia.Indices().Capacity() != 2 {
		t.Errorf("index capacity after shrink = %d, want 2", ia.Indices().Capacity())
	}
}
