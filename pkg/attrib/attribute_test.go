package attrib

import (
	"errors"
	"testing"
)

func TestNewValidatesUsageChannels(t *testing.T) {
	tests := []struct {
		name     string
		usage    Usage
		channels int
		wantErr  bool
	}{
		{"scalar one channel", UsageScalar, 1, false},
		{"scalar two channels", UsageScalar, 2, true},
		{"vector one channel", UsageVector, 1, false},
		{"vector four channels", UsageVector, 4, false},
		{"vector zero channels", UsageVector, 0, true},
		{"normal three channels", UsageNormal, 3, false},
		{"tangent three channels", UsageTangent, 3, false},
		{"bitangent four channels", UsageBitangent, 4, false},
		{"color one channel", UsageColor, 1, false},
		{"color four channels", UsageColor, 4, false},
		{"color five channels", UsageColor, 5, true},
		{"uv two channels", UsageUV, 2, false},
		{"uv three channels", UsageUV, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float64](ElementVertex, tt.usage, tt.channels)
			if tt.wantErr {
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("New() error = %v, want ErrConfiguration", err)
				}
			} else if err != nil {
				t.Errorf("New() unexpected error: %v", err)
			}
		})
	}
}

func TestNewRejectsFloatIndexUsage(t *testing.T) {
	for _, usage := range []Usage{
		UsageVertexIndex, UsageFacetIndex, UsageCornerIndex, UsageEdgeIndex,
	} {
		if _, err := New[float32](ElementCorner, usage, 1); !errors.Is(err, ErrConfiguration) {
			t.Errorf("New[float32](%s) error = %v, want ErrConfiguration", usage, err)
		}
		if _, err := New[uint32](ElementCorner, usage, 1); err != nil {
			t.Errorf("New[uint32](%s) unexpected error: %v", usage, err)
		}
	}
}

func TestNewRejectsElementMask(t *testing.T) {
	_, err := New[float64](ElementVertex|ElementFacet, UsageVector, 3)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("New() with combined element error = %v, want ErrConfiguration", err)
	}
}

func TestAttributeMetadata(t *testing.T) {
	a, err := New[float32](ElementCorner, UsageUV, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if a.Element() != ElementCorner {
		t.Errorf("Element() = %v, want %v", a.Element(), ElementCorner)
	}
	if a.Usage() != UsageUV {
		t.Errorf("Usage() = %v, want %v", a.Usage(), UsageUV)
	}
	if a.NumChannels() != 2 {
		t.Errorf("NumChannels() = %d, want 2", a.NumChannels())
	}
	if a.Kind() != KindFloat32 {
		t.Errorf("Kind() = %v, want %v", a.Kind(), KindFloat32)
	}
	if !a.Empty() {
		t.Error("new attribute should be empty")
	}
	if a.IsExternal() {
		t.Error("new attribute should not be external")
	}
	if a.IsReadOnly() {
		t.Error("new attribute should not be read-only")
	}
	if !a.IsManaged() {
		t.Error("internal attribute should be managed")
	}
}

func TestResizeFillsDefault(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.SetDefaultValue(7)

	if err := a.ResizeElements(5); err != nil {
		t.Fatalf("ResizeElements failed: %v", err)
	}
	if a.NumElements() != 5 {
		t.Fatalf("NumElements() = %d, want 5", a.NumElements())
	}
	for i := 0; i < 5; i++ {
		if got := a.Get(i); got != 7 {
			t.Errorf("Get(%d) = %v, want 7", i, got)
		}
	}
}

func TestResizeShrinkThenGrowRefillsDefault(t *testing.T) {
	// Rows dropped by a shrink must come back default-filled, not with
	// their stale contents.
	a, err := New[int32](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.SetDefaultValue(7)

	if err := a.ResizeElements(10); err != nil {
		t.Fatalf("ResizeElements(10) failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := a.Set(i, int32(100+i)); err != nil {
			t.Fatalf("Set(%d) failed: %v", i, err)
		}
	}

	if err := a.ResizeElements(4); err != nil {
		t.Fatalf("ResizeElements(4) failed: %v", err)
	}
	if err := a.ResizeElements(10); err != nil {
		t.Fatalf("ResizeElements(10) again failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		if got := a.Get(i); got != int32(100+i) {
			t.Errorf("Get(%d) = %v, want %v", i, got, 100+i)
		}
	}
	for i := 4; i < 10; i++ {
		if got := a.Get(i); got != 7 {
			t.Errorf("Get(%d) = %v, want 7 (default)", i, got)
		}
	}
}

func TestInsertValues(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageVector, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := a.InsertValues([]float64{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("InsertValues failed: %v", err)
	}
	if a.NumElements() != 2 {
		t.Fatalf("NumElements() = %d, want 2", a.NumElements())
	}

	row := a.GetRow(1)
	if row[0] != 4 || row[1] != 5 || row[2] != 6 {
		t.Errorf("GetRow(1) = %v, want [4 5 6]", row)
	}

	// Length not a multiple of the channel count
	if err := a.InsertValues([]float64{1, 2}); !errors.Is(err, ErrPrecondition) {
		t.Errorf("InsertValues with partial row error = %v, want ErrPrecondition", err)
	}
}

func TestInsertElementsAppendsDefaults(t *testing.T) {
	a, err := New[uint16](ElementFacet, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.SetDefaultValue(9)

	if err := a.InsertValues([]uint16{1, 2}); err != nil {
		t.Fatalf("InsertValues failed: %v", err)
	}
	if err := a.InsertElements(3); err != nil {
		t.Fatalf("InsertElements failed: %v", err)
	}

	want := []uint16{1, 2, 9, 9, 9}
	got := a.GetAll()
	if len(got) != len(want) {
		t.Fatalf("GetAll() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetAll()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestViewConsistencyAfterResize(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, n := range []int{3, 100, 7, 250} {
		if err := a.ResizeElements(n); err != nil {
			t.Fatalf("ResizeElements(%d) failed: %v", n, err)
		}
		ref, err := a.RefAll()
		if err != nil {
			t.Fatalf("RefAll failed: %v", err)
		}
		all := a.GetAll()
		if len(ref) != len(all) {
			t.Fatalf("view lengths diverge: ref=%d get=%d", len(ref), len(all))
		}
		if len(all) > 0 && &ref[0] != &all[0] {
			t.Fatalf("after ResizeElements(%d) views point at different stores", n)
		}
	}
}

func TestGetSubRangeViews(t *testing.T) {
	a, err := New[int64](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.InsertValues([]int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}); err != nil {
		t.Fatalf("InsertValues failed: %v", err)
	}

	first := a.GetFirst(3)
	if len(first) != 3 || first[2] != 2 {
		t.Errorf("GetFirst(3) = %v, want [0 1 2]", first)
	}

	last := a.GetLast(2)
	if len(last) != 2 || last[0] != 8 || last[1] != 9 {
		t.Errorf("GetLast(2) = %v, want [8 9]", last)
	}

	middle := a.GetMiddle(4, 3)
	if len(middle) != 3 || middle[0] != 4 || middle[2] != 6 {
		t.Errorf("GetMiddle(4, 3) = %v, want [4 5 6]", middle)
	}
}

func TestSingleChannelAccessorPanics(t *testing.T) {
	a, err := New[float32](ElementCorner, UsageUV, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.ResizeElements(4); err != nil {
		t.Fatalf("ResizeElements failed: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Get on two-channel attribute should panic")
		}
	}()
	a.Get(0)
}

func TestGetAtSetAt(t *testing.T) {
	a, err := New[float32](ElementCorner, UsageUV, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.ResizeElements(3); err != nil {
		t.Fatalf("ResizeElements failed: %v", err)
	}

	if err := a.SetAt(1, 0, 0.25); err != nil {
		t.Fatalf("SetAt failed: %v", err)
	}
	if err := a.SetAt(1, 1, 0.75); err != nil {
		t.Fatalf("SetAt failed: %v", err)
	}

	if got := a.GetAt(1, 0); got != 0.25 {
		t.Errorf("GetAt(1, 0) = %v, want 0.25", got)
	}
	if got := a.GetAt(1, 1); got != 0.75 {
		t.Errorf("GetAt(1, 1) = %v, want 0.75", got)
	}
	if got := a.GetAt(0, 0); got != 0 {
		t.Errorf("GetAt(0, 0) = %v, want 0", got)
	}
}

func TestClearInternalKeepsCapacity(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.ResizeElements(100); err != nil {
		t.Fatalf("ResizeElements failed: %v", err)
	}

	capBefore := a.Capacity()
	if err := a.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if a.NumElements() != 0 {
		t.Errorf("NumElements() after Clear = %d, want 0", a.NumElements())
	}
	if a.Capacity() != capBefore {
		t.Errorf("Capacity() after Clear = %d, want %d", a.Capacity(), capBefore)
	}
}

func TestReserveGrowsCapacityOnly(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageVector, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.InsertValues([]float64{1, 2, 3}); err != nil {
		t.Fatalf("InsertValues failed: %v", err)
	}

	if err := a.Reserve(50); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if a.NumElements() != 1 {
		t.Errorf("NumElements() after Reserve = %d, want 1", a.NumElements())
	}
	if a.Capacity() < 150 {
		t.Errorf("Capacity() after Reserve = %d, want >= 150", a.Capacity())
	}
	if got := a.GetRow(0); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("GetRow(0) after Reserve = %v, want [1 2 3]", got)
	}
}

func TestShrinkToFitInternalIdempotent(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.ResizeElements(100); err != nil {
		t.Fatalf("ResizeElements failed: %v", err)
	}
	if err := a.ResizeElements(10); err != nil {
		t.Fatalf("ResizeElements failed: %v", err)
	}

	if err := a.ShrinkToFit(); err != nil {
		t.Fatalf("first ShrinkToFit failed: %v", err)
	}
	if a.Capacity() != 10 {
		t.Errorf("Capacity() after shrink = %d, want 10", a.Capacity())
	}

	ptrBefore := &a.GetAll()[0]
	if err := a.ShrinkToFit(); err != nil {
		t.Fatalf("second ShrinkToFit failed: %v", err)
	}
	if ptrBefore != &a.GetAll()[0] {
		t.Error("second ShrinkToFit moved the backing store")
	}
}

func TestCloneInternalIsIndependent(t *testing.T) {
	a, err := New[float64](ElementVertex, UsageScalar, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.InsertValues([]float64{1, 2, 3}); err != nil {
		t.Fatalf("InsertValues failed: %v", err)
	}

	c, err := a.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	if err := c.Set(0, 99); err != nil {
		t.Fatalf("Set on clone failed: %v", err)
	}
	if got := a.Get(0); got != 1 {
		t.Errorf("original mutated by clone write: Get(0) = %v, want 1", got)
	}
	if got := c.Get(0); got != 99 {
		t.Errorf("clone Get(0) = %v, want 99", got)
	}
}
