package attrib

import "testing"

func TestElementString(t *testing.T) {
	tests := []struct {
		element Element
		want    string
	}{
		{ElementVertex, "Vertex"},
		{ElementFacet, "Facet"},
		{ElementEdge, "Edge"},
		{ElementCorner, "Corner"},
		{ElementValue, "Value"},
		{ElementIndexed, "Indexed"},
		{ElementVertex | ElementFacet, "Vertex|Facet"},
		{AllElements, "Vertex|Facet|Edge|Corner|Value|Indexed"},
		{Element(0), "None"},
	}

	for _, tt := range tests {
		got := tt.element.String()
		if got != tt.want {
			t.Errorf("Element(%d).String() = %q, want %q", tt.element, got, tt.want)
		}
	}
}

func TestElementValues(t *testing.T) {
	// Verify explicit values for snapshot stability
	if ElementVertex != 1 {
		t.Errorf("ElementVertex = %d, want 1", ElementVertex)
	}
	if ElementFacet != 2 {
		t.Errorf("ElementFacet = %d, want 2", ElementFacet)
	}
	if ElementEdge != 4 {
		t.Errorf("ElementEdge = %d, want 4", ElementEdge)
	}
	if ElementCorner != 8 {
		t.Errorf("ElementCorner = %d, want 8", ElementCorner)
	}
	if ElementValue != 16 {
		t.Errorf("ElementValue = %d, want 16", ElementValue)
	}
	if ElementIndexed != 32 {
		t.Errorf("ElementIndexed = %d, want 32", ElementIndexed)
	}
}

func TestElementMaskOps(t *testing.T) {
	mask := ElementVertex | ElementCorner

	if !mask.Has(ElementVertex) || !mask.Has(ElementCorner) {
		t.Error("mask should include Vertex and Corner")
	}
	if mask.Has(ElementFacet) {
		t.Error("mask should not include Facet")
	}

	inv := mask.Not()
	if inv.Has(ElementVertex) || inv.Has(ElementCorner) {
		t.Error("complement should exclude Vertex and Corner")
	}
	for _, kind := range []Element{ElementFacet, ElementEdge, ElementValue, ElementIndexed} {
		if !inv.Has(kind) {
			t.Errorf("complement should include %s", kind)
		}
	}

	if !ElementVertex.IsSingle() {
		t.Error("ElementVertex.IsSingle() = false, want true")
	}
	if mask.IsSingle() {
		t.Error("mask.IsSingle() = true, want false")
	}
	if Element(0).IsSingle() {
		t.Error("Element(0).IsSingle() = true, want false")
	}
	if Element(64).IsSingle() {
		t.Error("Element(64).IsSingle() = true, want false")
	}
}

func TestUsageString(t *testing.T) {
	tests := []struct {
		usage Usage
		want  string
	}{
		{UsageVector, "Vector"},
		{UsageScalar, "Scalar"},
		{UsageNormal, "Normal"},
		{UsageTangent, "Tangent"},
		{UsageBitangent, "Bitangent"},
		{UsageColor, "Color"},
		{UsageUV, "UV"},
		{UsageVertexIndex, "VertexIndex"},
		{UsageFacetIndex, "FacetIndex"},
		{UsageCornerIndex, "CornerIndex"},
		{UsageEdgeIndex, "EdgeIndex"},
		{Usage(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.usage.String()
		if got != tt.want {
			t.Errorf("Usage(%d).String() = %q, want %q", tt.usage, got, tt.want)
		}
	}
}

func TestUsageIsIndexKind(t *testing.T) {
	indexKinds := map[Usage]bool{
		UsageVertexIndex: true,
		UsageFacetIndex:  true,
		UsageCornerIndex: true,
		UsageEdgeIndex:   true,
	}

	for u := UsageVector; u <= UsageEdgeIndex; u++ {
		if got := u.IsIndexKind(); got != indexKinds[u] {
			t.Errorf("%s.IsIndexKind() = %v, want %v", u, got, indexKinds[u])
		}
	}
}

func TestValueKindProperties(t *testing.T) {
	tests := []struct {
		kind     ValueKind
		name     string
		size     int
		integral bool
	}{
		{KindInt8, "int8", 1, true},
		{KindInt16, "int16", 2, true},
		{KindInt32, "int32", 4, true},
		{KindInt64, "int64", 8, true},
		{KindUint8, "uint8", 1, true},
		{KindUint16, "uint16", 2, true},
		{KindUint32, "uint32", 4, true},
		{KindUint64, "uint64", 8, true},
		{KindFloat32, "float32", 4, false},
		{KindFloat64, "float64", 8, false},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.name {
			t.Errorf("ValueKind(%d).String() = %q, want %q", tt.kind, got, tt.name)
		}
		if got := tt.kind.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.name, got, tt.size)
		}
		if got := tt.kind.IsIntegral(); got != tt.integral {
			t.Errorf("%s.IsIntegral() = %v, want %v", tt.name, got, tt.integral)
		}
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf[int8](); got != KindInt8 {
		t.Errorf("KindOf[int8]() = %v, want KindInt8", got)
	}
	if got := KindOf[uint32](); got != KindUint32 {
		t.Errorf("KindOf[uint32]() = %v, want KindUint32", got)
	}
	if got := KindOf[float64](); got != KindFloat64 {
		t.Errorf("KindOf[float64]() = %v, want KindFloat64", got)
	}
}
