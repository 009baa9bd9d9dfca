package attrib

import "math/bits"

// Element identifies which mesh entity an attribute is associated with.
// Values are single bits so iteration filters can combine them into masks.
type Element uint8

const (
	// ElementVertex stores one row per vertex.
	ElementVertex Element = 1 << iota

	// ElementFacet stores one row per facet.
	ElementFacet

	// ElementEdge stores one row per edge.
	ElementEdge

	// ElementCorner stores one row per corner.
	ElementCorner

	// ElementValue stores rows not associated with any mesh entity.
	ElementValue

	// ElementIndexed stores deduplicated rows referenced through a
	// per-corner index buffer.
	ElementIndexed
)

// AllElements is the mask matching every element kind.
const AllElements = ElementVertex | ElementFacet | ElementEdge |
	ElementCorner | ElementValue | ElementIndexed

// IsSingle reports whether e names exactly one element kind.
func (e Element) IsSingle() bool {
	return bits.OnesCount8(uint8(e)) == 1 && e <= ElementIndexed
}

// Has reports whether the mask e includes kind.
func (e Element) Has(kind Element) bool { return e&kind != 0 }

// Not returns the complement of e within the valid element bits.
func (e Element) Not() Element { return AllElements &^ e }

// String returns the element kind name, or a combined form for masks.
func (e Element) String() string {
	switch e {
	case ElementVertex:
		return "Vertex"
	case ElementFacet:
		return "Facet"
	case ElementEdge:
		return "Edge"
	case ElementCorner:
		return "Corner"
	case ElementValue:
		return "Value"
	case ElementIndexed:
		return "Indexed"
	}
	s := ""
	for _, kind := range []Element{
		ElementVertex, ElementFacet, ElementEdge,
		ElementCorner, ElementValue, ElementIndexed,
	} {
		if e.Has(kind) {
			if s != "" {
				s += "|"
			}
			s += kind.String()
		}
	}
	if s == "" {
		return "None"
	}
	return s
}
