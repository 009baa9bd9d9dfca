package mesh

import (
	"github.com/tessera-mesh/tessera-go/pkg/attrib"
)

// InitializeEdges builds edge connectivity: one edge per unordered
// vertex pair, numbered in first-seen corner order, plus chains linking
// the corners around each edge and around each vertex. Facets added
// later extend the connectivity incrementally and keep existing edge
// ids stable. No-op if edges are already initialized.
func (m *Mesh) InitializeEdges() error {
	if m.hasEdges {
		return nil
	}
	for _, spec := range []struct {
		name    string
		element attrib.Element
		usage   attrib.Usage
	}{
		{NameCornerEdge, attrib.ElementCorner, attrib.UsageEdgeIndex},
		{NameEdgeFirstCorner, attrib.ElementEdge, attrib.UsageCornerIndex},
		{NameNextCornerAroundEdge, attrib.ElementCorner, attrib.UsageCornerIndex},
		{NameVertexFirstCorner, attrib.ElementVertex, attrib.UsageCornerIndex},
		{NameNextCornerAroundVertex, attrib.ElementCorner, attrib.UsageCornerIndex},
	} {
		if _, err := CreateAttribute[attrib.Index](m, spec.name, spec.element, spec.usage, 1,
			WithReservedName(), WithDefaultValue(attrib.InvalidIndex)); err != nil {
			return err
		}
	}
	m.hasEdges = true
	m.edgeMap = make(map[[2]attrib.Index]attrib.Index)
	m.numEdges = 0
	return m.extendEdgeConnectivity(0)
}

// ClearEdges drops edge connectivity: the reserved channels are
// removed, user edge attributes are resized to zero elements, and the
// edge count resets. No-op if edges are not initialized.
func (m *Mesh) ClearEdges() error {
	if !m.hasEdges {
		return nil
	}
	if err := m.resizeEdgesInternal(0); err != nil {
		return err
	}
	for _, name := range []string{
		NameCornerEdge,
		NameEdgeFirstCorner,
		NameNextCornerAroundEdge,
		NameVertexFirstCorner,
		NameNextCornerAroundVertex,
	} {
		if err := m.ForceDeleteAttribute(name); err != nil {
			return err
		}
	}
	m.hasEdges = false
	m.edgeMap = nil
	return nil
}

// extendEdgeConnectivity wires corners from firstCorner onward into the
// edge and vertex chains. New vertex pairs get fresh edge ids in corner
// order; pairs seen before reuse their id.
func (m *Mesh) extendEdgeConnectivity(firstCorner int) error {
	// Pass 1: assign edge ids so edge storage grows once.
	assigned := make([]attrib.Index, m.numCorners-firstCorner)
	newEdges := m.numEdges
	for c := firstCorner; c < m.numCorners; c++ {
		key := m.cornerEdgeKey(attrib.Index(c))
		e, ok := m.edgeMap[key]
		if !ok {
			e = attrib.Index(newEdges)
			m.edgeMap[key] = e
			newEdges++
		}
		assigned[c-firstCorner] = e
	}
	if newEdges != m.numEdges {
		if err := m.resizeEdgesInternal(newEdges); err != nil {
			return err
		}
	}

	// Pass 2: write the chains, head insertion per corner.
	ce, err := RefAttribute[attrib.Index](m, NameCornerEdge)
	if err != nil {
		return err
	}
	efc, err := RefAttribute[attrib.Index](m, NameEdgeFirstCorner)
	if err != nil {
		return err
	}
	nce, err := RefAttribute[attrib.Index](m, NameNextCornerAroundEdge)
	if err != nil {
		return err
	}
	vfc, err := RefAttribute[attrib.Index](m, NameVertexFirstCorner)
	if err != nil {
		return err
	}
	ncv, err := RefAttribute[attrib.Index](m, NameNextCornerAroundVertex)
	if err != nil {
		return err
	}
	for c := firstCorner; c < m.numCorners; c++ {
		e := assigned[c-firstCorner]
		v := m.CornerVertex(attrib.Index(c))
		if err := ce.Set(c, e); err != nil {
			return err
		}
		if err := nce.Set(c, efc.Get(int(e))); err != nil {
			return err
		}
		if err := efc.Set(int(e), attrib.Index(c)); err != nil {
			return err
		}
		if err := ncv.Set(c, vfc.Get(int(v))); err != nil {
			return err
		}
		if err := vfc.Set(int(v), attrib.Index(c)); err != nil {
			return err
		}
	}
	return nil
}

// cornerEdgeKey returns the canonical vertex pair of the edge corner c
// runs along, smaller vertex first.
func (m *Mesh) cornerEdgeKey(c attrib.Index) [2]attrib.Index {
	v := m.CornerVertex(c)
	w := m.CornerVertex(m.nextCornerInFacet(c))
	if v > w {
		v, w = w, v
	}
	return [2]attrib.Index{v, w}
}

// HasEdges reports whether edge connectivity is initialized.
func (m *Mesh) HasEdges() bool { return m.hasEdges }

// CornerEdge returns the edge corner c runs along.
func (m *Mesh) CornerEdge(c attrib.Index) attrib.Index {
	return m.reservedIndexAttr(NameCornerEdge).Get(int(c))
}

// EdgeFirstCorner returns the head of edge e's corner chain.
func (m *Mesh) EdgeFirstCorner(e attrib.Index) attrib.Index {
	return m.reservedIndexAttr(NameEdgeFirstCorner).Get(int(e))
}

// NextCornerAroundEdge returns the corner after c in its edge's chain,
// or attrib.InvalidIndex at the end.
func (m *Mesh) NextCornerAroundEdge(c attrib.Index) attrib.Index {
	return m.reservedIndexAttr(NameNextCornerAroundEdge).Get(int(c))
}

// VertexFirstCorner returns the head of vertex v's corner chain, or
// attrib.InvalidIndex for an isolated vertex.
func (m *Mesh) VertexFirstCorner(v attrib.Index) attrib.Index {
	return m.reservedIndexAttr(NameVertexFirstCorner).Get(int(v))
}

// NextCornerAroundVertex returns the corner after c in its vertex's
// chain, or attrib.InvalidIndex at the end.
func (m *Mesh) NextCornerAroundVertex(c attrib.Index) attrib.Index {
	return m.reservedIndexAttr(NameNextCornerAroundVertex).Get(int(c))
}

// EdgeVertices returns edge e's endpoints in the orientation of its
// first corner.
func (m *Mesh) EdgeVertices(e attrib.Index) [2]attrib.Index {
	c := m.EdgeFirstCorner(e)
	return [2]attrib.Index{
		m.CornerVertex(c),
		m.CornerVertex(m.nextCornerInFacet(c)),
	}
}

// ForEachCornerAroundEdge calls fn for every corner on edge e, in
// chain order starting at the head.
func (m *Mesh) ForEachCornerAroundEdge(e attrib.Index, fn func(c attrib.Index)) {
	for c := m.EdgeFirstCorner(e); c != attrib.InvalidIndex; c = m.NextCornerAroundEdge(c) {
		fn(c)
	}
}

// ForEachCornerAroundVertex calls fn for every corner on vertex v, in
// chain order starting at the head.
func (m *Mesh) ForEachCornerAroundVertex(v attrib.Index, fn func(c attrib.Index)) {
	for c := m.VertexFirstCorner(v); c != attrib.InvalidIndex; c = m.NextCornerAroundVertex(c) {
		fn(c)
	}
}

// CountNumCornersAroundEdge returns the number of corners on edge e,
// which equals the number of incident facets.
func (m *Mesh) CountNumCornersAroundEdge(e attrib.Index) int {
	n := 0
	m.ForEachCornerAroundEdge(e, func(attrib.Index) { n++ })
	return n
}

// CountNumCornersAroundVertex returns the number of corners sitting on
// vertex v.
func (m *Mesh) CountNumCornersAroundVertex(v attrib.Index) int {
	n := 0
	m.ForEachCornerAroundVertex(v, func(attrib.Index) { n++ })
	return n
}

// IsBoundaryEdge reports whether edge e borders exactly one facet.
func (m *Mesh) IsBoundaryEdge(e attrib.Index) bool {
	return m.CountNumCornersAroundEdge(e) == 1
}
