// Package testmesh provides shared mesh fixtures and a capturing
// logger for tests across the module.
package testmesh

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
)

// Recorder is a log.Logger that captures events for assertions. It is
// safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []log.Event
}

// Log implements log.Logger.
func (r *Recorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a snapshot of everything logged so far.
func (r *Recorder) Events() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]log.Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByCategory returns the captured events of one category, in order.
func (r *Recorder) ByCategory(c log.Category) []log.Event {
	var out []log.Event
	for _, e := range r.Events() {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

var _ log.Logger = (*Recorder)(nil)

// UnitQuad returns a single unit quad in the XY plane.
func UnitQuad(tb testing.TB, opts ...mesh.Option) *mesh.Mesh {
	tb.Helper()
	m := mesh.New(opts...)
	require.NoError(tb, m.AddVertices([]float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}))
	_, err := m.AddQuad(0, 1, 2, 3)
	require.NoError(tb, err)
	return m
}

// TwoTriangleSquare returns the unit square split along the diagonal
// between vertices 1 and 2.
func TwoTriangleSquare(tb testing.TB, opts ...mesh.Option) *mesh.Mesh {
	tb.Helper()
	m := mesh.New(opts...)
	require.NoError(tb, m.AddVertices([]float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		1, 1, 0,
	}))
	require.NoError(tb, m.AddTriangles([]attrib.Index{
		0, 1, 2,
		2, 1, 3,
	}))
	return m
}

// Cube returns the axis-aligned unit cube as a closed quad mesh with
// outward-facing facets. Every edge borders exactly two facets.
func Cube(tb testing.TB, opts ...mesh.Option) *mesh.Mesh {
	tb.Helper()
	m := mesh.New(opts...)
	require.NoError(tb, m.AddVertices([]float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
		0, 0, 1,
		1, 0, 1,
		1, 1, 1,
		0, 1, 1,
	}))
	require.NoError(tb, m.AddQuads([]attrib.Index{
		0, 3, 2, 1,
		4, 5, 6, 7,
		0, 1, 5, 4,
		1, 2, 6, 5,
		2, 3, 7, 6,
		3, 0, 4, 7,
	}))
	return m
}

// HybridFan returns a unit quad and a triangle glued to its right
// edge, forcing hybrid facet storage.
func HybridFan(tb testing.TB, opts ...mesh.Option) *mesh.Mesh {
	tb.Helper()
	m := mesh.New(opts...)
	require.NoError(tb, m.AddVertices([]float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
		2, 0.5, 0,
	}))
	_, err := m.AddQuad(0, 1, 2, 3)
	require.NoError(tb, err)
	_, err = m.AddTriangle(2, 1, 4)
	require.NoError(tb, err)
	return m
}

// WithStandardAttributes decorates m with the attribute complement the
// suite leans on: per-vertex mass, per-facet material, per-corner tag,
// an indexed uv channel and a free-standing palette. Fill values are
// deterministic functions of the element indices. Returns m.
func WithStandardAttributes(tb testing.TB, m *mesh.Mesh) *mesh.Mesh {
	tb.Helper()

	mass := make([]float64, m.NumVertices())
	for i := range mass {
		mass[i] = float64(i) + 1
	}
	_, err := mesh.CreateAttribute[float64](m, "mass", attrib.ElementVertex, attrib.UsageScalar, 1,
		mesh.WithInitialValues(mass))
	require.NoError(tb, err)

	material := make([]int32, m.NumFacets())
	for i := range material {
		material[i] = int32(i % 4)
	}
	_, err = mesh.CreateAttribute[int32](m, "material", attrib.ElementFacet, attrib.UsageScalar, 1,
		mesh.WithInitialValues(material))
	require.NoError(tb, err)

	tag := make([]uint8, m.NumCorners())
	for i := range tag {
		tag[i] = uint8(i)
	}
	_, err = mesh.CreateAttribute[uint8](m, "tag", attrib.ElementCorner, attrib.UsageScalar, 1,
		mesh.WithInitialValues(tag))
	require.NoError(tb, err)

	// One uv row per vertex, shared through the index buffer.
	uv := make([]float64, 0, 2*m.NumVertices())
	for v := 0; v < m.NumVertices(); v++ {
		pos := m.Position(attrib.Index(v))
		uv = append(uv, pos[0], pos[1])
	}
	indices := make([]attrib.Index, m.NumCorners())
	for c := range indices {
		indices[c] = m.CornerVertex(attrib.Index(c))
	}
	_, err = mesh.CreateAttribute[float64](m, "uv", attrib.ElementIndexed, attrib.UsageUV, 2,
		mesh.WithInitialValues(uv),
		mesh.WithInitialIndices(indices))
	require.NoError(tb, err)

	_, err = mesh.CreateAttribute[float64](m, "palette", attrib.ElementValue, attrib.UsageColor, 3,
		mesh.WithInitialValues([]float64{1, 0, 0, 0, 0, 1}))
	require.NoError(tb, err)

	return m
}
