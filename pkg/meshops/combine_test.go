package meshops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-mesh/tessera-go/internal/testmesh"
	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
	"github.com/tessera-mesh/tessera-go/pkg/meshops"
)

// triMesh builds a single triangle at the given x offset with a
// per-vertex float64 attribute named mass.
func triMesh(t *testing.T, base float64, mass []float64) *mesh.Mesh {
	t.Helper()
	m := mesh.New()
	require.NoError(t, m.AddVertices([]float64{
		base, 0, 0,
		base + 1, 0, 0,
		base, 1, 0,
	}))
	_, err := m.AddTriangle(0, 1, 2)
	require.NoError(t, err)
	_, err = mesh.CreateAttribute[float64](m, "mass", attrib.ElementVertex, attrib.UsageScalar, 1,
		mesh.WithInitialValues(mass))
	require.NoError(t, err)
	return m
}

// TestCombineTwoTriangleMeshes verifies plain concatenation: vertex and
// facet counts add up, corner indices are shifted, and a shared
// per-vertex attribute is concatenated.
func TestCombineTwoTriangleMeshes(t *testing.T) {
	m1 := triMesh(t, 0, []float64{1, 2, 3})
	m2 := triMesh(t, 5, []float64{4, 5, 6})

	out, err := meshops.Combine([]*mesh.Mesh{m1, m2})
	require.NoError(t, err)

	assert.Equal(t, 6, out.NumVertices())
	assert.Equal(t, 2, out.NumFacets())
	assert.Equal(t, 6, out.NumCorners())
	assert.True(t, out.IsRegular())
	assert.Equal(t, 3, out.VertexPerFacet())

	assert.Equal(t, []attrib.Index{0, 1, 2}, out.FacetVertices(0))
	assert.Equal(t, []attrib.Index{3, 4, 5}, out.FacetVertices(1))
	assert.Equal(t, []float64{5, 0, 0}, out.Position(3))

	mass, err := mesh.GetAttribute[float64](out, "mass")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, mass.GetAll())
}

// TestCombineEmptyList verifies that no inputs produce an empty default
// mesh.
func TestCombineEmptyList(t *testing.T) {
	out, err := meshops.Combine(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Dimension())
	assert.Equal(t, 0, out.NumVertices())
	assert.Equal(t, 0, out.NumFacets())
}

// TestCombineDimensionMismatch verifies that inputs of different vertex
// dimensions are rejected.
func TestCombineDimensionMismatch(t *testing.T) {
	m1 := mesh.New(mesh.WithDimension(2))
	m2 := mesh.New(mesh.WithDimension(3))
	_, err := meshops.Combine([]*mesh.Mesh{m1, m2})
	assert.ErrorIs(t, err, meshops.ErrDimensionMismatch)
}

// TestCombineMixedFacetSizesGoesHybrid verifies that a triangle mesh
// and a quad mesh combine into a hybrid mesh with both facets intact.
func TestCombineMixedFacetSizesGoesHybrid(t *testing.T) {
	m1 := mesh.New()
	require.NoError(t, m1.AddVertices([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}))
	_, err := m1.AddTriangle(0, 1, 2)
	require.NoError(t, err)

	m2 := mesh.New()
	require.NoError(t, m2.AddVertices([]float64{2, 0, 0, 3, 0, 0, 3, 1, 0, 2, 1, 0}))
	_, err = m2.AddQuad(0, 1, 2, 3)
	require.NoError(t, err)

	out, err := meshops.Combine([]*mesh.Mesh{m1, m2})
	require.NoError(t, err)

	assert.True(t, out.IsHybrid())
	assert.Equal(t, 2, out.NumFacets())
	assert.Equal(t, 3, out.FacetSize(0))
	assert.Equal(t, 4, out.FacetSize(1))
	assert.Equal(t, []attrib.Index{0, 1, 2}, out.FacetVertices(0))
	assert.Equal(t, []attrib.Index{3, 4, 5, 6}, out.FacetVertices(1))
}

// TestCombineOffsetsIndexUsageValues verifies that values stored under
// a vertex index usage are shifted by the vertex offsets of earlier
// inputs.
func TestCombineOffsetsIndexUsageValues(t *testing.T) {
	m1 := triMesh(t, 0, []float64{0, 0, 0})
	m2 := triMesh(t, 5, []float64{0, 0, 0})

	// One anchor vertex id per facet.
	_, err := mesh.CreateAttribute[uint32](m1, "anchor", attrib.ElementFacet, attrib.UsageVertexIndex, 1,
		mesh.WithInitialValues([]uint32{2}))
	require.NoError(t, err)
	_, err = mesh.CreateAttribute[uint32](m2, "anchor", attrib.ElementFacet, attrib.UsageVertexIndex, 1,
		mesh.WithInitialValues([]uint32{1}))
	require.NoError(t, err)

	out, err := meshops.Combine([]*mesh.Mesh{m1, m2})
	require.NoError(t, err)

	anchor, err := mesh.GetAttribute[uint32](out, "anchor")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 4}, anchor.GetAll())
}

// TestCombineIndexedAttribute verifies that indexed attribute values
// are concatenated and index buffers are rebased onto the combined
// value rows.
func TestCombineIndexedAttribute(t *testing.T) {
	m1 := triMesh(t, 0, []float64{0, 0, 0})
	m2 := triMesh(t, 5, []float64{0, 0, 0})

	_, err := mesh.CreateAttribute[float64](m1, "uv", attrib.ElementIndexed, attrib.UsageUV, 2,
		mesh.WithInitialValues([]float64{0, 0, 1, 0, 0, 1}),
		mesh.WithInitialIndices([]attrib.Index{0, 1, 2}))
	require.NoError(t, err)
	_, err = mesh.CreateAttribute[float64](m2, "uv", attrib.ElementIndexed, attrib.UsageUV, 2,
		mesh.WithInitialValues([]float64{0.5, 0.5}),
		mesh.WithInitialIndices([]attrib.Index{0, 0, 0}))
	require.NoError(t, err)

	out, err := meshops.Combine([]*mesh.Mesh{m1, m2})
	require.NoError(t, err)

	uv, err := mesh.GetIndexedAttribute[float64](out, "uv")
	require.NoError(t, err)
	assert.Equal(t, 4, uv.Values().NumElements())
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 1, 0.5, 0.5}, uv.Values().GetAll())
	assert.Equal(t, []attrib.Index{0, 1, 2, 3, 3, 3}, uv.Indices().GetAll())
}

// TestCombineEdgeAttributes verifies that edge connectivity is rebuilt
// on the output and per-edge data lands on the concatenated edge ids.
func TestCombineEdgeAttributes(t *testing.T) {
	m1 := triMesh(t, 0, []float64{0, 0, 0})
	m2 := triMesh(t, 5, []float64{0, 0, 0})
	require.NoError(t, m1.InitializeEdges())
	require.NoError(t, m2.InitializeEdges())

	_, err := mesh.CreateAttribute[float64](m1, "crease", attrib.ElementEdge, attrib.UsageScalar, 1,
		mesh.WithInitialValues([]float64{1, 2, 3}))
	require.NoError(t, err)
	_, err = mesh.CreateAttribute[float64](m2, "crease", attrib.ElementEdge, attrib.UsageScalar, 1,
		mesh.WithInitialValues([]float64{4, 5, 6}))
	require.NoError(t, err)

	out, err := meshops.Combine([]*mesh.Mesh{m1, m2})
	require.NoError(t, err)

	require.True(t, out.HasEdges())
	assert.Equal(t, 6, out.NumEdges())

	// The second triangle's first edge keeps its local rank after the
	// first triangle's three edges.
	assert.Equal(t, [2]attrib.Index{3, 4}, out.EdgeVertices(3))

	crease, err := mesh.GetAttribute[float64](out, "crease")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, crease.GetAll())
}

// TestCombineSkipsMismatchedAttributes verifies that attributes missing
// from some input or carrying different metadata are dropped with a
// logged warning instead of failing the whole operation.
func TestCombineSkipsMismatchedAttributes(t *testing.T) {
	m1 := triMesh(t, 0, []float64{0, 0, 0})
	m2 := triMesh(t, 5, []float64{0, 0, 0})

	// Present on the first input only.
	_, err := mesh.CreateAttribute[float64](m1, "solo", attrib.ElementVertex, attrib.UsageScalar, 1)
	require.NoError(t, err)

	// Same name, different value kind.
	_, err = mesh.CreateAttribute[float64](m1, "flags", attrib.ElementFacet, attrib.UsageScalar, 1)
	require.NoError(t, err)
	_, err = mesh.CreateAttribute[int32](m2, "flags", attrib.ElementFacet, attrib.UsageScalar, 1)
	require.NoError(t, err)

	rec := &testmesh.Recorder{}
	out, err := meshops.Combine([]*mesh.Mesh{m1, m2}, meshops.WithLogger(rec))
	require.NoError(t, err)

	assert.False(t, out.HasAttribute("solo"))
	assert.False(t, out.HasAttribute("flags"))
	assert.True(t, out.HasAttribute("mass"))

	skips := rec.ByCategory(log.CategoryError)
	require.Len(t, skips, 2)
	for _, e := range skips {
		require.NotNil(t, e.Error)
		assert.Equal(t, "Combine", e.Error.Op)
		assert.Equal(t, out.ID(), e.MeshID)
		assert.False(t, e.Timestamp.IsZero())
	}
	assert.Equal(t, "solo", skips[0].Error.Attribute)
	assert.Equal(t, "flags", skips[1].Error.Attribute)
}

// TestCombineValueAttribute verifies that value-element attributes are
// concatenated to the summed extent.
func TestCombineValueAttribute(t *testing.T) {
	m1 := triMesh(t, 0, []float64{0, 0, 0})
	m2 := triMesh(t, 5, []float64{0, 0, 0})

	_, err := mesh.CreateAttribute[float64](m1, "palette", attrib.ElementValue, attrib.UsageColor, 3,
		mesh.WithInitialValues([]float64{1, 0, 0, 0, 1, 0}))
	require.NoError(t, err)
	_, err = mesh.CreateAttribute[float64](m2, "palette", attrib.ElementValue, attrib.UsageColor, 3,
		mesh.WithInitialValues([]float64{0, 0, 1}))
	require.NoError(t, err)

	out, err := meshops.Combine([]*mesh.Mesh{m1, m2})
	require.NoError(t, err)

	palette, err := mesh.GetAttribute[float64](out, "palette")
	require.NoError(t, err)
	assert.Equal(t, 3, palette.NumElements())
	assert.Equal(t, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, palette.GetAll())
}

// TestCombineWithoutAttributes verifies that WithoutAttributes keeps
// topology and positions but drops user attributes.
func TestCombineWithoutAttributes(t *testing.T) {
	m1 := triMesh(t, 0, []float64{1, 2, 3})
	m2 := triMesh(t, 5, []float64{4, 5, 6})

	out, err := meshops.Combine([]*mesh.Mesh{m1, m2}, meshops.WithoutAttributes())
	require.NoError(t, err)

	assert.Equal(t, 6, out.NumVertices())
	assert.Equal(t, 2, out.NumFacets())
	assert.False(t, out.HasAttribute("mass"))
}
