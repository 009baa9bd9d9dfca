package meshio_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-mesh/tessera-go/internal/testmesh"
	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
	"github.com/tessera-mesh/tessera-go/pkg/meshio"
)

// richSquare returns the two-triangle square with the standard
// attribute complement, edge connectivity and a per-edge crease value
// carrying a non-zero default.
func richSquare(t *testing.T) *mesh.Mesh {
	t.Helper()
	m := testmesh.WithStandardAttributes(t, testmesh.TwoTriangleSquare(t))
	require.NoError(t, m.InitializeEdges())
	_, err := mesh.CreateAttribute[float64](m, "crease", attrib.ElementEdge, attrib.UsageScalar, 1,
		mesh.WithInitialValues([]float64{1, 2, 3, 4, 5}),
		mesh.WithDefaultValue(-1.0))
	require.NoError(t, err)
	return m
}

// TestEncodeDecodeRoundTrip verifies that topology, every internal
// attribute, defaults and edge connectivity survive a snapshot round
// trip, and that the rebuilt mesh is a fresh instance.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := richSquare(t)

	var buf bytes.Buffer
	require.NoError(t, meshio.Encode(&buf, m))

	rec := &testmesh.Recorder{}
	dec, err := meshio.Decode(bytes.NewReader(buf.Bytes()), meshio.WithLogger(rec))
	require.NoError(t, err)

	assert.NotEqual(t, m.ID(), dec.ID())
	assert.Equal(t, 3, dec.Dimension())
	assert.Equal(t, 4, dec.NumVertices())
	assert.Equal(t, 2, dec.NumFacets())
	assert.Equal(t, 6, dec.NumCorners())
	assert.True(t, dec.IsRegular())
	assert.Equal(t, 3, dec.VertexPerFacet())
	assert.Equal(t, m.Positions().GetAll(), dec.Positions().GetAll())
	assert.Equal(t, []attrib.Index{2, 1, 3}, dec.FacetVertices(1))

	mass, err := mesh.GetAttribute[float64](dec, "mass")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, mass.GetAll())

	material, err := mesh.GetAttribute[int32](dec, "material")
	require.NoError(t, err)
	assert.Equal(t, attrib.ElementFacet, material.Element())
	assert.Equal(t, []int32{0, 1}, material.GetAll())

	tag, err := mesh.GetAttribute[uint8](dec, "tag")
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 2, 3, 4, 5}, tag.GetAll())

	srcUV, err := mesh.GetIndexedAttribute[float64](m, "uv")
	require.NoError(t, err)
	uv, err := mesh.GetIndexedAttribute[float64](dec, "uv")
	require.NoError(t, err)
	assert.Equal(t, srcUV.Values().GetAll(), uv.Values().GetAll())
	assert.Equal(t, srcUV.Indices().GetAll(), uv.Indices().GetAll())

	palette, err := mesh.GetAttribute[float64](dec, "palette")
	require.NoError(t, err)
	assert.Equal(t, 2, palette.NumElements())

	require.True(t, dec.HasEdges())
	require.Equal(t, m.NumEdges(), dec.NumEdges())
	for e := 0; e < m.NumEdges(); e++ {
		assert.Equal(t, m.EdgeVertices(attrib.Index(e)), dec.EdgeVertices(attrib.Index(e)))
	}
	crease, err := mesh.GetAttribute[float64](dec, "crease")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, crease.GetAll())
	assert.Equal(t, -1.0, crease.DefaultValue())

	// The decode logger observed the rebuild.
	assert.NotEmpty(t, rec.ByCategory(log.CategoryRegistry))
}

// TestRoundTripHybridMesh verifies that mixed facet sizes survive a
// round trip.
func TestRoundTripHybridMesh(t *testing.T) {
	m := testmesh.HybridFan(t)

	var buf bytes.Buffer
	require.NoError(t, meshio.Encode(&buf, m))
	dec, err := meshio.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.True(t, dec.IsHybrid())
	assert.Equal(t, 2, dec.NumFacets())
	assert.Equal(t, 4, dec.FacetSize(0))
	assert.Equal(t, 3, dec.FacetSize(1))
	assert.Equal(t, []attrib.Index{0, 1, 2, 3}, dec.FacetVertices(0))
	assert.Equal(t, []attrib.Index{2, 1, 4}, dec.FacetVertices(1))
}

// TestRoundTripEmptyMesh verifies the degenerate cases of no facets
// and no vertices.
func TestRoundTripEmptyMesh(t *testing.T) {
	t.Run("no vertices", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, meshio.Encode(&buf, mesh.New()))
		dec, err := meshio.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 0, dec.NumVertices())
		assert.Equal(t, 0, dec.NumFacets())
		assert.False(t, dec.HasEdges())
	})

	t.Run("vertices only", func(t *testing.T) {
		m := mesh.New(mesh.WithDimension(2))
		require.NoError(t, m.AddVertices([]float64{1, 2, 3, 4}))
		var buf bytes.Buffer
		require.NoError(t, meshio.Encode(&buf, m))
		dec, err := meshio.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 2, dec.Dimension())
		assert.Equal(t, 2, dec.NumVertices())
		assert.Equal(t, []float64{3, 4}, dec.Position(1))
	})
}

// TestEncodeSkipsExternalAttributes verifies that wrapped buffers are
// left out of the snapshot and reported by name.
func TestEncodeSkipsExternalAttributes(t *testing.T) {
	m := testmesh.TwoTriangleSquare(t)
	loose := []float64{1, 2, 3, 4}
	_, err := mesh.WrapAttribute(m, "loose", attrib.ElementVertex, attrib.UsageScalar, 1, loose)
	require.NoError(t, err)
	_, err = mesh.CreateAttribute[float64](m, "kept", attrib.ElementVertex, attrib.UsageScalar, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, meshio.Encode(&buf, m))

	s, err := meshio.Describe(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"loose"}, s.Skipped)

	dec, err := meshio.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.False(t, dec.HasAttribute("loose"))
	assert.True(t, dec.HasAttribute("kept"))
}

// TestDescribe verifies the snapshot summary against a known mesh.
func TestDescribe(t *testing.T) {
	m := testmesh.WithStandardAttributes(t, testmesh.TwoTriangleSquare(t))

	var buf bytes.Buffer
	require.NoError(t, meshio.Encode(&buf, m))
	s, err := meshio.Describe(&buf)
	require.NoError(t, err)

	assert.Equal(t, meshio.FormatVersion, s.Version)
	assert.Equal(t, m.ID(), s.SourceID)
	assert.Equal(t, 3, s.Dimension)
	assert.Equal(t, 4, s.NumVertices)
	assert.Equal(t, 2, s.NumFacets)
	assert.Equal(t, 6, s.NumCorners)
	assert.False(t, s.HasEdges)
	assert.Empty(t, s.Skipped)

	// Records are grouped by value kind, registration order within.
	var names []string
	for _, info := range s.Attributes {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"material", "tag", "mass", "uv", "palette"}, names)

	material := s.Attributes[0]
	assert.Equal(t, attrib.ElementFacet, material.Element)
	assert.Equal(t, attrib.UsageScalar, material.Usage)
	assert.Equal(t, 1, material.NumChannels)
	assert.Equal(t, attrib.KindInt32, material.Kind)
	assert.Equal(t, 2, material.NumValues)

	uv := s.Attributes[3]
	assert.Equal(t, attrib.ElementIndexed, uv.Element)
	assert.Equal(t, attrib.KindFloat64, uv.Kind)
	assert.Equal(t, 4, uv.NumValues)
}

// TestEncodeDeterministic verifies that encoding the same mesh twice
// produces identical bytes.
func TestEncodeDeterministic(t *testing.T) {
	m := richSquare(t)

	var first, second bytes.Buffer
	require.NoError(t, meshio.Encode(&first, m))
	require.NoError(t, meshio.Encode(&second, m))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

// TestDecodeRejectsCorruptPayload verifies the digest check.
func TestDecodeRejectsCorruptPayload(t *testing.T) {
	m := testmesh.TwoTriangleSquare(t)
	var buf bytes.Buffer
	require.NoError(t, meshio.Encode(&buf, m))

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xff
	_, err := meshio.Decode(bytes.NewReader(raw))
	assert.ErrorIs(t, err, meshio.ErrDigest)
}

// TestDecodeRejectsGarbage verifies the malformed input path.
func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := meshio.Decode(bytes.NewReader([]byte("not a snapshot")))
	assert.ErrorIs(t, err, meshio.ErrFormat)
}

// TestDecodeRejectsUnknownVersion verifies the version gate.
func TestDecodeRejectsUnknownVersion(t *testing.T) {
	raw, err := cbor.Marshal(map[int]any{1: 99, 2: []byte{}, 3: []byte{}})
	require.NoError(t, err)
	_, err = meshio.Decode(bytes.NewReader(raw))
	assert.ErrorIs(t, err, meshio.ErrVersion)
}

// TestFileRoundTrip verifies the path-based helpers.
func TestFileRoundTrip(t *testing.T) {
	m := richSquare(t)
	path := filepath.Join(t.TempDir(), "square.tmesh")

	require.NoError(t, meshio.EncodeFile(path, m))

	s, err := meshio.DescribeFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.ID(), s.SourceID)
	assert.True(t, s.HasEdges)

	dec, err := meshio.DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, dec.NumVertices())
	assert.Equal(t, m.NumEdges(), dec.NumEdges())
}
