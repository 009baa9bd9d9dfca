package mesh

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
)

// Reserved attribute names. The "$" prefix marks topology channels the
// mesh maintains itself.
const (
	// NamePosition holds vertex coordinates, one row per vertex.
	NamePosition = "$vertex_to_position"

	// NameCornerVertex maps each corner to the vertex it sits on.
	NameCornerVertex = "$corner_to_vertex"

	// NameFacetFirstCorner maps each facet to its first corner. Present
	// only on hybrid meshes.
	NameFacetFirstCorner = "$facet_to_first_corner"

	// NameCornerFacet maps each corner to its facet. Present only on
	// hybrid meshes.
	NameCornerFacet = "$corner_to_facet"

	// NameCornerEdge maps each corner to the edge it runs along.
	// Present once edges are initialized.
	NameCornerEdge = "$corner_to_edge"

	// NameEdgeFirstCorner maps each edge to the head of its corner
	// chain. Present once edges are initialized.
	NameEdgeFirstCorner = "$edge_to_first_corner"

	// NameNextCornerAroundEdge chains corners sharing an edge,
	// terminated by attrib.InvalidIndex.
	NameNextCornerAroundEdge = "$next_corner_around_edge"

	// NameVertexFirstCorner maps each vertex to the head of its corner
	// chain. Present once edges are initialized.
	NameVertexFirstCorner = "$vertex_to_first_corner"

	// NameNextCornerAroundVertex chains corners sharing a vertex,
	// terminated by attrib.InvalidIndex.
	NameNextCornerAroundVertex = "$next_corner_around_vertex"
)

// Mesh is a polymorphic surface mesh: vertex positions, facets of
// uniform or mixed size, optional edge connectivity, and a registry of
// named per-element attributes.
//
// Topology lives in reserved attributes like any other data channel:
// positions under NamePosition, the corner-to-vertex map under
// NameCornerVertex, and, on hybrid meshes, facet offsets under
// NameFacetFirstCorner and NameCornerFacet.
//
// Registry mutations and topology changes are single-threaded.
// Concurrent reads are safe, as are parallel scans over distinct
// entries; see the ParForEach functions.
type Mesh struct {
	id  string
	dim int

	numVertices int
	numFacets   int
	numCorners  int
	numEdges    int

	// vertexPerFacet is the uniform facet size, 0 while the mesh is
	// empty or uses hybrid storage.
	vertexPerFacet int

	hasEdges bool

	// edgeMap resolves a canonical vertex pair to its edge id while
	// edge connectivity is initialized.
	edgeMap map[[2]attrib.Index]attrib.Index

	logger log.Logger

	attrMu     sync.RWMutex
	attrOrder  []*attrEntry
	attrByID   map[AttributeID]*attrEntry
	attrByName map[string]*attrEntry
	nextAttrID AttributeID
}

// New creates an empty mesh of the configured dimension, 3 by default.
// The reserved position and corner-to-vertex channels are registered
// immediately. New panics on a non-positive dimension.
func New(opts ...Option) *Mesh {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dim < 1 {
		panic(fmt.Sprintf("mesh: dimension must be positive, got %d", cfg.dim))
	}
	m := &Mesh{
		id:         uuid.NewString(),
		dim:        cfg.dim,
		attrByID:   make(map[AttributeID]*attrEntry),
		attrByName: make(map[string]*attrEntry),
	}
	m.logger = meshLogger{id: m.id, next: cfg.logger}

	mustCreate(CreateAttribute[float64](m, NamePosition,
		attrib.ElementVertex, attrib.UsageVector, m.dim, WithReservedName()))
	mustCreate(CreateAttribute[attrib.Index](m, NameCornerVertex,
		attrib.ElementCorner, attrib.UsageVertexIndex, 1, WithReservedName()))
	return m
}

// meshLogger stamps the mesh id and a timestamp on events before
// forwarding them.
type meshLogger struct {
	id   string
	next log.Logger
}

func (ml meshLogger) Log(e log.Event) {
	if e.MeshID == "" {
		e.MeshID = ml.id
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	ml.next.Log(e)
}

// mustCreate unwraps attribute creation that cannot fail with valid
// construction parameters.
func mustCreate(id AttributeID, err error) AttributeID {
	if err != nil {
		panic(err)
	}
	return id
}

// ID returns the mesh's UUID. Events logged by the mesh carry it.
func (m *Mesh) ID() string { return m.id }

// Dimension returns the vertex coordinate dimension.
func (m *Mesh) Dimension() int { return m.dim }

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return m.numVertices }

// NumFacets returns the facet count.
func (m *Mesh) NumFacets() int { return m.numFacets }

// NumCorners returns the corner count. Each facet of size k contributes
// k corners.
func (m *Mesh) NumCorners() int { return m.numCorners }

// NumEdges returns the edge count, 0 until edges are initialized.
func (m *Mesh) NumEdges() int { return m.numEdges }

// VertexPerFacet returns the uniform facet size, or 0 for an empty or
// hybrid mesh.
func (m *Mesh) VertexPerFacet() int { return m.vertexPerFacet }

// IsRegular reports whether all facets share one size. An empty mesh is
// regular.
func (m *Mesh) IsRegular() bool {
	return m.numFacets == 0 || m.vertexPerFacet != 0
}

// IsHybrid reports whether facets have mixed sizes.
func (m *Mesh) IsHybrid() bool {
	return !m.IsRegular()
}

// IsTriangleMesh reports whether every facet is a triangle.
func (m *Mesh) IsTriangleMesh() bool {
	return m.IsRegular() && (m.numFacets == 0 || m.vertexPerFacet == 3)
}

// IsQuadMesh reports whether every facet is a quad.
func (m *Mesh) IsQuadMesh() bool {
	return m.IsRegular() && (m.numFacets == 0 || m.vertexPerFacet == 4)
}

// hybridStorage reports whether the facet offset channels are present.
// A cleared hybrid mesh keeps them until CompressIfRegular drops them.
func (m *Mesh) hybridStorage() bool {
	return m.HasAttribute(NameFacetFirstCorner)
}

// AddVertex appends one vertex and returns its index. The coordinate
// count must match the mesh dimension.
func (m *Mesh) AddVertex(pos ...float64) (attrib.Index, error) {
	if len(pos) != m.dim {
		return 0, fmt.Errorf("%w: got %d coordinates, mesh dimension is %d",
			attrib.ErrPrecondition, len(pos), m.dim)
	}
	v := attrib.Index(m.numVertices)
	if err := m.resizeVerticesInternal(m.numVertices + 1); err != nil {
		return 0, err
	}
	p, err := RefAttribute[float64](m, NamePosition)
	if err != nil {
		return 0, err
	}
	row, err := p.RefRow(int(v))
	if err != nil {
		return 0, err
	}
	copy(row, pos)
	return v, nil
}

// AddVertices appends vertices given as flat coordinates, dimension
// values per vertex.
func (m *Mesh) AddVertices(positions []float64) error {
	if len(positions)%m.dim != 0 {
		return fmt.Errorf("%w: %d coordinates is not a multiple of dimension %d",
			attrib.ErrPrecondition, len(positions), m.dim)
	}
	n := len(positions) / m.dim
	if n == 0 {
		return nil
	}
	first := m.numVertices
	if err := m.resizeVerticesInternal(m.numVertices + n); err != nil {
		return err
	}
	p, err := RefAttribute[float64](m, NamePosition)
	if err != nil {
		return err
	}
	dst, err := p.RefMiddle(first, n)
	if err != nil {
		return err
	}
	copy(dst, positions)
	return nil
}

// AddTriangle appends one triangle facet and returns its index.
func (m *Mesh) AddTriangle(v0, v1, v2 attrib.Index) (attrib.Index, error) {
	return m.AddPolygon(v0, v1, v2)
}

// AddQuad appends one quad facet and returns its index.
func (m *Mesh) AddQuad(v0, v1, v2, v3 attrib.Index) (attrib.Index, error) {
	return m.AddPolygon(v0, v1, v2, v3)
}

// AddPolygon appends one facet with at least three vertices and returns
// its index.
func (m *Mesh) AddPolygon(vertices ...attrib.Index) (attrib.Index, error) {
	f := attrib.Index(m.numFacets)
	if err := m.AddPolygons(len(vertices), vertices); err != nil {
		return 0, err
	}
	return f, nil
}

// AddTriangles appends triangles given their corner vertices as a flat
// slice, three per facet.
func (m *Mesh) AddTriangles(corners []attrib.Index) error {
	return m.AddPolygons(3, corners)
}

// AddQuads appends quads given their corner vertices as a flat slice,
// four per facet.
func (m *Mesh) AddQuads(corners []attrib.Index) error {
	return m.AddPolygons(4, corners)
}

// AddPolygons appends facets of uniform size given their corner
// vertices as a flat slice. A size that differs from the existing
// facets converts the mesh to hybrid storage.
func (m *Mesh) AddPolygons(vertexPerFacet int, corners []attrib.Index) error {
	if vertexPerFacet < 3 {
		return fmt.Errorf("%w: facets need at least 3 vertices, got %d",
			attrib.ErrPrecondition, vertexPerFacet)
	}
	if len(corners)%vertexPerFacet != 0 {
		return fmt.Errorf("%w: %d corner vertices is not a multiple of facet size %d",
			attrib.ErrPrecondition, len(corners), vertexPerFacet)
	}
	count := len(corners) / vertexPerFacet
	if count == 0 {
		return nil
	}
	if err := m.checkVertexIndices(corners); err != nil {
		return err
	}

	if !m.hybridStorage() && (m.numFacets == 0 || m.vertexPerFacet == vertexPerFacet) {
		m.vertexPerFacet = vertexPerFacet
	} else if err := m.ensureHybridStorage(); err != nil {
		return err
	}
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = vertexPerFacet
	}
	return m.appendFacets(sizes, corners)
}

// AddHybrid appends facets of mixed sizes. sizes[i] is facet i's vertex
// count and corners holds the concatenated vertex lists. Uniform sizes
// take the regular path instead.
func (m *Mesh) AddHybrid(sizes []int, corners []attrib.Index) error {
	if len(sizes) == 0 {
		return nil
	}
	total := 0
	uniform := true
	for _, s := range sizes {
		if s < 3 {
			return fmt.Errorf("%w: facets need at least 3 vertices, got %d",
				attrib.ErrPrecondition, s)
		}
		if s != sizes[0] {
			uniform = false
		}
		total += s
	}
	if total != len(corners) {
		return fmt.Errorf("%w: facet sizes sum to %d corners, got %d vertices",
			attrib.ErrPrecondition, total, len(corners))
	}
	if uniform {
		return m.AddPolygons(sizes[0], corners)
	}
	if err := m.checkVertexIndices(corners); err != nil {
		return err
	}
	if err := m.ensureHybridStorage(); err != nil {
		return err
	}
	return m.appendFacets(sizes, corners)
}

func (m *Mesh) checkVertexIndices(corners []attrib.Index) error {
	for _, v := range corners {
		if int(v) >= m.numVertices {
			return fmt.Errorf("%w: vertex index %d out of range, mesh has %d vertices",
				attrib.ErrPrecondition, v, m.numVertices)
		}
	}
	return nil
}

// appendFacets grows facet and corner storage and writes the new
// corners' vertices. On hybrid meshes it also records facet offsets.
// The caller has already validated sizes and vertex indices and decided
// the storage mode.
func (m *Mesh) appendFacets(sizes []int, corners []attrib.Index) error {
	firstFacet := m.numFacets
	firstCorner := m.numCorners
	total := 0
	for _, s := range sizes {
		total += s
	}

	if err := m.resizeFacetsInternal(firstFacet + len(sizes)); err != nil {
		return err
	}
	if err := m.resizeCornersInternal(firstCorner + total); err != nil {
		return err
	}

	cv, err := RefAttribute[attrib.Index](m, NameCornerVertex)
	if err != nil {
		return err
	}
	dst, err := cv.RefMiddle(firstCorner, total)
	if err != nil {
		return err
	}
	copy(dst, corners)

	if m.hybridStorage() {
		ffc, err := RefAttribute[attrib.Index](m, NameFacetFirstCorner)
		if err != nil {
			return err
		}
		cf, err := RefAttribute[attrib.Index](m, NameCornerFacet)
		if err != nil {
			return err
		}
		c := firstCorner
		for i, s := range sizes {
			if err := ffc.Set(firstFacet+i, attrib.Index(c)); err != nil {
				return err
			}
			for k := 0; k < s; k++ {
				if err := cf.Set(c+k, attrib.Index(firstFacet+i)); err != nil {
					return err
				}
			}
			c += s
		}
	}

	if m.hasEdges {
		return m.extendEdgeConnectivity(firstCorner)
	}
	return nil
}

// ensureHybridStorage converts a regular mesh to hybrid facet storage,
// backfilling offsets for the existing facets.
func (m *Mesh) ensureHybridStorage() error {
	if m.hybridStorage() {
		return nil
	}
	size := m.vertexPerFacet
	m.vertexPerFacet = 0

	if _, err := CreateAttribute[attrib.Index](m, NameFacetFirstCorner,
		attrib.ElementFacet, attrib.UsageCornerIndex, 1, WithReservedName()); err != nil {
		return err
	}
	if _, err := CreateAttribute[attrib.Index](m, NameCornerFacet,
		attrib.ElementCorner, attrib.UsageFacetIndex, 1, WithReservedName()); err != nil {
		return err
	}
	if m.numFacets == 0 {
		return nil
	}

	ffc, err := RefAttribute[attrib.Index](m, NameFacetFirstCorner)
	if err != nil {
		return err
	}
	offsets, err := ffc.RefAll()
	if err != nil {
		return err
	}
	for f := range offsets {
		offsets[f] = attrib.Index(f * size)
	}
	cf, err := RefAttribute[attrib.Index](m, NameCornerFacet)
	if err != nil {
		return err
	}
	facets, err := cf.RefAll()
	if err != nil {
		return err
	}
	for c := range facets {
		facets[c] = attrib.Index(c / size)
	}
	return nil
}

// resizeElementAttrs resizes every attribute whose element kind is in
// match, forking shared entries first.
func (m *Mesh) resizeElementAttrs(match attrib.Element, n int) error {
	for _, e := range m.entries() {
		if !match.Has(e.ptr.attr.Element()) {
			continue
		}
		if err := m.ensureExclusive(e); err != nil {
			return err
		}
		if err := e.ptr.attr.ResizeElements(n); err != nil {
			return err
		}
	}
	return nil
}

// The element counts advance only after every matching attribute has
// resized, so a policy failure mid-resize leaves the count untouched.
func (m *Mesh) resizeVerticesInternal(n int) error {
	if err := m.resizeElementAttrs(attrib.ElementVertex, n); err != nil {
		return err
	}
	m.numVertices = n
	return nil
}

func (m *Mesh) resizeFacetsInternal(n int) error {
	if err := m.resizeElementAttrs(attrib.ElementFacet, n); err != nil {
		return err
	}
	m.numFacets = n
	return nil
}

// resizeCornersInternal also resizes the index buffers of indexed
// attributes, which follow the corner count.
func (m *Mesh) resizeCornersInternal(n int) error {
	if err := m.resizeElementAttrs(attrib.ElementCorner|attrib.ElementIndexed, n); err != nil {
		return err
	}
	m.numCorners = n
	return nil
}

func (m *Mesh) resizeEdgesInternal(n int) error {
	if err := m.resizeElementAttrs(attrib.ElementEdge, n); err != nil {
		return err
	}
	m.numEdges = n
	return nil
}

// ClearFacets removes all facets, corners, and edge connectivity data.
// Vertices stay. Hybrid offset channels stay registered at size zero.
func (m *Mesh) ClearFacets() error {
	if err := m.resizeFacetsInternal(0); err != nil {
		return err
	}
	if err := m.resizeCornersInternal(0); err != nil {
		return err
	}
	if m.hasEdges {
		if err := m.resizeEdgesInternal(0); err != nil {
			return err
		}
		m.edgeMap = make(map[[2]attrib.Index]attrib.Index)
		vfc, err := RefAttribute[attrib.Index](m, NameVertexFirstCorner)
		if err != nil {
			return err
		}
		heads, err := vfc.RefAll()
		if err != nil {
			return err
		}
		for i := range heads {
			heads[i] = attrib.InvalidIndex
		}
	}
	if !m.hybridStorage() {
		m.vertexPerFacet = 0
	}
	return nil
}

// ClearVertices removes all vertices and, with them, all facets,
// corners, and edges.
func (m *Mesh) ClearVertices() error {
	if err := m.ClearFacets(); err != nil {
		return err
	}
	return m.resizeVerticesInternal(0)
}

// ShrinkToFit drops excess storage capacity on every attribute. Shared
// entries are shrunk in place: contents are unchanged, so aliases see
// no difference.
func (m *Mesh) ShrinkToFit() error {
	for _, e := range m.entries() {
		if err := e.ptr.attr.ShrinkToFit(); err != nil {
			return err
		}
	}
	return nil
}

// CompressIfRegular switches hybrid storage back to regular when every
// facet has the same size, dropping the offset channels. A hybrid mesh
// with no facets becomes a regular empty mesh.
func (m *Mesh) CompressIfRegular() error {
	if !m.hybridStorage() {
		return nil
	}
	size := 0
	for f := 0; f < m.numFacets; f++ {
		s := m.FacetSize(attrib.Index(f))
		if f == 0 {
			size = s
		} else if s != size {
			return nil
		}
	}
	if err := m.ForceDeleteAttribute(NameFacetFirstCorner); err != nil {
		return err
	}
	if err := m.ForceDeleteAttribute(NameCornerFacet); err != nil {
		return err
	}
	m.vertexPerFacet = size
	return nil
}

// reservedIndexAttr returns a reserved topology channel. A missing
// channel means the mesh was corrupted through ForceDeleteAttribute.
func (m *Mesh) reservedIndexAttr(name string) *attrib.Attribute[attrib.Index] {
	a, err := GetAttribute[attrib.Index](m, name)
	if err != nil {
		panic(fmt.Sprintf("mesh: missing reserved attribute %s", name))
	}
	return a
}

func (m *Mesh) positionsRead() *attrib.Attribute[float64] {
	a, err := GetAttribute[float64](m, NamePosition)
	if err != nil {
		panic(fmt.Sprintf("mesh: missing reserved attribute %s", NamePosition))
	}
	return a
}

// Positions returns the reserved position attribute for reading.
func (m *Mesh) Positions() *attrib.Attribute[float64] {
	return m.positionsRead()
}

// Position returns a read-only view of vertex v's coordinates.
func (m *Mesh) Position(v attrib.Index) []float64 {
	return m.positionsRead().GetRow(int(v))
}

// SetPosition overwrites vertex v's coordinates.
func (m *Mesh) SetPosition(v attrib.Index, pos ...float64) error {
	if len(pos) != m.dim {
		return fmt.Errorf("%w: got %d coordinates, mesh dimension is %d",
			attrib.ErrPrecondition, len(pos), m.dim)
	}
	p, err := RefAttribute[float64](m, NamePosition)
	if err != nil {
		return err
	}
	row, err := p.RefRow(int(v))
	if err != nil {
		return err
	}
	copy(row, pos)
	return nil
}

// FacetSize returns the vertex count of facet f.
func (m *Mesh) FacetSize(f attrib.Index) int {
	return int(m.FacetCornerEnd(f) - m.FacetCornerBegin(f))
}

// FacetCornerBegin returns the first corner of facet f.
func (m *Mesh) FacetCornerBegin(f attrib.Index) attrib.Index {
	if !m.hybridStorage() {
		return f * attrib.Index(m.vertexPerFacet)
	}
	return m.reservedIndexAttr(NameFacetFirstCorner).Get(int(f))
}

// FacetCornerEnd returns one past the last corner of facet f.
func (m *Mesh) FacetCornerEnd(f attrib.Index) attrib.Index {
	if !m.hybridStorage() {
		return (f + 1) * attrib.Index(m.vertexPerFacet)
	}
	if int(f)+1 == m.numFacets {
		return attrib.Index(m.numCorners)
	}
	return m.reservedIndexAttr(NameFacetFirstCorner).Get(int(f) + 1)
}

// FacetVertices returns a read-only view of facet f's vertices in
// corner order.
func (m *Mesh) FacetVertices(f attrib.Index) []attrib.Index {
	begin := m.FacetCornerBegin(f)
	return m.reservedIndexAttr(NameCornerVertex).GetMiddle(int(begin), m.FacetSize(f))
}

// FacetVertex returns vertex lv of facet f in corner order.
func (m *Mesh) FacetVertex(f attrib.Index, lv int) attrib.Index {
	return m.CornerVertex(m.FacetCornerBegin(f) + attrib.Index(lv))
}

// CornerVertex returns the vertex corner c sits on.
func (m *Mesh) CornerVertex(c attrib.Index) attrib.Index {
	return m.reservedIndexAttr(NameCornerVertex).Get(int(c))
}

// CornerFacet returns the facet corner c belongs to.
func (m *Mesh) CornerFacet(c attrib.Index) attrib.Index {
	if !m.hybridStorage() {
		return c / attrib.Index(m.vertexPerFacet)
	}
	return m.reservedIndexAttr(NameCornerFacet).Get(int(c))
}

// nextCornerInFacet returns the corner after c within its facet,
// wrapping to the facet's first corner.
func (m *Mesh) nextCornerInFacet(c attrib.Index) attrib.Index {
	f := m.CornerFacet(c)
	if c+1 == m.FacetCornerEnd(f) {
		return m.FacetCornerBegin(f)
	}
	return c + 1
}
