package meshops

import (
	"errors"
	"fmt"
	"time"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
)

// ErrDimensionMismatch is returned by Combine when the inputs do not
// share a vertex dimension.
var ErrDimensionMismatch = errors.New("meshops: incompatible mesh dimensions")

type combineConfig struct {
	preserveAttributes bool
	logger             log.Logger
}

// CombineOption adjusts how Combine assembles its output mesh.
type CombineOption func(*combineConfig)

// WithoutAttributes limits Combine to topology and positions, dropping
// every non-reserved attribute of the inputs.
func WithoutAttributes() CombineOption {
	return func(cfg *combineConfig) { cfg.preserveAttributes = false }
}

// WithLogger attaches l to the combined mesh and routes attribute skip
// warnings to it.
func WithLogger(l log.Logger) CombineOption {
	return func(cfg *combineConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Combine concatenates the given meshes into one. Vertices, facets and
// corners are appended in input order, with corner indices shifted past
// the vertices of earlier inputs. The output stays regular when every
// input uses the same facet size and becomes hybrid otherwise.
//
// Non-reserved attributes of the first input are carried over when every
// input holds them with identical metadata; mismatches are skipped and
// reported through the logger. Values under an index usage (vertex,
// facet, corner or edge) are shifted by the matching element offsets.
// Edge connectivity is rebuilt on the output as soon as an edge
// attribute requires it.
//
// An empty input list yields an empty default mesh.
func Combine(meshes []*mesh.Mesh, opts ...CombineOption) (*mesh.Mesh, error) {
	cfg := combineConfig{preserveAttributes: true, logger: log.NoopLogger{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(meshes) == 0 {
		return mesh.New(mesh.WithLogger(cfg.logger)), nil
	}

	dim := meshes[0].Dimension()
	for _, src := range meshes[1:] {
		if src.Dimension() != dim {
			return nil, fmt.Errorf("%w: %d and %d", ErrDimensionMismatch, dim, src.Dimension())
		}
	}

	out := mesh.New(mesh.WithDimension(dim), mesh.WithLogger(cfg.logger))
	vertexBase := attrib.Index(0)
	for _, src := range meshes {
		if err := out.AddVertices(src.Positions().GetAll()); err != nil {
			return nil, err
		}
		if src.NumFacets() > 0 {
			sizes := make([]int, src.NumFacets())
			for f := range sizes {
				sizes[f] = src.FacetSize(attrib.Index(f))
			}
			corners := make([]attrib.Index, src.NumCorners())
			for c := range corners {
				corners[c] = src.CornerVertex(attrib.Index(c)) + vertexBase
			}
			if err := out.AddHybrid(sizes, corners); err != nil {
				return nil, err
			}
		}
		vertexBase += attrib.Index(src.NumVertices())
	}

	if cfg.preserveAttributes {
		if err := combineAttributes(out, meshes, cfg.logger); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func combineAttributes(out *mesh.Mesh, meshes []*mesh.Mesh, lg log.Logger) error {
	for _, name := range meshes[0].AttributeNames() {
		if mesh.IsReservedName(name) {
			continue
		}
		meta, err := meshes[0].AnyAttribute(name)
		if err != nil {
			return err
		}
		if !consistentAcross(meshes, name, meta, lg, out.ID()) {
			continue
		}
		if meta.Element() == attrib.ElementEdge && !out.HasEdges() {
			// Edge ids follow first corner occurrence, and the input
			// vertex ranges are disjoint in the output, so rebuilding
			// numbers the combined edges as the concatenation of the
			// input numberings.
			if err := out.InitializeEdges(); err != nil {
				return err
			}
		}
		if err := combineByKind(out, meshes, name, meta); err != nil {
			return err
		}
	}
	return nil
}

// consistentAcross reports whether every input carries the attribute
// with the same metadata as the first. Mismatches are logged and make
// the attribute ineligible for combination.
func consistentAcross(meshes []*mesh.Mesh, name string, want attrib.AnyAttribute, lg log.Logger, meshID string) bool {
	for _, src := range meshes {
		got, err := src.AnyAttribute(name)
		if err != nil {
			warnSkip(lg, meshID, name, "not present on every input")
			return false
		}
		if got.Kind() != want.Kind() {
			warnSkip(lg, meshID, name, "inconsistent value kind")
			return false
		}
		if got.Element() != want.Element() {
			warnSkip(lg, meshID, name, "inconsistent element kind")
			return false
		}
		if got.Usage() != want.Usage() {
			warnSkip(lg, meshID, name, "inconsistent usage")
			return false
		}
		if got.NumChannels() != want.NumChannels() {
			warnSkip(lg, meshID, name, "inconsistent channel count")
			return false
		}
		if want.Element() == attrib.ElementEdge && !src.HasEdges() {
			warnSkip(lg, meshID, name, "edge attribute on an input without edge connectivity")
			return false
		}
	}
	return true
}

func warnSkip(lg log.Logger, meshID, name, reason string) {
	lg.Log(log.Event{
		Timestamp: time.Now(),
		MeshID:    meshID,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Op:        "Combine",
			Attribute: name,
			Message:   "skipping attribute: " + reason,
		},
	})
}

func combineByKind(out *mesh.Mesh, meshes []*mesh.Mesh, name string, meta attrib.AnyAttribute) error {
	switch meta.Kind() {
	case attrib.KindInt8:
		return combineAs[int8](out, meshes, name, meta)
	case attrib.KindInt16:
		return combineAs[int16](out, meshes, name, meta)
	case attrib.KindInt32:
		return combineAs[int32](out, meshes, name, meta)
	case attrib.KindInt64:
		return combineAs[int64](out, meshes, name, meta)
	case attrib.KindUint8:
		return combineAs[uint8](out, meshes, name, meta)
	case attrib.KindUint16:
		return combineAs[uint16](out, meshes, name, meta)
	case attrib.KindUint32:
		return combineAs[uint32](out, meshes, name, meta)
	case attrib.KindUint64:
		return combineAs[uint64](out, meshes, name, meta)
	case attrib.KindFloat32:
		return combineAs[float32](out, meshes, name, meta)
	case attrib.KindFloat64:
		return combineAs[float64](out, meshes, name, meta)
	}
	return fmt.Errorf("meshops: unhandled value kind %v", meta.Kind())
}

func combineAs[V attrib.Value](out *mesh.Mesh, meshes []*mesh.Mesh, name string, meta attrib.AnyAttribute) error {
	element := meta.Element()
	if _, err := mesh.CreateAttribute[V](out, name, element, meta.Usage(), meta.NumChannels()); err != nil {
		return err
	}
	if element == attrib.ElementIndexed {
		return combineIndexed[V](out, meshes, name, meta.Usage())
	}
	return combinePlain[V](out, meshes, name, element, meta.Usage())
}

// combinePlain concatenates the per-element rows of every input into the
// freshly created output attribute. Topology-bound elements were already
// sized by the output's resize machinery; value attributes grow to the
// summed input extent here.
func combinePlain[V attrib.Value](out *mesh.Mesh, meshes []*mesh.Mesh, name string, element attrib.Element, usage attrib.Usage) error {
	dst, err := mesh.RefAttribute[V](out, name)
	if err != nil {
		return err
	}
	if element == attrib.ElementValue {
		total := 0
		for _, src := range meshes {
			a, err := mesh.GetAttribute[V](src, name)
			if err != nil {
				return err
			}
			total += a.NumElements()
		}
		if err := dst.ResizeElements(total); err != nil {
			return err
		}
	}

	written := 0
	offset := attrib.Index(0)
	for _, src := range meshes {
		a, err := mesh.GetAttribute[V](src, name)
		if err != nil {
			return err
		}
		rows, err := dst.RefMiddle(written, a.NumElements())
		if err != nil {
			return err
		}
		copy(rows, a.GetAll())
		if offset != 0 {
			for i := range rows {
				rows[i] += V(offset)
			}
		}
		written += a.NumElements()
		offset += indexOffset(src, usage)
	}
	return nil
}

// combineIndexed concatenates value buffers with the usage offset and
// index buffers with the running value count, keeping every index
// pointed at its own input's rows.
func combineIndexed[V attrib.Value](out *mesh.Mesh, meshes []*mesh.Mesh, name string, usage attrib.Usage) error {
	dst, err := mesh.RefIndexedAttribute[V](out, name)
	if err != nil {
		return err
	}
	total := 0
	for _, src := range meshes {
		a, err := mesh.GetIndexedAttribute[V](src, name)
		if err != nil {
			return err
		}
		total += a.Values().NumElements()
	}
	if err := dst.Values().ResizeElements(total); err != nil {
		return err
	}

	valueCount, indexCount := 0, 0
	offset := attrib.Index(0)
	for _, src := range meshes {
		a, err := mesh.GetIndexedAttribute[V](src, name)
		if err != nil {
			return err
		}
		values, err := dst.Values().RefMiddle(valueCount, a.Values().NumElements())
		if err != nil {
			return err
		}
		copy(values, a.Values().GetAll())
		if offset != 0 {
			for i := range values {
				values[i] += V(offset)
			}
		}
		indices, err := dst.Indices().RefMiddle(indexCount, a.Indices().NumElements())
		if err != nil {
			return err
		}
		copy(indices, a.Indices().GetAll())
		if valueCount != 0 {
			base := attrib.Index(valueCount)
			for i := range indices {
				indices[i] += base
			}
		}
		valueCount += a.Values().NumElements()
		indexCount += a.Indices().NumElements()
		offset += indexOffset(src, usage)
	}
	return nil
}

// indexOffset returns how far values under an index usage must shift
// when src's elements are appended after the meshes before it.
func indexOffset(src *mesh.Mesh, usage attrib.Usage) attrib.Index {
	switch usage {
	case attrib.UsageVertexIndex:
		return attrib.Index(src.NumVertices())
	case attrib.UsageFacetIndex:
		return attrib.Index(src.NumFacets())
	case attrib.UsageCornerIndex:
		return attrib.Index(src.NumCorners())
	case attrib.UsageEdgeIndex:
		return attrib.Index(src.NumEdges())
	}
	return 0
}
