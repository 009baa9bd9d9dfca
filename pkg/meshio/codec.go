package meshio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
)

// FormatVersion is the snapshot format written by Encode.
const FormatVersion = 1

var (
	// ErrFormat marks a snapshot that cannot be parsed or describes an
	// impossible mesh.
	ErrFormat = errors.New("meshio: malformed snapshot")

	// ErrVersion marks a snapshot written by an unknown format version.
	ErrVersion = errors.New("meshio: unsupported snapshot version")

	// ErrDigest marks a snapshot whose payload does not match its
	// recorded digest.
	ErrDigest = errors.New("meshio: snapshot digest mismatch")
)

// encMode is the CBOR encoder mode for snapshots. Canonical ordering
// keeps the payload bytes, and with them the digest, deterministic for
// a given mesh state.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for snapshots.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// envelope is the outer snapshot frame. The digest is BLAKE2b-256 over
// the payload bytes and is verified before the payload is parsed.
type envelope struct {
	Version int    `cbor:"1,keyasint"`
	Digest  []byte `cbor:"2,keyasint"`
	Payload []byte `cbor:"3,keyasint"`
}

// document is the snapshot payload. Topology travels as flat buffers;
// reserved attributes are not recorded since decoding rebuilds them.
type document struct {
	MeshID         string            `cbor:"1,keyasint"`
	Dimension      int               `cbor:"2,keyasint"`
	NumVertices    int               `cbor:"3,keyasint"`
	VertexPerFacet int               `cbor:"4,keyasint,omitempty"`
	FacetSizes     []int             `cbor:"5,keyasint,omitempty"`
	CornerVertices []attrib.Index    `cbor:"6,keyasint,omitempty"`
	Positions      []float64         `cbor:"7,keyasint,omitempty"`
	HasEdges       bool              `cbor:"8,keyasint,omitempty"`
	Attributes     []attributeRecord `cbor:"9,keyasint,omitempty"`
	Skipped        []string          `cbor:"10,keyasint,omitempty"`
}

// attributeRecord carries one non-reserved attribute. Values holds the
// kind-typed flat value array as nested CBOR; Indices is present for
// indexed attributes only.
type attributeRecord struct {
	Name        string           `cbor:"1,keyasint"`
	Element     attrib.Element   `cbor:"2,keyasint"`
	Usage       attrib.Usage     `cbor:"3,keyasint"`
	NumChannels int              `cbor:"4,keyasint"`
	Kind        attrib.ValueKind `cbor:"5,keyasint"`
	Values      cbor.RawMessage  `cbor:"6,keyasint"`
	Indices     []attrib.Index   `cbor:"7,keyasint,omitempty"`
	Default     cbor.RawMessage  `cbor:"8,keyasint,omitempty"`
}

// Encode writes a snapshot of m to w.
//
// Attributes wrapping external buffers are not serialized; their names
// are recorded in the snapshot so Describe can report them. Everything
// else, including indexed attributes and default values, round-trips.
func Encode(w io.Writer, m *mesh.Mesh) error {
	doc, err := buildDocument(m)
	if err != nil {
		return err
	}
	payload, err := encMode.Marshal(doc)
	if err != nil {
		return err
	}
	sum := blake2b.Sum256(payload)
	return encMode.NewEncoder(w).Encode(envelope{
		Version: FormatVersion,
		Digest:  sum[:],
		Payload: payload,
	})
}

// EncodeFile writes a snapshot of m to the file at path, replacing any
// existing content.
func EncodeFile(path string, m *mesh.Mesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, m)
}

type decodeConfig struct {
	logger log.Logger
}

// DecodeOption adjusts how Decode rebuilds a mesh.
type DecodeOption func(*decodeConfig)

// WithLogger attaches l to the rebuilt mesh.
func WithLogger(l log.Logger) DecodeOption {
	return func(cfg *decodeConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Decode reads a snapshot from r and rebuilds the mesh it describes.
// The digest is verified before any mesh state is constructed. The
// rebuilt mesh is a fresh instance with its own id; the source mesh id
// remains available through Describe.
func Decode(r io.Reader, opts ...DecodeOption) (*mesh.Mesh, error) {
	cfg := decodeConfig{logger: log.NoopLogger{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	doc, _, err := readDocument(r)
	if err != nil {
		return nil, err
	}
	return buildMesh(doc, cfg.logger)
}

// DecodeFile reads a snapshot from the file at path.
func DecodeFile(path string, opts ...DecodeOption) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, opts...)
}

// AttributeInfo summarizes one serialized attribute.
type AttributeInfo struct {
	Name        string
	Element     attrib.Element
	Usage       attrib.Usage
	NumChannels int
	Kind        attrib.ValueKind
	NumValues   int
}

// Summary describes a snapshot without rebuilding the mesh.
type Summary struct {
	Version     int
	SourceID    string
	Dimension   int
	NumVertices int
	NumFacets   int
	NumCorners  int
	HasEdges    bool
	Attributes  []AttributeInfo
	Skipped     []string
}

// Describe reads a snapshot from r and reports its contents. The
// digest is verified the same way Decode verifies it.
func Describe(r io.Reader) (Summary, error) {
	doc, version, err := readDocument(r)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		Version:     version,
		SourceID:    doc.MeshID,
		Dimension:   doc.Dimension,
		NumVertices: doc.NumVertices,
		NumCorners:  len(doc.CornerVertices),
		HasEdges:    doc.HasEdges,
		Skipped:     doc.Skipped,
	}
	switch {
	case len(doc.FacetSizes) > 0:
		s.NumFacets = len(doc.FacetSizes)
	case doc.VertexPerFacet > 0:
		s.NumFacets = len(doc.CornerVertices) / doc.VertexPerFacet
	}
	for _, rec := range doc.Attributes {
		info := AttributeInfo{
			Name:        rec.Name,
			Element:     rec.Element,
			Usage:       rec.Usage,
			NumChannels: rec.NumChannels,
			Kind:        rec.Kind,
		}
		// The value array length is visible without kind dispatch.
		var raw []cbor.RawMessage
		if err := decMode.Unmarshal(rec.Values, &raw); err != nil {
			return Summary{}, fmt.Errorf("%w: attribute %q values: %v", ErrFormat, rec.Name, err)
		}
		if rec.NumChannels > 0 {
			info.NumValues = len(raw) / rec.NumChannels
		}
		s.Attributes = append(s.Attributes, info)
	}
	return s, nil
}

// DescribeFile reads a snapshot summary from the file at path.
func DescribeFile(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	return Describe(f)
}

func readDocument(r io.Reader) (document, int, error) {
	var env envelope
	if err := decMode.NewDecoder(r).Decode(&env); err != nil {
		return document{}, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if env.Version != FormatVersion {
		return document{}, 0, fmt.Errorf("%w %d", ErrVersion, env.Version)
	}
	sum := blake2b.Sum256(env.Payload)
	if !bytes.Equal(sum[:], env.Digest) {
		return document{}, 0, ErrDigest
	}
	var doc document
	if err := decMode.Unmarshal(env.Payload, &doc); err != nil {
		return document{}, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return doc, env.Version, nil
}

func buildDocument(m *mesh.Mesh) (document, error) {
	doc := document{
		MeshID:      m.ID(),
		Dimension:   m.Dimension(),
		NumVertices: m.NumVertices(),
		HasEdges:    m.HasEdges(),
		Positions:   m.Positions().GetAll(),
	}
	if m.IsRegular() {
		doc.VertexPerFacet = m.VertexPerFacet()
	} else {
		sizes := make([]int, m.NumFacets())
		for f := range sizes {
			sizes[f] = m.FacetSize(attrib.Index(f))
		}
		doc.FacetSizes = sizes
	}
	corners := make([]attrib.Index, m.NumCorners())
	for c := range corners {
		corners[c] = m.CornerVertex(attrib.Index(c))
	}
	doc.CornerVertices = corners

	records, skipped, err := collectRecords(m)
	if err != nil {
		return document{}, err
	}
	doc.Attributes = records
	doc.Skipped = skipped
	return doc, nil
}

// collectRecords walks every non-reserved attribute, one value kind at
// a time, in registration order within each kind.
func collectRecords(m *mesh.Mesh) ([]attributeRecord, []string, error) {
	var records []attributeRecord
	var skipped []string
	collectors := []func(*mesh.Mesh, *[]attributeRecord, *[]string) error{
		collectKind[int8],
		collectKind[int16],
		collectKind[int32],
		collectKind[int64],
		collectKind[uint8],
		collectKind[uint16],
		collectKind[uint32],
		collectKind[uint64],
		collectKind[float32],
		collectKind[float64],
	}
	for _, collect := range collectors {
		if err := collect(m, &records, &skipped); err != nil {
			return nil, nil, err
		}
	}
	return records, skipped, nil
}

func collectKind[V attrib.Value](m *mesh.Mesh, records *[]attributeRecord, skipped *[]string) error {
	return mesh.SeqForEachNamedAttributeRead(m, attrib.AllElements, mesh.NamedVisitor[V]{
		Plain: func(name string, a *attrib.Attribute[V]) error {
			if mesh.IsReservedName(name) {
				return nil
			}
			if a.IsExternal() {
				*skipped = append(*skipped, name)
				return nil
			}
			rec, err := plainRecord(name, a)
			if err != nil {
				return err
			}
			*records = append(*records, rec)
			return nil
		},
		Indexed: func(name string, ia *attrib.IndexedAttribute[V]) error {
			if ia.IsExternal() {
				*skipped = append(*skipped, name)
				return nil
			}
			rec, err := plainRecord(name, ia.Values())
			if err != nil {
				return err
			}
			rec.Element = attrib.ElementIndexed
			rec.Indices = ia.Indices().GetAll()
			*records = append(*records, rec)
			return nil
		},
	})
}

func plainRecord[V attrib.Value](name string, a *attrib.Attribute[V]) (attributeRecord, error) {
	values, err := encMode.Marshal(a.GetAll())
	if err != nil {
		return attributeRecord{}, err
	}
	rec := attributeRecord{
		Name:        name,
		Element:     a.Element(),
		Usage:       a.Usage(),
		NumChannels: a.NumChannels(),
		Kind:        a.Kind(),
		Values:      values,
	}
	var zero V
	if def := a.DefaultValue(); def != zero {
		raw, err := encMode.Marshal(def)
		if err != nil {
			return attributeRecord{}, err
		}
		rec.Default = raw
	}
	return rec, nil
}

func buildMesh(doc document, lg log.Logger) (*mesh.Mesh, error) {
	if doc.Dimension < 1 {
		return nil, fmt.Errorf("%w: dimension %d", ErrFormat, doc.Dimension)
	}
	if len(doc.Positions) != doc.NumVertices*doc.Dimension {
		return nil, fmt.Errorf("%w: %d position values for %d vertices of dimension %d",
			ErrFormat, len(doc.Positions), doc.NumVertices, doc.Dimension)
	}
	m := mesh.New(mesh.WithDimension(doc.Dimension), mesh.WithLogger(lg))
	if err := m.AddVertices(doc.Positions); err != nil {
		return nil, err
	}
	switch {
	case len(doc.FacetSizes) > 0:
		if err := m.AddHybrid(doc.FacetSizes, doc.CornerVertices); err != nil {
			return nil, err
		}
	case len(doc.CornerVertices) > 0:
		if doc.VertexPerFacet < 3 {
			return nil, fmt.Errorf("%w: %d corners with vertex per facet %d",
				ErrFormat, len(doc.CornerVertices), doc.VertexPerFacet)
		}
		if err := m.AddPolygons(doc.VertexPerFacet, doc.CornerVertices); err != nil {
			return nil, err
		}
	}
	if doc.HasEdges {
		// Edge ids follow first corner occurrence, so rebuilding from
		// the decoded corner list reproduces the encoder's numbering
		// and per-edge attribute rows line up again.
		if err := m.InitializeEdges(); err != nil {
			return nil, err
		}
	}
	for _, rec := range doc.Attributes {
		if err := restoreAttribute(m, rec); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func restoreAttribute(m *mesh.Mesh, rec attributeRecord) error {
	if rec.Element != attrib.ElementIndexed && !rec.Element.IsSingle() {
		return fmt.Errorf("%w: attribute %q element mask %#x", ErrFormat, rec.Name, uint8(rec.Element))
	}
	switch rec.Kind {
	case attrib.KindInt8:
		return restoreAs[int8](m, rec)
	case attrib.KindInt16:
		return restoreAs[int16](m, rec)
	case attrib.KindInt32:
		return restoreAs[int32](m, rec)
	case attrib.KindInt64:
		return restoreAs[int64](m, rec)
	case attrib.KindUint8:
		return restoreAs[uint8](m, rec)
	case attrib.KindUint16:
		return restoreAs[uint16](m, rec)
	case attrib.KindUint32:
		return restoreAs[uint32](m, rec)
	case attrib.KindUint64:
		return restoreAs[uint64](m, rec)
	case attrib.KindFloat32:
		return restoreAs[float32](m, rec)
	case attrib.KindFloat64:
		return restoreAs[float64](m, rec)
	}
	return fmt.Errorf("%w: attribute %q value kind %d", ErrFormat, rec.Name, uint8(rec.Kind))
}

func restoreAs[V attrib.Value](m *mesh.Mesh, rec attributeRecord) error {
	var values []V
	if err := decMode.Unmarshal(rec.Values, &values); err != nil {
		return fmt.Errorf("%w: attribute %q values: %v", ErrFormat, rec.Name, err)
	}
	opts := []mesh.CreateOption{mesh.WithInitialValues(values)}
	if len(rec.Default) > 0 {
		var def V
		if err := decMode.Unmarshal(rec.Default, &def); err != nil {
			return fmt.Errorf("%w: attribute %q default: %v", ErrFormat, rec.Name, err)
		}
		opts = append(opts, mesh.WithDefaultValue(def))
	}
	if rec.Element == attrib.ElementIndexed {
		opts = append(opts, mesh.WithInitialIndices(rec.Indices))
	}
	_, err := mesh.CreateAttribute[V](m, rec.Name, rec.Element, rec.Usage, rec.NumChannels, opts...)
	return err
}
