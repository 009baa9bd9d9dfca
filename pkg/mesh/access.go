package mesh

import (
	"fmt"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
)

// CreateAttribute registers a new attribute under name and returns its
// id. Non-indexed attributes are sized to the mesh's current count for
// their element kind and filled with the default value unless initial
// values are given. Indexed attributes get an index buffer sized to the
// corner count; their value buffer starts empty.
func CreateAttribute[V attrib.Value](m *Mesh, name string, element attrib.Element, usage attrib.Usage, numChannels int, opts ...CreateOption) (AttributeID, error) {
	id, err := createAttribute[V](m, name, element, usage, numChannels, opts)
	if err != nil {
		m.logOpError("CreateAttribute", name, err)
		return 0, err
	}
	return id, nil
}

func createAttribute[V attrib.Value](m *Mesh, name string, element attrib.Element, usage attrib.Usage, numChannels int, opts []CreateOption) (AttributeID, error) {
	var cfg createConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := m.checkCreateName(name, &cfg); err != nil {
		return 0, err
	}
	if err := m.checkMeshUsage(usage, numChannels, attrib.KindOf[V]()); err != nil {
		return 0, err
	}

	var erased attrib.AnyAttribute
	if element == attrib.ElementIndexed {
		ia, err := attrib.NewIndexed[V](usage, numChannels)
		if err != nil {
			return 0, err
		}
		if err := initIndexed(m, ia, &cfg); err != nil {
			return 0, err
		}
		erased = ia
	} else {
		a, err := attrib.New[V](element, usage, numChannels)
		if err != nil {
			return 0, err
		}
		if err := initPlain(m, a, element, &cfg); err != nil {
			return 0, err
		}
		erased = a
	}
	erased.SetLogger(m.logger)
	return m.registerAttribute(name, erased, IsReservedName(name)), nil
}

// WrapAttribute registers an attribute bound to caller-owned writable
// memory. The buffer must hold at least count*numChannels values for
// the element kind's current count; the mesh reads and writes the
// caller's memory directly until a policy promotes it.
func WrapAttribute[V attrib.Value](m *Mesh, name string, element attrib.Element, usage attrib.Usage, numChannels int, buffer []V, opts ...CreateOption) (AttributeID, error) {
	id, err := wrapAttribute(m, name, element, usage, numChannels, buffer, false, opts)
	if err != nil {
		m.logOpError("WrapAttribute", name, err)
		return 0, err
	}
	return id, nil
}

// WrapConstAttribute registers an attribute bound to caller-owned
// read-only memory. Writes are gated by the attribute's write policy.
func WrapConstAttribute[V attrib.Value](m *Mesh, name string, element attrib.Element, usage attrib.Usage, numChannels int, buffer []V, opts ...CreateOption) (AttributeID, error) {
	id, err := wrapAttribute(m, name, element, usage, numChannels, buffer, true, opts)
	if err != nil {
		m.logOpError("WrapConstAttribute", name, err)
		return 0, err
	}
	return id, nil
}

func wrapAttribute[V attrib.Value](m *Mesh, name string, element attrib.Element, usage attrib.Usage, numChannels int, buffer []V, readOnly bool, opts []CreateOption) (AttributeID, error) {
	var cfg createConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := m.checkCreateName(name, &cfg); err != nil {
		return 0, err
	}
	if err := m.checkMeshUsage(usage, numChannels, attrib.KindOf[V]()); err != nil {
		return 0, err
	}
	a, err := attrib.New[V](element, usage, numChannels)
	if err != nil {
		return 0, err
	}
	applyPolicies(a, &cfg)
	count := m.elementCount(element)
	if readOnly {
		err = a.WrapConst(buffer, count)
	} else {
		err = a.Wrap(buffer, count)
	}
	if err != nil {
		return 0, err
	}
	a.SetLogger(m.logger)
	return m.registerAttribute(name, a, IsReservedName(name)), nil
}

func (m *Mesh) checkCreateName(name string, cfg *createConfig) error {
	if name == "" {
		return fmt.Errorf("%w: empty attribute name", attrib.ErrConfiguration)
	}
	if IsReservedName(name) && !cfg.reservedOK {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if m.HasAttribute(name) {
		return fmt.Errorf("%w: %q", ErrNameCollision, name)
	}
	return nil
}

// checkMeshUsage layers mesh-level rules on the base usage validation:
// normals and (bi)tangents span the mesh dimension plus an optional
// homogeneous coordinate, and element index channels must use the mesh
// index type.
func (m *Mesh) checkMeshUsage(usage attrib.Usage, numChannels int, kind attrib.ValueKind) error {
	switch usage {
	case attrib.UsageNormal, attrib.UsageTangent, attrib.UsageBitangent:
		if numChannels != m.dim && numChannels != m.dim+1 {
			return fmt.Errorf("%w: %s usage needs %d or %d channels on a %d-dimensional mesh, got %d",
				attrib.ErrConfiguration, usage, m.dim, m.dim+1, m.dim, numChannels)
		}
	case attrib.UsageVertexIndex, attrib.UsageFacetIndex, attrib.UsageCornerIndex, attrib.UsageEdgeIndex:
		if kind != attrib.KindUint32 {
			return fmt.Errorf("%w: %s usage needs the mesh index type uint32, got %s",
				attrib.ErrConfiguration, usage, kind)
		}
	}
	return nil
}

// elementCount returns the mesh's current element count for a kind.
// Value-element attributes are not tied to topology and report zero.
func (m *Mesh) elementCount(e attrib.Element) int {
	switch e {
	case attrib.ElementVertex:
		return m.numVertices
	case attrib.ElementFacet:
		return m.numFacets
	case attrib.ElementCorner, attrib.ElementIndexed:
		return m.numCorners
	case attrib.ElementEdge:
		return m.numEdges
	default:
		return 0
	}
}

func applyPolicies[V attrib.Value](a *attrib.Attribute[V], cfg *createConfig) {
	a.SetGrowthPolicy(cfg.growthPolicy)
	a.SetShrinkPolicy(cfg.shrinkPolicy)
	a.SetWritePolicy(cfg.writePolicy)
	a.SetCopyPolicy(cfg.copyPolicy)
}

func initPlain[V attrib.Value](m *Mesh, a *attrib.Attribute[V], element attrib.Element, cfg *createConfig) error {
	applyPolicies(a, cfg)
	if cfg.defaultValue != nil {
		d, ok := cfg.defaultValue.(V)
		if !ok {
			return fmt.Errorf("%w: default value is %T, want %s",
				attrib.ErrTypeMismatch, cfg.defaultValue, attrib.KindOf[V]())
		}
		a.SetDefaultValue(d)
	}
	count := m.elementCount(element)
	if cfg.initialValues != nil {
		values, ok := cfg.initialValues.([]V)
		if !ok {
			return fmt.Errorf("%w: initial values are %T, want []%s",
				attrib.ErrTypeMismatch, cfg.initialValues, attrib.KindOf[V]())
		}
		if element != attrib.ElementValue && len(values) != count*a.NumChannels() {
			return fmt.Errorf("%w: got %d initial values, want %d",
				attrib.ErrPrecondition, len(values), count*a.NumChannels())
		}
		return a.InsertValues(values)
	}
	if element == attrib.ElementValue {
		return nil
	}
	return a.ResizeElements(count)
}

func initIndexed[V attrib.Value](m *Mesh, ia *attrib.IndexedAttribute[V], cfg *createConfig) error {
	applyPolicies(ia.Values(), cfg)
	applyPolicies(ia.Indices(), cfg)
	if cfg.defaultValue != nil {
		d, ok := cfg.defaultValue.(V)
		if !ok {
			return fmt.Errorf("%w: default value is %T, want %s",
				attrib.ErrTypeMismatch, cfg.defaultValue, attrib.KindOf[V]())
		}
		ia.Values().SetDefaultValue(d)
	}
	if cfg.initialValues != nil {
		values, ok := cfg.initialValues.([]V)
		if !ok {
			return fmt.Errorf("%w: initial values are %T, want []%s",
				attrib.ErrTypeMismatch, cfg.initialValues, attrib.KindOf[V]())
		}
		if err := ia.Values().InsertValues(values); err != nil {
			return err
		}
	}
	if cfg.initialIndices != nil {
		if len(cfg.initialIndices) != m.numCorners {
			return fmt.Errorf("%w: got %d initial indices, want %d (one per corner)",
				attrib.ErrPrecondition, len(cfg.initialIndices), m.numCorners)
		}
		return ia.Indices().InsertValues(cfg.initialIndices)
	}
	return ia.Indices().ResizeElements(m.numCorners)
}

// GetAttribute returns the named attribute for reading. The handle may
// share storage with duplicates; use RefAttribute before writing
// through it.
func GetAttribute[V attrib.Value](m *Mesh, name string) (*attrib.Attribute[V], error) {
	e, err := m.entryByName(name)
	if err != nil {
		return nil, err
	}
	return attrib.As[V](e.ptr.attr)
}

// GetAttributeByID is GetAttribute keyed by id.
func GetAttributeByID[V attrib.Value](m *Mesh, id AttributeID) (*attrib.Attribute[V], error) {
	e, err := m.entryByID(id)
	if err != nil {
		return nil, err
	}
	return attrib.As[V](e.ptr.attr)
}

// RefAttribute returns the named attribute for writing, forking it onto
// its own copy first when duplicates share its storage.
func RefAttribute[V attrib.Value](m *Mesh, name string) (*attrib.Attribute[V], error) {
	e, err := m.entryByName(name)
	if err != nil {
		return nil, err
	}
	return refEntry[V](m, e)
}

// RefAttributeByID is RefAttribute keyed by id.
func RefAttributeByID[V attrib.Value](m *Mesh, id AttributeID) (*attrib.Attribute[V], error) {
	e, err := m.entryByID(id)
	if err != nil {
		return nil, err
	}
	return refEntry[V](m, e)
}

func refEntry[V attrib.Value](m *Mesh, e *attrEntry) (*attrib.Attribute[V], error) {
	// A type mismatch must not trigger a fork.
	if _, err := attrib.As[V](e.ptr.attr); err != nil {
		return nil, err
	}
	if err := m.ensureExclusive(e); err != nil {
		return nil, err
	}
	return attrib.As[V](e.ptr.attr)
}

// GetIndexedAttribute returns the named indexed attribute for reading.
func GetIndexedAttribute[V attrib.Value](m *Mesh, name string) (*attrib.IndexedAttribute[V], error) {
	e, err := m.entryByName(name)
	if err != nil {
		return nil, err
	}
	return attrib.AsIndexed[V](e.ptr.attr)
}

// GetIndexedAttributeByID is GetIndexedAttribute keyed by id.
func GetIndexedAttributeByID[V attrib.Value](m *Mesh, id AttributeID) (*attrib.IndexedAttribute[V], error) {
	e, err := m.entryByID(id)
	if err != nil {
		return nil, err
	}
	return attrib.AsIndexed[V](e.ptr.attr)
}

// RefIndexedAttribute returns the named indexed attribute for writing,
// forking shared storage first.
func RefIndexedAttribute[V attrib.Value](m *Mesh, name string) (*attrib.IndexedAttribute[V], error) {
	e, err := m.entryByName(name)
	if err != nil {
		return nil, err
	}
	return refIndexedEntry[V](m, e)
}

// RefIndexedAttributeByID is RefIndexedAttribute keyed by id.
func RefIndexedAttributeByID[V attrib.Value](m *Mesh, id AttributeID) (*attrib.IndexedAttribute[V], error) {
	e, err := m.entryByID(id)
	if err != nil {
		return nil, err
	}
	return refIndexedEntry[V](m, e)
}

func refIndexedEntry[V attrib.Value](m *Mesh, e *attrEntry) (*attrib.IndexedAttribute[V], error) {
	if _, err := attrib.AsIndexed[V](e.ptr.attr); err != nil {
		return nil, err
	}
	if err := m.ensureExclusive(e); err != nil {
		return nil, err
	}
	return attrib.AsIndexed[V](e.ptr.attr)
}
