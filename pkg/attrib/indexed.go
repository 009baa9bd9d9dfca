package attrib

import "github.com/tessera-mesh/tessera-go/pkg/log"

// IndexedAttribute couples a deduplicated value buffer with a per-corner
// index buffer referencing rows in it. Seams fall out of adjacent
// corners pointing at different rows, the classic UV layout.
//
// The two buffers grow independently; keeping every index inside
// [0, Values().NumElements()) is the writer's responsibility.
type IndexedAttribute[V Value] struct {
	values  Attribute[V]
	indices Attribute[Index]
}

// NewIndexed creates an empty indexed attribute. The value buffer uses
// the Value element kind; the index buffer is a single-channel scalar
// buffer over corners.
func NewIndexed[V Value](usage Usage, numChannels int) (*IndexedAttribute[V], error) {
	values, err := New[V](ElementValue, usage, numChannels)
	if err != nil {
		return nil, err
	}
	indices, err := New[Index](ElementCorner, UsageScalar, 1)
	if err != nil {
		return nil, err
	}
	return &IndexedAttribute[V]{
		values:  *values,
		indices: *indices,
	}, nil
}

// Element returns ElementIndexed.
func (ia *IndexedAttribute[V]) Element() Element {
	return ElementIndexed
}

// Usage returns the value buffer's semantic usage tag.
func (ia *IndexedAttribute[V]) Usage() Usage {
	return ia.values.Usage()
}

// NumChannels returns the value buffer's channel count.
func (ia *IndexedAttribute[V]) NumChannels() int {
	return ia.values.NumChannels()
}

// NumElements returns the index buffer's element count.
func (ia *IndexedAttribute[V]) NumElements() int {
	return ia.indices.NumElements()
}

// Empty reports whether the index buffer holds no elements.
func (ia *IndexedAttribute[V]) Empty() bool {
	return ia.indices.Empty()
}

// Kind returns the value buffer's runtime kind.
func (ia *IndexedAttribute[V]) Kind() ValueKind {
	return KindOf[V]()
}

// Values returns the deduplicated value buffer.
func (ia *IndexedAttribute[V]) Values() *Attribute[V] {
	return &ia.values
}

// Indices returns the per-corner index buffer.
func (ia *IndexedAttribute[V]) Indices() *Attribute[Index] {
	return &ia.indices
}

// AnyValues implements AnyIndexedAttribute.
func (ia *IndexedAttribute[V]) AnyValues() AnyAttribute {
	return &ia.values
}

// IsExternal reports whether either buffer wraps caller-owned memory.
func (ia *IndexedAttribute[V]) IsExternal() bool {
	return ia.values.IsExternal() || ia.indices.IsExternal()
}

// IsReadOnly reports whether either buffer is read-only.
func (ia *IndexedAttribute[V]) IsReadOnly() bool {
	return ia.values.IsReadOnly() || ia.indices.IsReadOnly()
}

// ResizeElements resizes the index buffer. The value buffer is left
// untouched.
func (ia *IndexedAttribute[V]) ResizeElements(n int) error {
	return ia.indices.ResizeElements(n)
}

// ShrinkToFit drops excess capacity on both buffers.
func (ia *IndexedAttribute[V]) ShrinkToFit() error {
	if err := ia.values.ShrinkToFit(); err != nil {
		return err
	}
	return ia.indices.ShrinkToFit()
}

// SetLogger directs policy warnings from both buffers to l.
func (ia *IndexedAttribute[V]) SetLogger(l log.Logger) {
	ia.values.SetLogger(l)
	ia.indices.SetLogger(l)
}

// Clone returns a copy with both buffers cloned under their copy
// policies.
func (ia *IndexedAttribute[V]) Clone() (*IndexedAttribute[V], error) {
	values, err := ia.values.Clone()
	if err != nil {
		return nil, err
	}
	indices, err := ia.indices.Clone()
	if err != nil {
		return nil, err
	}
	return &IndexedAttribute[V]{
		values:  *values,
		indices: *indices,
	}, nil
}

// CloneAny implements AnyAttribute.
func (ia *IndexedAttribute[V]) CloneAny() (AnyAttribute, error) {
	c, err := ia.Clone()
	if err != nil {
		return nil, err
	}
	return c, nil
}
