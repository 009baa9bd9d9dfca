package attrib

import (
	"fmt"

	"github.com/tessera-mesh/tessera-go/pkg/log"
)

// AnyAttribute is the type-erased view of an attribute held by a mesh
// registry. Typed access goes through As and AsIndexed.
type AnyAttribute interface {
	// Element returns the associated element kind.
	Element() Element

	// Usage returns the semantic usage tag.
	Usage() Usage

	// NumChannels returns the number of values per element row.
	NumChannels() int

	// NumElements returns the logical element count.
	NumElements() int

	// Kind returns the runtime value kind.
	Kind() ValueKind

	// Empty reports whether the attribute holds no elements.
	Empty() bool

	// IsExternal reports whether the attribute wraps caller-owned
	// memory.
	IsExternal() bool

	// IsReadOnly reports whether the backing memory is immutable.
	IsReadOnly() bool

	// ResizeElements sets the logical element count.
	ResizeElements(n int) error

	// ShrinkToFit drops excess capacity.
	ShrinkToFit() error

	// SetLogger directs policy warnings to l.
	SetLogger(l log.Logger)

	// CloneAny returns a copy behind the erased interface.
	CloneAny() (AnyAttribute, error)
}

// AnyIndexedAttribute is the type-erased view of an indexed attribute.
type AnyIndexedAttribute interface {
	AnyAttribute

	// AnyValues returns the type-erased value buffer.
	AnyValues() AnyAttribute

	// Indices returns the per-corner index buffer.
	Indices() *Attribute[Index]
}

// Compile-time interface satisfaction checks.
var (
	_ AnyAttribute        = (*Attribute[float64])(nil)
	_ AnyIndexedAttribute = (*IndexedAttribute[float64])(nil)
)

// As downcasts a type-erased attribute to its concrete plain type.
func As[V Value](a AnyAttribute) (*Attribute[V], error) {
	t, ok := a.(*Attribute[V])
	if !ok {
		if a.Element() == ElementIndexed {
			return nil, fmt.Errorf("%w: attribute is indexed", ErrElementKindMismatch)
		}
		return nil, fmt.Errorf("%w: stored kind is %s, not %s",
			ErrTypeMismatch, a.Kind(), KindOf[V]())
	}
	return t, nil
}

// AsIndexed downcasts a type-erased attribute to its concrete indexed
// type.
func AsIndexed[V Value](a AnyAttribute) (*IndexedAttribute[V], error) {
	t, ok := a.(*IndexedAttribute[V])
	if !ok {
		if a.Element() != ElementIndexed {
			return nil, fmt.Errorf("%w: attribute is not indexed", ErrElementKindMismatch)
		}
		return nil, fmt.Errorf("%w: stored kind is %s, not %s",
			ErrTypeMismatch, a.Kind(), KindOf[V]())
	}
	return t, nil
}
