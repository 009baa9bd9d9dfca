package attrib

// SharedSpan couples a caller-owned slice with an opaque token that keeps
// the backing memory alive. Wrapping a SharedSpan instead of a bare slice
// ties the memory's lifetime to the token rather than to the caller's
// stack frame.
type SharedSpan[V Value] struct {
	data  []V
	owner any
}

// NewSharedSpan binds data to an ownership token. The token is retained
// by any attribute wrapping the span and released when the attribute
// promotes to internal storage or rebinds.
func NewSharedSpan[V Value](data []V, owner any) SharedSpan[V] {
	return SharedSpan[V]{data: data, owner: owner}
}

// Data returns the wrapped slice.
func (s SharedSpan[V]) Data() []V { return s.data }

// Owner returns the ownership token.
func (s SharedSpan[V]) Owner() any { return s.owner }
