package attrib

import (
	"fmt"
	"slices"
	"time"

	"github.com/tessera-mesh/tessera-go/pkg/log"
)

// Attribute is a typed per-element data channel. Rows of NumChannels
// values are stored contiguously, either in storage the attribute owns or
// in wrapped caller-owned memory.
type Attribute[V Value] struct {
	element     Element
	usage       Usage
	numChannels int

	// data is the owned backing storage. Nil while external.
	data []V

	// view and constView alias the current backing store. Both are
	// recomputed together after every operation that rebinds data;
	// a stale view is a correctness bug.
	view      []V
	constView []V

	numElements  int
	defaultValue V

	external bool
	readOnly bool
	owner    any

	growthPolicy GrowthPolicy
	shrinkPolicy ShrinkPolicy
	writePolicy  WritePolicy
	copyPolicy   CopyPolicy

	logger log.Logger
}

// New creates an empty attribute with internal storage.
// It fails when the element is not a single kind, or when the usage is
// incompatible with the channel count or the value type.
func New[V Value](element Element, usage Usage, numChannels int) (*Attribute[V], error) {
	if !element.IsSingle() {
		return nil, fmt.Errorf("%w: element must name a single kind, got %s",
			ErrConfiguration, element)
	}
	if err := validateUsage(usage, numChannels, KindOf[V]()); err != nil {
		return nil, err
	}
	return &Attribute[V]{
		element:     element,
		usage:       usage,
		numChannels: numChannels,
		logger:      log.NoopLogger{},
	}, nil
}

// Element returns the associated element kind.
func (a *Attribute[V]) Element() Element {
	return a.element
}

// Usage returns the semantic usage tag.
func (a *Attribute[V]) Usage() Usage {
	return a.usage
}

// NumChannels returns the number of values per element row.
func (a *Attribute[V]) NumChannels() int {
	return a.numChannels
}

// NumElements returns the logical element count.
func (a *Attribute[V]) NumElements() int {
	return a.numElements
}

// Empty reports whether the attribute holds no elements.
func (a *Attribute[V]) Empty() bool {
	return a.numElements == 0
}

// Kind returns the runtime value kind.
func (a *Attribute[V]) Kind() ValueKind {
	return KindOf[V]()
}

// IsExternal reports whether the attribute wraps caller-owned memory.
func (a *Attribute[V]) IsExternal() bool {
	return a.external
}

// IsReadOnly reports whether the backing memory is immutable.
func (a *Attribute[V]) IsReadOnly() bool {
	return a.readOnly
}

// IsManaged reports whether the backing memory's lifetime is tracked,
// either by internal ownership or by a shared ownership token.
func (a *Attribute[V]) IsManaged() bool {
	return !a.external || a.owner != nil
}

// DefaultValue returns the fill value for rows added by resizing.
func (a *Attribute[V]) DefaultValue() V {
	return a.defaultValue
}

// SetDefaultValue sets the fill value for rows added by resizing.
func (a *Attribute[V]) SetDefaultValue(v V) {
	a.defaultValue = v
}

// GrowthPolicy returns the configured growth policy.
func (a *Attribute[V]) GrowthPolicy() GrowthPolicy { return a.growthPolicy }

// SetGrowthPolicy sets the growth policy.
func (a *Attribute[V]) SetGrowthPolicy(p GrowthPolicy) { a.growthPolicy = p }

// ShrinkPolicy returns the configured shrink policy.
func (a *Attribute[V]) ShrinkPolicy() ShrinkPolicy { return a.shrinkPolicy }

// SetShrinkPolicy sets the shrink policy.
func (a *Attribute[V]) SetShrinkPolicy(p ShrinkPolicy) { a.shrinkPolicy = p }

// WritePolicy returns the configured write policy.
func (a *Attribute[V]) WritePolicy() WritePolicy { return a.writePolicy }

// SetWritePolicy sets the write policy.
func (a *Attribute[V]) SetWritePolicy(p WritePolicy) { a.writePolicy = p }

// CopyPolicy returns the configured copy policy.
func (a *Attribute[V]) CopyPolicy() CopyPolicy { return a.copyPolicy }

// SetCopyPolicy sets the copy policy.
func (a *Attribute[V]) SetCopyPolicy(p CopyPolicy) { a.copyPolicy = p }

// SetLogger directs policy promotion warnings to l.
func (a *Attribute[V]) SetLogger(l log.Logger) {
	if l == nil {
		l = log.NoopLogger{}
	}
	a.logger = l
}

// Wrap binds the attribute to caller-owned mutable memory holding
// numElements rows. The buffer's full length is usable capacity. The
// caller keeps ownership and must outlive the attribute. Owned storage
// and any previous ownership token are released.
func (a *Attribute[V]) Wrap(buffer []V, numElements int) error {
	if err := a.checkWrapExtent(len(buffer), numElements); err != nil {
		return err
	}
	a.data = nil
	a.view = buffer
	a.constView = buffer
	a.numElements = numElements
	a.external = true
	a.readOnly = false
	a.owner = nil
	return nil
}

// WrapConst binds the attribute to caller-owned read-only memory.
// Mutable access is gated by the write policy.
func (a *Attribute[V]) WrapConst(buffer []V, numElements int) error {
	if err := a.checkWrapExtent(len(buffer), numElements); err != nil {
		return err
	}
	a.data = nil
	a.view = nil
	a.constView = buffer
	a.numElements = numElements
	a.external = true
	a.readOnly = true
	a.owner = nil
	return nil
}

// WrapShared is Wrap plus retention of the span's ownership token, so
// the backing memory outlives the caller's frame.
func (a *Attribute[V]) WrapShared(span SharedSpan[V], numElements int) error {
	if err := a.Wrap(span.Data(), numElements); err != nil {
		return err
	}
	a.owner = span.Owner()
	return nil
}

// WrapConstShared is WrapConst plus retention of the ownership token.
func (a *Attribute[V]) WrapConstShared(span SharedSpan[V], numElements int) error {
	if err := a.WrapConst(span.Data(), numElements); err != nil {
		return err
	}
	a.owner = span.Owner()
	return nil
}

func (a *Attribute[V]) checkWrapExtent(bufLen, numElements int) error {
	if numElements < 0 {
		return fmt.Errorf("%w: negative element count %d", ErrPrecondition, numElements)
	}
	if numElements*a.numChannels > bufLen {
		return fmt.Errorf("%w: %d elements with %d channels need %d values, buffer holds %d",
			ErrPrecondition, numElements, a.numChannels, numElements*a.numChannels, bufLen)
	}
	return nil
}

// Get returns the value at element i. The attribute must have exactly
// one channel; out-of-range indices panic.
func (a *Attribute[V]) Get(i int) V {
	a.requireSingleChannel()
	return a.constView[i]
}

// GetAt returns channel c of element i.
func (a *Attribute[V]) GetAt(i, c int) V {
	return a.constView[i*a.numChannels+c]
}

// Set stores v at element i, promoting read-only storage first when the
// write policy allows. The attribute must have exactly one channel.
func (a *Attribute[V]) Set(i int, v V) error {
	a.requireSingleChannel()
	if err := a.writeCheck(); err != nil {
		return err
	}
	a.view[i] = v
	return nil
}

// SetAt stores v in channel c of element i.
func (a *Attribute[V]) SetAt(i, c int, v V) error {
	if err := a.writeCheck(); err != nil {
		return err
	}
	a.view[i*a.numChannels+c] = v
	return nil
}

// GetAll returns a read-only view over the logical extent. The slice
// aliases the backing store and is invalidated by resizing mutations.
func (a *Attribute[V]) GetAll() []V {
	return a.constView[:a.numElements*a.numChannels]
}

// RefAll returns a mutable view over the logical extent, promoting
// read-only storage first when the write policy allows.
func (a *Attribute[V]) RefAll() ([]V, error) {
	if err := a.writeCheck(); err != nil {
		return nil, err
	}
	return a.view[:a.numElements*a.numChannels], nil
}

// GetRow returns a read-only view of element i's channels.
func (a *Attribute[V]) GetRow(i int) []V {
	return a.constView[i*a.numChannels : (i+1)*a.numChannels]
}

// RefRow returns a mutable view of element i's channels.
func (a *Attribute[V]) RefRow(i int) ([]V, error) {
	if err := a.writeCheck(); err != nil {
		return nil, err
	}
	return a.view[i*a.numChannels : (i+1)*a.numChannels], nil
}

// GetFirst returns a read-only view of the first n elements.
func (a *Attribute[V]) GetFirst(n int) []V {
	return a.constView[:n*a.numChannels]
}

// RefFirst returns a mutable view of the first n elements.
func (a *Attribute[V]) RefFirst(n int) ([]V, error) {
	if err := a.writeCheck(); err != nil {
		return nil, err
	}
	return a.view[:n*a.numChannels], nil
}

// GetLast returns a read-only view of the last n elements.
func (a *Attribute[V]) GetLast(n int) []V {
	total := a.numElements * a.numChannels
	return a.constView[total-n*a.numChannels : total]
}

// RefLast returns a mutable view of the last n elements.
func (a *Attribute[V]) RefLast(n int) ([]V, error) {
	if err := a.writeCheck(); err != nil {
		return nil, err
	}
	total := a.numElements * a.numChannels
	return a.view[total-n*a.numChannels : total], nil
}

// GetMiddle returns a read-only view of n elements starting at first.
func (a *Attribute[V]) GetMiddle(first, n int) []V {
	return a.constView[first*a.numChannels : (first+n)*a.numChannels]
}

// RefMiddle returns a mutable view of n elements starting at first.
func (a *Attribute[V]) RefMiddle(first, n int) ([]V, error) {
	if err := a.writeCheck(); err != nil {
		return nil, err
	}
	return a.view[first*a.numChannels : (first+n)*a.numChannels], nil
}

// Clone returns a copy. Internal storage is deep-copied. External
// storage follows the copy policy: promote to an internal copy, alias
// the same memory, or fail.
func (a *Attribute[V]) Clone() (*Attribute[V], error) {
	c := *a
	if !a.external {
		c.data = slices.Clone(a.data)
		c.updateViews()
		return &c, nil
	}
	switch a.copyPolicy {
	case CopyIfExternal:
		c.createInternalCopy()
		return &c, nil
	case CopyKeepExternalPtr:
		return &c, nil
	case CopyErrorIfExternal:
		return nil, fmt.Errorf("%w: copying an attribute bound to external memory",
			ErrPolicyViolation)
	default:
		return nil, fmt.Errorf("%w: unknown copy policy %d", ErrPolicyViolation, a.copyPolicy)
	}
}

// CloneAny implements AnyAttribute.
func (a *Attribute[V]) CloneAny() (AnyAttribute, error) {
	c, err := a.Clone()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// requireSingleChannel panics on misuse of the single-index accessors.
// Calling them on multi-channel data is a programmer error, not a
// recoverable condition.
func (a *Attribute[V]) requireSingleChannel() {
	if a.numChannels != 1 {
		panic(fmt.Sprintf("attrib: single-channel accessor on attribute with %d channels",
			a.numChannels))
	}
}

func (a *Attribute[V]) warn(op log.PolicyOp, policy string) {
	a.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryPolicy,
		Policy: &log.PolicyEvent{
			Op:       op,
			Policy:   policy,
			Kind:     a.Kind().String(),
			Element:  a.element.String(),
			Usage:    a.usage.String(),
			Elements: a.numElements,
		},
	})
}
