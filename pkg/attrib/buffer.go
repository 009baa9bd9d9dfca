package attrib

import (
	"fmt"
	"slices"

	"github.com/tessera-mesh/tessera-go/pkg/log"
)

// This file holds the storage machinery behind Attribute: view upkeep,
// the growth and write policy gates, and every operation that changes
// the logical extent or the backing store.

// Capacity returns the total value capacity of the backing store.
func (a *Attribute[V]) Capacity() int {
	if a.external {
		return len(a.constView)
	}
	return cap(a.data)
}

// Clear logically empties the attribute. Internal storage is truncated
// in place keeping its capacity; external storage keeps its backing
// memory and drops the logical extent to zero. The growth policy applies
// because the logical extent changes.
func (a *Attribute[V]) Clear() error {
	if err := a.growthCheck(0); err != nil {
		return err
	}
	if a.external {
		a.numElements = 0
		return nil
	}
	a.data = a.data[:0]
	a.updateViews()
	return nil
}

// Reserve grows capacity to hold at least numElements rows without
// changing the logical extent. On external storage only the growth
// check runs.
func (a *Attribute[V]) Reserve(numElements int) error {
	if numElements < 0 {
		return fmt.Errorf("%w: negative element count %d", ErrPrecondition, numElements)
	}
	numValues := numElements * a.numChannels
	if err := a.growthCheck(numValues); err != nil {
		return err
	}
	if a.external {
		return nil
	}
	if numValues > cap(a.data) {
		a.data = slices.Grow(a.data, numValues-len(a.data))
		a.updateViews()
	}
	return nil
}

// ResizeElements sets the logical element count to n, filling any new
// rows with the default value. Shrinking an external buffer narrows the
// logical extent without touching the backing memory.
func (a *Attribute[V]) ResizeElements(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative element count %d", ErrPrecondition, n)
	}
	if err := a.growthCheck(n * a.numChannels); err != nil {
		return err
	}
	if !a.external {
		a.resizeValues(n * a.numChannels)
		return nil
	}
	// Still external, so the growth policy allowed resizing in place.
	if n > a.numElements {
		if err := a.writeCheck(); err != nil {
			return err
		}
		if !a.external {
			// The write check promoted to internal storage.
			a.resizeValues(n * a.numChannels)
			return nil
		}
		fill(a.view[a.numElements*a.numChannels:n*a.numChannels], a.defaultValue)
	}
	a.numElements = n
	return nil
}

// InsertElements appends n default-filled rows.
func (a *Attribute[V]) InsertElements(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative element count %d", ErrPrecondition, n)
	}
	return a.ResizeElements(a.numElements + n)
}

// InsertValues appends rows given as a flat value slice whose length
// must be a multiple of the channel count.
func (a *Attribute[V]) InsertValues(values []V) error {
	if len(values)%a.numChannels != 0 {
		return fmt.Errorf("%w: %d values is not a multiple of %d channels",
			ErrPrecondition, len(values), a.numChannels)
	}
	if len(values) == 0 {
		return nil
	}
	offset := a.numElements * a.numChannels
	if err := a.growthCheck(offset + len(values)); err != nil {
		return err
	}
	if !a.external {
		a.data = append(a.data, values...)
		a.updateViews()
		return nil
	}
	if err := a.writeCheck(); err != nil {
		return err
	}
	if !a.external {
		// The write check promoted to internal storage.
		a.data = append(a.data, values...)
		a.updateViews()
		return nil
	}
	copy(a.view[offset:offset+len(values)], values)
	a.numElements += len(values) / a.numChannels
	return nil
}

// ShrinkToFit drops excess capacity. Internal storage reallocates only
// when capacity exceeds the used extent, so a second call is a no-op.
// External storage whose logical extent fills the wrapped span is left
// alone; otherwise the shrink policy decides.
func (a *Attribute[V]) ShrinkToFit() error {
	if a.external {
		used := a.numElements * a.numChannels
		if used == len(a.constView) {
			return nil
		}
		switch a.shrinkPolicy {
		case ShrinkErrorIfExternal:
			return fmt.Errorf("%w: shrinking an attribute bound to external memory",
				ErrPolicyViolation)
		case ShrinkIgnoreIfExternal:
			return nil
		case ShrinkWarnAndCopy:
			a.warn(log.PolicyOpShrink, a.shrinkPolicy.String())
			fallthrough
		case ShrinkSilentCopy:
			// Narrow the wrapped span first so the promoted copy keeps
			// no spare capacity.
			a.constView = a.constView[:used]
			if a.view != nil {
				a.view = a.view[:used]
			}
			a.createInternalCopy()
			return nil
		default:
			return fmt.Errorf("%w: unknown shrink policy %d", ErrPolicyViolation, a.shrinkPolicy)
		}
	}
	if cap(a.data) > len(a.data) {
		data := make([]V, len(a.data))
		copy(data, a.data)
		a.data = data
		a.updateViews()
	}
	return nil
}

// growthCheck gates every operation that changes the logical extent of
// an external buffer. newNumValues is the requested total value count;
// a request matching the current extent passes without dispatch.
func (a *Attribute[V]) growthCheck(newNumValues int) error {
	if !a.external {
		return nil
	}
	if newNumValues == a.numElements*a.numChannels {
		return nil
	}
	switch a.growthPolicy {
	case GrowthErrorIfExternal:
		return fmt.Errorf("%w: resizing an attribute bound to external memory",
			ErrPolicyViolation)
	case GrowthAllowWithinCapacity:
		if newNumValues > len(a.constView) {
			return &CapacityError{Requested: newNumValues, Capacity: len(a.constView)}
		}
		return nil
	case GrowthWarnAndCopy:
		a.warn(log.PolicyOpGrowth, a.growthPolicy.String())
		fallthrough
	case GrowthSilentCopy:
		a.createInternalCopy()
		return nil
	default:
		return fmt.Errorf("%w: unknown growth policy %d", ErrPolicyViolation, a.growthPolicy)
	}
}

// writeCheck gates mutable access to read-only storage.
func (a *Attribute[V]) writeCheck() error {
	if !a.readOnly {
		return nil
	}
	switch a.writePolicy {
	case WriteErrorIfReadOnly:
		return fmt.Errorf("%w: writing to a read-only attribute", ErrPolicyViolation)
	case WriteWarnAndCopy:
		a.warn(log.PolicyOpWrite, a.writePolicy.String())
		fallthrough
	case WriteSilentCopy:
		a.createInternalCopy()
		return nil
	default:
		return fmt.Errorf("%w: unknown write policy %d", ErrPolicyViolation, a.writePolicy)
	}
}

// createInternalCopy promotes external storage to an owned deep copy.
// The copy reserves the full wrapped capacity but preserves only the
// used extent. Flags and the ownership token are cleared.
func (a *Attribute[V]) createInternalCopy() {
	used := a.numElements * a.numChannels
	data := make([]V, used, len(a.constView))
	copy(data, a.constView[:used])
	a.data = data
	a.external = false
	a.readOnly = false
	a.owner = nil
	a.updateViews()
}

// resizeValues resizes owned storage to total values, default-filling
// any newly exposed region. Rows dropped by an earlier shrink are
// refilled when the storage grows back over them.
func (a *Attribute[V]) resizeValues(total int) {
	old := len(a.data)
	if total <= old {
		a.data = a.data[:total]
	} else {
		a.data = slices.Grow(a.data, total-old)[:total]
		fill(a.data[old:total], a.defaultValue)
	}
	a.updateViews()
}

// updateViews recomputes both views from the owned storage. Every
// operation that rebinds or reallocates data must call this before
// returning.
func (a *Attribute[V]) updateViews() {
	a.view = a.data
	a.constView = a.data
	a.numElements = len(a.data) / a.numChannels
}

func fill[V Value](s []V, v V) {
	for i := range s {
		s[i] = v
	}
}
