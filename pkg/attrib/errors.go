package attrib

import (
	"errors"
	"fmt"
)

// Attribute errors.
var (
	// ErrConfiguration indicates an invalid element/usage/channel
	// combination at construction.
	ErrConfiguration = errors.New("invalid attribute configuration")

	// ErrTypeMismatch indicates a typed accessor whose value type does
	// not match the stored type.
	ErrTypeMismatch = errors.New("attribute value type mismatch")

	// ErrElementKindMismatch indicates an indexed accessor used on a
	// plain attribute or vice versa.
	ErrElementKindMismatch = errors.New("attribute element kind mismatch")

	// ErrPolicyViolation indicates an operation rejected by an
	// error-variant policy.
	ErrPolicyViolation = errors.New("attribute policy violation")

	// ErrCapacity indicates growth beyond the wrapped span's capacity
	// under the allow-within-capacity policy.
	ErrCapacity = errors.New("attribute capacity exceeded")

	// ErrPrecondition indicates arguments that violate an operation's
	// contract.
	ErrPrecondition = errors.New("attribute precondition violated")
)

// CapacityError reports a growth request beyond the fixed capacity of an
// external buffer. It unwraps to ErrCapacity.
type CapacityError struct {
	// Requested is the requested total value count.
	Requested int

	// Capacity is the wrapped span's value capacity.
	Capacity int
}

// Error returns the error message.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("attribute capacity exceeded: requested %d values, capacity %d",
		e.Requested, e.Capacity)
}

// Unwrap returns ErrCapacity.
func (e *CapacityError) Unwrap() error { return ErrCapacity }
