package log

import "time"

// Event represents a mesh library log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// MeshID identifies the mesh instance the event belongs to (UUID).
	MeshID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Type-specific payload (one of these will be set).
	Policy   *PolicyEvent    `cbor:"10,keyasint,omitempty"` // Buffer policy fallbacks
	Registry *RegistryEvent  `cbor:"11,keyasint,omitempty"` // Attribute registry changes
	Scan     *ScanEvent      `cbor:"12,keyasint,omitempty"` // Attribute iteration runs
	Error    *ErrorEventData `cbor:"13,keyasint,omitempty"` // Errors surfaced to callers
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPolicy indicates a buffer policy fallback (warn-and-copy).
	CategoryPolicy Category = 0
	// CategoryRegistry indicates an attribute registry change.
	CategoryRegistry Category = 1
	// CategoryScan indicates an attribute iteration run.
	CategoryScan Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPolicy:
		return "POLICY"
	case CategoryRegistry:
		return "REGISTRY"
	case CategoryScan:
		return "SCAN"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PolicyOp identifies the buffer operation that tripped a policy.
type PolicyOp uint8

const (
	// PolicyOpGrowth indicates a resize of an external buffer.
	PolicyOpGrowth PolicyOp = 0
	// PolicyOpShrink indicates a shrink-to-fit of an external buffer.
	PolicyOpShrink PolicyOp = 1
	// PolicyOpWrite indicates write access to a read-only buffer.
	PolicyOpWrite PolicyOp = 2
	// PolicyOpCopy indicates a copy of an external buffer.
	PolicyOpCopy PolicyOp = 3
)

// String returns the policy operation name.
func (p PolicyOp) String() string {
	switch p {
	case PolicyOpGrowth:
		return "GROWTH"
	case PolicyOpShrink:
		return "SHRINK"
	case PolicyOpWrite:
		return "WRITE"
	case PolicyOpCopy:
		return "COPY"
	default:
		return "UNKNOWN"
	}
}

// PolicyEvent captures a policy-gated fallback on an attribute buffer,
// typically a warn-and-copy promotion from external to internal storage.
type PolicyEvent struct {
	// Op is the buffer operation that tripped the policy.
	Op PolicyOp `cbor:"1,keyasint"`

	// Policy is the configured policy name (e.g. "warn_and_copy").
	Policy string `cbor:"2,keyasint"`

	// Kind is the attribute's value type name.
	Kind string `cbor:"3,keyasint,omitempty"`

	// Element is the attribute's element kind name.
	Element string `cbor:"4,keyasint,omitempty"`

	// Usage is the attribute's usage name.
	Usage string `cbor:"5,keyasint,omitempty"`

	// Elements is the attribute's logical element count at the time.
	Elements int `cbor:"6,keyasint,omitempty"`
}

// RegistryOp identifies an attribute registry operation.
type RegistryOp uint8

const (
	// RegistryOpCreate indicates a new attribute entry.
	RegistryOpCreate RegistryOp = 0
	// RegistryOpDelete indicates a removed attribute entry.
	RegistryOpDelete RegistryOp = 1
	// RegistryOpRename indicates a renamed attribute entry.
	RegistryOpRename RegistryOp = 2
	// RegistryOpDuplicate indicates a storage-sharing duplicate entry.
	RegistryOpDuplicate RegistryOp = 3
	// RegistryOpFork indicates a copy-on-write fork of a shared entry.
	RegistryOpFork RegistryOp = 4
)

// String returns the registry operation name.
func (r RegistryOp) String() string {
	switch r {
	case RegistryOpCreate:
		return "CREATE"
	case RegistryOpDelete:
		return "DELETE"
	case RegistryOpRename:
		return "RENAME"
	case RegistryOpDuplicate:
		return "DUPLICATE"
	case RegistryOpFork:
		return "FORK"
	default:
		return "UNKNOWN"
	}
}

// RegistryEvent captures a change to a mesh's attribute registry.
type RegistryEvent struct {
	// Op is the registry operation.
	Op RegistryOp `cbor:"1,keyasint"`

	// Name is the attribute name the operation applies to.
	Name string `cbor:"2,keyasint"`

	// NewName is the target name for rename and duplicate operations.
	NewName string `cbor:"3,keyasint,omitempty"`

	// ID is the attribute's registry identifier.
	ID uint32 `cbor:"4,keyasint"`

	// Element is the attribute's element kind name.
	Element string `cbor:"5,keyasint,omitempty"`

	// Kind is the attribute's value type name.
	Kind string `cbor:"6,keyasint,omitempty"`
}

// ScanMode distinguishes sequential from parallel iteration.
type ScanMode uint8

const (
	// ScanSequential indicates iteration on the calling goroutine.
	ScanSequential ScanMode = 0
	// ScanParallel indicates fan-out iteration across a worker pool.
	ScanParallel ScanMode = 1
)

// String returns the scan mode name.
func (m ScanMode) String() string {
	switch m {
	case ScanSequential:
		return "SEQ"
	case ScanParallel:
		return "PAR"
	default:
		return "UNKNOWN"
	}
}

// ScanAccess distinguishes read-only from mutating iteration.
type ScanAccess uint8

const (
	// ScanRead indicates read-only access.
	ScanRead ScanAccess = 0
	// ScanWrite indicates mutating access with copy-on-write promotion.
	ScanWrite ScanAccess = 1
)

// String returns the scan access name.
func (a ScanAccess) String() string {
	switch a {
	case ScanRead:
		return "READ"
	case ScanWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// ScanEvent captures one attribute iteration run.
type ScanEvent struct {
	// Mode distinguishes sequential from parallel scheduling.
	Mode ScanMode `cbor:"1,keyasint"`

	// Access distinguishes read from write iteration.
	Access ScanAccess `cbor:"2,keyasint"`

	// Mask is the element bitmask the scan filtered on.
	Mask uint8 `cbor:"3,keyasint"`

	// Visited is the number of attributes the visitor was invoked on.
	Visited int `cbor:"4,keyasint"`

	// Duration is the wall-clock time of the scan in nanoseconds.
	Duration time.Duration `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures errors surfaced to callers.
type ErrorEventData struct {
	// Op names the operation that failed.
	Op string `cbor:"1,keyasint,omitempty"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Attribute is the attribute name involved (if any).
	Attribute string `cbor:"3,keyasint,omitempty"`
}
