package attrib

// GrowthPolicy controls operations that change the logical extent of an
// attribute bound to external memory. The zero value promotes the buffer
// to an internal copy without logging.
type GrowthPolicy uint8

const (
	// GrowthSilentCopy promotes the external buffer to an internal copy.
	GrowthSilentCopy GrowthPolicy = iota

	// GrowthErrorIfExternal rejects the operation.
	GrowthErrorIfExternal

	// GrowthAllowWithinCapacity resizes in place up to the wrapped
	// span's capacity and rejects anything larger.
	GrowthAllowWithinCapacity

	// GrowthWarnAndCopy logs the promotion, then copies like
	// GrowthSilentCopy.
	GrowthWarnAndCopy
)

// String returns the policy name.
func (p GrowthPolicy) String() string {
	switch p {
	case GrowthSilentCopy:
		return "silent_copy"
	case GrowthErrorIfExternal:
		return "error_if_external"
	case GrowthAllowWithinCapacity:
		return "allow_within_capacity"
	case GrowthWarnAndCopy:
		return "warn_and_copy"
	default:
		return "unknown"
	}
}

// ShrinkPolicy controls ShrinkToFit on an attribute bound to external
// memory whose logical extent is smaller than the wrapped span.
type ShrinkPolicy uint8

const (
	// ShrinkSilentCopy promotes to an internal copy of exactly the
	// logical extent, discarding the wrapped span's spare capacity.
	ShrinkSilentCopy ShrinkPolicy = iota

	// ShrinkErrorIfExternal rejects the operation.
	ShrinkErrorIfExternal

	// ShrinkIgnoreIfExternal leaves the buffer untouched.
	ShrinkIgnoreIfExternal

	// ShrinkWarnAndCopy logs the promotion, then copies like
	// ShrinkSilentCopy.
	ShrinkWarnAndCopy
)

// String returns the policy name.
func (p ShrinkPolicy) String() string {
	switch p {
	case ShrinkSilentCopy:
		return "silent_copy"
	case ShrinkErrorIfExternal:
		return "error_if_external"
	case ShrinkIgnoreIfExternal:
		return "ignore_if_external"
	case ShrinkWarnAndCopy:
		return "warn_and_copy"
	default:
		return "unknown"
	}
}

// WritePolicy controls mutable access to read-only storage.
type WritePolicy uint8

const (
	// WriteSilentCopy promotes to a writable internal copy.
	WriteSilentCopy WritePolicy = iota

	// WriteErrorIfReadOnly rejects the access.
	WriteErrorIfReadOnly

	// WriteWarnAndCopy logs the promotion, then copies like
	// WriteSilentCopy.
	WriteWarnAndCopy
)

// String returns the policy name.
func (p WritePolicy) String() string {
	switch p {
	case WriteSilentCopy:
		return "silent_copy"
	case WriteErrorIfReadOnly:
		return "error_if_read_only"
	case WriteWarnAndCopy:
		return "warn_and_copy"
	default:
		return "unknown"
	}
}

// CopyPolicy controls Clone on an attribute bound to external memory.
type CopyPolicy uint8

const (
	// CopyIfExternal deep-copies into internal storage.
	CopyIfExternal CopyPolicy = iota

	// CopyKeepExternalPtr aliases the same external memory. The caller
	// owns the aliasing consequences.
	CopyKeepExternalPtr

	// CopyErrorIfExternal rejects the copy.
	CopyErrorIfExternal
)

// String returns the policy name.
func (p CopyPolicy) String() string {
	switch p {
	case CopyIfExternal:
		return "copy_if_external"
	case CopyKeepExternalPtr:
		return "keep_external_ptr"
	case CopyErrorIfExternal:
		return "error_if_external"
	default:
		return "unknown"
	}
}
