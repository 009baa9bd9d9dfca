// Package attrib implements typed per-element mesh attributes with
// ownership-flexible storage.
//
// An Attribute stores rows of NumChannels scalar values, one row per
// mesh element. Storage is either owned by the attribute or wrapped over
// caller-owned memory (external), optionally read-only. Four policies
// govern operations that would otherwise violate an external buffer's
// fixed nature:
//
//   - GrowthPolicy gates changes to the logical extent
//   - ShrinkPolicy gates ShrinkToFit
//   - WritePolicy gates mutable access to read-only memory
//   - CopyPolicy gates Clone
//
// Every policy defaults to silently promoting the buffer to an internal
// copy, so code written against owned attributes keeps working when
// handed wrapped ones. The warn variants emit a log.PolicyEvent before
// copying.
//
// IndexedAttribute couples a deduplicated value buffer with a per-corner
// index buffer, the classic UV-seam layout.
//
// AnyAttribute erases the value type so heterogeneous attributes can
// share one registry; As and AsIndexed recover the concrete type.
package attrib
