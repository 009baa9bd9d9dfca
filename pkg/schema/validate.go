package schema

import (
	"fmt"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
)

// Severity is the severity level of a validation issue.
type Severity int

const (
	// SeverityError indicates the mesh does not satisfy the manifest.
	SeverityError Severity = iota
	// SeverityWarning indicates an issue that does not fail validation.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Violation is a single validation finding.
type Violation struct {
	// Severity is the severity level of this violation.
	Severity Severity
	// Attribute names the attribute involved.
	Attribute string
	// Message describes what went wrong.
	Message string
	// Line is the manifest line of the entry involved, 0 if none.
	Line int
}

func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s: %s", v.Line, v.Severity, v.Attribute, v.Message)
	}
	return fmt.Sprintf("%s: %s: %s", v.Severity, v.Attribute, v.Message)
}

// HasErrors reports whether any violation has severity Error.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the mesh against the manifest. Required entries must
// be present; declared element, usage, channel and kind fields must
// match; indexed attributes must keep every index inside their value
// rows (first offender reported per attribute). With Strict set,
// non-reserved mesh attributes the manifest does not declare are
// flagged as warnings. A nil or empty return means the mesh conforms.
func (mf *Manifest) Validate(m *mesh.Mesh) []Violation {
	var out []Violation

	for _, e := range mf.Entries {
		meta, err := m.AnyAttribute(e.Name)
		if err != nil {
			if !e.Optional {
				out = append(out, Violation{
					Severity:  SeverityError,
					Attribute: e.Name,
					Message:   "required attribute is missing",
					Line:      e.Line,
				})
			}
			continue
		}

		if e.Element != 0 && meta.Element() != e.Element {
			out = append(out, Violation{
				Severity:  SeverityError,
				Attribute: e.Name,
				Message:   fmt.Sprintf("element is %s, manifest declares %s", meta.Element(), e.Element),
				Line:      e.Line,
			})
		}
		if e.HasUsage && meta.Usage() != e.Usage {
			out = append(out, Violation{
				Severity:  SeverityError,
				Attribute: e.Name,
				Message:   fmt.Sprintf("usage is %s, manifest declares %s", meta.Usage(), e.Usage),
				Line:      e.Line,
			})
		}
		if e.NumChannels > 0 && meta.NumChannels() != e.NumChannels {
			out = append(out, Violation{
				Severity:  SeverityError,
				Attribute: e.Name,
				Message:   fmt.Sprintf("has %d channels, manifest declares %d", meta.NumChannels(), e.NumChannels),
				Line:      e.Line,
			})
		}
		if e.HasKind && meta.Kind() != e.Kind {
			out = append(out, Violation{
				Severity:  SeverityError,
				Attribute: e.Name,
				Message:   fmt.Sprintf("value kind is %s, manifest declares %s", meta.Kind(), e.Kind),
				Line:      e.Line,
			})
		}

		if meta.Element() == attrib.ElementIndexed {
			out = append(out, checkIndexed(m, e, meta.Kind())...)
		}
	}

	if mf.Strict {
		declared := make(map[string]struct{}, len(mf.Entries))
		for _, e := range mf.Entries {
			declared[e.Name] = struct{}{}
		}
		for _, name := range m.AttributeNames() {
			if mesh.IsReservedName(name) {
				continue
			}
			if _, ok := declared[name]; !ok {
				out = append(out, Violation{
					Severity:  SeverityWarning,
					Attribute: name,
					Message:   "attribute is not declared in the manifest",
				})
			}
		}
	}

	return out
}

// checkIndexed bounds-checks the index buffer of an indexed attribute
// against its value rows.
func checkIndexed(m *mesh.Mesh, e Entry, kind attrib.ValueKind) []Violation {
	indices, numValues, err := indexedBuffers(m, e.Name, kind)
	if err != nil {
		return []Violation{{
			Severity:  SeverityError,
			Attribute: e.Name,
			Message:   fmt.Sprintf("cannot read indexed attribute: %v", err),
			Line:      e.Line,
		}}
	}
	for i, idx := range indices {
		if int(idx) >= numValues {
			return []Violation{{
				Severity:  SeverityError,
				Attribute: e.Name,
				Message:   fmt.Sprintf("index %d at corner %d is out of range for %d value rows", idx, i, numValues),
				Line:      e.Line,
			}}
		}
	}
	return nil
}

// indexedBuffers dispatches on the stored value kind to reach the typed
// index and value buffers.
func indexedBuffers(m *mesh.Mesh, name string, kind attrib.ValueKind) ([]attrib.Index, int, error) {
	switch kind {
	case attrib.KindInt8:
		return indexedBuffersAs[int8](m, name)
	case attrib.KindInt16:
		return indexedBuffersAs[int16](m, name)
	case attrib.KindInt32:
		return indexedBuffersAs[int32](m, name)
	case attrib.KindInt64:
		return indexedBuffersAs[int64](m, name)
	case attrib.KindUint8:
		return indexedBuffersAs[uint8](m, name)
	case attrib.KindUint16:
		return indexedBuffersAs[uint16](m, name)
	case attrib.KindUint32:
		return indexedBuffersAs[uint32](m, name)
	case attrib.KindUint64:
		return indexedBuffersAs[uint64](m, name)
	case attrib.KindFloat32:
		return indexedBuffersAs[float32](m, name)
	case attrib.KindFloat64:
		return indexedBuffersAs[float64](m, name)
	default:
		return nil, 0, fmt.Errorf("unhandled value kind %v", kind)
	}
}

func indexedBuffersAs[V attrib.Value](m *mesh.Mesh, name string) ([]attrib.Index, int, error) {
	ia, err := mesh.GetIndexedAttribute[V](m, name)
	if err != nil {
		return nil, 0, err
	}
	return ia.Indices().GetAll(), ia.Values().NumElements(), nil
}
