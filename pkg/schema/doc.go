// Package schema provides parsing and validation for mesh attribute
// manifests.
//
// A manifest is a YAML file declaring the attribute complement a mesh
// is expected to carry. Asset pipelines validate meshes against a
// manifest before handing them to downstream consumers.
//
// # Manifest Format
//
//	name: character
//	strict: true
//	attributes:
//	  - name: uv
//	    element: indexed
//	    usage: uv
//	    channels: 2
//	    kind: float64
//	  - name: weight
//	    element: vertex
//	    kind: float32
//	    optional: true
//
// Element names are vertex, facet, edge, corner, value and indexed.
// Usage names follow the attrib usage set (scalar, vector, normal,
// color, uv, vertexindex, ...). Kind names are the Go scalar type
// names. Every field except name may be omitted; omitted fields are
// not checked.
//
// # Validation
//
// [Manifest.Validate] checks:
//   - required attributes are present
//   - declared element, usage, channel count and value kind match
//   - indexed attributes keep every index inside their value rows
//   - with strict set, mesh attributes the manifest does not declare
//     are flagged as warnings
//
// Violations carry the manifest line of the entry involved.
package schema
