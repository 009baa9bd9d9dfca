// Package mesh implements a polymorphic surface mesh with named,
// policy-driven attributes.
//
// A Mesh stores vertices, facets of uniform or mixed size, optional
// edge connectivity, and any number of named attribute channels.
// Topology itself lives in reserved "$"-prefixed attributes, so one
// storage and policy model covers everything from positions to custom
// per-corner data.
//
// # Attributes
//
// Attributes are created through package-level generic functions and
// addressed by name or by id:
//
//	uvID, err := mesh.CreateAttribute[float32](m, "uv",
//	    attrib.ElementIndexed, attrib.UsageUV, 2)
//
//	normals, err := mesh.RefAttribute[float64](m, "normal")
//
// GetAttribute returns a handle for reading; RefAttribute declares
// write intent and forks storage shared through DuplicateAttribute
// before returning. Duplication is cheap: both entries alias one
// buffer until the first write through either one.
//
// # Iteration
//
// The ForEach family scans all attributes of one value type whose
// element kind intersects a bitmask, sequentially or on a worker pool:
//
//	err := mesh.ParForEachAttributeWrite(m, mesh.Not(attrib.ElementIndexed),
//	    mesh.Visitor[float64]{Plain: func(a *attrib.Attribute[float64]) error {
//	        ...
//	    }})
//
// Write scans fork shared storage per matched entry at most once, so
// parallel visitors never observe another entry's mutations.
//
// # Topology
//
// Facets may be triangles, quads, or arbitrary polygons. A mesh stays
// regular while all facets share one size and switches to hybrid
// storage transparently when sizes mix; CompressIfRegular switches
// back. InitializeEdges derives unique edges and corner chains for
// adjacency queries.
package mesh
