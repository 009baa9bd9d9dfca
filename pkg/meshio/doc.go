// Package meshio serializes meshes to a versioned binary snapshot
// format, conventionally stored in .tmesh files.
//
// A snapshot is a CBOR envelope holding a format version, a BLAKE2b-256
// digest and the payload document. The payload records topology as flat
// buffers plus one record per non-reserved attribute; reserved
// attributes are rebuilt from topology on decode, including edge
// connectivity, whose numbering is deterministic. Attributes wrapping
// external buffers cannot be serialized and are recorded by name
// instead.
//
// Encode and Decode work on streams; EncodeFile and DecodeFile wrap
// them for paths. Describe reports a snapshot's contents without
// rebuilding the mesh.
package meshio
