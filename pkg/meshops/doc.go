// Package meshops provides algorithms over mesh topology and
// attributes.
//
// Combine concatenates a list of meshes into one, carrying over every
// attribute that all inputs agree on and rebasing index-valued data
// onto the combined element numbering.
//
// ChainEdges and its helpers group undirected edges into maximal open
// chains and closed loops, the usual first step for boundary analysis:
//
//	loops, err := meshops.BoundaryLoops(m)
//
// All algorithms go through the public attribute accessors, so
// copy-on-write aliases and external buffers behave exactly as they do
// for direct callers.
package meshops
