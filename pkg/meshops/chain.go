package meshops

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
)

// ErrNoEdges is returned when an operation needs edge connectivity and
// the mesh has none.
var ErrNoEdges = errors.New("meshops: mesh has no edge connectivity")

// Chains is the result of chaining undirected edges: maximal open
// chains and closed loops, each expressed as a vertex path. An open
// chain lists one vertex more than it has edges; a loop does not repeat
// its first vertex.
type Chains struct {
	Chains [][]attrib.Index
	Loops  [][]attrib.Index
}

// ChainEdges resolves the given edge ids on m and chains them into
// open chains and closed loops. A typical input is the boundary edge
// set. Vertices incident to more than two of the given edges stop
// chain growth, so chains through such junctions stay simple.
func ChainEdges(m *mesh.Mesh, edges []attrib.Index) (Chains, error) {
	if !m.HasEdges() {
		return Chains{}, ErrNoEdges
	}
	pairs := make([][2]attrib.Index, len(edges))
	for i, e := range edges {
		if int(e) >= m.NumEdges() {
			return Chains{}, fmt.Errorf("%w: edge %d out of range [0, %d)", attrib.ErrPrecondition, e, m.NumEdges())
		}
		pairs[i] = m.EdgeVertices(e)
	}
	return ChainVertexPairs(pairs), nil
}

// BoundaryEdges returns the ids of edges bordered by exactly one
// corner, in ascending order.
func BoundaryEdges(m *mesh.Mesh) ([]attrib.Index, error) {
	if !m.HasEdges() {
		return nil, ErrNoEdges
	}
	var out []attrib.Index
	for e := 0; e < m.NumEdges(); e++ {
		if m.IsBoundaryEdge(attrib.Index(e)) {
			out = append(out, attrib.Index(e))
		}
	}
	return out, nil
}

// BoundaryLoops chains the boundary edges of m. A closed manifold
// boundary comes back as loops only; open fans and non-manifold spots
// contribute chains.
func BoundaryLoops(m *mesh.Mesh) (Chains, error) {
	edges, err := BoundaryEdges(m)
	if err != nil {
		return Chains{}, err
	}
	return ChainEdges(m, edges)
}

// ChainVertexPairs chains raw undirected vertex pairs. Growth follows
// vertices of valence two and stops at endpoints and junctions; each
// pair is consumed exactly once. Results are deterministic: seeds are
// taken in pair order and a loop keeps its seed pair's orientation.
func ChainVertexPairs(pairs [][2]attrib.Index) Chains {
	adjacent := make(map[attrib.Index][]int, 2*len(pairs))
	for i, p := range pairs {
		adjacent[p[0]] = append(adjacent[p[0]], i)
		adjacent[p[1]] = append(adjacent[p[1]], i)
	}
	visited := make([]bool, len(pairs))

	// step consumes the single unvisited pair at a valence-two vertex
	// and returns the vertex across it.
	step := func(v attrib.Index) (attrib.Index, bool) {
		incident := adjacent[v]
		if len(incident) != 2 {
			return 0, false
		}
		for _, i := range incident {
			if visited[i] {
				continue
			}
			visited[i] = true
			if pairs[i][0] == v {
				return pairs[i][1], true
			}
			return pairs[i][0], true
		}
		return 0, false
	}

	growTail := func(chain []attrib.Index) []attrib.Index {
		for {
			next, ok := step(chain[len(chain)-1])
			if !ok {
				return chain
			}
			chain = append(chain, next)
		}
	}

	var result Chains
	for seed, p := range pairs {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		chain := growTail([]attrib.Index{p[0], p[1]})
		slices.Reverse(chain)
		chain = growTail(chain)
		slices.Reverse(chain)
		if chain[0] == chain[len(chain)-1] {
			result.Loops = append(result.Loops, chain[:len(chain)-1])
		} else {
			result.Chains = append(result.Chains, chain)
		}
	}
	return result
}
