package graph

import "sort"

// CSREdges is a frozen compressed-sparse-row adjacency snapshot: offsets[i]
// .. offsets[i+1] in targets is vertex i's edge list. It is rebuilt (not
// mutated in place) whenever the edit batch that invalidated it completes,
// trading edit-time cost for evaluation-time cache locality and O(1)
// out-degree queries. Grounded on original_source's csr_edges.rs
// (CsrEdges::from_adjacency): targets within a row are sorted by the
// target's (row, col, id) for determinism, and duplicate edges (a formula
// referencing the same cell twice) are preserved rather than deduped.
type CSREdges struct {
	offsets []int32
	targets []VertexId
}

// CSRBuilder accumulates (from, to) edges before a CSREdges snapshot is
// frozen from them.
type CSRBuilder struct {
	n     int
	edges map[VertexId][]VertexId
}

func NewCSRBuilder(n int) *CSRBuilder {
	return &CSRBuilder{n: n, edges: make(map[VertexId][]VertexId, n)}
}

// AddEdge records a from->to edge for the next Build.
func (b *CSRBuilder) AddEdge(from, to VertexId) {
	b.edges[from] = append(b.edges[from], to)
}

// Build freezes the accumulated edges into a CSREdges, sorting each
// vertex's out-edges by the target's coordinate (row-major) then id so
// iteration order is reproducible across rebuilds from the same edit
// history, per spec.md's determinism property.
func (b *CSRBuilder) Build(vs *VertexStore) *CSREdges {
	offsets := make([]int32, b.n+1)
	total := 0
	for from := 1; from < b.n; from++ {
		total += len(b.edges[VertexId(from)])
	}
	targets := make([]VertexId, 0, total)
	for from := 1; from < b.n; from++ {
		row := b.edges[VertexId(from)]
		sort.Slice(row, func(i, j int) bool {
			a, bb := vs.Ref(row[i]).Coord, vs.Ref(row[j]).Coord
			if a.Row != bb.Row {
				return a.Row < bb.Row
			}
			if a.Col != bb.Col {
				return a.Col < bb.Col
			}
			return row[i] < row[j]
		})
		targets = append(targets, row...)
		offsets[from+1] = int32(len(targets))
	}
	return &CSREdges{offsets: offsets, targets: targets}
}

// OutEdges returns id's out-edge list (a view into the shared targets
// slice; callers must not mutate it).
func (c *CSREdges) OutEdges(id VertexId) []VertexId {
	if int(id)+1 >= len(c.offsets) {
		return nil
	}
	return c.targets[c.offsets[id]:c.offsets[id+1]]
}

// NumVertices reports the vertex count the snapshot was built for.
func (c *CSREdges) NumVertices() int { return len(c.offsets) - 1 }

// NumEdges reports the total edge count across all vertices.
func (c *CSREdges) NumEdges() int { return len(c.targets) }

// MemoryUsage estimates the snapshot's resident bytes, mirroring the
// formualizer test that asserts CSR stays far cheaper than a pointer graph.
func (c *CSREdges) MemoryUsage() int {
	return len(c.offsets)*4 + len(c.targets)*4
}
