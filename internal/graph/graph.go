package graph

import (
	"sort"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// Graph is the dependency graph: a VertexStore arena, a lazily-rebuilt CSR
// adjacency snapshot (precedents and dependents), a StripeIndex for range
// subscriptions, an EpochTracker for MVCC reads, and a RowVisibility
// bitset. It replaces the teacher's DependencyGraph (graph.go) — same
// responsibilities (track precedent/dependent edges, dirty propagation,
// volatile tracking), different representation (SoA + CSR instead of
// map[CellAddress]*DependencyNode).
type Graph struct {
	Vertices   *VertexStore
	Stripes    *StripeIndex
	Epochs     *EpochTracker
	Visibility *RowVisibility

	precedents *CSREdges
	dependents *CSREdges
	stale      bool

	// adjacency kept uncompressed between rebuilds; mutated on every edit
	// and only compressed into CSR snapshots on demand (pull model, so a
	// burst of edits pays one rebuild instead of one per edit).
	precAdj map[VertexId][]VertexId
	depAdj  map[VertexId][]VertexId

	volatileSet map[VertexId]struct{}
	dirtySet    map[VertexId]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		Vertices:    NewVertexStore(),
		Stripes:     NewStripeIndex(),
		Epochs:      NewEpochTracker(),
		Visibility:  NewRowVisibility(),
		precAdj:     make(map[VertexId][]VertexId),
		depAdj:      make(map[VertexId][]VertexId),
		volatileSet: make(map[VertexId]struct{}),
		dirtySet:    make(map[VertexId]struct{}),
		stale:       true,
	}
}

// VertexFor returns (creating if needed) the vertex for a cell address.
func (g *Graph) VertexFor(ref types.CellRef) VertexId {
	return g.Vertices.GetOrCreate(ref)
}

// SetFormula attaches node to the vertex for ref, rewiring precedent edges
// (cell + range references extracted via ast.CollectReferences) and
// refreshing the vertex's volatile flag. namedRanges/tables resolve
// non-cell references to their backing ranges; pass nil resolvers when the
// formula is known to contain none (the evaluator always has real ones).
func (g *Graph) SetFormula(ref types.CellRef, node ast.Node, resolveSheet func(string) (types.SheetId, bool), resolveNamed func(string) (types.RangeRef, bool)) {
	id := g.VertexFor(ref)
	g.ClearDependencies(id)
	g.Vertices.SetFormula(id, node)
	if g.Vertices.IsVolatile(id) {
		g.volatileSet[id] = struct{}{}
	} else {
		delete(g.volatileSet, id)
	}

	for _, r := range ast.CollectReferences(node) {
		sheet := ref.Sheet
		if r.Sheet != "" && resolveSheet != nil {
			if sid, ok := resolveSheet(r.Sheet); ok {
				sheet = sid
			}
		}
		switch r.Kind {
		case ast.RefCell:
			target := g.VertexFor(types.CellRef{Sheet: sheet, Coord: r.Start})
			g.addEdge(id, target)
		case ast.RefRange:
			rng := types.RangeRef{Sheet: sheet, Start: r.Start, End: r.End}
			g.Stripes.Subscribe(rng, id)
		case ast.RefNamedRange:
			if resolveNamed != nil {
				if rng, ok := resolveNamed(r.Name); ok {
					g.Stripes.Subscribe(rng, id)
				}
			}
		case ast.RefTable:
			if resolveNamed != nil {
				if rng, ok := resolveNamed(r.Table); ok {
					g.Stripes.Subscribe(rng, id)
				}
			}
		}
	}
	g.MarkDirty(id)
}

// ClearDependencies detaches id from its precedent/range edges and demotes
// it to a plain value vertex, the same cleanup the teacher's
// extractDependencies does before re-deriving a formula's edges.
func (g *Graph) ClearDependencies(id VertexId) {
	for _, target := range g.precAdj[id] {
		g.removeDepEdge(target, id)
	}
	delete(g.precAdj, id)
	g.Stripes.Unsubscribe(id)
	g.Vertices.ClearFormula(id)
	delete(g.volatileSet, id)
	g.stale = true
}

// RemoveVertex detaches and releases id entirely (used when a cell is
// cleared and has no remaining dependents, mirroring the teacher's
// cleanupNodeIfEmpty).
func (g *Graph) RemoveVertex(id VertexId) {
	g.ClearDependencies(id)
	for _, dependent := range g.depAdj[id] {
		g.removePrecEdge(dependent, id)
	}
	delete(g.depAdj, id)
	delete(g.dirtySet, id)
	g.Vertices.Release(id)
}

func (g *Graph) addEdge(from, to VertexId) {
	g.precAdj[from] = append(g.precAdj[from], to)
	g.depAdj[to] = append(g.depAdj[to], from)
	g.stale = true
}

func (g *Graph) removeDepEdge(vertex, dependent VertexId) {
	g.depAdj[vertex] = removeOne(g.depAdj[vertex], dependent)
}

func (g *Graph) removePrecEdge(vertex, precedent VertexId) {
	g.precAdj[vertex] = removeOne(g.precAdj[vertex], precedent)
}

func removeOne(s []VertexId, v VertexId) []VertexId {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// MoveVertex relocates id's address, preserving its id, edges, and stripe
// subscriptions unchanged — used by row/column insert/delete shifts, where
// only the coordinate changes (spec.md §4.4: "ids are preserved; only coord
// changes"). Callers are responsible for rewriting any formula text that
// embeds the old address.
func (g *Graph) MoveVertex(id VertexId, newRef types.CellRef) {
	g.Vertices.Move(id, newRef)
}

// Freeze rebuilds the CSR snapshots if edges changed since the last call,
// and returns them. The scheduler calls this once per recalculation pass.
func (g *Graph) Freeze() (precedents, dependents *CSREdges) {
	if !g.stale && g.precedents != nil {
		return g.precedents, g.dependents
	}
	n := g.Vertices.Len()
	pb := NewCSRBuilder(n)
	db := NewCSRBuilder(n)
	for from, targets := range g.precAdj {
		for _, to := range targets {
			pb.AddEdge(from, to)
		}
	}
	for from, targets := range g.depAdj {
		for _, to := range targets {
			db.AddEdge(from, to)
		}
	}
	g.precedents = pb.Build(g.Vertices)
	g.dependents = db.Build(g.Vertices)
	g.stale = false
	return g.precedents, g.dependents
}

// MarkDirty marks id and transitively every dependent reachable from it
// (breadth-first over the live adjacency, not the possibly-stale CSR
// snapshot, so dirtying is always correct even mid-edit-batch).
func (g *Graph) MarkDirty(id VertexId) {
	if _, already := g.dirtySet[id]; already {
		return
	}
	queue := []VertexId{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := g.dirtySet[cur]; ok {
			continue
		}
		g.dirtySet[cur] = struct{}{}
		g.Vertices.MarkDirty(cur)
		queue = append(queue, g.depAdj[cur]...)
	}
}

// MarkRangeDirty dirties every vertex subscribed to a range overlapping
// rng, used after a multi-cell edit (paste, row insert) touches a block.
func (g *Graph) MarkRangeDirty(rng types.RangeRef) {
	for _, id := range g.Stripes.OverlappingRange(rng) {
		g.MarkDirty(id)
	}
}

// MarkAllVolatileDirty dirties every volatile vertex, called at the start
// of each full recalculation pass since volatile functions never cache.
func (g *Graph) MarkAllVolatileDirty() {
	for id := range g.volatileSet {
		g.MarkDirty(id)
	}
}

// DirtyIds returns the current dirty set as a slice, in ascending id order.
func (g *Graph) DirtyIds() []VertexId {
	ids := make([]VertexId, 0, len(g.dirtySet))
	for id := range g.dirtySet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ClearDirty clears id from the dirty set after its value has been
// committed.
func (g *Graph) ClearDirty(id VertexId) {
	delete(g.dirtySet, id)
	g.Vertices.ClearDirty(id)
}

// Precedents returns id's direct precedent vertex ids (cells it reads
// from), rebuilding the CSR snapshot first if stale.
func (g *Graph) Precedents(id VertexId) []VertexId {
	p, _ := g.Freeze()
	return p.OutEdges(id)
}

// Dependents returns id's direct dependent vertex ids (cells that read
// from it).
func (g *Graph) Dependents(id VertexId) []VertexId {
	_, d := g.Freeze()
	return d.OutEdges(id)
}
