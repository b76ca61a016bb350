// Package graph holds the dependency graph: a dense, struct-of-arrays
// vertex store; a frozen CSR adjacency snapshot rebuilt after each edit
// batch; a stripe index for range-precedent subscriptions; an MVCC epoch
// tracker; and a row-visibility bitset. This replaces the teacher's
// pointer-graph DependencyNode/DependencyGraph (graph.go) with the
// arena-of-indices design SPEC_FULL.md §3.2 calls for, grounded further on
// original_source's vertex_store.rs/csr_edges.rs/interval_tree.rs/
// epoch_tracker.rs/row_visibility.rs.
package graph

import (
	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// VertexId is a dense 1-based index into VertexStore's SoA arrays. 0 is the
// reserved "no vertex" sentinel, mirroring the teacher's use of a zero
// WorksheetID to mean "unset".
type VertexId uint32

const noVertex VertexId = 0

// VertexKind discriminates what a vertex holds.
type VertexKind uint8

const (
	VertexFormula VertexKind = iota
	VertexValue
)

// VertexStore is the SoA arena all other graph structures index into. Ids
// are dense and start at 1 so that the zero value of VertexId is never a
// real vertex, letting map lookups use `0, false` as a natural absent case.
//
// Ids are allocated monotonically and never reused: spec.md:50 and
// SPEC_FULL.md:107 both require "deleted ⇒ tombstoned, edges are severed, id
// not reused", since journal payloads (VertexMovedPayload, EdgePayload) and
// the spill engine's anchor/owner maps are keyed by VertexId — recycling an
// id would let an unrelated, brand-new vertex silently inherit a tombstoned
// id's leftover bookkeeping.
type VertexStore struct {
	refs     []types.CellRef // index 0 unused
	kind     []VertexKind
	formula  []ast.Node
	dirty    []bool
	volatile []bool
	deleted  []bool
	byRef    map[types.CellRef]VertexId
}

func NewVertexStore() *VertexStore {
	return &VertexStore{
		refs:     make([]types.CellRef, 1, 1024),
		kind:     make([]VertexKind, 1, 1024),
		formula:  make([]ast.Node, 1, 1024),
		dirty:    make([]bool, 1, 1024),
		volatile: make([]bool, 1, 1024),
		deleted:  make([]bool, 1, 1024),
		byRef:    make(map[types.CellRef]VertexId, 1024),
	}
}

// Lookup returns the vertex for ref, if one has been created.
func (vs *VertexStore) Lookup(ref types.CellRef) (VertexId, bool) {
	id, ok := vs.byRef[ref]
	return id, ok
}

// GetOrCreate returns the existing vertex for ref or allocates a fresh one,
// growing the arena monotonically — ids are never recycled, per the
// tombstone invariant above.
func (vs *VertexStore) GetOrCreate(ref types.CellRef) VertexId {
	if id, ok := vs.byRef[ref]; ok {
		return id
	}
	id := VertexId(len(vs.refs))
	vs.refs = append(vs.refs, ref)
	vs.kind = append(vs.kind, VertexValue)
	vs.formula = append(vs.formula, nil)
	vs.dirty = append(vs.dirty, false)
	vs.volatile = append(vs.volatile, false)
	vs.deleted = append(vs.deleted, false)
	vs.byRef[ref] = id
	return id
}

// Release tombstones id: its ref mapping is removed and it is marked
// deleted, but its slot and id are never reclaimed or handed to a future
// GetOrCreate call. Callers must have already detached id from every
// edge/stripe structure.
func (vs *VertexStore) Release(id VertexId) {
	delete(vs.byRef, vs.refs[id])
	vs.refs[id] = types.CellRef{}
	vs.formula[id] = nil
	vs.dirty[id] = false
	vs.volatile[id] = false
	vs.deleted[id] = true
}

// IsDeleted reports whether id has been tombstoned via Release.
func (vs *VertexStore) IsDeleted(id VertexId) bool { return vs.deleted[id] }

func (vs *VertexStore) Ref(id VertexId) types.CellRef { return vs.refs[id] }
func (vs *VertexStore) Kind(id VertexId) VertexKind   { return vs.kind[id] }
func (vs *VertexStore) Formula(id VertexId) ast.Node   { return vs.formula[id] }
func (vs *VertexStore) IsDirty(id VertexId) bool       { return vs.dirty[id] }
func (vs *VertexStore) IsVolatile(id VertexId) bool    { return vs.volatile[id] }

// SetFormula attaches a formula AST to id and marks it a formula vertex;
// volatile is computed once here from ast.Node.Volatile() rather than
// re-walked on every recalculation.
func (vs *VertexStore) SetFormula(id VertexId, node ast.Node) {
	vs.kind[id] = VertexFormula
	vs.formula[id] = node
	vs.volatile[id] = node.Volatile()
}

// ClearFormula demotes id back to a plain value vertex.
func (vs *VertexStore) ClearFormula(id VertexId) {
	vs.kind[id] = VertexValue
	vs.formula[id] = nil
	vs.volatile[id] = false
}

func (vs *VertexStore) MarkDirty(id VertexId)   { vs.dirty[id] = true }
func (vs *VertexStore) ClearDirty(id VertexId)  { vs.dirty[id] = false }

// Move relocates id's address to newRef, used by row/column insert/delete
// shifts where the vertex itself (and every edge pointing at it) survives
// and only its coordinate changes. Callers must ensure newRef is vacant.
func (vs *VertexStore) Move(id VertexId, newRef types.CellRef) {
	delete(vs.byRef, vs.refs[id])
	vs.refs[id] = newRef
	vs.byRef[newRef] = id
}

// Len returns the number of vertex slots ever allocated, including
// tombstoned ones (a safe upper bound for iteration since ids are never
// reused).
func (vs *VertexStore) Len() int { return len(vs.refs) }

// AllIds returns every non-tombstoned vertex id, in ascending (and
// therefore stable, insertion-biased) order.
func (vs *VertexStore) AllIds() []VertexId {
	ids := make([]VertexId, 0, len(vs.refs)-1)
	for i := 1; i < len(vs.refs); i++ {
		id := VertexId(i)
		if !vs.deleted[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
