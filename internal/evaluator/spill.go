package evaluator

import (
	"github.com/PSU3D0/cellgraph/internal/graph"
	"github.com/PSU3D0/cellgraph/internal/journal"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/internal/valuestore"
)

// SpillEngine projects a dynamic-array formula result onto the rectangle
// below and to the right of its anchor cell, per spec.md §4.5. It checks
// three preconditions in order — grid bounds, then a sane size cap, then
// that every target cell is actually empty — and on any failure resolves
// to a #SPILL! error carrying the rectangle the formula would have
// occupied, rather than partially writing cells.
type SpillEngine struct {
	store *valuestore.Store

	// Journal, when set, receives a SpillCommitted/SpillCleared event for
	// every successful projection or clear, so Undo/Redo covers spills the
	// same as every other structural edit (spec.md §8's undo property lists
	// "values, formulas, names, tables, spills, visibility"). Engine wires
	// this to the workbook's own Editor.Journal; nil is safe (spills simply
	// aren't journaled, e.g. in tests that construct a bare SpillEngine).
	Journal *journal.Journal

	// MaxCells bounds how large a single spill may be, guarding against a
	// formula like a full-column reference producing a million-row array.
	MaxCells int

	// anchors tracks which vertex currently owns which spilled cell, so a
	// later recalculation that shrinks or removes a spill can release the
	// cells it no longer occupies, and so two anchors racing for the same
	// cell resolve by lowest vertex id (first-wins), matching the
	// scheduler's existing id-order determinism guarantee.
	anchors map[types.CellRef]graph.VertexId
	owned   map[graph.VertexId][]types.CellRef

	// committed mirrors the last rectangle (anchor included, at [0][0])
	// successfully projected for a given vertex, kept only so a subsequent
	// Apply/release can journal the prior state as SpillPayload.Old.
	committed map[graph.VertexId][][]types.Value
}

func NewSpillEngine(store *valuestore.Store) *SpillEngine {
	return &SpillEngine{
		store:     store,
		MaxCells:  1_000_000,
		anchors:   map[types.CellRef]graph.VertexId{},
		owned:     map[graph.VertexId][]types.CellRef{},
		committed: map[graph.VertexId][][]types.Value{},
	}
}

// Apply projects rows onto anchor's spill rectangle, owned by vertex id.
func (s *SpillEngine) Apply(anchor types.CellRef, rows [][]types.Value, id graph.VertexId) types.Value {
	old := s.committed[id]
	s.release(id)

	numRows := len(rows)
	numCols := 0
	if numRows > 0 {
		numCols = len(rows[0])
	}
	if numRows == 0 || numCols == 0 {
		s.recordCleared(anchor, old)
		delete(s.committed, id)
		return types.Empty
	}

	endRow := anchor.Coord.Row + uint32(numRows) - 1
	endCol := anchor.Coord.Col + uint32(numCols) - 1
	if endRow > types.MaxRow || endCol > types.MaxCol {
		s.recordCleared(anchor, old)
		delete(s.committed, id)
		return s.spillError(anchor, numRows, numCols)
	}
	if numRows*numCols > s.MaxCells {
		s.recordCleared(anchor, old)
		delete(s.committed, id)
		return s.spillError(anchor, numRows, numCols)
	}

	targets := make([]types.CellRef, 0, numRows*numCols)
	for r := 0; r < numRows; r++ {
		for c := 0; c < numCols; c++ {
			if r == 0 && c == 0 {
				continue // anchor cell holds the formula itself
			}
			ref := types.CellRef{Sheet: anchor.Sheet, Coord: types.Coord{
				Row: anchor.Coord.Row + uint32(r),
				Col: anchor.Coord.Col + uint32(c),
			}}
			if owner, occupied := s.anchors[ref]; occupied && owner < id {
				// another, lower-id anchor already claims this cell: first
				// wins, so this spill fails entirely.
				s.recordCleared(anchor, old)
				delete(s.committed, id)
				return s.spillError(anchor, numRows, numCols)
			}
			if !s.store.Get(ref).IsEmpty() {
				s.recordCleared(anchor, old)
				delete(s.committed, id)
				return s.spillError(anchor, numRows, numCols)
			}
			targets = append(targets, ref)
		}
	}

	for i, ref := range targets {
		r := (i + 1) / numCols
		c := (i + 1) % numCols
		s.store.SetComputed(ref, rows[r][c])
		s.anchors[ref] = id
	}
	s.owned[id] = targets
	s.committed[id] = rows
	s.recordCommitted(anchor, old, rows)
	return types.ArrayValue(rows)
}

// recordCommitted journals a successful projection, unless no Journal is
// wired or there is nothing new to record relative to the previous state.
func (s *SpillEngine) recordCommitted(anchor types.CellRef, old, updated [][]types.Value) {
	if s.Journal == nil {
		return
	}
	s.Journal.Record(journal.EventSpillCommitted, journal.Meta{}, journal.SpillPayload{Anchor: anchor, Old: old, New: updated})
}

// recordCleared journals a spill's projection being withdrawn (failed
// precondition or a now-empty result), a no-op when there was no prior
// projection to clear or no Journal is wired.
func (s *SpillEngine) recordCleared(anchor types.CellRef, old [][]types.Value) {
	if s.Journal == nil || old == nil {
		return
	}
	s.Journal.Record(journal.EventSpillCleared, journal.Meta{}, journal.SpillPayload{Anchor: anchor, Old: old, New: nil})
}

// release drops every cell id currently owns from the spill map, called
// before re-applying a recalculated spill and when a spilling formula is
// cleared or overwritten.
func (s *SpillEngine) release(id graph.VertexId) {
	for _, ref := range s.owned[id] {
		if s.anchors[ref] == id {
			delete(s.anchors, ref)
			s.store.ClearComputed(ref)
		}
	}
	delete(s.owned, id)
}

func (s *SpillEngine) spillError(anchor types.CellRef, rows, cols int) types.Value {
	return types.ErrorValue(&types.ExcelError{
		Kind:     types.ErrSpill,
		Location: &anchor,
		Payload:  types.SpillPayload{Rows: rows, Cols: cols},
	})
}
