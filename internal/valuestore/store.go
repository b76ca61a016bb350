package valuestore

import (
	"github.com/PSU3D0/cellgraph/internal/types"
)

// Store is the columnar value backing store for an entire workbook: one
// chunk map per sheet, each chunk a 256x256 tile (see chunk.go). It is the
// generalization of the teacher's single Worksheet into a multi-sheet
// Store, with the delta/computed overlay split SPEC_FULL.md §3.7 asks for.
type Store struct {
	sheets map[types.SheetId]map[chunkKey]*chunk

	// delta holds uncommitted per-cell writes made during an in-flight
	// evaluation pass, keyed by sheet+coord, so a cancelled pass can be
	// discarded wholesale without touching the committed chunks.
	delta map[types.CellRef]types.Value
}

func NewStore() *Store {
	return &Store{
		sheets: make(map[types.SheetId]map[chunkKey]*chunk),
		delta:  make(map[types.CellRef]types.Value),
	}
}

func (s *Store) chunkFor(sheet types.SheetId, coord types.Coord, create bool) *chunk {
	sheetChunks, ok := s.sheets[sheet]
	if !ok {
		if !create {
			return nil
		}
		sheetChunks = make(map[chunkKey]*chunk)
		s.sheets[sheet] = sheetChunks
	}
	key := chunkKey{row: coord.Row / ChunkRows, col: coord.Col / ChunkCols}
	c, ok := sheetChunks[key]
	if !ok {
		if !create {
			return nil
		}
		c = newChunk()
		sheetChunks[key] = c
	}
	return c
}

func localOf(coord types.Coord) uint32 {
	return localIndex(coord.Row%ChunkRows, coord.Col%ChunkCols)
}

// Get returns the committed literal value at ref, or Empty if unset.
func (s *Store) Get(ref types.CellRef) types.Value {
	c := s.chunkFor(ref.Sheet, ref.Coord, false)
	if c == nil {
		return types.Empty
	}
	return c.get(localOf(ref.Coord))
}

// Set writes a literal value at ref, committing immediately (used by the
// editor for direct value entry, not formula results).
func (s *Store) Set(ref types.CellRef, v types.Value) {
	s.chunkFor(ref.Sheet, ref.Coord, true).set(localOf(ref.Coord), v)
}

// Clear removes any value (literal or computed) at ref.
func (s *Store) Clear(ref types.CellRef) {
	c := s.chunkFor(ref.Sheet, ref.Coord, false)
	if c == nil {
		return
	}
	c.clear(localOf(ref.Coord))
}

// SetComputed records a formula's result at ref without touching the
// literal lane, so a later ClearComputed can detach it cleanly.
func (s *Store) SetComputed(ref types.CellRef, v types.Value) {
	s.chunkFor(ref.Sheet, ref.Coord, true).setComputed(localOf(ref.Coord), v)
}

// GetComputed returns a formula's cached result, if any.
func (s *Store) GetComputed(ref types.CellRef) (types.Value, bool) {
	c := s.chunkFor(ref.Sheet, ref.Coord, false)
	if c == nil {
		return types.Value{}, false
	}
	return c.getComputed(localOf(ref.Coord))
}

// ClearComputed drops a formula's cached result (called when a formula
// cell is redefined or cleared).
func (s *Store) ClearComputed(ref types.CellRef) {
	c := s.chunkFor(ref.Sheet, ref.Coord, false)
	if c == nil {
		return
	}
	c.clearComputed(localOf(ref.Coord))
}

// Effective returns the value that should be visible for a cell: its
// computed result if it has one, else its literal value.
func (s *Store) Effective(ref types.CellRef) types.Value {
	if v, ok := s.GetComputed(ref); ok {
		return v
	}
	return s.Get(ref)
}

// StageDelta records an uncommitted write made mid-evaluation-pass.
func (s *Store) StageDelta(ref types.CellRef, v types.Value) {
	s.delta[ref] = v
}

// EffectiveWithDelta is Effective, but prefers a staged delta over the
// committed overlay — used by readers inside an in-flight evaluation pass
// that must see sibling writes from the same pass before they're
// committed.
func (s *Store) EffectiveWithDelta(ref types.CellRef) types.Value {
	if v, ok := s.delta[ref]; ok {
		return v
	}
	return s.Effective(ref)
}

// CommitDeltas moves every staged delta into the computed overlay and
// clears the delta set. Called once an evaluation pass completes
// successfully; a cancelled pass calls DiscardDeltas instead.
func (s *Store) CommitDeltas() {
	for ref, v := range s.delta {
		s.SetComputed(ref, v)
	}
	s.delta = make(map[types.CellRef]types.Value)
}

// DiscardDeltas drops every staged delta without committing them, used
// when an evaluation pass is cancelled.
func (s *Store) DiscardDeltas() {
	s.delta = make(map[types.CellRef]types.Value)
}

// CopyRect copies a rectangle of literal values from one origin to
// another. No other package calls it; the editor's CopyRange/MoveRange and
// shift operations move values cell by cell.
func (s *Store) CopyRect(from types.RangeRef, toSheet types.SheetId, toStart types.Coord) {
	rows, cols := from.Rows(), from.Cols()
	// snapshot first so overlapping src/dst rectangles (MoveRange within
	// the same sheet) don't read back values this same copy just wrote.
	snapshot := make([]types.Value, rows*cols)
	for r := uint32(0); r < rows; r++ {
		for c := uint32(0); c < cols; c++ {
			ref := types.CellRef{Sheet: from.Sheet, Coord: types.Coord{Row: from.Start.Row + r, Col: from.Start.Col + c}}
			snapshot[r*cols+c] = s.Get(ref)
		}
	}
	for r := uint32(0); r < rows; r++ {
		for c := uint32(0); c < cols; c++ {
			dst := types.CellRef{Sheet: toSheet, Coord: types.Coord{Row: toStart.Row + r, Col: toStart.Col + c}}
			s.Set(dst, snapshot[r*cols+c])
		}
	}
}
