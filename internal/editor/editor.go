// Package editor is the mutation surface over a workbook's graph/store: the
// only place cells, formulas, rows/columns, names, and tables are ever
// changed. Every mutating method records its effect to a journal.Journal so
// it can be undone, and returns a *cellerr.EditorError on failure rather
// than a cell-level types.ExcelError (spec.md §7's third error layer).
//
// Grounded in vogtb-go-spreadsheet's sheet.go (SetCell/ClearCell and its
// dependency re-wiring dance) generalized to a multi-sheet, journaled, and
// range-capable surface; row/column shifts and table resize/rename have no
// teacher analogue and are grounded in original_source/ instead (see
// shift.go, tables.go).
package editor

import (
	"github.com/rs/zerolog"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/formula"
	"github.com/PSU3D0/cellgraph/internal/graph"
	"github.com/PSU3D0/cellgraph/internal/journal"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/internal/valuestore"
	"github.com/PSU3D0/cellgraph/pkg/cellerr"
)

// Config bounds an Editor's behavior.
type Config struct {
	// MaxChangelogEvents is forwarded to the journal; zero means the
	// journal's own default.
	MaxChangelogEvents int
}

// Editor is the workbook's single mutation surface, wiring a Graph, a
// Store, a Names registry, and a Journal together. internal/engine
// constructs one per workbook and is the only caller that should ever touch
// Graph/Store/Names directly for anything other than reads.
type Editor struct {
	Graph  *graph.Graph
	Store  *valuestore.Store
	Names  *Names
	Journal *journal.Journal

	cfg    Config
	logger zerolog.Logger
}

// New builds an Editor over an existing graph/store/names, wiring a fresh
// Journal whose ApplyFunc replays inverse events straight back into them.
func New(g *graph.Graph, store *valuestore.Store, names *Names, cfg Config) *Editor {
	e := &Editor{Graph: g, Store: store, Names: names, cfg: cfg, logger: zerolog.Nop()}
	e.Journal = journal.New(journal.Config{MaxChangelogEvents: cfg.MaxChangelogEvents}, e.apply)
	return e
}

// WithLogger attaches a structured logger, propagated to the journal too.
func (e *Editor) WithLogger(logger zerolog.Logger) *Editor {
	e.logger = logger.With().Str("component", "editor").Logger()
	e.Journal.WithLogger(e.logger)
	return e
}

// journalAction runs fn as a named atomic action; a single top-level
// mutation (SetCellValue, etc.) is still wrapped so its rollback and undo
// behavior is identical to a multi-step one.
func (e *Editor) journalAction(name string, fn func(tx *journal.Tx) error) error {
	return e.Journal.ActionAtomic(name, journal.Meta{}, fn)
}

// apply is the journal's ApplyFunc: it replays one event (forward for Redo,
// already-inverted for Undo/rollback) straight back into Graph/Store/Names.
func (e *Editor) apply(ev journal.Event) {
	switch p := ev.Payload.(type) {
	case journal.ValueSetPayload:
		if p.New.IsEmpty() {
			e.Store.Clear(p.Ref)
		} else {
			e.Store.Set(p.Ref, p.New)
		}
	case journal.VertexPayload:
		if ev.Kind == journal.EventVertexRemoved {
			if id, ok := e.Graph.Vertices.Lookup(p.Ref); ok {
				e.Graph.RemoveVertex(id)
			}
			return
		}
		// EventVertexAdded: recreate the vertex; the ValueSet/FormulaAdjusted
		// events recorded alongside the original delete restore its content.
		e.Graph.VertexFor(p.Ref)
	case journal.VertexMovedPayload:
		e.Graph.MoveVertex(p.VertexID, p.New)
	case journal.FormulaAdjustedPayload:
		if p.New == nil {
			id, ok := e.Graph.Vertices.Lookup(p.Ref)
			if ok {
				e.Graph.ClearDependencies(id)
			}
			return
		}
		e.Graph.SetFormula(p.Ref, p.New, e.Names.ResolveSheet, e.Names.ResolveNameOrTableRange)
	case journal.NamePayload:
		if p.New == nil {
			_ = e.Names.DeleteName(p.Name, p.Sheet)
			return
		}
		if p.Old == nil {
			_ = e.Names.DefineName(p.Name, p.Sheet, *p.New)
			return
		}
		_ = e.Names.UpdateName(p.Name, p.Sheet, *p.New)
	case journal.TablePayload:
		if p.New == nil {
			_ = e.Names.DeleteTable(p.Name)
			return
		}
		t, existed := e.Names.Table(p.Name)
		if !existed {
			t = Table{Name: p.Name}
		}
		t.Range = *p.New
		if existed {
			_ = e.Names.UpdateTable(t)
		} else {
			_ = e.Names.DefineTable(t)
		}
	case journal.SpillPayload:
		e.applySpillPayload(p)
	case journal.RowVisibilityPayload:
		src := graph.VisibilityManual
		if p.Filter {
			src = graph.VisibilityFilter
		}
		e.Graph.Visibility.SetHidden(uint16(p.Sheet), p.Row, src, p.NewHidden)
	}
}

// applySpillPayload writes p's projected rectangle (excluding the anchor
// cell, whose own computed value travels with the formula's own
// ValueSet/FormulaAdjusted events) back into the computed overlay, or clears
// it if p.New is nil — the same "apply reflects the payload's New state"
// rule every other case in apply above follows, so it works identically
// whether ev started as a SpillCommitted or a SpillCleared event (forward
// replay on Redo, inverted replay on Undo/rollback).
func (e *Editor) applySpillPayload(p journal.SpillPayload) {
	rows := p.New
	clearing := rows == nil
	if clearing {
		rows = p.Old
	}
	if rows == nil {
		return
	}
	for r := range rows {
		for c := range rows[r] {
			if r == 0 && c == 0 {
				continue
			}
			ref := types.CellRef{Sheet: p.Anchor.Sheet, Coord: types.Coord{
				Row: p.Anchor.Coord.Row + uint32(r),
				Col: p.Anchor.Coord.Col + uint32(c),
			}}
			if clearing {
				e.Store.ClearComputed(ref)
			} else {
				e.Store.SetComputed(ref, rows[r][c])
			}
		}
	}
}

// SetRowHidden toggles row's manual- or filter-hidden bit on sheet,
// recording an undoable RowVisibilitySet event so Undo/Redo covers
// visibility the same as every other structural edit (spec.md §8's undo
// property lists "values, formulas, names, tables, spills, visibility").
func (e *Editor) SetRowHidden(sheet types.SheetId, row uint32, src graph.VisibilitySource, hidden bool) bool {
	var changed bool
	_ = e.journalAction("set_row_hidden", func(tx *journal.Tx) error {
		old := e.Graph.Visibility.IsHidden(uint16(sheet), row, maskForSource(src))
		changed = e.Graph.Visibility.SetHidden(uint16(sheet), row, src, hidden)
		if changed {
			tx.Record(journal.EventRowVisibilitySet, journal.RowVisibilityPayload{
				Sheet:     sheet,
				Row:       row,
				Filter:    src == graph.VisibilityFilter,
				OldHidden: old,
				NewHidden: hidden,
			})
		}
		return nil
	})
	return changed
}

func maskForSource(src graph.VisibilitySource) graph.VisibilityMaskMode {
	if src == graph.VisibilityFilter {
		return graph.MaskExcludeFilter
	}
	return graph.MaskExcludeManual
}

// canonicalValue coerces a raw input Value into the editor's storage
// canonical form: integers are widened to KindNumber, the testable property
// spec.md §8 requires ("every literal numeric entry is stored as a
// float64-backed Number, whether typed as an integer or not").
func canonicalValue(v types.Value) types.Value {
	if v.Kind == types.KindInt {
		return types.NumberValue(float64(v.Int))
	}
	return v
}

func validCell(ref types.CellRef) bool { return ref.Coord.InBounds() }

func validRange(rng types.RangeRef) bool {
	return rng.Start.InBounds() && rng.End.InBounds() &&
		rng.Start.Row <= rng.End.Row && rng.Start.Col <= rng.End.Col
}

// SetCellValue writes a literal value to ref, clearing any formula that was
// there, and records an undoable ValueSet (+ FormulaAdjusted, if a formula
// was replaced) event pair.
func (e *Editor) SetCellValue(ref types.CellRef, v types.Value) error {
	if !validCell(ref) {
		return cellerr.New(cellerr.InvalidAddress, ref.String())
	}
	v = canonicalValue(v)
	return e.journalAction("set_cell_value", func(tx *journal.Tx) error {
		e.clearFormulaLocked(tx, ref)
		old := e.Store.Get(ref)
		e.Store.Set(ref, v)
		tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: ref, Old: old, New: v})
		e.Graph.MarkDirty(e.Graph.VertexFor(ref))
		return nil
	})
}

// SetCellFormula parses src and attaches it to ref as a formula, rewiring
// dependency edges through Graph.SetFormula.
func (e *Editor) SetCellFormula(ref types.CellRef, src string) error {
	if !validCell(ref) {
		return cellerr.New(cellerr.InvalidAddress, ref.String())
	}
	node, err := formula.Parse(src, &formula.ParserContext{
		CurrentSheet: e.Names.SheetName(ref.Sheet),
		ResolveSheet: e.Names.ResolveSheet,
	})
	if err != nil {
		return cellerr.Wrap(cellerr.ParseFailed, src, err)
	}
	return e.journalAction("set_cell_formula", func(tx *journal.Tx) error {
		id := e.Graph.VertexFor(ref)
		old := e.Graph.Vertices.Formula(id)
		tx.Record(journal.EventFormulaAdjusted, journal.FormulaAdjustedPayload{Ref: ref, Old: old, New: node})
		e.Graph.SetFormula(ref, node, e.Names.ResolveSheet, e.Names.ResolveNameOrTableRange)
		return nil
	})
}

// clearFormulaLocked demotes ref's vertex (if any) back to a value vertex,
// recording the inverse-capable FormulaAdjusted event. Must run inside an
// open Tx.
func (e *Editor) clearFormulaLocked(tx *journal.Tx, ref types.CellRef) {
	id, ok := e.Graph.Vertices.Lookup(ref)
	if !ok {
		return
	}
	old := e.Graph.Vertices.Formula(id)
	if old == nil {
		return
	}
	tx.Record(journal.EventFormulaAdjusted, journal.FormulaAdjustedPayload{Ref: ref, Old: old, New: nil})
	e.Graph.ClearDependencies(id)
}

// ClearRange empties every cell in rng: literal values and formulas alike.
// Cells left with neither a formula, a value, nor dependents are released
// from the graph entirely, mirroring the teacher's cleanupNodeIfEmpty.
func (e *Editor) ClearRange(rng types.RangeRef) error {
	if !validRange(rng) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	return e.journalAction("clear_range", func(tx *journal.Tx) error {
		for row := rng.Start.Row; row <= rng.End.Row; row++ {
			for col := rng.Start.Col; col <= rng.End.Col; col++ {
				ref := types.CellRef{Sheet: rng.Sheet, Coord: types.NewCoord(row, col)}
				e.clearFormulaLocked(tx, ref)
				old := e.Store.Get(ref)
				if !old.IsEmpty() {
					e.Store.Clear(ref)
					tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: ref, Old: old, New: types.Empty})
				}
				if id, ok := e.Graph.Vertices.Lookup(ref); ok && len(e.Graph.Dependents(id)) == 0 {
					e.Graph.RemoveVertex(id)
				}
			}
		}
		e.Graph.MarkRangeDirty(rng)
		return nil
	})
}

// SetRangeValues bulk-writes row-major values into rng, clearing any
// formulas in the footprint first. len(values) and len(values[i]) must
// match rng's row/column span.
func (e *Editor) SetRangeValues(rng types.RangeRef, values [][]types.Value) error {
	if !validRange(rng) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	if uint32(len(values)) != rng.Rows() {
		return cellerr.New(cellerr.InvalidRange, "row count does not match range height")
	}
	return e.journalAction("set_range_values", func(tx *journal.Tx) error {
		for r, row := range values {
			if uint32(len(row)) != rng.Cols() {
				return cellerr.New(cellerr.InvalidRange, "column count does not match range width")
			}
			for c, v := range row {
				ref := types.CellRef{Sheet: rng.Sheet, Coord: types.NewCoord(rng.Start.Row+uint32(r), rng.Start.Col+uint32(c))}
				e.clearFormulaLocked(tx, ref)
				old := e.Store.Get(ref)
				nv := canonicalValue(v)
				e.Store.Set(ref, nv)
				tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: ref, Old: old, New: nv})
			}
		}
		e.Graph.MarkRangeDirty(rng)
		return nil
	})
}

// translateReference rewrites r (a cell/range reference found in a formula
// being copied or moved) by dRow/dCol: absolute (anchored) components are
// left untouched, relative components shift — the same semantics Excel
// applies when you drag-fill or cut/paste a formula.
func translateReference(r *ast.Reference, dRow, dCol int) *ast.Reference {
	cp := *r
	cp.Start = translateCoord(r.Start, dRow, dCol)
	cp.End = translateCoord(r.End, dRow, dCol)
	return &cp
}

func translateCoord(c types.Coord, dRow, dCol int) types.Coord {
	if !c.RowAbs {
		c.Row = uint32(int(c.Row) + dRow)
	}
	if !c.ColAbs {
		c.Col = uint32(int(c.Col) + dCol)
	}
	return c
}

// CopyRange duplicates rng's literal values and formulas into a same-shaped
// region anchored at dst's top-left corner, translating relative references
// in copied formulas by the displacement (spec.md §4.4's copy semantics,
// grounded in original_source/tests/move_copy.rs since the teacher has no
// copy/paste surface).
func (e *Editor) CopyRange(src types.RangeRef, dstSheet types.SheetId, dstTopLeft types.Coord) error {
	if !validRange(src) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	dRow := int(dstTopLeft.Row) - int(src.Start.Row)
	dCol := int(dstTopLeft.Col) - int(src.Start.Col)
	return e.journalAction("copy_range", func(tx *journal.Tx) error {
		for row := src.Start.Row; row <= src.End.Row; row++ {
			for col := src.Start.Col; col <= src.End.Col; col++ {
				from := types.CellRef{Sheet: src.Sheet, Coord: types.NewCoord(row, col)}
				to := types.CellRef{Sheet: dstSheet, Coord: types.NewCoord(uint32(int(row)+dRow), uint32(int(col)+dCol))}
				if !validCell(to) {
					return cellerr.New(cellerr.InvalidAddress, to.String())
				}
				e.copyCell(tx, from, to, dRow, dCol)
			}
		}
		e.Graph.MarkRangeDirty(types.RangeRef{Sheet: dstSheet, Start: dstTopLeft, End: types.NewCoord(dstTopLeft.Row+src.Rows()-1, dstTopLeft.Col+src.Cols()-1)})
		return nil
	})
}

func (e *Editor) copyCell(tx *journal.Tx, from, to types.CellRef, dRow, dCol int) {
	e.clearFormulaLocked(tx, to)
	if id, ok := e.Graph.Vertices.Lookup(from); ok {
		if node := e.Graph.Vertices.Formula(id); node != nil {
			translated := rewriteRefs(node, func(r *ast.Reference) ast.Node {
				if r.Kind != ast.RefCell && r.Kind != ast.RefRange {
					return r
				}
				return translateReference(r, dRow, dCol)
			})
			tx.Record(journal.EventFormulaAdjusted, journal.FormulaAdjustedPayload{Ref: to, Old: nil, New: translated})
			e.Graph.SetFormula(to, translated, e.Names.ResolveSheet, e.Names.ResolveNameOrTableRange)
			return
		}
	}
	old := e.Store.Get(to)
	v := e.Store.Get(from)
	if v.IsEmpty() {
		return
	}
	e.Store.Set(to, v)
	tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: to, Old: old, New: v})
}

// MoveRange relocates src's contents to a dst-anchored region of the same
// shape, vacating src afterward, and rewrites every OTHER formula in the
// workbook that referenced a cell inside src to point at its new location
// (as opposed to CopyRange's translate-by-displacement, which only touches
// the copied formulas themselves) — the same distinction Excel draws
// between cut/paste and copy/paste.
func (e *Editor) MoveRange(src types.RangeRef, dstSheet types.SheetId, dstTopLeft types.Coord) error {
	if !validRange(src) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	dRow := int(dstTopLeft.Row) - int(src.Start.Row)
	dCol := int(dstTopLeft.Col) - int(src.Start.Col)
	dst := types.RangeRef{Sheet: dstSheet, Start: dstTopLeft, End: types.NewCoord(dstTopLeft.Row+src.Rows()-1, dstTopLeft.Col+src.Cols()-1)}
	if !validRange(dst) {
		return cellerr.New(cellerr.InvalidRange, "")
	}

	return e.journalAction("move_range", func(tx *journal.Tx) error {
		// 1. Retarget every formula in the workbook whose reference falls
		// inside src, wherever that formula itself lives. A reference with
		// a blank Sheet means "same sheet as the formula that holds it", so
		// fixFor is built per-formula against that formula's own sheet.
		srcSheetName := e.Names.SheetName(src.Sheet)
		fixFor := func(formulaSheet types.SheetId) func(*ast.Reference) ast.Node {
			formulaSheetName := e.Names.SheetName(formulaSheet)
			return func(r *ast.Reference) ast.Node {
				if r.Kind != ast.RefCell && r.Kind != ast.RefRange {
					return r
				}
				refSheetName := r.Sheet
				if refSheetName == "" {
					refSheetName = formulaSheetName
				}
				if refSheetName != srcSheetName || !src.Contains(src.Sheet, r.Start) {
					return r
				}
				return translateReference(r, dRow, dCol)
			}
		}
		for _, id := range e.Graph.Vertices.AllIds() {
			old := e.Graph.Vertices.Formula(id)
			if old == nil {
				continue
			}
			rewritten := rewriteRefs(old, fixFor(e.Graph.Vertices.Ref(id).Sheet))
			if rewritten == old {
				continue
			}
			ref := e.Graph.Vertices.Ref(id)
			tx.Record(journal.EventFormulaAdjusted, journal.FormulaAdjustedPayload{Ref: ref, Old: old, New: rewritten})
			e.Graph.SetFormula(ref, rewritten, e.Names.ResolveSheet, e.Names.ResolveNameOrTableRange)
		}

		// 2. Relocate src's own vertices (values and formulas) to dst,
		// preserving vertex ids the same way row/column shifts do.
		for row := src.Start.Row; row <= src.End.Row; row++ {
			for col := src.Start.Col; col <= src.End.Col; col++ {
				from := types.CellRef{Sheet: src.Sheet, Coord: types.NewCoord(row, col)}
				to := types.CellRef{Sheet: dstSheet, Coord: types.NewCoord(uint32(int(row)+dRow), uint32(int(col)+dCol))}
				id, ok := e.Graph.Vertices.Lookup(from)
				if !ok {
					if v := e.Store.Get(from); !v.IsEmpty() {
						e.Store.Clear(from)
						e.Store.Set(to, v)
						tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: from, Old: v, New: types.Empty})
						tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: to, Old: types.Empty, New: v})
					}
					continue
				}
				e.moveVertex(tx, id, from, to)
			}
		}
		return nil
	})
}

// moveVertex relocates a vertex from oldRef to newRef, recording an
// undoable VertexMoved event. Shared by MoveRange and shift.go.
func (e *Editor) moveVertex(tx *journal.Tx, id graph.VertexId, oldRef, newRef types.CellRef) {
	tx.Record(journal.EventVertexMoved, journal.VertexMovedPayload{VertexID: id, Old: oldRef, New: newRef})
	e.Graph.MoveVertex(id, newRef)
	// the cell's literal value and cached result travel with its vertex
	if cv, ok := e.Store.GetComputed(oldRef); ok {
		e.Store.ClearComputed(oldRef)
		e.Store.SetComputed(newRef, cv)
	}
	if v := e.Store.Get(oldRef); !v.IsEmpty() {
		old := e.Store.Get(newRef)
		e.Store.Clear(oldRef)
		e.Store.Set(newRef, v)
		tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: oldRef, Old: v, New: types.Empty})
		tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: newRef, Old: old, New: v})
	}
}

// deleteVertexForRef tombstones a vertex whose cell was deleted out from
// under it by a row/column delete. It captures the vertex's formula and
// value content first — the same ValueSet/FormulaAdjusted events
// ClearRange records before releasing an empty vertex (see ClearRange above)
// — so Undo restores the vertex's content, not just a bare add/remove
// marker with nothing to resurrect.
func (e *Editor) deleteVertexForRef(tx *journal.Tx, id graph.VertexId, ref types.CellRef) {
	kind := e.Graph.Vertices.Kind(id)
	e.clearFormulaLocked(tx, ref)
	old := e.Store.Get(ref)
	if !old.IsEmpty() {
		e.Store.Clear(ref)
		tx.Record(journal.EventValueSet, journal.ValueSetPayload{Ref: ref, Old: old, New: types.Empty})
	}
	tx.Record(journal.EventVertexRemoved, journal.VertexPayload{Ref: ref, Kind: kind})
	e.Graph.RemoveVertex(id)
}
