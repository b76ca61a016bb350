package editor

import (
	"sort"
	"strings"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/journal"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// Summary reports the effect of a row/column insert or delete, the shape
// original_source's VertexEditor.insert_rows/delete_rows return (spec.md
// §4.4 row/column shifts; the teacher has no equivalent operation at all —
// vogtb-go-spreadsheet's sheet.go carries no Insert/Delete row/column
// methods, confirmed by an exhaustive name search, so this whole file is
// grounded in original_source/.../tests/row_operations.rs instead).
type Summary struct {
	VerticesMoved   int
	FormulasUpdated int
}

// axis abstracts over rows vs. columns so InsertRows/DeleteRows and
// InsertColumns/DeleteColumns share one implementation.
type axis struct {
	get func(types.Coord) uint32
	set func(types.Coord, uint32) types.Coord
}

var rowAxis = axis{
	get: func(c types.Coord) uint32 { return c.Row },
	set: func(c types.Coord, v uint32) types.Coord { c.Row = v; return c },
}

var colAxis = axis{
	get: func(c types.Coord) uint32 { return c.Col },
	set: func(c types.Coord, v uint32) types.Coord { c.Col = v; return c },
}

// shiftCoord returns c with its axis-relevant component shifted by an
// insert (count > 0 ahead of `before`) or delete (count rows/cols removed
// starting at `before`), plus whether c collapsed into the deleted region.
func shiftCoord(ax axis, c types.Coord, before, count uint32, insert bool) (types.Coord, bool) {
	v := ax.get(c)
	if insert {
		if v >= before {
			return ax.set(c, v+count), false
		}
		return c, false
	}
	// delete
	if v >= before && v < before+count {
		return c, true
	}
	if v >= before+count {
		return ax.set(c, v-count), false
	}
	return c, false
}

// shiftRangeRef shifts both corners of rng along ax. For delete, a corner
// that collapses into the deleted region is clamped to the nearest
// surviving boundary (the start of the deleted block if Start collapsed,
// the row/col just before it if End collapsed); if both corners collapse
// the whole range is gone.
func shiftRangeRef(ax axis, rng types.RangeRef, before, count uint32, insert bool) (types.RangeRef, bool) {
	start, startGone := shiftCoord(ax, rng.Start, before, count, insert)
	end, endGone := shiftCoord(ax, rng.End, before, count, insert)
	if startGone && endGone {
		return types.RangeRef{}, true
	}
	if !insert {
		if startGone {
			start = ax.set(start, before)
		}
		if endGone {
			end = ax.set(end, before-1)
		}
	}
	return types.RangeRef{Sheet: rng.Sheet, Start: start, End: end}, false
}

// refFixup builds a reference-rewriter for a formula that itself lives on
// formulaSheetName: a blank r.Sheet means "same sheet as the formula", so it
// resolves against formulaSheetName before the shiftedSheetName comparison —
// otherwise a formula on another sheet with an unqualified reference to its
// own sheet would be misidentified as targeting the sheet being shifted.
func refFixup(ax axis, formulaSheetName, shiftedSheetName string, before, count uint32, insert bool) func(*ast.Reference) ast.Node {
	return func(r *ast.Reference) ast.Node {
		if r.Kind != ast.RefCell && r.Kind != ast.RefRange {
			return r
		}
		refSheet := r.Sheet
		if refSheet == "" {
			refSheet = formulaSheetName
		}
		if !strings.EqualFold(refSheet, shiftedSheetName) {
			return r
		}
		if !r.IsRange {
			newStart, gone := shiftCoord(ax, r.Start, before, count, insert)
			if gone {
				return refErr()
			}
			if newStart == r.Start {
				return r
			}
			cp := *r
			cp.Start, cp.End = newStart, newStart
			return &cp
		}
		newRng, gone := shiftRangeRef(ax, types.RangeRef{Start: r.Start, End: r.End}, before, count, insert)
		if gone {
			return refErr()
		}
		if newRng.Start == r.Start && newRng.End == r.End {
			return r
		}
		cp := *r
		cp.Start, cp.End = newRng.Start, newRng.End
		return &cp
	}
}

// shiftRangesFunc adapts refFixup's RangeRef shift for Names.shiftRanges,
// which operates on full RangeRef values (named ranges, table regions)
// rather than AST nodes.
func shiftRangesFunc(ax axis, before, count uint32, insert bool) func(types.RangeRef) types.RangeRef {
	return func(rng types.RangeRef) types.RangeRef {
		out, gone := shiftRangeRef(ax, rng, before, count, insert)
		if gone {
			// A deleted name/table region collapses to a one-row (or
			// one-column) range at the deletion point rather than
			// vanishing outright — callers
			// needing #REF!-style reporting for names are out of scope
			// here (spec.md doesn't specify named-range deletion-by-shift
			// behavior beyond "adjusted analogously").
			return types.RangeRef{Sheet: rng.Sheet, Start: ax.set(rng.Start, before), End: ax.set(rng.End, before)}
		}
		return out
	}
}

func (e *Editor) shift(ax axis, sheet types.SheetId, before, count uint32, insert bool, opName string) (Summary, error) {
	var summary Summary
	sheetName := e.Names.SheetName(sheet)

	err := e.journalAction(opName, func(tx *journal.Tx) error {
		// 1. Move vertices at/after `before` (ids preserved, only coord
		// changes) — original_source's "vertices move, ids stable" rule.
		// An insert walks from the far end and a delete from the near end,
		// so a vertex only ever lands on a cell that has been vacated.
		ids := e.Graph.Vertices.AllIds()
		sort.SliceStable(ids, func(i, j int) bool {
			a, b := ax.get(e.Graph.Vertices.Ref(ids[i]).Coord), ax.get(e.Graph.Vertices.Ref(ids[j]).Coord)
			if insert {
				return a > b
			}
			return a < b
		})
		for _, id := range ids {
			oldRef := e.Graph.Vertices.Ref(id)
			if oldRef.Sheet != sheet {
				continue
			}
			newCoord, gone := shiftCoord(ax, oldRef.Coord, before, count, insert)
			if gone {
				e.deleteVertexForRef(tx, id, oldRef)
				continue
			}
			if newCoord == oldRef.Coord {
				continue
			}
			newRef := types.CellRef{Sheet: sheet, Coord: newCoord}
			e.moveVertex(tx, id, oldRef, newRef)
			summary.VerticesMoved++
		}

		// 2. Rewrite every remaining formula's references.
		for _, id := range e.Graph.Vertices.AllIds() {
			old := e.Graph.Vertices.Formula(id)
			if old == nil {
				continue
			}
			ref := e.Graph.Vertices.Ref(id)
			fix := refFixup(ax, e.Names.SheetName(ref.Sheet), sheetName, before, count, insert)
			rewritten := rewriteRefs(old, fix)
			if rewritten == old {
				continue
			}
			tx.Record(journal.EventFormulaAdjusted, journal.FormulaAdjustedPayload{Ref: ref, Old: old, New: rewritten})
			e.Graph.SetFormula(ref, rewritten, e.Names.ResolveSheet, e.Names.ResolveNameOrTableRange)
			summary.FormulasUpdated++
		}

		// 3. Names/tables adjust analogously.
		e.Names.shiftRanges(sheet, shiftRangesFunc(ax, before, count, insert))

		// 4. Row visibility bits carry with their rows (columns have no
		// visibility sidecar in this design, mirroring spec.md §4.4's
		// "per-sheet bitset" being row-only).
		if ax.get(types.NewCoord(1, 0)) == 1 { // ax reads rows
			delta := int(count)
			if !insert {
				delta = -delta
			}
			e.Graph.Visibility.ShiftRows(uint16(sheet), before, delta)
		}
		return nil
	})
	return summary, err
}

// InsertRows inserts count empty rows before row `before` on sheet,
// shifting every vertex/reference at or past it down by count.
func (e *Editor) InsertRows(sheet types.SheetId, before, count uint32) (Summary, error) {
	return e.shift(rowAxis, sheet, before, count, true, "insert_rows")
}

// DeleteRows removes count rows starting at `before`, collapsing any
// reference entirely inside the deleted block to #REF!.
func (e *Editor) DeleteRows(sheet types.SheetId, before, count uint32) (Summary, error) {
	return e.shift(rowAxis, sheet, before, count, false, "delete_rows")
}

// InsertColumns is InsertRows' column-axis twin.
func (e *Editor) InsertColumns(sheet types.SheetId, before, count uint32) (Summary, error) {
	return e.shift(colAxis, sheet, before, count, true, "insert_columns")
}

// DeleteColumns is DeleteRows' column-axis twin.
func (e *Editor) DeleteColumns(sheet types.SheetId, before, count uint32) (Summary, error) {
	return e.shift(colAxis, sheet, before, count, false, "delete_columns")
}
