package editor

import (
	"github.com/PSU3D0/cellgraph/internal/journal"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/pkg/cellerr"
)

// ResizeTable grows or shrinks a table's row span to newLastRow, keeping its
// header row and column span fixed. Supplemented from original_source's
// tables.rs resize_table (the distilled spec mentions tables only as a
// read/resolve surface; original_source also lets the workbook resize one in
// place without redefining it wholesale).
func (e *Editor) ResizeTable(name string, newLastRow uint32) error {
	t, ok := e.Names.Table(name)
	if !ok {
		return cellerr.New(cellerr.UnknownTable, name)
	}
	if newLastRow < t.Range.Start.Row {
		return cellerr.New(cellerr.InvalidRange, "table must retain at least its header row")
	}
	return e.journalAction("resize_table", func(tx *journal.Tx) error {
		old := t.Range
		updated := t
		updated.Range = types.RangeRef{Sheet: t.Range.Sheet, Start: t.Range.Start, End: types.NewCoord(newLastRow, t.Range.End.Col)}
		tx.Record(journal.EventTableUpdated, journal.TablePayload{Name: name, Old: &old, New: &updated.Range})
		return e.Names.UpdateTable(updated)
	})
}

// RenameTableColumn renames one of a table's header columns; structured
// references using the old name (`Table[Old]`) stop resolving and must be
// re-authored by the caller, matching Excel's own behavior on a header
// rename (spec.md doesn't describe cascading a rename through existing
// formula text, and original_source's tables.rs doesn't either).
func (e *Editor) RenameTableColumn(name, oldCol, newCol string) error {
	t, ok := e.Names.Table(name)
	if !ok {
		return cellerr.New(cellerr.UnknownTable, name)
	}
	idx, ok := t.headerIndex(oldCol)
	if !ok {
		return cellerr.New(cellerr.InvalidRange, "unknown table column "+oldCol)
	}
	return e.journalAction("rename_table_column", func(tx *journal.Tx) error {
		old := t.Range
		updated := t
		updated.Headers = append([]string(nil), t.Headers...)
		updated.Headers[idx] = newCol
		tx.Record(journal.EventTableUpdated, journal.TablePayload{Name: name, Old: &old, New: &updated.Range})
		return e.Names.UpdateTable(updated)
	})
}
