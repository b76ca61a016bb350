package editor

import (
	"github.com/PSU3D0/cellgraph/internal/journal"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/pkg/cellerr"
)

// nameScopeKind maps a scope id to the journal's NameScope discriminator.
func nameScopeKind(scope types.SheetId) journal.NameScope {
	if scope == 0 {
		return journal.ScopeWorkbook
	}
	return journal.ScopeSheet
}

// DefineName registers a workbook- or sheet-scoped named range (scope 0
// means workbook), recording an undoable EventNameDefined. This is the
// journaled counterpart to Names.DefineName, the only path internal/engine
// should use — the editor remains the sole mutation surface per spec.md
// §4.4.
func (e *Editor) DefineName(name string, scope types.SheetId, rng types.RangeRef) error {
	if !validRange(rng) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	return e.journalAction("define_name", func(tx *journal.Tx) error {
		if err := e.Names.DefineName(name, scope, rng); err != nil {
			return err
		}
		tx.Record(journal.EventNameDefined, journal.NamePayload{Name: name, Scope: nameScopeKind(scope), Sheet: scope, New: &rng})
		return nil
	})
}

// UpdateName replaces an existing name's range, recording its prior range so
// Undo restores it exactly.
func (e *Editor) UpdateName(name string, scope types.SheetId, rng types.RangeRef) error {
	if !validRange(rng) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	old, ok := e.Names.lookupDef(name, scope)
	if !ok {
		return cellerr.New(cellerr.UnknownName, name)
	}
	return e.journalAction("update_name", func(tx *journal.Tx) error {
		if err := e.Names.UpdateName(name, scope, rng); err != nil {
			return err
		}
		tx.Record(journal.EventNameUpdated, journal.NamePayload{Name: name, Scope: nameScopeKind(scope), Sheet: scope, Old: &old, New: &rng})
		return nil
	})
}

// DeleteName removes a name from scope, recording the deleted range so Undo
// can re-define it.
func (e *Editor) DeleteName(name string, scope types.SheetId) error {
	old, ok := e.Names.lookupDef(name, scope)
	if !ok {
		return cellerr.New(cellerr.UnknownName, name)
	}
	return e.journalAction("delete_name", func(tx *journal.Tx) error {
		if err := e.Names.DeleteName(name, scope); err != nil {
			return err
		}
		tx.Record(journal.EventNameDeleted, journal.NamePayload{Name: name, Scope: nameScopeKind(scope), Sheet: scope, Old: &old})
		return nil
	})
}

// DefineTable registers a new structured table, recording an undoable
// EventTableDefined.
func (e *Editor) DefineTable(t Table) error {
	if !validRange(t.Range) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	return e.journalAction("define_table", func(tx *journal.Tx) error {
		if err := e.Names.DefineTable(t); err != nil {
			return err
		}
		rng := t.Range
		tx.Record(journal.EventTableDefined, journal.TablePayload{Name: t.Name, New: &rng})
		return nil
	})
}

// UpdateTable replaces a table's full definition (range, headers, totals
// row), recording the prior range so Undo restores it. Headers/HasTotals
// are not separately journaled (see DESIGN.md — a documented gap shared
// with RenameTableColumn).
func (e *Editor) UpdateTable(t Table) error {
	if !validRange(t.Range) {
		return cellerr.New(cellerr.InvalidRange, "")
	}
	old, ok := e.Names.Table(t.Name)
	if !ok {
		return cellerr.New(cellerr.UnknownTable, t.Name)
	}
	return e.journalAction("update_table", func(tx *journal.Tx) error {
		if err := e.Names.UpdateTable(t); err != nil {
			return err
		}
		oldRange := old.Range
		newRange := t.Range
		tx.Record(journal.EventTableUpdated, journal.TablePayload{Name: t.Name, Old: &oldRange, New: &newRange})
		return nil
	})
}

// DeleteTable removes a table, recording its range so Undo can re-define it
// (bare range/name only; headers are not recoverable via Undo, same gap as
// UpdateTable).
func (e *Editor) DeleteTable(name string) error {
	old, ok := e.Names.Table(name)
	if !ok {
		return cellerr.New(cellerr.UnknownTable, name)
	}
	return e.journalAction("delete_table", func(tx *journal.Tx) error {
		if err := e.Names.DeleteTable(name); err != nil {
			return err
		}
		oldRange := old.Range
		tx.Record(journal.EventTableDeleted, journal.TablePayload{Name: name, Old: &oldRange})
		return nil
	})
}
