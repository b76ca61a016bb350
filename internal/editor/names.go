package editor

import (
	"strings"
	"sync"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/pkg/cellerr"
)

// Table is a named rectangular region with headers (spec.md §3 "Tables,
// named ranges, spills"): referenced via structured references like
// `Sales[Amount]` or `Sales[#Headers]`. No dedicated vertex backs a table
// in this implementation (a documented simplification, see DESIGN.md) —
// dependents subscribe to the table's full range the same way they would a
// workbook named range, via Names.ResolveNameOrTableRange.
type Table struct {
	Name      string
	Range     types.RangeRef
	Headers   []string // column names, left to right, header row excluded from Range's data body
	HasTotals bool
}

func (t Table) headerIndex(col string) (int, bool) {
	for i, h := range t.Headers {
		if strings.EqualFold(h, col) {
			return i, true
		}
	}
	return 0, false
}

type namedDef struct {
	name  string
	scope types.SheetId // 0 means workbook scope
	rng   types.RangeRef
}

// Names is the workbook's sheet/named-range/table registry. It implements
// evaluator.Resolver directly so internal/engine can hand the same instance
// to both the Evaluator and the Editor. It is also where
// Editor.ResizeTable/RenameTableColumn (supplemented from
// original_source/tables.rs, spec.md §4.4 note) mutate table metadata.
//
// Open question (kept as spec.md describes, see DESIGN.md): a workbook name
// colliding with a sheet-scoped name of the same identifier in an ambiguous
// context is not specially refined here — workbook scope always takes
// precedence, sheet scope is consulted only as a fallback.
type Names struct {
	mu sync.RWMutex

	dateSystem types.DateSystem

	sheetIDs   map[string]types.SheetId
	sheetNames map[types.SheetId]string
	nextSheet  types.SheetId

	workbookNames map[string]namedDef
	sheetNames2   map[types.SheetId]map[string]namedDef // sheet-scoped names, keyed lowercase

	tables map[string]Table // keyed lowercase
}

// NewNames builds an empty registry with the given date system.
func NewNames(dateSystem types.DateSystem) *Names {
	return &Names{
		dateSystem:    dateSystem,
		sheetIDs:      map[string]types.SheetId{},
		sheetNames:    map[types.SheetId]string{},
		nextSheet:     1,
		workbookNames: map[string]namedDef{},
		sheetNames2:   map[types.SheetId]map[string]namedDef{},
		tables:        map[string]Table{},
	}
}

// DateSystem implements evaluator.Resolver.
func (n *Names) DateSystem() types.DateSystem { return n.dateSystem }

// DefineSheet registers a new sheet name and returns its id, or the
// existing id if already registered.
func (n *Names) DefineSheet(name string) types.SheetId {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := strings.ToLower(name)
	if id, ok := n.sheetIDs[key]; ok {
		return id
	}
	id := n.nextSheet
	n.nextSheet++
	n.sheetIDs[key] = id
	n.sheetNames[id] = name
	return id
}

// SheetName returns the display name for id, or "" if unknown.
func (n *Names) SheetName(id types.SheetId) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sheetNames[id]
}

// ResolveSheet implements evaluator.Resolver: case-insensitive sheet name
// lookup.
func (n *Names) ResolveSheet(name string) (types.SheetId, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	id, ok := n.sheetIDs[strings.ToLower(name)]
	return id, ok
}

// DefineName registers a named range. scope 0 means workbook scope.
func (n *Names) DefineName(name string, scope types.SheetId, rng types.RangeRef) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := strings.ToLower(name)
	if scope == 0 {
		if _, exists := n.workbookNames[key]; exists {
			return cellerr.New(cellerr.NameAlreadyDefined, name)
		}
		n.workbookNames[key] = namedDef{name: name, scope: 0, rng: rng}
		return nil
	}
	m, ok := n.sheetNames2[scope]
	if !ok {
		m = map[string]namedDef{}
		n.sheetNames2[scope] = m
	}
	if _, exists := m[key]; exists {
		return cellerr.New(cellerr.NameAlreadyDefined, name)
	}
	m[key] = namedDef{name: name, scope: scope, rng: rng}
	return nil
}

// UpdateName replaces an existing name's range, workbook scope first.
func (n *Names) UpdateName(name string, scope types.SheetId, rng types.RangeRef) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := strings.ToLower(name)
	if scope == 0 {
		if _, ok := n.workbookNames[key]; !ok {
			return cellerr.New(cellerr.UnknownName, name)
		}
		n.workbookNames[key] = namedDef{name: name, scope: 0, rng: rng}
		return nil
	}
	m, ok := n.sheetNames2[scope]
	if !ok {
		return cellerr.New(cellerr.UnknownName, name)
	}
	if _, ok := m[key]; !ok {
		return cellerr.New(cellerr.UnknownName, name)
	}
	m[key] = namedDef{name: name, scope: scope, rng: rng}
	return nil
}

// DeleteName removes a name from the given scope.
func (n *Names) DeleteName(name string, scope types.SheetId) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := strings.ToLower(name)
	if scope == 0 {
		if _, ok := n.workbookNames[key]; !ok {
			return cellerr.New(cellerr.UnknownName, name)
		}
		delete(n.workbookNames, key)
		return nil
	}
	m, ok := n.sheetNames2[scope]
	if !ok {
		return cellerr.New(cellerr.UnknownName, name)
	}
	if _, ok := m[key]; !ok {
		return cellerr.New(cellerr.UnknownName, name)
	}
	delete(m, key)
	return nil
}

// ResolveNamedRange implements evaluator.Resolver: workbook scope takes
// precedence over sheet scope (per the recorded Open Question decision).
// LET/LAMBDA locals shadow both, but that shadowing happens in the
// evaluator's localEnv lookup before this is ever consulted.
func (n *Names) ResolveNamedRange(name string) (types.RangeRef, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	key := strings.ToLower(name)
	if d, ok := n.workbookNames[key]; ok {
		return d.rng, true
	}
	for _, m := range n.sheetNames2 {
		if d, ok := m[key]; ok {
			return d.rng, true
		}
	}
	return types.RangeRef{}, false
}

// ResolveNameOrTableRange resolves name against named ranges first, then
// table names (returning the table's full range). This is the
// resolveNamed callback graph.SetFormula takes — it subscribes a formula
// to the whole backing range regardless of whether the reference came in
// as RefNamedRange or RefTable.
func (n *Names) ResolveNameOrTableRange(name string) (types.RangeRef, bool) {
	if rng, ok := n.ResolveNamedRange(name); ok {
		return rng, true
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if t, ok := n.tables[strings.ToLower(name)]; ok {
		return t.Range, true
	}
	return types.RangeRef{}, false
}

// DefineTable registers a new table.
func (n *Names) DefineTable(t Table) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := strings.ToLower(t.Name)
	if _, exists := n.tables[key]; exists {
		return cellerr.New(cellerr.TableAlreadyDefined, t.Name)
	}
	n.tables[key] = t
	return nil
}

// UpdateTable replaces a table's full definition.
func (n *Names) UpdateTable(t Table) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := strings.ToLower(t.Name)
	if _, ok := n.tables[key]; !ok {
		return cellerr.New(cellerr.UnknownTable, t.Name)
	}
	n.tables[key] = t
	return nil
}

// DeleteTable removes a table.
func (n *Names) DeleteTable(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := strings.ToLower(name)
	if _, ok := n.tables[key]; !ok {
		return cellerr.New(cellerr.UnknownTable, name)
	}
	delete(n.tables, key)
	return nil
}

// Table returns a table's definition by name.
func (n *Names) Table(name string) (Table, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	t, ok := n.tables[strings.ToLower(name)]
	return t, ok
}

// ResolveTableColumn implements evaluator.Resolver: narrows a table's range
// to one column (or its header/totals row) per sel.
func (n *Names) ResolveTableColumn(table string, sel ast.TableSelector) (types.RangeRef, bool) {
	n.mu.RLock()
	t, ok := n.tables[strings.ToLower(table)]
	n.mu.RUnlock()
	if !ok {
		return types.RangeRef{}, false
	}
	dataStart := t.Range.Start.Row + 1 // header row excluded from the data body
	dataEnd := t.Range.End.Row
	if t.HasTotals {
		dataEnd--
	}

	switch {
	case sel.Headers:
		return types.RangeRef{Sheet: t.Range.Sheet, Start: types.NewCoord(t.Range.Start.Row, t.Range.Start.Col), End: types.NewCoord(t.Range.Start.Row, t.Range.End.Col)}, true
	case sel.Totals:
		if !t.HasTotals {
			return types.RangeRef{}, false
		}
		return types.RangeRef{Sheet: t.Range.Sheet, Start: types.NewCoord(t.Range.End.Row, t.Range.Start.Col), End: types.NewCoord(t.Range.End.Row, t.Range.End.Col)}, true
	case sel.Column == "":
		return types.RangeRef{Sheet: t.Range.Sheet, Start: types.NewCoord(dataStart, t.Range.Start.Col), End: types.NewCoord(dataEnd, t.Range.End.Col)}, true
	default:
		idx, ok := t.headerIndex(sel.Column)
		if !ok {
			return types.RangeRef{}, false
		}
		col := t.Range.Start.Col + uint32(idx)
		return types.RangeRef{Sheet: t.Range.Sheet, Start: types.NewCoord(dataStart, col), End: types.NewCoord(dataEnd, col)}, true
	}
}

// lookupDef returns a name's current range in the given scope, without the
// workbook-precedence fallback ResolveNamedRange applies — callers that need
// to record an old value before UpdateName/DeleteName want exactly this
// scope, not whichever scope happens to resolve first.
func (n *Names) lookupDef(name string, scope types.SheetId) (types.RangeRef, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	key := strings.ToLower(name)
	if scope == 0 {
		d, ok := n.workbookNames[key]
		return d.rng, ok
	}
	m, ok := n.sheetNames2[scope]
	if !ok {
		return types.RangeRef{}, false
	}
	d, ok := m[key]
	return d.rng, ok
}

// shiftRanges is called by InsertRows/DeleteRows/InsertColumns/DeleteColumns
// to keep every name/table definition on the affected sheet consistent with
// the shift, per spec.md §4.4 bullet 3 ("named range definitions and table
// regions are adjusted analogously").
func (n *Names) shiftRanges(sheet types.SheetId, fix func(types.RangeRef) types.RangeRef) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for k, d := range n.workbookNames {
		if d.rng.Sheet == sheet {
			d.rng = fix(d.rng)
			n.workbookNames[k] = d
		}
	}
	if m, ok := n.sheetNames2[sheet]; ok {
		for k, d := range m {
			d.rng = fix(d.rng)
			m[k] = d
		}
	}
	for k, t := range n.tables {
		if t.Range.Sheet == sheet {
			t.Range = fix(t.Range)
			n.tables[k] = t
		}
	}
}
