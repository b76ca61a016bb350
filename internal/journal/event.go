// Package journal is the change journal: every structural mutation the
// editor performs is recorded as an Event, compound actions (ActionAtomic)
// roll back wholly on failure, and Undo/Redo move compound groups between
// an undo stack and a redo stack. Grounded in original_source's
// journal.rs/change_log.rs ArrowOp/ArrowUndoBatch shape (spec.md §4.6),
// adapted to Go: the teacher carries no equivalent (vogtb-go-spreadsheet has
// no undo/redo or atomic-action surface at all).
package journal

import (
	"github.com/google/uuid"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/graph"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// Kind discriminates the ChangeEvent taxonomy spec.md §4.6 lists.
type Kind uint8

const (
	EventValueSet Kind = iota
	EventVertexAdded
	EventVertexRemoved
	EventVertexMoved
	EventFormulaAdjusted
	EventNameDefined
	EventNameUpdated
	EventNameDeleted
	EventTableDefined
	EventTableUpdated
	EventTableDeleted
	EventEdgeAdded
	EventEdgeRemoved
	EventSpillCommitted
	EventSpillCleared
	EventCompoundStart
	EventCompoundEnd
	EventRowVisibilitySet
)

func (k Kind) String() string {
	switch k {
	case EventValueSet:
		return "ValueSet"
	case EventVertexAdded:
		return "VertexAdded"
	case EventVertexRemoved:
		return "VertexRemoved"
	case EventVertexMoved:
		return "VertexMoved"
	case EventFormulaAdjusted:
		return "FormulaAdjusted"
	case EventNameDefined:
		return "NameDefined"
	case EventNameUpdated:
		return "NameUpdated"
	case EventNameDeleted:
		return "NameDeleted"
	case EventTableDefined:
		return "TableDefined"
	case EventTableUpdated:
		return "TableUpdated"
	case EventTableDeleted:
		return "TableDeleted"
	case EventEdgeAdded:
		return "EdgeAdded"
	case EventEdgeRemoved:
		return "EdgeRemoved"
	case EventSpillCommitted:
		return "SpillCommitted"
	case EventSpillCleared:
		return "SpillCleared"
	case EventCompoundStart:
		return "CompoundStart"
	case EventCompoundEnd:
		return "CompoundEnd"
	case EventRowVisibilitySet:
		return "RowVisibilitySet"
	default:
		return "Unknown"
	}
}

// Meta is caller-supplied provenance attached to every event: actor id,
// correlation id (ties an event to the request/session that caused it), and
// a free-text reason surfaced in audit logs.
type Meta struct {
	Actor       string
	Correlation string
	Reason      string
}

// ValueSetPayload records a cell's literal value transition.
type ValueSetPayload struct {
	Ref      types.CellRef
	Old, New types.Value
}

func (p ValueSetPayload) inverse() ValueSetPayload {
	return ValueSetPayload{Ref: p.Ref, Old: p.New, New: p.Old}
}

// VertexPayload records a vertex's add/remove: its coordinate, sheet, and
// kind at the time of the event, sufficient to recreate or tombstone it.
type VertexPayload struct {
	Ref  types.CellRef
	Kind graph.VertexKind
}

// VertexMovedPayload records a vertex's coordinate shift (row/column
// insert/delete reversal inverts by swapping Old/New).
type VertexMovedPayload struct {
	VertexID   graph.VertexId
	Old, New   types.CellRef
}

func (p VertexMovedPayload) inverse() VertexMovedPayload {
	return VertexMovedPayload{VertexID: p.VertexID, Old: p.New, New: p.Old}
}

// FormulaAdjustedPayload records a formula AST replacement, either from a
// direct edit or from row/column-shift reference rewriting.
type FormulaAdjustedPayload struct {
	Ref      types.CellRef
	Old, New ast.Node
}

func (p FormulaAdjustedPayload) inverse() FormulaAdjustedPayload {
	return FormulaAdjustedPayload{Ref: p.Ref, Old: p.New, New: p.Old}
}

// NameScope discriminates a named range's binding scope.
type NameScope uint8

const (
	ScopeWorkbook NameScope = iota
	ScopeSheet
)

// NamePayload records a named-range definition's lifecycle (update carries
// Old+New; delete carries only Old; define carries only New).
type NamePayload struct {
	Name     string
	Scope    NameScope
	Sheet    types.SheetId
	Old, New *types.RangeRef
}

func (p NamePayload) inverse() NamePayload {
	return NamePayload{Name: p.Name, Scope: p.Scope, Sheet: p.Sheet, Old: p.New, New: p.Old}
}

// TablePayload records a structured-table definition's lifecycle, mirroring
// NamePayload's shape.
type TablePayload struct {
	Name     string
	Old, New *types.RangeRef
}

func (p TablePayload) inverse() TablePayload {
	return TablePayload{Name: p.Name, Old: p.New, New: p.Old}
}

// EdgePayload records a precedent edge's addition/removal.
type EdgePayload struct {
	From, To graph.VertexId
}

// SpillPayload records a spill anchor's projection committing or clearing;
// Old/New are row-major snapshots of the full projected rectangle, anchor
// cell included at [0][0], or nil when there was no prior/new projection.
type SpillPayload struct {
	Anchor   types.CellRef
	Old, New [][]types.Value
}

func (p SpillPayload) inverse() SpillPayload {
	return SpillPayload{Anchor: p.Anchor, Old: p.New, New: p.Old}
}

// RowVisibilityPayload records a manual/filter-hidden row toggle.
type RowVisibilityPayload struct {
	Sheet          types.SheetId
	Row            uint32
	Filter         bool // false = manual-hidden bitset, true = filter-hidden bitset
	OldHidden, NewHidden bool
}

func (p RowVisibilityPayload) inverse() RowVisibilityPayload {
	return RowVisibilityPayload{Sheet: p.Sheet, Row: p.Row, Filter: p.Filter, OldHidden: p.NewHidden, NewHidden: p.OldHidden}
}

// CompoundPayload marks the start/end of an atomic action; End carries
// whether the action committed or was rolled back.
type CompoundPayload struct {
	Name      string
	Committed bool
}

// Event is one entry in the journal: a monotonic sequence number, the
// compound group it belongs to, caller metadata, and a kind-specific
// payload (one of the *Payload types above).
type Event struct {
	Seq     uint64
	Kind    Kind
	GroupID uuid.UUID
	Meta    Meta
	Payload any
}

// Inverse returns the event that undoes e: old/new fields swapped per
// spec.md §4.6 ("SetValue{old,new} inverts to SetValue{old=new,new=old};
// VertexMoved inverts by swapping coords; SpillCommitted inverts to
// SpillCleared with the projection; etc."). Structural add/remove pairs
// invert by toggling Kind; compound markers keep their Kind and flip
// Committed.
func (e Event) Inverse() Event {
	inv := e
	switch p := e.Payload.(type) {
	case ValueSetPayload:
		inv.Payload = p.inverse()
	case VertexPayload:
		inv.Kind = invertVertexKind(e.Kind)
		inv.Payload = p
	case VertexMovedPayload:
		inv.Payload = p.inverse()
	case FormulaAdjustedPayload:
		inv.Payload = p.inverse()
	case NamePayload:
		inv.Kind = invertNameKind(e.Kind)
		inv.Payload = p.inverse()
	case TablePayload:
		inv.Kind = invertTableKind(e.Kind)
		inv.Payload = p.inverse()
	case EdgePayload:
		inv.Kind = invertEdgeKind(e.Kind)
		inv.Payload = p
	case SpillPayload:
		inv.Kind = invertSpillKind(e.Kind)
		inv.Payload = p.inverse()
	case RowVisibilityPayload:
		inv.Payload = p.inverse()
	case CompoundPayload:
		inv.Payload = CompoundPayload{Name: p.Name, Committed: !p.Committed}
	}
	return inv
}

func invertVertexKind(k Kind) Kind {
	if k == EventVertexAdded {
		return EventVertexRemoved
	}
	return EventVertexAdded
}

func invertNameKind(k Kind) Kind {
	switch k {
	case EventNameDefined:
		return EventNameDeleted
	case EventNameDeleted:
		return EventNameDefined
	default:
		return EventNameUpdated
	}
}

func invertTableKind(k Kind) Kind {
	switch k {
	case EventTableDefined:
		return EventTableDeleted
	case EventTableDeleted:
		return EventTableDefined
	default:
		return EventTableUpdated
	}
}

func invertEdgeKind(k Kind) Kind {
	if k == EventEdgeAdded {
		return EventEdgeRemoved
	}
	return EventEdgeAdded
}

func invertSpillKind(k Kind) Kind {
	if k == EventSpillCommitted {
		return EventSpillCleared
	}
	return EventSpillCommitted
}
