package types

import (
	"fmt"
	"time"
)

// Kind discriminates the Value union described in spec.md §3.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindInt
	KindNumber
	KindText
	KindBoolean
	KindError
	KindArray
	KindDate
	KindDateTime
	KindTime
	KindDuration
	KindPending
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindInt:
		return "Int"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindBoolean:
		return "Boolean"
	case KindError:
		return "Error"
	case KindArray:
		return "Array"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindTime:
		return "Time"
	case KindDuration:
		return "Duration"
	case KindPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// ErrorKind enumerates the Excel-compatible error codes a cell can resolve
// to. These are ordinary values, not Go errors: they flow through the
// evaluator like any other Value (spec.md §7 layer 1).
type ErrorKind uint8

const (
	ErrNull ErrorKind = iota
	ErrDiv0
	ErrName
	ErrValue
	ErrRef
	ErrNum
	ErrNA
	ErrGeneric
	ErrNotImplemented
	ErrSpill
	ErrCalc
	ErrCirc
	ErrCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNull:
		return "#NULL!"
	case ErrDiv0:
		return "#DIV/0!"
	case ErrName:
		return "#NAME?"
	case ErrValue:
		return "#VALUE!"
	case ErrRef:
		return "#REF!"
	case ErrNum:
		return "#NUM!"
	case ErrNA:
		return "#N/A"
	case ErrNotImplemented:
		return "#N/IMPL!"
	case ErrSpill:
		return "#SPILL!"
	case ErrCalc:
		return "#CALC!"
	case ErrCirc:
		return "#CIRC!"
	case ErrCancelled:
		return "#CANCELLED!"
	default:
		return "#ERROR!"
	}
}

// SpillPayload is the kind-specific payload an ErrSpill ExcelError carries:
// the rectangle the anchor formula would have projected onto, had it not
// collided with existing data.
type SpillPayload struct {
	Rows int
	Cols int
}

// ExcelError is the value representation of a formula error: it carries a
// kind, an optional human message, an optional originating location (so the
// first #DIV/0! surfaces with its source cell, spec.md §4.3), and an
// optional kind-specific payload.
type ExcelError struct {
	Kind     ErrorKind
	Message  string
	Location *CellRef
	Payload  any
}

func (e *ExcelError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

// NewError constructs an ExcelError with no location or payload attached.
func NewError(kind ErrorKind, message string) *ExcelError {
	return &ExcelError{Kind: kind, Message: message}
}

// WithOrigin returns a copy of e with its originating location set, unless
// one is already attached (first #DIV/0! wins, not the last reattachment).
func (e *ExcelError) WithOrigin(ref CellRef) *ExcelError {
	if e.Location != nil {
		return e
	}
	cp := *e
	cp.Location = &ref
	return &cp
}

// Value is the tagged union every cell, literal, and function result is
// expressed in. Only the field matching Kind is meaningful.
type Value struct {
	Kind    Kind
	Int     int64
	Number  float64
	Text    string
	Boolean bool
	Error   *ExcelError
	Array   [][]Value
	Time    time.Time // used for Date/DateTime/Time kinds
	Dur     time.Duration
}

// Empty is the canonical empty-cell value.
var Empty = Value{Kind: KindEmpty}

// Pending marks a value still awaiting evaluation (used transiently during
// parallel layer execution before a worker's result is committed).
var Pending = Value{Kind: KindPending}

func IntValue(n int64) Value      { return Value{Kind: KindInt, Int: n} }
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Number: n} }
func TextValue(s string) Value    { return Value{Kind: KindText, Text: s} }
func BoolValue(b bool) Value      { return Value{Kind: KindBoolean, Boolean: b} }
func ArrayValue(rows [][]Value) Value {
	return Value{Kind: KindArray, Array: rows}
}
func ErrorValue(e *ExcelError) Value { return Value{Kind: KindError, Error: e} }

// IsError reports whether v is an error value.
func (v Value) IsError() bool { return v.Kind == KindError }

// IsEmpty reports whether v is the empty-cell value.
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// AsNumber coerces numeric-like values (Int, Number, Boolean) to float64.
// Date/DateTime, Text and Array are not coercible here; see the
// function package's lenient-scalar coercion for text-to-number parsing.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindNumber:
		return v.Number, true
	case KindBoolean:
		if v.Boolean {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// String renders a Value for diagnostics and ToString() round-tripping of
// literals; it is not a locale-aware display formatter.
func (v Value) String() string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindNumber:
		return fmt.Sprintf("%g", v.Number)
	case KindText:
		return v.Text
	case KindBoolean:
		if v.Boolean {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.Error.Error()
	case KindArray:
		return fmt.Sprintf("Array[%dx%d]", len(v.Array), arrayCols(v.Array))
	default:
		return v.Kind.String()
	}
}

func arrayCols(rows [][]Value) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}

// Dims returns the rectangle dimensions of an Array value; non-arrays are
//1x1.
func (v Value) Dims() (rows, cols int) {
	if v.Kind != KindArray {
		return 1, 1
	}
	return len(v.Array), arrayCols(v.Array)
}
