// Package ast defines the formula AST contract: the node shapes a parser
// produces and an evaluator consumes. Unlike the teacher's ASTNode, nodes
// here do not evaluate themselves against a spreadsheet; evaluation is the
// evaluator package's job, walking the tree and dispatching through
// internal/function. This split is what lets the dependency graph extract
// references from a formula without running it.
package ast

import (
	"fmt"
	"strings"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// Span marks a node's source position for diagnostics and error location
// reporting.
type Span struct {
	Start int
	End   int
}

// Node is the common interface every AST node satisfies.
type Node interface {
	Span() Span
	// Volatile reports whether this node or any descendant is a call to a
	// volatile function (NOW, RAND, ...), found by walking the subtree on
	// each call (the parser sets only each Call's IsVolatile flag).
	Volatile() bool
	String() string
}

// ReferenceKind discriminates the variants a Reference node can carry.
type ReferenceKind uint8

const (
	RefCell ReferenceKind = iota
	RefRange
	RefNamedRange
	RefTable
)

// Literal is a scalar constant: string, number, boolean, or error literal.
type Literal struct {
	Value    types.Value
	SpanInfo Span
}

func (n *Literal) Span() Span     { return n.SpanInfo }
func (n *Literal) Volatile() bool { return false }
func (n *Literal) String() string {
	if n.Value.Kind == types.KindText {
		return fmt.Sprintf("%q", n.Value.Text)
	}
	return n.Value.String()
}

// TableSelector narrows a structured-table reference to a column, the
// header row, the totals row, or the whole data body (spec.md §4.4
// structured table references).
type TableSelector struct {
	Column     string // empty means "all columns"
	Headers    bool
	Totals     bool
	ThisRow    bool
}

// Reference is any of: a single cell, a rectangular range, a named range,
// or a structured table reference. Only the fields matching Kind apply.
type Reference struct {
	Kind ReferenceKind

	// RefCell / RefRange
	Sheet    string // empty means "current sheet at eval time"
	Start    types.Coord
	End      types.Coord // equals Start for RefCell
	IsRange  bool

	// RefNamedRange
	Name string

	// RefTable
	Table    string
	Selector TableSelector

	SpanInfo Span
}

func (n *Reference) Span() Span     { return n.SpanInfo }
func (n *Reference) Volatile() bool { return false }
func (n *Reference) String() string {
	switch n.Kind {
	case RefNamedRange:
		return n.Name
	case RefTable:
		sel := n.Selector.Column
		if n.Selector.Headers {
			sel = "#Headers"
		} else if n.Selector.Totals {
			sel = "#Totals"
		}
		return fmt.Sprintf("%s[%s]", n.Table, sel)
	default:
		prefix := ""
		if n.Sheet != "" {
			prefix = n.Sheet + "!"
		}
		if !n.IsRange {
			return prefix + cellA1(n.Start)
		}
		return fmt.Sprintf("%s%s:%s", prefix, cellA1(n.Start), cellA1(n.End))
	}
}

// cellA1 renders c without a sheet prefix; CellRef.String always adds one.
func cellA1(c types.Coord) string {
	s := types.CellRef{Coord: c}.String()
	return s[strings.IndexByte(s, '!')+1:]
}

// Call invokes a named function (builtin, user-defined via LAMBDA, or a
// LET-bound local) with positional arguments.
type Call struct {
	Name      string
	Args      []Node
	IsVolatile bool
	SpanInfo  Span
}

func (n *Call) Span() Span { return n.SpanInfo }
func (n *Call) Volatile() bool {
	if n.IsVolatile {
		return true
	}
	for _, a := range n.Args {
		if a.Volatile() {
			return true
		}
	}
	return false
}
func (n *Call) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(parts, ","))
}

// BinaryOp applies an infix operator (+ - * / ^ & = <> < <= > >=) to two
// operands.
type BinaryOp struct {
	Op       string
	Left     Node
	Right    Node
	SpanInfo Span
}

func (n *BinaryOp) Span() Span { return n.SpanInfo }
func (n *BinaryOp) Volatile() bool {
	return n.Left.Volatile() || n.Right.Volatile()
}
func (n *BinaryOp) String() string {
	return fmt.Sprintf("(%s%s%s)", n.Left.String(), n.Op, n.Right.String())
}

// UnaryOp applies a prefix or postfix operator (-x, +x, x%) to one operand.
type UnaryOp struct {
	Op       string
	Postfix  bool
	Operand  Node
	SpanInfo Span
}

func (n *UnaryOp) Span() Span     { return n.SpanInfo }
func (n *UnaryOp) Volatile() bool { return n.Operand.Volatile() }
func (n *UnaryOp) String() string {
	if n.Postfix {
		return fmt.Sprintf("(%s%s)", n.Operand.String(), n.Op)
	}
	return fmt.Sprintf("(%s%s)", n.Op, n.Operand.String())
}

// Array is an in-formula array literal, e.g. {1,2;3,4}.
type Array struct {
	Rows     [][]Node
	SpanInfo Span
}

func (n *Array) Span() Span { return n.SpanInfo }
func (n *Array) Volatile() bool {
	for _, row := range n.Rows {
		for _, cell := range row {
			if cell.Volatile() {
				return true
			}
		}
	}
	return false
}
func (n *Array) String() string {
	rows := make([]string, len(n.Rows))
	for i, row := range n.Rows {
		parts := make([]string, len(row))
		for j, c := range row {
			parts[j] = c.String()
		}
		rows[i] = strings.Join(parts, ",")
	}
	return "{" + strings.Join(rows, ";") + "}"
}

// LetBinding is one name=value pair inside a LET(...) call.
type LetBinding struct {
	Name  string
	Value Node
}

// Let introduces local names bound to sub-expressions, scoped to Body
// (spec.md §4.3 local environments). Bindings see earlier bindings in the
// same Let, matching Excel's LET evaluation order.
type Let struct {
	Bindings []LetBinding
	Body     Node
	SpanInfo Span
}

func (n *Let) Span() Span { return n.SpanInfo }
func (n *Let) Volatile() bool {
	for _, b := range n.Bindings {
		if b.Value.Volatile() {
			return true
		}
	}
	return n.Body.Volatile()
}
func (n *Let) String() string {
	parts := make([]string, 0, len(n.Bindings)*2+1)
	for _, b := range n.Bindings {
		parts = append(parts, b.Name, b.Value.String())
	}
	parts = append(parts, n.Body.String())
	return fmt.Sprintf("LET(%s)", strings.Join(parts, ","))
}

// Lambda is an anonymous, possibly recursive function value: LAMBDA(params,
// body). It is itself a first-class Node so it can be bound by LET or
// passed as an argument to higher-order functions (MAP, REDUCE, BYROW).
type Lambda struct {
	Params   []string
	Body     Node
	SpanInfo Span
}

func (n *Lambda) Span() Span     { return n.SpanInfo }
func (n *Lambda) Volatile() bool { return n.Body.Volatile() }
func (n *Lambda) String() string {
	return fmt.Sprintf("LAMBDA(%s,%s)", strings.Join(n.Params, ","), n.Body.String())
}
