package editor

import (
	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// refErr builds the literal #REF! node a reference collapses into when the
// cell(s) it pointed at are deleted out from under it.
func refErr() ast.Node {
	return &ast.Literal{Value: types.ErrorValue(types.NewError(types.ErrRef, "reference deleted"))}
}

// rewriteRefs walks node, replacing each *ast.Reference with whatever fn
// returns for it (fn returning the same pointer back means "unchanged").
// It rebuilds only the branches that actually changed, so an untouched
// subtree is returned by identity — cheap to detect "no rewrite happened"
// with a pointer comparison, which shift.go and MoveRange use to decide
// whether a formula needs rejournaling.
func rewriteRefs(node ast.Node, fn func(*ast.Reference) ast.Node) ast.Node {
	if node == nil {
		return nil
	}
	switch v := node.(type) {
	case *ast.Literal:
		return v
	case *ast.Reference:
		return fn(v)
	case *ast.Call:
		args := make([]ast.Node, len(v.Args))
		changed := false
		for i, a := range v.Args {
			na := rewriteRefs(a, fn)
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return v
		}
		return &ast.Call{Name: v.Name, Args: args, IsVolatile: v.IsVolatile, SpanInfo: v.SpanInfo}
	case *ast.BinaryOp:
		l := rewriteRefs(v.Left, fn)
		r := rewriteRefs(v.Right, fn)
		if l == v.Left && r == v.Right {
			return v
		}
		return &ast.BinaryOp{Op: v.Op, Left: l, Right: r, SpanInfo: v.SpanInfo}
	case *ast.UnaryOp:
		o := rewriteRefs(v.Operand, fn)
		if o == v.Operand {
			return v
		}
		return &ast.UnaryOp{Op: v.Op, Postfix: v.Postfix, Operand: o, SpanInfo: v.SpanInfo}
	case *ast.Array:
		changed := false
		rows := make([][]ast.Node, len(v.Rows))
		for i, row := range v.Rows {
			nr := make([]ast.Node, len(row))
			for j, c := range row {
				nc := rewriteRefs(c, fn)
				nr[j] = nc
				if nc != c {
					changed = true
				}
			}
			rows[i] = nr
		}
		if !changed {
			return v
		}
		return &ast.Array{Rows: rows, SpanInfo: v.SpanInfo}
	case *ast.Let:
		changed := false
		bindings := make([]ast.LetBinding, len(v.Bindings))
		for i, b := range v.Bindings {
			nb := rewriteRefs(b.Value, fn)
			bindings[i] = ast.LetBinding{Name: b.Name, Value: nb}
			if nb != b.Value {
				changed = true
			}
		}
		body := rewriteRefs(v.Body, fn)
		if !changed && body == v.Body {
			return v
		}
		return &ast.Let{Bindings: bindings, Body: body, SpanInfo: v.SpanInfo}
	case *ast.Lambda:
		body := rewriteRefs(v.Body, fn)
		if body == v.Body {
			return v
		}
		return &ast.Lambda{Params: v.Params, Body: body, SpanInfo: v.SpanInfo}
	default:
		return node
	}
}
