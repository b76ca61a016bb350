package evaluator

import (
	"context"
	"strings"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/function"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// eval walks an AST node and produces its Value, dispatching Call nodes
// through the function registry (or a LET-bound LAMBDA closure) and
// resolving Reference nodes against the store with MVCC-aware reads. This
// is the responsibility the teacher's ASTNode.Eval(*Spreadsheet) methods
// held per-node-type; here it is centralized so evaluation can be
// cancelled, staged, and committed as a unit (spec.md §4.3).
func (e *Evaluator) eval(ctx context.Context, node ast.Node, caller types.CellRef, env *localEnv, fnCtx *function.Context) types.Value {
	select {
	case <-ctx.Done():
		return types.ErrorValue(types.NewError(types.ErrCancelled, ""))
	default:
	}

	switch n := node.(type) {
	case *ast.Literal:
		return n.Value

	case *ast.Reference:
		// LET/LAMBDA-bound names parse identically to a bare named-range
		// reference (the parser can't tell them apart without a symbol
		// table), so a local binding always shadows a workbook named range.
		if n.Kind == ast.RefNamedRange {
			if v, ok := env.lookup(n.Name); ok {
				return v
			}
		}
		return e.evalReference(n, caller)

	case *ast.BinaryOp:
		return e.evalBinary(ctx, n, caller, env, fnCtx)

	case *ast.UnaryOp:
		return e.evalUnary(ctx, n, caller, env, fnCtx)

	case *ast.Array:
		rows := make([][]types.Value, len(n.Rows))
		for i, row := range n.Rows {
			rows[i] = make([]types.Value, len(row))
			for j, cell := range row {
				rows[i][j] = e.eval(ctx, cell, caller, env, fnCtx)
			}
		}
		return types.ArrayValue(rows)

	case *ast.Let:
		child := newLocalEnv(env)
		for _, b := range n.Bindings {
			if lam, ok := b.Value.(*ast.Lambda); ok {
				child.bindClosure(b.Name, closure{params: lam.Params, body: lam.Body, env: child})
				continue
			}
			child.bind(b.Name, e.eval(ctx, b.Value, caller, child, fnCtx))
		}
		return e.eval(ctx, n.Body, caller, child, fnCtx)

	case *ast.Lambda:
		// A bare LAMBDA evaluated outside a binding context has no name to
		// call it by; Excel treats this as a #CALC! (LAMBDA requires
		// invocation or a LET binding).
		return types.ErrorValue(types.NewError(types.ErrCalc, "LAMBDA must be bound or invoked"))

	case *ast.Call:
		return e.evalCall(ctx, n, caller, env, fnCtx)
	}
	return types.ErrorValue(types.NewError(types.ErrGeneric, "unsupported node"))
}

func (e *Evaluator) evalReference(n *ast.Reference, caller types.CellRef) types.Value {
	sheet := caller.Sheet
	if n.Sheet != "" {
		if sid, ok := e.Resolver.ResolveSheet(n.Sheet); ok {
			sheet = sid
		} else {
			return types.ErrorValue(types.NewError(types.ErrRef, "unknown sheet "+n.Sheet))
		}
	}
	switch n.Kind {
	case ast.RefCell:
		ref := types.CellRef{Sheet: sheet, Coord: n.Start}
		return e.Store.EffectiveWithDelta(ref)
	case ast.RefRange:
		return e.readRange(types.RangeRef{Sheet: sheet, Start: n.Start, End: n.End})
	case ast.RefNamedRange:
		rng, ok := e.Resolver.ResolveNamedRange(n.Name)
		if !ok {
			return types.ErrorValue(types.NewError(types.ErrName, "undefined name "+n.Name))
		}
		return e.readRange(rng)
	case ast.RefTable:
		rng, ok := e.Resolver.ResolveTableColumn(n.Table, n.Selector)
		if !ok {
			return types.ErrorValue(types.NewError(types.ErrRef, "unresolved table reference"))
		}
		return e.readRange(rng)
	}
	return types.ErrorValue(types.NewError(types.ErrRef, "malformed reference"))
}

func (e *Evaluator) readRange(rng types.RangeRef) types.Value {
	rows := make([][]types.Value, 0, rng.Rows())
	for r := rng.Start.Row; r <= rng.End.Row; r++ {
		row := make([]types.Value, 0, rng.Cols())
		for c := rng.Start.Col; c <= rng.End.Col; c++ {
			ref := types.CellRef{Sheet: rng.Sheet, Coord: types.Coord{Row: r, Col: c}}
			row = append(row, e.Store.EffectiveWithDelta(ref))
		}
		rows = append(rows, row)
	}
	return types.ArrayValue(rows)
}

func (e *Evaluator) evalCall(ctx context.Context, n *ast.Call, caller types.CellRef, env *localEnv, fnCtx *function.Context) types.Value {
	if c, ok := env.lookupClosure(n.Name); ok {
		return e.invokeClosure(ctx, c, n.Args, caller, env, fnCtx)
	}

	args := make([]types.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.eval(ctx, a, caller, env, fnCtx)
	}

	fn, ok := e.Registry.Lookup("", n.Name)
	if !ok {
		return types.ErrorValue(types.NewError(types.ErrName, "unknown function "+n.Name))
	}
	if !fn.Variadic() && len(args) > fn.MinArgs() {
		// fixed-arity function called with extra args: Excel's own
		// behavior is function-specific, but a conservative #VALUE! is
		// preferable to silently dropping arguments.
		return types.ErrorValue(types.NewError(types.ErrValue, strings.ToUpper(n.Name)+" takes no more than its declared arguments"))
	}
	if len(args) < fn.MinArgs() {
		return types.ErrorValue(types.NewError(types.ErrValue, strings.ToUpper(n.Name)+" requires more arguments"))
	}
	return fn.EvalScalar(fnCtx, args)
}

func (e *Evaluator) invokeClosure(ctx context.Context, c closure, argNodes []ast.Node, caller types.CellRef, callerEnv *localEnv, fnCtx *function.Context) types.Value {
	if len(argNodes) != len(c.params) {
		return types.ErrorValue(types.NewError(types.ErrValue, "argument count does not match LAMBDA parameters"))
	}
	child := newLocalEnv(c.env)
	for i, p := range c.params {
		child.bind(p, e.eval(ctx, argNodes[i], caller, callerEnv, fnCtx))
	}
	return e.eval(ctx, c.body, caller, child, fnCtx)
}

func (e *Evaluator) evalBinary(ctx context.Context, n *ast.BinaryOp, caller types.CellRef, env *localEnv, fnCtx *function.Context) types.Value {
	left := e.eval(ctx, n.Left, caller, env, fnCtx)
	if left.IsError() {
		return left
	}
	right := e.eval(ctx, n.Right, caller, env, fnCtx)
	if right.IsError() {
		return right
	}
	return applyBinary(n.Op, left, right)
}

func (e *Evaluator) evalUnary(ctx context.Context, n *ast.UnaryOp, caller types.CellRef, env *localEnv, fnCtx *function.Context) types.Value {
	operand := e.eval(ctx, n.Operand, caller, env, fnCtx)
	if operand.IsError() {
		return operand
	}
	return applyUnary(n.Op, n.Postfix, operand)
}
