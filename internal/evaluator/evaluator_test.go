package evaluator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/evaluator"
	"github.com/PSU3D0/cellgraph/internal/graph"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/internal/valuestore"
)

type stubResolver struct{}

func (stubResolver) ResolveSheet(name string) (types.SheetId, bool) { return 0, false }
func (stubResolver) ResolveNamedRange(name string) (types.RangeRef, bool) {
	return types.RangeRef{}, false
}
func (stubResolver) ResolveTableColumn(table string, sel ast.TableSelector) (types.RangeRef, bool) {
	return types.RangeRef{}, false
}
func (stubResolver) DateSystem() types.DateSystem { return types.Excel1900 }

func cellRef(row, col uint32) types.CellRef {
	return types.CellRef{Sheet: 1, Coord: types.NewCoord(row, col)}
}

func refNode(row, col uint32) ast.Node {
	return &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(row, col)}
}

func newEval() (*evaluator.Evaluator, *graph.Graph, *valuestore.Store) {
	g := graph.NewGraph()
	store := valuestore.NewStore()
	ev := evaluator.New(g, store, stubResolver{})
	return ev, g, store
}

func TestEvaluator_Recalculate_SimpleArithmeticChain(t *testing.T) {
	ev, g, store := newEval()
	store.Set(cellRef(0, 0), types.IntValue(2))
	b1 := cellRef(0, 1)
	g.SetFormula(b1, &ast.BinaryOp{Op: "+", Left: refNode(0, 0), Right: &ast.Literal{Value: types.IntValue(3)}}, nil, nil)

	n, circ, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, circ)
	assert.Equal(t, 1, n)
	assert.Equal(t, types.NumberValue(5), store.Effective(b1))
}

func TestEvaluator_Recalculate_SUMOverRange(t *testing.T) {
	ev, g, store := newEval()
	store.Set(cellRef(0, 0), types.IntValue(1))
	store.Set(cellRef(1, 0), types.IntValue(2))
	store.Set(cellRef(2, 0), types.IntValue(3))

	sum := cellRef(3, 0)
	rangeNode := &ast.Reference{Kind: ast.RefRange, IsRange: true, Start: types.NewCoord(0, 0), End: types.NewCoord(2, 0)}
	g.SetFormula(sum, &ast.Call{Name: "SUM", Args: []ast.Node{rangeNode}}, nil, nil)

	_, _, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.NumberValue(6), store.Effective(sum))
}

func TestEvaluator_Recalculate_CircularReferenceAssignsCirc(t *testing.T) {
	ev, g, store := newEval()
	a1, b1 := cellRef(0, 0), cellRef(0, 1)
	g.SetFormula(a1, refNode(0, 1), nil, nil)
	g.SetFormula(b1, refNode(0, 0), nil, nil)

	_, circ, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	assert.Len(t, circ, 2)
	got := store.Effective(a1)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrCirc, got.Error.Kind)
}

func TestEvaluator_Recalculate_LetBindingShadowsNamedRange(t *testing.T) {
	ev, g, store := newEval()
	cell := cellRef(0, 0)
	letNode := &ast.Let{
		Bindings: []ast.LetBinding{{Name: "x", Value: &ast.Literal{Value: types.IntValue(10)}}},
		Body: &ast.BinaryOp{
			Op:    "+",
			Left:  &ast.Reference{Kind: ast.RefNamedRange, Name: "x"},
			Right: &ast.Literal{Value: types.IntValue(1)},
		},
	}
	g.SetFormula(cell, letNode, nil, nil)

	_, _, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.NumberValue(11), store.Effective(cell))
}

func TestEvaluator_Recalculate_LambdaBoundViaLetIsInvokable(t *testing.T) {
	ev, g, store := newEval()
	cell := cellRef(0, 0)
	// LET(double, LAMBDA(n, n*2), double(21))
	letNode := &ast.Let{
		Bindings: []ast.LetBinding{
			{Name: "double", Value: &ast.Lambda{
				Params: []string{"n"},
				Body: &ast.BinaryOp{
					Op:    "*",
					Left:  &ast.Reference{Kind: ast.RefNamedRange, Name: "n"},
					Right: &ast.Literal{Value: types.IntValue(2)},
				},
			}},
		},
		Body: &ast.Call{Name: "double", Args: []ast.Node{&ast.Literal{Value: types.IntValue(21)}}},
	}
	g.SetFormula(cell, letNode, nil, nil)

	_, _, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.NumberValue(42), store.Effective(cell))
}

func TestEvaluator_Recalculate_UnknownFunctionIsNameError(t *testing.T) {
	ev, g, store := newEval()
	cell := cellRef(0, 0)
	g.SetFormula(cell, &ast.Call{Name: "NOTAREALFUNCTION"}, nil, nil)

	_, _, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	got := store.Effective(cell)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrName, got.Error.Kind)
}

func TestEvaluator_Recalculate_DivisionByZero(t *testing.T) {
	ev, g, store := newEval()
	cell := cellRef(0, 0)
	g.SetFormula(cell, &ast.BinaryOp{Op: "/", Left: &ast.Literal{Value: types.IntValue(1)}, Right: &ast.Literal{Value: types.IntValue(0)}}, nil, nil)

	_, _, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	got := store.Effective(cell)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrDiv0, got.Error.Kind)
}

func TestEvaluator_Recalculate_VolatileNowUsesInjectedClock(t *testing.T) {
	ev, g, store := newEval()
	fixed := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	ev.WithClock(func() time.Time { return fixed })

	cell := cellRef(0, 0)
	g.SetFormula(cell, &ast.Call{Name: "NOW", IsVolatile: true}, nil, nil)

	_, _, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	got := store.Effective(cell)
	assert.True(t, fixed.Equal(got.Time))
}

func TestEvaluator_Recalculate_DependentOrderingIsDeterministic(t *testing.T) {
	ev, g, store := newEval()
	store.Set(cellRef(0, 0), types.IntValue(1))
	prev := cellRef(0, 0)
	for i := 1; i <= 20; i++ {
		next := cellRef(0, uint32(i))
		g.SetFormula(next, &ast.BinaryOp{Op: "+", Left: refNode(prev.Coord.Row, prev.Coord.Col), Right: &ast.Literal{Value: types.IntValue(1)}}, nil, nil)
		prev = next
	}

	_, _, err := ev.Recalculate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.NumberValue(21), store.Effective(prev))
}

func TestEvaluator_Recalculate_CancelledContextDiscardsDeltas(t *testing.T) {
	ev, g, store := newEval()
	store.Set(cellRef(0, 0), types.IntValue(1))
	cell := cellRef(0, 1)
	g.SetFormula(cell, refNode(0, 0), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ev.Recalculate(ctx)
	assert.Error(t, err)
	assert.True(t, store.Effective(cell).IsEmpty(), "a cancelled pass must not commit partial results")
}
