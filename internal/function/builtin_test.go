package function_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/function"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func lookup(t *testing.T, name string) function.Function {
	t.Helper()
	fn, ok := function.Global().Lookup("", name)
	require.True(t, ok, "builtin %s not registered", name)
	return fn
}

func TestBuiltin_SUM_AddsFlattenedArgs(t *testing.T) {
	sum := lookup(t, "SUM")
	arr := types.ArrayValue([][]types.Value{{types.IntValue(1), types.IntValue(2)}})
	got := sum.EvalScalar(&function.Context{}, []types.Value{arr, types.IntValue(3)})
	assert.Equal(t, types.NumberValue(6), got)
}

func TestBuiltin_AVERAGE_OfEmptyRangeIsNumError(t *testing.T) {
	avg := lookup(t, "AVERAGE")
	got := avg.EvalScalar(&function.Context{}, []types.Value{types.Empty})
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrNum, got.Error.Kind)
}

func TestBuiltin_IF_PropagatesConditionError(t *testing.T) {
	ifFn := lookup(t, "IF")
	errv := types.ErrorValue(types.NewError(types.ErrDiv0, ""))
	got := ifFn.EvalScalar(&function.Context{}, []types.Value{errv, types.IntValue(1), types.IntValue(2)})
	assert.Equal(t, errv, got)
}

func TestBuiltin_IF_NoElseDefaultsFalse(t *testing.T) {
	ifFn := lookup(t, "IF")
	got := ifFn.EvalScalar(&function.Context{}, []types.Value{types.BoolValue(false), types.IntValue(1)})
	assert.Equal(t, types.BoolValue(false), got)
}

func TestBuiltin_IFERROR_FallsBackOnError(t *testing.T) {
	fn := lookup(t, "IFERROR")
	errv := types.ErrorValue(types.NewError(types.ErrNA, ""))
	got := fn.EvalScalar(&function.Context{}, []types.Value{errv, types.IntValue(9)})
	assert.Equal(t, types.IntValue(9), got)
}

func TestBuiltin_ISNA_OnlyTrueForNA(t *testing.T) {
	fn := lookup(t, "ISNA")
	na := types.ErrorValue(types.NewError(types.ErrNA, ""))
	div0 := types.ErrorValue(types.NewError(types.ErrDiv0, ""))
	assert.Equal(t, types.BoolValue(true), fn.EvalScalar(&function.Context{}, []types.Value{na}))
	assert.Equal(t, types.BoolValue(false), fn.EvalScalar(&function.Context{}, []types.Value{div0}))
}

func TestBuiltin_ROUND_RoundsToGivenDigits(t *testing.T) {
	fn := lookup(t, "ROUND")
	got := fn.EvalScalar(&function.Context{}, []types.Value{types.NumberValue(3.14159), types.IntValue(2)})
	assert.Equal(t, types.NumberValue(3.14), got)
}

func TestBuiltin_MOD_ByZeroIsDiv0(t *testing.T) {
	fn := lookup(t, "MOD")
	got := fn.EvalScalar(&function.Context{}, []types.Value{types.IntValue(5), types.IntValue(0)})
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrDiv0, got.Error.Kind)
}

func TestBuiltin_VLOOKUP_FindsMatchingRow(t *testing.T) {
	fn := lookup(t, "VLOOKUP")
	table := types.ArrayValue([][]types.Value{
		{types.TextValue("a"), types.IntValue(1)},
		{types.TextValue("b"), types.IntValue(2)},
	})
	got := fn.EvalScalar(&function.Context{}, []types.Value{types.TextValue("b"), table, types.IntValue(2)})
	assert.Equal(t, types.IntValue(2), got)
}

func TestBuiltin_VLOOKUP_NoMatchIsNA(t *testing.T) {
	fn := lookup(t, "VLOOKUP")
	table := types.ArrayValue([][]types.Value{{types.TextValue("a"), types.IntValue(1)}})
	got := fn.EvalScalar(&function.Context{}, []types.Value{types.TextValue("z"), table, types.IntValue(2)})
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrNA, got.Error.Kind)
}

func TestBuiltin_NOW_DelegatesToContextClock(t *testing.T) {
	fn := lookup(t, "NOW")
	fixed := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	ctx := &function.Context{Now: func() types.Value { return types.Value{Kind: types.KindDateTime, Time: fixed} }}
	got := fn.EvalScalar(ctx, nil)
	assert.True(t, fixed.Equal(got.Time))
}

func TestBuiltin_RANDBETWEEN_StaysWithinBounds(t *testing.T) {
	fn := lookup(t, "RANDBETWEEN")
	ctx := &function.Context{Rand: func() float64 { return 0.999 }}
	got := fn.EvalScalar(ctx, []types.Value{types.IntValue(1), types.IntValue(3)})
	require.Equal(t, types.KindInt, got.Kind)
	assert.LessOrEqual(t, got.Int, int64(3))
	assert.GreaterOrEqual(t, got.Int, int64(1))
}
