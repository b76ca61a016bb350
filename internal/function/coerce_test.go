package function

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// internal package test: coerce.go's helpers are unexported.

func TestFlatten_ExpandsNestedArrays(t *testing.T) {
	arr := types.ArrayValue([][]types.Value{{types.IntValue(1), types.IntValue(2)}})
	out := flatten([]types.Value{arr, types.IntValue(3)})
	assert.Equal(t, []types.Value{types.IntValue(1), types.IntValue(2), types.IntValue(3)}, out)
}

func TestToNumber_ParsesNumericText(t *testing.T) {
	n, ok := toNumber(types.TextValue("  3.5  "))
	assert.True(t, ok)
	assert.Equal(t, 3.5, n)

	_, ok = toNumber(types.TextValue("not a number"))
	assert.False(t, ok)
}

func TestToBool_CoercesTextAndNumbers(t *testing.T) {
	b, ok := toBool(types.TextValue("true"))
	assert.True(t, ok)
	assert.True(t, b)

	b, ok = toBool(types.IntValue(0))
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = toBool(types.TextValue("maybe"))
	assert.False(t, ok)
}

func TestFirstError_ReturnsLeftmostError(t *testing.T) {
	e1 := types.NewError(types.ErrDiv0, "")
	e2 := types.NewError(types.ErrNA, "")
	got := firstError([]types.Value{types.IntValue(1), types.ErrorValue(e1), types.ErrorValue(e2)})
	assert.Same(t, e1, got)
}

func TestRequireNumbers_SkipsEmptyPropagatesError(t *testing.T) {
	nums, errv := requireNumbers([]types.Value{types.IntValue(1), types.Empty, types.NumberValue(2.5)})
	assert.Nil(t, errv)
	assert.Equal(t, []float64{1, 2.5}, nums)

	_, errv = requireNumbers([]types.Value{types.ErrorValue(types.NewError(types.ErrValue, ""))})
	assert.NotNil(t, errv)
}
