package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestValue_AsNumber(t *testing.T) {
	n, ok := types.IntValue(3).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, float64(3), n)

	n, ok = types.BoolValue(true).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, float64(1), n)

	_, ok = types.TextValue("x").AsNumber()
	assert.False(t, ok)
}

func TestValue_IsErrorIsEmpty(t *testing.T) {
	assert.True(t, types.Empty.IsEmpty())
	assert.False(t, types.Empty.IsError())

	errVal := types.ErrorValue(types.NewError(types.ErrDiv0, ""))
	assert.True(t, errVal.IsError())
}

func TestValue_Dims(t *testing.T) {
	rows, cols := types.IntValue(1).Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, cols)

	arr := types.ArrayValue([][]types.Value{
		{types.IntValue(1), types.IntValue(2)},
		{types.IntValue(3), types.IntValue(4)},
	})
	rows, cols = arr.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
}

func TestExcelError_WithOrigin_FirstWins(t *testing.T) {
	ref1 := types.CellRef{Sheet: 1, Coord: types.NewCoord(0, 0)}
	ref2 := types.CellRef{Sheet: 1, Coord: types.NewCoord(5, 5)}

	e := types.NewError(types.ErrDiv0, "").WithOrigin(ref1)
	e2 := e.WithOrigin(ref2)
	assert.Same(t, e, e2)
	assert.Equal(t, ref1, *e.Location)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "#DIV/0!", types.ErrDiv0.String())
	assert.Equal(t, "#SPILL!", types.ErrSpill.String())
	assert.Equal(t, "#CIRC!", types.ErrCirc.String())
}
