package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestCoord_InBounds(t *testing.T) {
	assert.True(t, types.NewCoord(0, 0).InBounds())
	assert.True(t, types.NewCoord(types.MaxRow, types.MaxCol).InBounds())
	assert.False(t, types.NewCoord(types.MaxRow+1, 0).InBounds())
}

func TestCellRef_String(t *testing.T) {
	ref := types.CellRef{Sheet: 1, Coord: types.Coord{Row: 2, Col: 1, RowAbs: true, ColAbs: true}}
	assert.Equal(t, "sheet(1)!$B$3", ref.String())
}

func TestNewRangeRef_OrdersCorners(t *testing.T) {
	r := types.NewRangeRef(1, 5, 5, 0, 0)
	assert.Equal(t, types.Coord{Row: 0, Col: 0}, r.Start)
	assert.Equal(t, types.Coord{Row: 5, Col: 5}, r.End)
	assert.Equal(t, uint32(6), r.Rows())
	assert.Equal(t, uint32(6), r.Cols())
}

func TestRangeRef_Contains(t *testing.T) {
	r := types.NewRangeRef(1, 0, 0, 10, 10)
	assert.True(t, r.Contains(1, types.NewCoord(5, 5)))
	assert.False(t, r.Contains(2, types.NewCoord(5, 5)))
	assert.False(t, r.Contains(1, types.NewCoord(11, 5)))
}
