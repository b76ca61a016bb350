package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/graph"
)

func TestRowVisibility_ManualAndFilterAreIndependent(t *testing.T) {
	v := graph.NewRowVisibility()
	v.SetHidden(1, 5, graph.VisibilityManual, true)

	assert.True(t, v.IsHidden(1, 5, graph.MaskExcludeManual))
	assert.False(t, v.IsHidden(1, 5, graph.MaskExcludeFilter))
	assert.True(t, v.IsHidden(1, 5, graph.MaskExcludeManualOrFilter))
	assert.False(t, v.IsHidden(1, 5, graph.MaskIncludeAll))
}

func TestRowVisibility_ShiftRowsCarriesBitsAndDrops(t *testing.T) {
	v := graph.NewRowVisibility()
	v.SetHidden(1, 3, graph.VisibilityManual, true)
	v.SetHidden(1, 10, graph.VisibilityManual, true)

	// delete 2 rows starting at row 5: row 3 (before the cut) survives
	// unmoved, row 10 shifts down to row 8.
	v.ShiftRows(1, 5, -2)

	assert.True(t, v.IsHidden(1, 3, graph.MaskExcludeManual))
	assert.True(t, v.IsHidden(1, 8, graph.MaskExcludeManual))
	assert.False(t, v.IsHidden(1, 10, graph.MaskExcludeManual))
}

func TestRowVisibility_ShiftRowsDropsDeletedRow(t *testing.T) {
	v := graph.NewRowVisibility()
	v.SetHidden(1, 6, graph.VisibilityManual, true)
	v.ShiftRows(1, 5, -2) // rows 5,6 deleted
	assert.False(t, v.IsHidden(1, 6, graph.MaskExcludeManual))
	assert.False(t, v.IsHidden(1, 4, graph.MaskExcludeManual))
}
