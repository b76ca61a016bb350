package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/evaluator"
	"github.com/PSU3D0/cellgraph/internal/graph"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/internal/valuestore"
)

func rows2x2() [][]types.Value {
	return [][]types.Value{
		{types.IntValue(1), types.IntValue(2)},
		{types.IntValue(3), types.IntValue(4)},
	}
}

func TestSpillEngine_Apply_WritesRectangleAndKeepsAnchorAsResult(t *testing.T) {
	store := valuestore.NewStore()
	se := evaluator.NewSpillEngine(store)
	anchor := cellRef(0, 0)

	got := se.Apply(anchor, rows2x2(), graph.VertexId(1))
	assert.Equal(t, types.ArrayValue(rows2x2()), got)
	assert.Equal(t, types.IntValue(2), store.Effective(cellRef(0, 1)))
	assert.Equal(t, types.IntValue(3), store.Effective(cellRef(1, 0)))
	assert.Equal(t, types.IntValue(4), store.Effective(cellRef(1, 1)))
}

func TestSpillEngine_Apply_CollidesWithExistingLiteral(t *testing.T) {
	store := valuestore.NewStore()
	store.Set(cellRef(1, 1), types.IntValue(99))
	se := evaluator.NewSpillEngine(store)

	got := se.Apply(cellRef(0, 0), rows2x2(), graph.VertexId(1))
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrSpill, got.Error.Kind)
	// the collided-with cell must be untouched
	assert.Equal(t, types.IntValue(99), store.Effective(cellRef(1, 1)))
}

func TestSpillEngine_Apply_LowerIdOwnerWinsConflict(t *testing.T) {
	store := valuestore.NewStore()
	se := evaluator.NewSpillEngine(store)

	first := se.Apply(cellRef(0, 0), rows2x2(), graph.VertexId(1))
	require.False(t, first.IsError())

	// a higher-id anchor whose rectangle overlaps vertex 1's spill loses.
	second := se.Apply(cellRef(0, 1), rows2x2(), graph.VertexId(2))
	require.True(t, second.IsError())
	assert.Equal(t, types.ErrSpill, second.Error.Kind)

	// vertex 1's cells remain intact
	assert.Equal(t, types.IntValue(4), store.Effective(cellRef(1, 1)))
}

func TestSpillEngine_Apply_HigherIdOwnerLosesToLowerIncomingAnchor(t *testing.T) {
	store := valuestore.NewStore()
	se := evaluator.NewSpillEngine(store)

	// vertex 5 spills first at (0,1)
	higher := se.Apply(cellRef(0, 1), rows2x2(), graph.VertexId(5))
	require.False(t, higher.IsError())

	// vertex 2 (lower id) now spills, overlapping vertex 5's rectangle at (0,1)+.
	lower := se.Apply(cellRef(0, 0), rows2x2(), graph.VertexId(2))
	require.False(t, lower.IsError(), "a lower vertex id must win over a previously-applied higher id")
}

func TestSpillEngine_Apply_ReleasesStaleCellsOnReapply(t *testing.T) {
	store := valuestore.NewStore()
	se := evaluator.NewSpillEngine(store)
	id := graph.VertexId(1)

	se.Apply(cellRef(0, 0), rows2x2(), id)
	assert.False(t, store.Effective(cellRef(1, 1)).IsEmpty())

	// re-apply with a smaller 1x1 result: the previously spilled cells must
	// be released, not left dangling with stale computed values.
	smaller := [][]types.Value{{types.IntValue(42)}}
	se.Apply(cellRef(0, 0), smaller, id)
	assert.True(t, store.Effective(cellRef(1, 1)).IsEmpty())
	assert.True(t, store.Effective(cellRef(0, 1)).IsEmpty())
}

func TestSpillEngine_Apply_ExceedsMaxCellsIsSpillError(t *testing.T) {
	store := valuestore.NewStore()
	se := evaluator.NewSpillEngine(store)
	se.MaxCells = 3

	got := se.Apply(cellRef(0, 0), rows2x2(), graph.VertexId(1))
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrSpill, got.Error.Kind)
}
