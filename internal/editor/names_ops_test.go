package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/editor"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestDefineName_UndoRedo(t *testing.T) {
	e, sheet := newEditor(t)
	rng := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}

	require.NoError(t, e.DefineName("X", 0, rng))
	got, ok := e.Names.ResolveNamedRange("X")
	require.True(t, ok)
	assert.Equal(t, rng, got)

	require.NoError(t, e.Journal.Undo())
	_, ok = e.Names.ResolveNamedRange("X")
	assert.False(t, ok)

	require.NoError(t, e.Journal.Redo())
	got, ok = e.Names.ResolveNamedRange("X")
	require.True(t, ok)
	assert.Equal(t, rng, got)
}

func TestDefineName_DuplicateErrors(t *testing.T) {
	e, sheet := newEditor(t)
	rng := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}
	require.NoError(t, e.DefineName("X", 0, rng))
	require.Error(t, e.DefineName("X", 0, rng))
}

func TestUpdateName_UndoRestoresPriorRange(t *testing.T) {
	e, sheet := newEditor(t)
	rng1 := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}
	rng2 := types.RangeRef{Sheet: sheet, Start: types.NewCoord(1, 1), End: types.NewCoord(1, 1)}
	require.NoError(t, e.DefineName("X", 0, rng1))
	require.NoError(t, e.UpdateName("X", 0, rng2))

	got, _ := e.Names.ResolveNamedRange("X")
	assert.Equal(t, rng2, got)

	require.NoError(t, e.Journal.Undo())
	got, _ = e.Names.ResolveNamedRange("X")
	assert.Equal(t, rng1, got)
}

func TestUpdateName_UnknownErrors(t *testing.T) {
	e, sheet := newEditor(t)
	rng := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}
	require.Error(t, e.UpdateName("nope", 0, rng))
}

func TestDeleteName_UndoRedefines(t *testing.T) {
	e, sheet := newEditor(t)
	rng := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}
	require.NoError(t, e.DefineName("X", 0, rng))
	require.NoError(t, e.DeleteName("X", 0))
	_, ok := e.Names.ResolveNamedRange("X")
	assert.False(t, ok)

	require.NoError(t, e.Journal.Undo())
	got, ok := e.Names.ResolveNamedRange("X")
	require.True(t, ok)
	assert.Equal(t, rng, got)
}

func TestDefineTable_UndoRedo(t *testing.T) {
	e, sheet := newEditor(t)
	rng := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(2, 1)}
	tbl := editor.Table{Name: "Sales", Range: rng, Headers: []string{"Item", "Amount"}}

	require.NoError(t, e.DefineTable(tbl))
	got, ok := e.Names.Table("Sales")
	require.True(t, ok)
	assert.Equal(t, rng, got.Range)

	require.NoError(t, e.Journal.Undo())
	_, ok = e.Names.Table("Sales")
	assert.False(t, ok)

	require.NoError(t, e.Journal.Redo())
	_, ok = e.Names.Table("Sales")
	assert.True(t, ok)
}

func TestUpdateTable_UndoRestoresPriorRange(t *testing.T) {
	e, sheet := newEditor(t)
	rng1 := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(2, 1)}
	rng2 := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(4, 1)}
	tbl := editor.Table{Name: "Sales", Range: rng1, Headers: []string{"Item", "Amount"}}
	require.NoError(t, e.DefineTable(tbl))

	updated := tbl
	updated.Range = rng2
	require.NoError(t, e.UpdateTable(updated))
	got, _ := e.Names.Table("Sales")
	assert.Equal(t, rng2, got.Range)

	require.NoError(t, e.Journal.Undo())
	got, _ = e.Names.Table("Sales")
	assert.Equal(t, rng1, got.Range)
}

func TestDeleteTable_UnknownErrors(t *testing.T) {
	e, _ := newEditor(t)
	require.Error(t, e.DeleteTable("nope"))
}

func TestDeleteTable_UndoRedefinesRange(t *testing.T) {
	e, sheet := newEditor(t)
	rng := types.RangeRef{Sheet: sheet, Start: types.NewCoord(0, 0), End: types.NewCoord(2, 1)}
	tbl := editor.Table{Name: "Sales", Range: rng, Headers: []string{"Item", "Amount"}}
	require.NoError(t, e.DefineTable(tbl))
	require.NoError(t, e.DeleteTable("Sales"))

	require.NoError(t, e.Journal.Undo())
	got, ok := e.Names.Table("Sales")
	require.True(t, ok)
	assert.Equal(t, rng, got.Range)
}
