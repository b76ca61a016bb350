package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/editor"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestResizeTable_GrowsRowSpan(t *testing.T) {
	e, sheet := newEditor(t)
	require.NoError(t, e.Names.DefineTable(editor.Table{
		Name:    "Sales",
		Range:   types.NewRangeRef(sheet, 0, 0, 2, 1),
		Headers: []string{"Amount", "Region"},
	}))

	require.NoError(t, e.ResizeTable("Sales", 5))

	tbl, ok := e.Names.Table("Sales")
	require.True(t, ok)
	assert.Equal(t, uint32(5), tbl.Range.End.Row)
}

func TestResizeTable_UnknownTableErrors(t *testing.T) {
	e, _ := newEditor(t)
	err := e.ResizeTable("Ghost", 5)
	require.Error(t, err)
}

func TestRenameTableColumn_UpdatesHeaderInPlace(t *testing.T) {
	e, sheet := newEditor(t)
	require.NoError(t, e.Names.DefineTable(editor.Table{
		Name:    "Sales",
		Range:   types.NewRangeRef(sheet, 0, 0, 2, 1),
		Headers: []string{"Amount", "Region"},
	}))

	require.NoError(t, e.RenameTableColumn("Sales", "Region", "Territory"))

	tbl, ok := e.Names.Table("Sales")
	require.True(t, ok)
	assert.Equal(t, []string{"Amount", "Territory"}, tbl.Headers)
}

func TestRenameTableColumn_UnknownColumnErrors(t *testing.T) {
	e, sheet := newEditor(t)
	require.NoError(t, e.Names.DefineTable(editor.Table{
		Name:    "Sales",
		Range:   types.NewRangeRef(sheet, 0, 0, 2, 1),
		Headers: []string{"Amount"},
	}))
	err := e.RenameTableColumn("Sales", "Missing", "X")
	require.Error(t, err)
}
