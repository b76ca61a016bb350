package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/editor"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestNames_DefineSheet_IsIdempotentByName(t *testing.T) {
	n := editor.NewNames(types.Excel1900)
	id1 := n.DefineSheet("Sheet1")
	id2 := n.DefineSheet("sheet1")
	assert.Equal(t, id1, id2)
	assert.Equal(t, "Sheet1", n.SheetName(id1))
}

func TestNames_DefineName_WorkbookScopeTakesPrecedenceOverSheetScope(t *testing.T) {
	n := editor.NewNames(types.Excel1900)
	sheet := n.DefineSheet("Sheet1")
	wbRange := types.NewRangeRef(sheet, 0, 0, 0, 0)
	sheetRange := types.NewRangeRef(sheet, 5, 5, 5, 5)

	require.NoError(t, n.DefineName("Total", 0, wbRange))
	require.NoError(t, n.DefineName("Total", sheet, sheetRange))

	got, ok := n.ResolveNamedRange("Total")
	require.True(t, ok)
	assert.Equal(t, wbRange, got)
}

func TestNames_DefineName_DuplicateInSameScopeErrors(t *testing.T) {
	n := editor.NewNames(types.Excel1900)
	rng := types.NewRangeRef(1, 0, 0, 0, 0)
	require.NoError(t, n.DefineName("Foo", 0, rng))
	err := n.DefineName("Foo", 0, rng)
	require.Error(t, err)
}

func TestNames_ResolveTableColumn_HeadersTotalsAndNamedColumn(t *testing.T) {
	n := editor.NewNames(types.Excel1900)
	sheet := n.DefineSheet("Sheet1")
	table := editor.Table{
		Name:      "Sales",
		Range:     types.NewRangeRef(sheet, 0, 0, 3, 1), // header + 2 data rows + totals row
		Headers:   []string{"Amount", "Region"},
		HasTotals: true,
	}
	require.NoError(t, n.DefineTable(table))

	headers, ok := n.ResolveTableColumn("Sales", ast.TableSelector{Headers: true})
	require.True(t, ok)
	assert.Equal(t, uint32(0), headers.Start.Row)
	assert.Equal(t, uint32(0), headers.End.Row)

	totals, ok := n.ResolveTableColumn("Sales", ast.TableSelector{Totals: true})
	require.True(t, ok)
	assert.Equal(t, uint32(3), totals.Start.Row)

	col, ok := n.ResolveTableColumn("Sales", ast.TableSelector{Column: "region"})
	require.True(t, ok)
	assert.Equal(t, uint32(1), col.Start.Col)
	assert.Equal(t, uint32(1), col.Start.Row)
	assert.Equal(t, uint32(2), col.End.Row)

	_, ok = n.ResolveTableColumn("Sales", ast.TableSelector{Column: "nope"})
	assert.False(t, ok)
}

func TestNames_ResolveNameOrTableRange_FallsBackToTable(t *testing.T) {
	n := editor.NewNames(types.Excel1900)
	sheet := n.DefineSheet("Sheet1")
	rng := types.NewRangeRef(sheet, 0, 0, 2, 2)
	require.NoError(t, n.DefineTable(editor.Table{Name: "Widgets", Range: rng, Headers: []string{"A"}}))

	got, ok := n.ResolveNameOrTableRange("Widgets")
	require.True(t, ok)
	assert.Equal(t, rng, got)
}
