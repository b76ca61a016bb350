package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestCollectReferences_FindsNestedRefs(t *testing.T) {
	sum := &ast.Call{
		Name: "SUM",
		Args: []ast.Node{
			&ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(0, 0)},
			&ast.BinaryOp{
				Op:   "+",
				Left: &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(1, 0)},
				Right: &ast.Literal{Value: types.IntValue(1)},
			},
		},
	}

	refs := ast.CollectReferences(sum)
	assert.Len(t, refs, 2)
	assert.Equal(t, types.NewCoord(0, 0), refs[0].Start)
	assert.Equal(t, types.NewCoord(1, 0), refs[1].Start)
}

func TestCollectReferences_WalksLetAndLambda(t *testing.T) {
	root := &ast.Let{
		Bindings: []ast.LetBinding{
			{Name: "x", Value: &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(2, 2)}},
		},
		Body: &ast.Lambda{
			Params: []string{"y"},
			Body:   &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(3, 3)},
		},
	}

	refs := ast.CollectReferences(root)
	assert.Len(t, refs, 2)
}

func TestVolatile_PropagatesFromCallToAncestors(t *testing.T) {
	call := &ast.Call{Name: "NOW", IsVolatile: true}
	bin := &ast.BinaryOp{Op: "+", Left: call, Right: &ast.Literal{Value: types.IntValue(1)}}
	assert.True(t, bin.Volatile())

	plain := &ast.BinaryOp{Op: "+", Left: &ast.Literal{Value: types.IntValue(1)}, Right: &ast.Literal{Value: types.IntValue(2)}}
	assert.False(t, plain.Volatile())
}

func TestReference_String(t *testing.T) {
	cell := &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(0, 1)}
	assert.Equal(t, "B1", cell.String())

	rng := &ast.Reference{Kind: ast.RefRange, IsRange: true, Start: types.NewCoord(0, 0), End: types.NewCoord(1, 1)}
	assert.Equal(t, "A1:B2", rng.String())

	table := &ast.Reference{Kind: ast.RefTable, Table: "Sales", Selector: ast.TableSelector{Column: "Amount"}}
	assert.Equal(t, "Sales[Amount]", table.String())
}
