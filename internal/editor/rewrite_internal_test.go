package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestRewriteRefs_ReturnsSameNodeWhenNothingChanges(t *testing.T) {
	ref := &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}
	node := &ast.BinaryOp{Op: "+", Left: ref, Right: &ast.Literal{Value: types.IntValue(1)}}

	out := rewriteRefs(node, func(r *ast.Reference) ast.Node { return r })
	assert.Same(t, node, out)
}

func TestRewriteRefs_RebuildsOnlyChangedBranch(t *testing.T) {
	refA := &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}
	lit := &ast.Literal{Value: types.IntValue(1)}
	node := &ast.BinaryOp{Op: "+", Left: refA, Right: lit}

	out := rewriteRefs(node, func(r *ast.Reference) ast.Node {
		return &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(1, 0), End: types.NewCoord(1, 0)}
	})

	bin, ok := out.(*ast.BinaryOp)
	assert.True(t, ok)
	assert.Same(t, lit, bin.Right, "unchanged branch should be returned by identity")
	changedRef, ok := bin.Left.(*ast.Reference)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), changedRef.Start.Row)
}

func TestRewriteRefs_ReplacesReferenceWithRefError(t *testing.T) {
	refA := &ast.Reference{Kind: ast.RefCell, Start: types.NewCoord(0, 0), End: types.NewCoord(0, 0)}
	out := rewriteRefs(refA, func(r *ast.Reference) ast.Node { return refErr() })

	lit, ok := out.(*ast.Literal)
	assert.True(t, ok)
	assert.True(t, lit.Value.IsError())
	assert.Equal(t, types.ErrRef, lit.Value.Error.Kind)
}
