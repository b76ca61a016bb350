package cellerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/pkg/cellerr"
)

func TestEditorError_ErrorMessage_FallsBackToCatalogDefault(t *testing.T) {
	err := cellerr.New(cellerr.InvalidSheet, "")
	assert.Contains(t, err.Error(), "sheet not found")
	assert.Contains(t, err.Error(), string(cellerr.InvalidSheet))
}

func TestEditorError_Wrap_UnwrapsToCause(t *testing.T) {
	cause := errors.New("boom")
	err := cellerr.Wrap(cellerr.ActionFailed, "rolled back", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestEditorError_Is_MatchesByCodeIgnoringMessage(t *testing.T) {
	a := cellerr.New(cellerr.UnknownName, "x is undefined")
	b := cellerr.New(cellerr.UnknownName, "")
	assert.True(t, errors.Is(a, b))

	c := cellerr.New(cellerr.UnknownTable, "")
	assert.False(t, errors.Is(a, c))
}

func TestEditorError_As_ExtractsConcreteType(t *testing.T) {
	var target *cellerr.EditorError
	err := error(cellerr.New(cellerr.InvalidAddress, "row out of bounds"))
	require.True(t, errors.As(err, &target))
	assert.Equal(t, cellerr.InvalidAddress, target.Code)
}

func TestRetryableAndNextSteps_ReflectCatalog(t *testing.T) {
	assert.True(t, cellerr.Retryable(cellerr.InvalidSheet))
	assert.False(t, cellerr.Retryable(cellerr.InvalidAddress))
	assert.NotEmpty(t, cellerr.NextSteps(cellerr.InvalidSheet))
}
