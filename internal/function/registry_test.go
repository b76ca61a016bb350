package function_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/function"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func TestRegistry_RegisterAndLookup_IsCaseInsensitive(t *testing.T) {
	r := function.NewRegistry()
	r.Register(testFunc("Foo"))

	fn, ok := r.Lookup("", "foo")
	require.True(t, ok)
	assert.Equal(t, "Foo", fn.Name())

	_, ok = r.Lookup("", "bar")
	assert.False(t, ok)
}

func TestRegistry_Register_PanicsOnDuplicate(t *testing.T) {
	r := function.NewRegistry()
	r.Register(testFunc("Foo"))
	assert.Panics(t, func() { r.Register(testFunc("Foo")) })
}

func TestRegistry_Alias_ResolvesToTarget(t *testing.T) {
	r := function.NewRegistry()
	r.Register(testFunc("Foo"))
	r.Alias("", "Bar", "Foo")

	fn, ok := r.Lookup("", "Bar")
	require.True(t, ok)
	assert.Equal(t, "Foo", fn.Name())
}

func TestGlobalRegistry_HasBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"SUM", "AVERAGE", "IF", "AND", "OR", "NOT", "ROUND", "NOW", "VLOOKUP"} {
		_, ok := function.Global().Lookup("", name)
		assert.True(t, ok, "expected builtin %s to be registered", name)
	}
}

type stubFunc struct{ name string }

func (s stubFunc) Name() string               { return s.name }
func (s stubFunc) Namespace() string          { return "" }
func (s stubFunc) MinArgs() int               { return 0 }
func (s stubFunc) Variadic() bool             { return false }
func (s stubFunc) ArgSchema() []function.ArgSpec { return nil }
func (s stubFunc) Caps() function.Caps        { return function.Pure }
func (s stubFunc) EvalScalar(ctx *function.Context, args []types.Value) types.Value {
	return types.TextValue(s.name)
}

func testFunc(name string) function.Function { return stubFunc{name: name} }
