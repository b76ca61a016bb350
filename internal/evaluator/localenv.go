package evaluator

import (
	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// localEnv is the name -> value scope chain LET and LAMBDA push, per
// spec.md §4.3's local environments. It is a plain linked frame rather
// than a single flat map so LAMBDA closures can capture their defining
// scope without copying it.
type localEnv struct {
	parent    *localEnv
	names     map[string]types.Value
	closures  map[string]closure
}

func newLocalEnv(parent *localEnv) *localEnv {
	return &localEnv{parent: parent, names: make(map[string]types.Value), closures: make(map[string]closure)}
}

func (e *localEnv) bindClosure(name string, c closure) {
	e.closures[name] = c
}

func (e *localEnv) lookupClosure(name string) (closure, bool) {
	for env := e; env != nil; env = env.parent {
		if c, ok := env.closures[name]; ok {
			return c, true
		}
	}
	return closure{}, false
}

func (e *localEnv) bind(name string, v types.Value) {
	e.names[name] = v
}

func (e *localEnv) lookup(name string) (types.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.names[name]; ok {
			return v, true
		}
	}
	return types.Value{}, false
}

// closure pairs a Lambda's parameter list and body with the environment it
// was defined in, making it a first-class callable value the evaluator can
// invoke later (e.g. from MAP/REDUCE, or a LET binding that stores a
// LAMBDA for reuse within the same LET body).
type closure struct {
	params []string
	body   ast.Node
	env    *localEnv
}
