package function

import (
	"fmt"
	"sync"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// scalarFunc is the concrete Function implementation every builtin in this
// package uses: baseFunc's metadata plus a closure for EvalScalar. This
// keeps each builtin a short, independently testable value instead of one
// giant receiver with 27 methods (the teacher's BuiltInFunctions shape).
type scalarFunc struct {
	baseFunc
	eval func(ctx *Context, args []types.Value) types.Value
}

func (f scalarFunc) EvalScalar(ctx *Context, args []types.Value) types.Value {
	return f.eval(ctx, args)
}

// foldFunc additionally implements Folder for Reduction functions that
// want to stream over a range instead of forcing it into a slice.
type foldFunc struct {
	scalarFunc
	fold func(ctx *Context, values func(yield func(types.Value) bool)) types.Value
}

func (f foldFunc) EvalFold(ctx *Context, values func(yield func(types.Value) bool)) types.Value {
	return f.fold(ctx, values)
}

// Registry is a process-wide, case-insensitive (namespace, name) ->
// Function table with alias support. NewRegistry returns an empty table;
// the builtin_*.go init functions in this package fill the global one.
type Registry struct {
	mu      sync.RWMutex
	byKey   map[string]Function
	aliases map[string]string
}

var global = NewRegistry()

// Global returns the process-wide registry every evaluator uses unless
// constructed with an explicit override (tests build isolated registries
// instead of mutating the shared one).
func Global() *Registry { return global }

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Function), aliases: make(map[string]string)}
}

// Register adds fn under its own (namespace, name), panicking on a
// duplicate registration — a programmer error caught at init() time, not a
// runtime condition callers need to handle.
func (r *Registry) Register(fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(fn.Namespace(), fn.Name())
	if _, exists := r.byKey[k]; exists {
		panic(fmt.Sprintf("function: duplicate registration for %s", k))
	}
	r.byKey[k] = fn
}

// Alias registers an additional lookup name resolving to the same
// function as target (e.g. historical Excel names).
func (r *Registry) Alias(namespace, alias, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[key(namespace, alias)] = key(namespace, target)
}

// Lookup resolves (namespace, name) to a Function, following one level of
// alias indirection.
func (r *Registry) Lookup(namespace, name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k := key(namespace, name)
	if target, ok := r.aliases[k]; ok {
		k = target
	}
	fn, ok := r.byKey[k]
	return fn, ok
}
