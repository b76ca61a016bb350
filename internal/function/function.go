// Package function implements the function dispatch contract: the
// Function interface every builtin satisfies, the capability bitflags a
// caller uses to decide how to invoke one, and a process-wide Registry.
// Grounded on the teacher's BuiltInFunctions.Call dispatch switch
// (builtin.go), generalized from a single hardcoded switch statement into
// a registry of independently describable Function values per spec.md §6.
package function

import (
	"strings"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// Caps is a bitflag set describing what a Function supports (purity,
// volatility, reduction and so on).
type Caps uint32

const (
	Pure Caps = 1 << iota
	Volatile
	Reduction
	Elementwise
	Windowed
	Lookup
	NumericOnly
	BoolOnly
	SimdOk
	StreamOk
	ShortCircuit
)

func (c Caps) Has(flag Caps) bool { return c&flag != 0 }

// ArgKind describes what a positional argument accepts, as reported by
// ArgSchema. Nothing in the registry or the evaluator validates arguments
// against it; each function checks its own arguments.
type ArgKind uint8

const (
	ArgAny ArgKind = iota
	ArgNumber
	ArgText
	ArgBoolean
	ArgRange // accepts a range/array argument, not just a scalar
	ArgLambda
)

// ArgSpec describes one positional (or variadic-tail) argument.
type ArgSpec struct {
	Kind     ArgKind
	Optional bool
}

// Context is what a Function's Eval methods receive: a resolved argument
// list (already lowered from AST to Value/array by the evaluator) plus
// whatever ambient state the function needs (current cell, caller-supplied
// clock/rng for volatile functions).
type Context struct {
	Caller types.CellRef
	Now    func() types.Value
	Rand   func() float64
}

// Function is the contract every builtin and user-defined callable
// implements. EvalScalar is its only evaluation method; a function that can
// also fold over a range implements the separate EvalFold interface.
type Function interface {
	Name() string
	Namespace() string
	MinArgs() int
	Variadic() bool
	ArgSchema() []ArgSpec
	Caps() Caps
	EvalScalar(ctx *Context, args []types.Value) types.Value
}

// Folder is implemented by Reduction functions (SUM, AVERAGE, ...) that
// can stream over a range without materializing it as a single Value
// array first.
type Folder interface {
	EvalFold(ctx *Context, values func(yield func(types.Value) bool)) types.Value
}

// baseFunc is an embeddable helper giving a Function literal the Name/
// Namespace/MinArgs/Variadic/ArgSchema/Caps boilerplate, the way the
// teacher's BuiltInFunctions groups its methods on one receiver — here
// each function is its own small value instead of one receiver with 27
// methods, so the registry can describe each independently.
type baseFunc struct {
	name     string
	ns       string
	minArgs  int
	variadic bool
	schema   []ArgSpec
	caps     Caps
}

func (b baseFunc) Name() string        { return b.name }
func (b baseFunc) Namespace() string   { return b.ns }
func (b baseFunc) MinArgs() int        { return b.minArgs }
func (b baseFunc) Variadic() bool      { return b.variadic }
func (b baseFunc) ArgSchema() []ArgSpec { return b.schema }
func (b baseFunc) Caps() Caps          { return b.caps }

func key(namespace, name string) string {
	if namespace == "" {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(namespace) + "." + strings.ToUpper(name)
}
