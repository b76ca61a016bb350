package function

import "github.com/PSU3D0/cellgraph/internal/types"

// init registers the logical builtins, grounded on the teacher's
// IF/AND/OR/NOT (builtin.go), supplemented with IFERROR/ISERROR/ISNA from
// original_source since error-introspection functions aren't in the
// teacher's catalog.
func init() {
	reg := Global()
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "IF", minArgs: 2, variadic: true, caps: Pure | ShortCircuit},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if args[0].IsError() {
				return args[0]
			}
			cond, ok := toBool(args[0])
			if !ok {
				return valueErr("IF condition must be boolean-coercible")
			}
			if cond {
				return args[1]
			}
			if len(args) >= 3 {
				return args[2]
			}
			return types.BoolValue(false)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "AND", minArgs: 1, variadic: true, caps: Pure | BoolOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			for _, a := range flatten(args) {
				if a.IsError() {
					return a
				}
				b, ok := toBool(a)
				if !ok {
					return valueErr("AND expects boolean-coercible arguments")
				}
				if !b {
					return types.BoolValue(false)
				}
			}
			return types.BoolValue(true)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "OR", minArgs: 1, variadic: true, caps: Pure | BoolOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			for _, a := range flatten(args) {
				if a.IsError() {
					return a
				}
				b, ok := toBool(a)
				if !ok {
					return valueErr("OR expects boolean-coercible arguments")
				}
				if b {
					return types.BoolValue(true)
				}
			}
			return types.BoolValue(false)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "NOT", minArgs: 1, caps: Pure | BoolOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if args[0].IsError() {
				return args[0]
			}
			b, ok := toBool(args[0])
			if !ok {
				return valueErr("NOT expects a boolean-coercible argument")
			}
			return types.BoolValue(!b)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "IFERROR", minArgs: 2, caps: Pure | ShortCircuit},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if args[0].IsError() {
				return args[1]
			}
			return args[0]
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "ISERROR", minArgs: 1, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			return types.BoolValue(args[0].IsError())
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "ISNA", minArgs: 1, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			return types.BoolValue(args[0].IsError() && args[0].Error.Kind == types.ErrNA)
		},
	})
}
