package function

import (
	"strings"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// init registers the text builtins, grounded on the teacher's
// CONCATENATE/LEN/UPPER/LOWER/TRIM (builtin.go), supplemented with
// MID/LEFT/RIGHT from original_source's text builtins.
func init() {
	reg := Global()
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "CONCATENATE", minArgs: 1, variadic: true, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			var sb strings.Builder
			for _, a := range flatten(args) {
				sb.WriteString(toText(a))
			}
			return types.TextValue(sb.String())
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "LEN", minArgs: 1, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if args[0].IsError() {
				return args[0]
			}
			return types.IntValue(int64(len([]rune(toText(args[0])))))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "UPPER", minArgs: 1, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if args[0].IsError() {
				return args[0]
			}
			return types.TextValue(strings.ToUpper(toText(args[0])))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "LOWER", minArgs: 1, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if args[0].IsError() {
				return args[0]
			}
			return types.TextValue(strings.ToLower(toText(args[0])))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "TRIM", minArgs: 1, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if args[0].IsError() {
				return args[0]
			}
			fields := strings.Fields(toText(args[0]))
			return types.TextValue(strings.Join(fields, " "))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "LEFT", minArgs: 1, variadic: true, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			n := 1
			if len(args) > 1 {
				f, ok := toNumber(args[1])
				if !ok {
					return valueErr("LEFT count must be numeric")
				}
				n = int(f)
			}
			runes := []rune(toText(args[0]))
			if n > len(runes) {
				n = len(runes)
			}
			if n < 0 {
				return valueErr("LEFT count must be non-negative")
			}
			return types.TextValue(string(runes[:n]))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "RIGHT", minArgs: 1, variadic: true, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			n := 1
			if len(args) > 1 {
				f, ok := toNumber(args[1])
				if !ok {
					return valueErr("RIGHT count must be numeric")
				}
				n = int(f)
			}
			runes := []rune(toText(args[0]))
			if n > len(runes) {
				n = len(runes)
			}
			if n < 0 {
				return valueErr("RIGHT count must be non-negative")
			}
			return types.TextValue(string(runes[len(runes)-n:]))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "MID", minArgs: 3, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			start, ok1 := toNumber(args[1])
			length, ok2 := toNumber(args[2])
			if !ok1 || !ok2 {
				return valueErr("MID start/length must be numeric")
			}
			runes := []rune(toText(args[0]))
			from := int(start) - 1
			if from < 0 || from > len(runes) {
				return numErr("MID start out of range")
			}
			to := from + int(length)
			if to > len(runes) {
				to = len(runes)
			}
			return types.TextValue(string(runes[from:to]))
		},
	})
}
