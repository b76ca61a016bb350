package function

import (
	"time"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// init registers the volatile builtins, grounded on the teacher's
// Clock/RandomGenerator-backed NOW/TODAY/RAND (builtin.go), supplemented
// with RANDBETWEEN. The evaluator supplies ctx.Now/ctx.Rand so tests can
// inject deterministic clocks/generators exactly as the teacher's
// WallClock/DefaultRandomGenerator are swappable.
func init() {
	reg := Global()
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "NOW", minArgs: 0, caps: Volatile},
		eval: func(ctx *Context, args []types.Value) types.Value {
			return ctx.Now()
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "TODAY", minArgs: 0, caps: Volatile},
		eval: func(ctx *Context, args []types.Value) types.Value {
			v := ctx.Now()
			return types.Value{Kind: types.KindDate, Time: v.Time.Truncate(24 * time.Hour)}
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "RAND", minArgs: 0, caps: Volatile | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			return types.NumberValue(ctx.Rand())
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "RANDBETWEEN", minArgs: 2, caps: Volatile | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			lo, ok1 := toNumber(args[0])
			hi, ok2 := toNumber(args[1])
			if !ok1 || !ok2 {
				return valueErr("RANDBETWEEN expects numeric bounds")
			}
			if hi < lo {
				return numErr("RANDBETWEEN upper bound below lower bound")
			}
			span := hi - lo + 1
			return types.IntValue(int64(lo) + int64(ctx.Rand()*span))
		},
	})
}
