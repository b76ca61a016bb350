package function

import (
	"math"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// init registers the arithmetic/statistical reduction builtins, grounded
// on the teacher's SUM/AVERAGE/MAX/MIN/MEDIAN/ABS/ROUND/FLOOR/
// CEILING/SQRT/POWER/MOD/PI (builtin.go), supplemented with PRODUCT and
// SUBTOTAL from original_source/.../builtins since the teacher's catalog
// doesn't have them.
func init() {
	reg := Global()
	reg.Register(reduceFunc("SUM", func(nums []float64) float64 {
		var sum float64
		for _, n := range nums {
			sum += n
		}
		return sum
	}))
	reg.Register(reduceFunc("PRODUCT", func(nums []float64) float64 {
		p := 1.0
		for _, n := range nums {
			p *= n
		}
		return p
	}))
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "AVERAGE", minArgs: 1, variadic: true, caps: Pure | Reduction | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			nums, errv := requireNumbers(args)
			if errv != nil {
				return types.ErrorValue(errv)
			}
			if len(nums) == 0 {
				return numErr("AVERAGE of empty range")
			}
			var sum float64
			for _, n := range nums {
				sum += n
			}
			return types.NumberValue(sum / float64(len(nums)))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "COUNT", minArgs: 0, variadic: true, caps: Pure | Reduction},
		eval: func(ctx *Context, args []types.Value) types.Value {
			count := 0
			for _, a := range flatten(args) {
				if _, ok := toNumber(a); ok && !a.IsEmpty() {
					count++
				}
			}
			return types.IntValue(int64(count))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "COUNTA", minArgs: 0, variadic: true, caps: Pure | Reduction},
		eval: func(ctx *Context, args []types.Value) types.Value {
			count := 0
			for _, a := range flatten(args) {
				if !a.IsEmpty() {
					count++
				}
			}
			return types.IntValue(int64(count))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "MAX", minArgs: 1, variadic: true, caps: Pure | Reduction | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			nums, errv := requireNumbers(args)
			if errv != nil {
				return types.ErrorValue(errv)
			}
			if len(nums) == 0 {
				return types.NumberValue(0)
			}
			m := nums[0]
			for _, n := range nums[1:] {
				if n > m {
					m = n
				}
			}
			return types.NumberValue(m)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "MIN", minArgs: 1, variadic: true, caps: Pure | Reduction | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			nums, errv := requireNumbers(args)
			if errv != nil {
				return types.ErrorValue(errv)
			}
			if len(nums) == 0 {
				return types.NumberValue(0)
			}
			m := nums[0]
			for _, n := range nums[1:] {
				if n < m {
					m = n
				}
			}
			return types.NumberValue(m)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "MEDIAN", minArgs: 1, variadic: true, caps: Pure | Reduction | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			nums, errv := requireNumbers(args)
			if errv != nil {
				return types.ErrorValue(errv)
			}
			if len(nums) == 0 {
				return numErr("MEDIAN of empty range")
			}
			sorted := append([]float64(nil), nums...)
			insertionSortFloats(sorted)
			mid := len(sorted) / 2
			if len(sorted)%2 == 1 {
				return types.NumberValue(sorted[mid])
			}
			return types.NumberValue((sorted[mid-1] + sorted[mid]) / 2)
		},
	})
	reg.Register(unaryMath("ABS", math.Abs))
	reg.Register(unaryMath("SQRT", func(n float64) float64 {
		if n < 0 {
			return math.NaN()
		}
		return math.Sqrt(n)
	}))
	reg.Register(unaryMath("FLOOR", math.Floor))
	reg.Register(unaryMath("CEILING", math.Ceil))
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "ROUND", minArgs: 2, caps: Pure | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			n, ok1 := toNumber(args[0])
			digits, ok2 := toNumber(args[1])
			if !ok1 || !ok2 {
				return valueErr("ROUND expects numeric arguments")
			}
			mult := math.Pow(10, digits)
			return types.NumberValue(math.Round(n*mult) / mult)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "POWER", minArgs: 2, caps: Pure | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			base, ok1 := toNumber(args[0])
			exp, ok2 := toNumber(args[1])
			if !ok1 || !ok2 {
				return valueErr("POWER expects numeric arguments")
			}
			return types.NumberValue(math.Pow(base, exp))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "MOD", minArgs: 2, caps: Pure | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			a, ok1 := toNumber(args[0])
			b, ok2 := toNumber(args[1])
			if !ok1 || !ok2 {
				return valueErr("MOD expects numeric arguments")
			}
			if b == 0 {
				return types.ErrorValue(types.NewError(types.ErrDiv0, "MOD by zero"))
			}
			return types.NumberValue(math.Mod(a, b))
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "PI", minArgs: 0, caps: Pure},
		eval: func(ctx *Context, args []types.Value) types.Value {
			return types.NumberValue(math.Pi)
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "SUBTOTAL", minArgs: 2, variadic: true, caps: Pure | Reduction},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if len(args) < 2 {
				return valueErr("SUBTOTAL requires a function code and a range")
			}
			code, ok := toNumber(args[0])
			if !ok {
				return valueErr("SUBTOTAL function code must be numeric")
			}
			rest := args[1:]
			switch int(code) {
			case 9, 109:
				fn, _ := Global().Lookup("", "SUM")
				return fn.EvalScalar(ctx, rest)
			case 1, 101:
				fn, _ := Global().Lookup("", "AVERAGE")
				return fn.EvalScalar(ctx, rest)
			case 2, 102:
				fn, _ := Global().Lookup("", "COUNT")
				return fn.EvalScalar(ctx, rest)
			case 4, 104:
				fn, _ := Global().Lookup("", "MAX")
				return fn.EvalScalar(ctx, rest)
			case 5, 105:
				fn, _ := Global().Lookup("", "MIN")
				return fn.EvalScalar(ctx, rest)
			default:
				return numErr("unsupported SUBTOTAL function code")
			}
		},
	})
}

func reduceFunc(name string, fold func([]float64) float64) Function {
	return foldFunc{
		scalarFunc: scalarFunc{
			baseFunc: baseFunc{name: name, minArgs: 1, variadic: true, caps: Pure | Reduction | NumericOnly | StreamOk},
			eval: func(ctx *Context, args []types.Value) types.Value {
				nums, errv := requireNumbers(args)
				if errv != nil {
					return types.ErrorValue(errv)
				}
				return types.NumberValue(fold(nums))
			},
		},
		fold: func(ctx *Context, values func(yield func(types.Value) bool)) types.Value {
			var nums []float64
			var evalErr *types.ExcelError
			values(func(v types.Value) bool {
				if v.IsError() {
					evalErr = v.Error
					return false
				}
				if n, ok := toNumber(v); ok {
					nums = append(nums, n)
				}
				return true
			})
			if evalErr != nil {
				return types.ErrorValue(evalErr)
			}
			return types.NumberValue(fold(nums))
		},
	}
}

func unaryMath(name string, fn func(float64) float64) Function {
	return scalarFunc{
		baseFunc: baseFunc{name: name, minArgs: 1, caps: Pure | NumericOnly},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			n, ok := toNumber(args[0])
			if !ok {
				return valueErr(name + " expects a numeric argument")
			}
			result := fn(n)
			if math.IsNaN(result) {
				return numErr(name + " produced an invalid result")
			}
			return types.NumberValue(result)
		},
	}
}

func insertionSortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
