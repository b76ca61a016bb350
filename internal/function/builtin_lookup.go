package function

import "github.com/PSU3D0/cellgraph/internal/types"

// init registers the lookup builtins. The teacher's catalog has none of
// these; VLOOKUP/INDEX/MATCH are supplemented from original_source's
// builtins to satisfy spec.md §6's lookup-capability requirement.
func init() {
	reg := Global()
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "MATCH", minArgs: 2, variadic: true, caps: Pure | Lookup},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			needle := args[0]
			haystack := flatten([]types.Value{args[1]})
			matchType := 1
			if len(args) > 2 {
				if n, ok := toNumber(args[2]); ok {
					matchType = int(n)
				}
			}
			if matchType != 0 {
				return naErr()
			}
			for i, v := range haystack {
				if valuesEqual(v, needle) {
					return types.IntValue(int64(i + 1))
				}
			}
			return naErr()
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "INDEX", minArgs: 2, variadic: true, caps: Pure | Lookup},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			arr := args[0]
			rowIdx, ok := toNumber(args[1])
			if !ok {
				return valueErr("INDEX row must be numeric")
			}
			rows, cols := arr.Dims()
			row := int(rowIdx) - 1
			col := 0
			if len(args) > 2 {
				c, ok := toNumber(args[2])
				if !ok {
					return valueErr("INDEX column must be numeric")
				}
				col = int(c) - 1
			}
			if arr.Kind != types.KindArray {
				if row != 0 || col != 0 {
					return numErr("INDEX out of range")
				}
				return arr
			}
			if row < 0 || row >= rows || col < 0 || col >= cols {
				return numErr("INDEX out of range")
			}
			return arr.Array[row][col]
		},
	})
	reg.Register(scalarFunc{
		baseFunc: baseFunc{name: "VLOOKUP", minArgs: 3, variadic: true, caps: Pure | Lookup},
		eval: func(ctx *Context, args []types.Value) types.Value {
			if errv := firstError(args); errv != nil {
				return types.ErrorValue(errv)
			}
			needle := args[0]
			table := args[1]
			colIdx, ok := toNumber(args[2])
			if !ok {
				return valueErr("VLOOKUP column index must be numeric")
			}
			if table.Kind != types.KindArray {
				return valueErr("VLOOKUP table must be a range")
			}
			col := int(colIdx) - 1
			for _, row := range table.Array {
				if len(row) == 0 {
					continue
				}
				if valuesEqual(row[0], needle) {
					if col < 0 || col >= len(row) {
						return numErr("VLOOKUP column index out of range")
					}
					return row[col]
				}
			}
			return naErr()
		},
	})
}

// valuesEqual implements Excel's loose scalar equality for lookups:
// numbers compare numerically, everything else falls back to text
// comparison (case-insensitive, matching Excel's lookup semantics).
func valuesEqual(a, b types.Value) bool {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return an == bn
		}
	}
	return equalFold(toText(a), toText(b))
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
