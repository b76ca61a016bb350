package function

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PSU3D0/cellgraph/internal/types"
)

// firstError returns the first error value among args, Excel's
// left-to-right error propagation rule, or nil if none is an error.
func firstError(args []types.Value) *types.ExcelError {
	for _, a := range args {
		if a.IsError() {
			return a.Error
		}
	}
	return nil
}

// flatten expands Array-kind arguments into their scalar elements,
// row-major, so reduction functions can treat a mixed list of scalars and
// ranges uniformly.
func flatten(args []types.Value) []types.Value {
	out := make([]types.Value, 0, len(args))
	for _, a := range args {
		if a.Kind == types.KindArray {
			for _, row := range a.Array {
				out = append(out, flatten(row)...)
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

// toNumber coerces a scalar to float64, including lenient text parsing
// (Excel parses "3.5" inside arithmetic contexts).
func toNumber(v types.Value) (float64, bool) {
	if n, ok := v.AsNumber(); ok {
		return n, true
	}
	if v.Kind == types.KindText {
		if n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toText(v types.Value) string {
	return v.String()
}

func toBool(v types.Value) (bool, bool) {
	switch v.Kind {
	case types.KindBoolean:
		return v.Boolean, true
	case types.KindInt:
		return v.Int != 0, true
	case types.KindNumber:
		return v.Number != 0, true
	case types.KindText:
		switch strings.ToUpper(v.Text) {
		case "TRUE":
			return true, true
		case "FALSE":
			return false, true
		}
	}
	return false, false
}

func valueErr(msg string) types.Value {
	return types.ErrorValue(types.NewError(types.ErrValue, msg))
}

func numErr(msg string) types.Value {
	return types.ErrorValue(types.NewError(types.ErrNum, msg))
}

func naErr() types.Value {
	return types.ErrorValue(types.NewError(types.ErrNA, ""))
}

func requireNumbers(args []types.Value) ([]float64, *types.ExcelError) {
	nums := make([]float64, 0, len(args))
	for _, a := range flatten(args) {
		if a.IsEmpty() {
			continue
		}
		if a.IsError() {
			return nil, a.Error
		}
		n, ok := toNumber(a)
		if !ok {
			return nil, types.NewError(types.ErrValue, fmt.Sprintf("cannot coerce %v to number", a))
		}
		nums = append(nums, n)
	}
	return nums, nil
}
