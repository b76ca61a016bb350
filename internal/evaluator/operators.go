package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/PSU3D0/cellgraph/internal/types"
)

func applyUnary(op string, postfix bool, v types.Value) types.Value {
	n, ok := v.AsNumber()
	if !ok {
		if v.Kind == types.KindText {
			if f, pok := parseNumericText(v.Text); pok {
				n, ok = f, true
			}
		}
		if !ok {
			return types.ErrorValue(types.NewError(types.ErrValue, "unary operator requires a number"))
		}
	}
	switch {
	case postfix && op == "%":
		return types.NumberValue(n / 100)
	case op == "-":
		return types.NumberValue(-n)
	case op == "+":
		return types.NumberValue(n)
	}
	return types.ErrorValue(types.NewError(types.ErrValue, "unsupported unary operator "+op))
}

func applyBinary(op string, left, right types.Value) types.Value {
	switch op {
	case "&":
		return types.TextValue(left.String() + right.String())
	case "=", "<>", "<", "<=", ">", ">=":
		return compare(op, left, right)
	}

	ln, lok := coerceArith(left)
	rn, rok := coerceArith(right)
	if !lok || !rok {
		return types.ErrorValue(types.NewError(types.ErrValue, "arithmetic operator requires numbers"))
	}
	switch op {
	case "+":
		return types.NumberValue(ln + rn)
	case "-":
		return types.NumberValue(ln - rn)
	case "*":
		return types.NumberValue(ln * rn)
	case "/":
		if rn == 0 {
			return types.ErrorValue(types.NewError(types.ErrDiv0, ""))
		}
		return types.NumberValue(ln / rn)
	case "^":
		return types.NumberValue(math.Pow(ln, rn))
	}
	return types.ErrorValue(types.NewError(types.ErrValue, "unsupported binary operator "+op))
}

func coerceArith(v types.Value) (float64, bool) {
	if n, ok := v.AsNumber(); ok {
		return n, true
	}
	if v.Kind == types.KindText {
		return parseNumericText(v.Text)
	}
	if v.Kind == types.KindEmpty {
		return 0, true
	}
	return 0, false
}

func parseNumericText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func compare(op string, left, right types.Value) types.Value {
	if ln, lok := left.AsNumber(); lok {
		if rn, rok := right.AsNumber(); rok {
			return types.BoolValue(compareNumbers(op, ln, rn))
		}
	}
	lt, rt := left.String(), right.String()
	return types.BoolValue(compareStrings(op, lt, rt))
}

func compareNumbers(op string, a, b float64) bool {
	switch op {
	case "=":
		return a == b
	case "<>":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default: // >=
		return a >= b
	}
}

func compareStrings(op, a, b string) bool {
	switch op {
	case "=":
		return a == b
	case "<>":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}
