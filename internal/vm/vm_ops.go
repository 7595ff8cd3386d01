package vm

import (
	"github.com/fusabi-lang/fusabi/internal/ferr"
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/token"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// numericOp applies one of the four arithmetic operators to two numeric
// Values. Mixed Int/Float operands widen to Float (resolved Open Question,
// SPEC_FULL.md §9): Int op Int stays Int, any Float operand makes the
// result Float.
func numericOp(op byte, a, b value.Value, span token.Span) (value.Value, error) {
	if a.IsInt() && b.IsInt() {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case '+':
			return value.IntVal(x + y), nil
		case '-':
			return value.IntVal(x - y), nil
		case '*':
			return value.IntVal(x * y), nil
		case '/':
			if y == 0 {
				return value.Value{}, &ferr.RuntimeError{Span: span, Msg: "division by zero"}
			}
			return value.IntVal(x / y), nil
		case '%':
			if y == 0 {
				return value.Value{}, &ferr.RuntimeError{Span: span, Msg: "division by zero"}
			}
			return value.IntVal(x % y), nil
		}
	}

	if (a.IsInt() || a.IsFloat()) && (b.IsInt() || b.IsFloat()) {
		x, y := toFloat(a), toFloat(b)
		switch op {
		case '+':
			return value.FloatVal(x + y), nil
		case '-':
			return value.FloatVal(x - y), nil
		case '*':
			return value.FloatVal(x * y), nil
		case '/':
			if y == 0 {
				return value.Value{}, &ferr.RuntimeError{Span: span, Msg: "division by zero"}
			}
			return value.FloatVal(x / y), nil
		case '%':
			if y == 0 {
				return value.Value{}, &ferr.RuntimeError{Span: span, Msg: "division by zero"}
			}
			return value.FloatVal(floatMod(x, y)), nil
		}
	}

	return value.Value{}, &ferr.TypeError{Span: span, Msg: "arithmetic requires Int or Float operands"}
}

func toFloat(v value.Value) float64 {
	if v.IsFloat() {
		return v.AsFloat()
	}
	return float64(v.AsInt())
}

func floatMod(x, y float64) float64 {
	q := x / y
	return x - float64(int64(q))*y
}

// compareOp implements ordering comparisons over Int/Float (numeric tower)
// and String (lexicographic), returning a Bool Value.
func compareOp(op string, a, b value.Value, span token.Span) (value.Value, error) {
	if (a.IsInt() || a.IsFloat()) && (b.IsInt() || b.IsFloat()) {
		x, y := toFloat(a), toFloat(b)
		return value.BoolVal(numericCompare(op, x, y)), nil
	}
	if a.IsObj() && b.IsObj() {
		sa, aok := a.AsObj().(*heap.StringObj)
		sb, bok := b.AsObj().(*heap.StringObj)
		if aok && bok {
			return value.BoolVal(stringCompare(op, sa.Data, sb.Data)), nil
		}
	}
	return value.Value{}, &ferr.TypeError{Span: span, Msg: "comparison requires two numbers or two strings"}
}

func numericCompare(op string, x, y float64) bool {
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	case ">=":
		return x >= y
	}
	return false
}

func stringCompare(op string, x, y string) bool {
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	case ">=":
		return x >= y
	}
	return false
}

// concat implements the `++` operator over String and List (spec.md §4.3).
func (vm *VM) concat(a, b value.Value, span token.Span) (value.Value, error) {
	if a.IsObj() && b.IsObj() {
		if sa, ok := a.AsObj().(*heap.StringObj); ok {
			if sb, ok := b.AsObj().(*heap.StringObj); ok {
				out := heap.NewString(sa.Data + sb.Data)
				vm.register(out, out.Size())
				return value.ObjVal(out), nil
			}
		}
		if la, ok := a.AsObj().(*heap.ListObj); ok {
			if lb, ok := b.AsObj().(*heap.ListObj); ok {
				elems := append(la.ToSlice(), lb.ToSlice()...)
				out := heap.FromSlice(elems)
				vm.registerList(out)
				return value.ObjVal(out), nil
			}
		}
	}
	return value.Value{}, &ferr.TypeError{Span: span, Msg: "++ requires two Strings or two Lists"}
}

// registerList charges every freshly-allocated cons cell in a list built by
// FromSlice/Cons against the heap budget.
func (vm *VM) registerList(l *heap.ListObj) {
	for cur := l; cur != nil; cur = cur.Tail {
		vm.register(cur, cur.Size())
		if cur.IsNil() {
			break
		}
	}
}
