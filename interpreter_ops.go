// interpreter_ops.go: operator semantics, the display form, and the builtins.
//
// Both operands are always evaluated left to right before any type check.
// Arithmetic is 32-bit and wraps silently; only division by zero is an error.
package mitscript

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

func (ip *Interpreter) evalBinary(e *BinaryExpression, f *Frame) (*Value, error) {
	left, err := ip.evalExpr(e.Left, f)
	if err != nil {
		return nil, err
	}
	right, err := ip.evalExpr(e.Right, f)
	if err != nil {
		return nil, err
	}

	bothInt := left.Tag == VTInt && right.Tag == VTInt
	switch e.Op {
	case OpAdd:
		switch {
		case bothInt:
			return ip.newInt(left.I + right.I)
		case left.Tag == VTStr && right.Tag == VTStr:
			return ip.newStr(left.S + right.S)
		case left.Tag == VTStr:
			return ip.newStr(left.S + displayValue(right))
		case right.Tag == VTStr:
			return ip.newStr(displayValue(left) + right.S)
		default:
			return nil, errCast("'+' operands")
		}
	case OpSub:
		if !bothInt {
			return nil, errCast("'-' operands")
		}
		return ip.newInt(left.I - right.I)
	case OpMul:
		if !bothInt {
			return nil, errCast("'*' operands")
		}
		return ip.newInt(left.I * right.I)
	case OpDiv:
		if !bothInt {
			return nil, errCast("'/' operands")
		}
		if right.I == 0 {
			return nil, errArithmetic("division by zero")
		}
		if left.I == math.MinInt32 && right.I == -1 {
			// wraps, same as the other overflow cases
			return ip.newInt(math.MinInt32)
		}
		return ip.newInt(left.I / right.I)
	case OpLt:
		if !bothInt {
			return nil, errCast("'<' operands")
		}
		return ip.newBool(left.I < right.I)
	case OpGt:
		if !bothInt {
			return nil, errCast("'>' operands")
		}
		return ip.newBool(left.I > right.I)
	case OpLeq:
		if !bothInt {
			return nil, errCast("'<=' operands")
		}
		return ip.newBool(left.I <= right.I)
	case OpGeq:
		if !bothInt {
			return nil, errCast("'>=' operands")
		}
		return ip.newBool(left.I >= right.I)
	case OpEq:
		return ip.newBool(valuesEqual(left, right))
	case OpAnd:
		if left.Tag != VTBool || right.Tag != VTBool {
			return nil, errCast("'&' operands")
		}
		return ip.newBool(left.B && right.B)
	case OpOr:
		if left.Tag != VTBool || right.Tag != VTBool {
			return nil, errCast("'|' operands")
		}
		return ip.newBool(left.B || right.B)
	default:
		return nil, errRuntime("unknown binary operator")
	}
}

func (ip *Interpreter) evalUnary(e *UnaryExpression, f *Frame) (*Value, error) {
	operand, err := ip.evalExpr(e.Operand, f)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case OpNeg:
		if operand.Tag != VTInt {
			return nil, errCast("unary '-' operand")
		}
		return ip.newInt(-operand.I)
	case OpNot:
		if operand.Tag != VTBool {
			return nil, errCast("'!' operand")
		}
		return ip.newBool(!operand.B)
	default:
		return nil, errRuntime("unknown unary operator")
	}
}

// valuesEqual: value equality for the scalar kinds, identity for records,
// same captured frame + parameters + body for functions, and false (never an
// error) on a kind mismatch.
func valuesEqual(a, b *Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNone:
		return true
	case VTBool:
		return a.B == b.B
	case VTInt:
		return a.I == b.I
	case VTStr:
		return a.S == b.S
	case VTRecord:
		return a.R == b.R
	case VTFun:
		return functionsEqual(a.F, b.F)
	default:
		return false
	}
}

func functionsEqual(a, b *Function) bool {
	if a.Captured != b.Captured || a.Body != b.Body || a.Builtin != b.Builtin {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	return true
}

// displayValue renders the canonical printable form: decimal ints,
// true/false, None, FUNCTION, and records as `{ a:1 b:2 }` with field names
// sorted lexicographically (insertion order never shows).
func displayValue(v *Value) string {
	switch v.Tag {
	case VTNone:
		return "None"
	case VTBool:
		if v.B {
			return "true"
		}
		return "false"
	case VTInt:
		return strconv.FormatInt(int64(v.I), 10)
	case VTStr:
		return v.S
	case VTFun:
		return "FUNCTION"
	case VTRecord:
		if len(v.R.Fields) == 0 {
			return "{}"
		}
		names := make([]string, 0, len(v.R.Fields))
		for _, field := range v.R.Fields {
			names = append(names, field.Name)
		}
		sort.Strings(names)
		var b strings.Builder
		b.WriteString("{ ")
		for i, name := range names {
			if i > 0 {
				b.WriteByte(' ')
			}
			fv, _ := v.R.Get(name)
			b.WriteString(name)
			b.WriteByte(':')
			b.WriteString(displayValue(fv))
		}
		b.WriteString(" }")
		return b.String()
	default:
		return "None"
	}
}

// ---- builtins ----

func (ip *Interpreter) callBuiltin(b Builtin, args []*Value) (*Value, error) {
	switch b {
	case BuiltinPrint:
		if _, err := fmt.Fprintln(ip.out, displayValue(args[0])); err != nil {
			return nil, errRuntime("print: " + err.Error())
		}
		return ip.newValue()
	case BuiltinInput:
		line, err := ip.in.ReadString('\n')
		if err != nil && line == "" {
			return ip.newStr("")
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		return ip.newStr(line)
	case BuiltinIntcast:
		return ip.intcast(args[0])
	default:
		return nil, errRuntime("unknown builtin")
	}
}

// intcast returns Ints unchanged and parses strings matching -?[0-9]+;
// anything else is a cast error.
func (ip *Interpreter) intcast(v *Value) (*Value, error) {
	switch v.Tag {
	case VTInt:
		return v, nil
	case VTStr:
		s := v.S
		digits := s
		if strings.HasPrefix(s, "-") {
			digits = s[1:]
		}
		if digits == "" {
			return nil, errCast("intcast of non-numeric string")
		}
		for i := 0; i < len(digits); i++ {
			if !isDigit(digits[i]) {
				return nil, errCast("intcast of non-numeric string")
			}
		}
		// ParseInt clamps on overflow; the cast wraps like the rest of
		// the arithmetic.
		n, _ := strconv.ParseInt(s, 10, 64)
		return ip.newInt(int32(n))
	default:
		return nil, errCast("intcast operand")
	}
}
