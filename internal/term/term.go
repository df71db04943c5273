// Package term provides the value model that flows through kernel actions.
// A Term is an immutable tagged value: a string, a number, a boolean, or an
// ordered list of further Terms. Actions read Terms through typed accessors
// that fail with ErrArgumentType instead of coercing.
package term

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrArgumentType is returned when a Term does not hold the requested kind.
var ErrArgumentType = errors.New("argument type mismatch")

// Kind identifies which variant a Term holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Term is a tagged value. The zero Term is invalid.
type Term struct {
	kind  Kind
	str   string
	num   float64
	ival  int64
	exact bool // number holds an exact int64 in ival
	b     bool
	list  []Term
}

// String builds a string Term.
func String(s string) Term {
	return Term{kind: KindString, str: s}
}

// Int builds an exact integer number Term.
func Int(n int64) Term {
	return Term{kind: KindNumber, ival: n, num: float64(n), exact: true}
}

// Float builds a floating point number Term.
func Float(f float64) Term {
	return Term{kind: KindNumber, num: f}
}

// Bool builds a boolean Term.
func Bool(b bool) Term {
	return Term{kind: KindBool, b: b}
}

// List builds a list Term. The slice is copied so the Term stays immutable.
func List(items ...Term) Term {
	cp := make([]Term, len(items))
	copy(cp, items)
	return Term{kind: KindList, list: cp}
}

// Strings is a convenience for building a slice of string Terms.
func Strings(values ...string) []Term {
	out := make([]Term, len(values))
	for i, v := range values {
		out[i] = String(v)
	}
	return out
}

// Ints is a convenience for building a slice of integer Terms.
func Ints(values ...int64) []Term {
	out := make([]Term, len(values))
	for i, v := range values {
		out[i] = Int(v)
	}
	return out
}

// Kind reports the variant held by t.
func (t Term) Kind() Kind { return t.kind }

// IsList reports whether t wraps a nested sequence.
func (t Term) IsList() bool { return t.kind == KindList }

// IsExactInt reports whether t is a number stored as an exact integer.
func (t Term) IsExactInt() bool { return t.kind == KindNumber && t.exact }

// AsString returns the string value or ErrArgumentType.
func (t Term) AsString() (string, error) {
	if t.kind != KindString {
		return "", t.mismatch(KindString)
	}
	return t.str, nil
}

// AsNumber returns the numeric value as float64 or ErrArgumentType.
func (t Term) AsNumber() (float64, error) {
	if t.kind != KindNumber {
		return 0, t.mismatch(KindNumber)
	}
	if t.exact {
		return float64(t.ival), nil
	}
	return t.num, nil
}

// AsInt returns the numeric value truncated toward zero.
// NaN and infinite values cannot be truncated and are reported as a range error.
func (t Term) AsInt() (int64, error) {
	if t.kind != KindNumber {
		return 0, t.mismatch(KindNumber)
	}
	if t.exact {
		return t.ival, nil
	}
	if math.IsNaN(t.num) || math.IsInf(t.num, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotFinite, t.num)
	}
	tr := math.Trunc(t.num)
	if tr >= math.MaxInt64 {
		return math.MaxInt64, nil
	}
	if tr <= math.MinInt64 {
		return math.MinInt64, nil
	}
	return int64(tr), nil
}

// ErrNotFinite is returned by AsInt for NaN or infinite numbers.
var ErrNotFinite = errors.New("number is not finite")

// AsBool returns the boolean value or ErrArgumentType.
func (t Term) AsBool() (bool, error) {
	if t.kind != KindBool {
		return false, t.mismatch(KindBool)
	}
	return t.b, nil
}

// AsList returns a copy of the nested Terms or ErrArgumentType.
func (t Term) AsList() ([]Term, error) {
	if t.kind != KindList {
		return nil, t.mismatch(KindList)
	}
	cp := make([]Term, len(t.list))
	copy(cp, t.list)
	return cp, nil
}

// Len returns the number of direct children of a list Term, 0 otherwise.
func (t Term) Len() int {
	return len(t.list)
}

func (t Term) mismatch(want Kind) error {
	return fmt.Errorf("%w: want %s, got %s", ErrArgumentType, want, t.kind)
}

// Raw returns the Go value held by t: string, int64, float64, bool or []any.
func (t Term) Raw() any {
	switch t.kind {
	case KindString:
		return t.str
	case KindNumber:
		if t.exact {
			return t.ival
		}
		return t.num
	case KindBool:
		return t.b
	case KindList:
		out := make([]any, len(t.list))
		for i, item := range t.list {
			out[i] = item.Raw()
		}
		return out
	default:
		return nil
	}
}

// Equal reports structural equality. Exact and float numbers compare by value.
func (t Term) Equal(o Term) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindString:
		return t.str == o.str
	case KindNumber:
		if t.exact && o.exact {
			return t.ival == o.ival
		}
		a, _ := t.AsNumber()
		b, _ := o.AsNumber()
		return a == b
	case KindBool:
		return t.b == o.b
	case KindList:
		if len(t.list) != len(o.list) {
			return false
		}
		for i := range t.list {
			if !t.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders t in a compact, readable form. Strings are quoted.
func (t Term) String() string {
	switch t.kind {
	case KindString:
		return strconv.Quote(t.str)
	case KindNumber:
		if t.exact {
			return strconv.FormatInt(t.ival, 10)
		}
		return strconv.FormatFloat(t.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(t.b)
	case KindList:
		parts := make([]string, len(t.list))
		for i, item := range t.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<invalid>"
	}
}

// FromGo converts a plain Go value into a Term.
// Supported: string, bool, all int/uint/float widths, []any, []string, []Term and Term.
func FromGo(v any) (Term, error) {
	switch x := v.(type) {
	case Term:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case []string:
		return List(Strings(x...)...), nil
	case []Term:
		return List(x...), nil
	case []any:
		items := make([]Term, len(x))
		for i, item := range x {
			conv, err := FromGo(item)
			if err != nil {
				return Term{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items[i] = conv
		}
		return List(items...), nil
	default:
		return Term{}, fmt.Errorf("%w: unsupported Go type %T", ErrArgumentType, v)
	}
}

func fromUint(u uint64) Term {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}
