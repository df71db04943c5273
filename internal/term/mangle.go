package term

import (
	"fmt"
	"math"

	"github.com/google/mangle/ast"
)

// ToConstant converts t into a Mangle constant so action results can be
// asserted as facts. Booleans map to the /true and /false name constants.
func ToConstant(t Term) (ast.Constant, error) {
	switch t.kind {
	case KindString:
		return ast.String(t.str), nil
	case KindNumber:
		if t.exact {
			return ast.Number(t.ival), nil
		}
		return ast.Float64(t.num), nil
	case KindBool:
		if t.b {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	case KindList:
		constants := make([]ast.Constant, len(t.list))
		for i, item := range t.list {
			c, err := ToConstant(item)
			if err != nil {
				return ast.Constant{}, fmt.Errorf("list index %d: %w", i, err)
			}
			constants[i] = c
		}
		return ast.List(constants), nil
	default:
		return ast.Constant{}, fmt.Errorf("%w: cannot convert %s term", ErrArgumentType, t.kind)
	}
}

// FromConstant converts a scalar Mangle constant back into a Term.
// Name constants other than /true and /false become strings holding the name.
func FromConstant(c ast.Constant) (Term, error) {
	switch c.Type {
	case ast.StringType:
		return String(c.Symbol), nil
	case ast.NumberType:
		return Int(c.NumValue), nil
	case ast.Float64Type:
		return Float(math.Float64frombits(uint64(c.NumValue))), nil
	case ast.NameType:
		switch c.Symbol {
		case ast.TrueConstant.Symbol:
			return Bool(true), nil
		case ast.FalseConstant.Symbol:
			return Bool(false), nil
		}
		return String(c.Symbol), nil
	default:
		return Term{}, fmt.Errorf("%w: unsupported constant %s", ErrArgumentType, c.String())
	}
}
