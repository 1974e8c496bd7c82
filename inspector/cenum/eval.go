package cenum

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
)

// integer literal suffixes (u, l, ul, ull ...) have no Go equivalent
var literalSuffix = regexp.MustCompile(`\b(0[xX][0-9a-fA-F]+|0[bB][01]+|[0-9]+)[uUlL]+\b`)

// Scope resolves identifiers referenced by an enumerator value
type Scope interface {
	Get(name string) (int64, bool)
}

// Eval evaluates an integer constant expression of an enumerator value
func Eval(expr string, scope Scope) (int64, error) {
	source := literalSuffix.ReplaceAllString(strings.TrimSpace(expr), "$1")
	source = strings.ReplaceAll(source, "~", "^")
	node, err := parser.ParseExpr(source)
	if err != nil {
		return 0, fmt.Errorf("invalid expression %q: %w", expr, err)
	}
	value, err := evalNode(node, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate %q: %w", expr, err)
	}
	result, exact := constant.Int64Val(constant.ToInt(value))
	if !exact {
		return 0, fmt.Errorf("value of %q is not an int64", expr)
	}
	return result, nil
}

func evalNode(node ast.Expr, scope Scope) (constant.Value, error) {
	switch actual := node.(type) {
	case *ast.BasicLit:
		if actual.Kind != token.INT && actual.Kind != token.CHAR {
			return nil, fmt.Errorf("unsupported literal %s", actual.Value)
		}
		value := constant.MakeFromLiteral(actual.Value, actual.Kind, 0)
		if value.Kind() == constant.Unknown {
			return nil, fmt.Errorf("malformed literal %s", actual.Value)
		}
		return value, nil
	case *ast.Ident:
		if scope != nil {
			if value, ok := scope.Get(actual.Name); ok {
				return constant.MakeInt64(value), nil
			}
		}
		return nil, fmt.Errorf("unknown identifier %s", actual.Name)
	case *ast.ParenExpr:
		return evalNode(actual.X, scope)
	case *ast.UnaryExpr:
		x, err := evalNode(actual.X, scope)
		if err != nil {
			return nil, err
		}
		switch actual.Op {
		case token.ADD, token.SUB, token.XOR:
			return constant.UnaryOp(actual.Op, x, 0), nil
		}
		return nil, fmt.Errorf("unsupported operator %s", actual.Op)
	case *ast.BinaryExpr:
		x, err := evalNode(actual.X, scope)
		if err != nil {
			return nil, err
		}
		y, err := evalNode(actual.Y, scope)
		if err != nil {
			return nil, err
		}
		return binaryOp(actual.Op, x, y)
	}
	return nil, fmt.Errorf("unsupported expression %T", node)
}

func binaryOp(op token.Token, x, y constant.Value) (constant.Value, error) {
	switch op {
	case token.SHL, token.SHR:
		shift, ok := constant.Uint64Val(y)
		if !ok || shift > 63 {
			return nil, fmt.Errorf("invalid shift count %v", y)
		}
		return constant.Shift(x, op, uint(shift)), nil
	case token.QUO, token.REM:
		if constant.Sign(y) == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if op == token.QUO {
			op = token.QUO_ASSIGN
		}
		return constant.BinaryOp(x, op, y), nil
	case token.ADD, token.SUB, token.MUL, token.OR, token.AND, token.XOR:
		return constant.BinaryOp(x, op, y), nil
	}
	return nil, fmt.Errorf("unsupported operator %s", op)
}
