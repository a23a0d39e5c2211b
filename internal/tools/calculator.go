package tools

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// Calculator evaluates arithmetic expressions (spec §4.7 mandatory
// catalog: "calculator (arithmetic expr)"). It parses the expression as
// a Go expression and evaluates the resulting AST directly rather than
// shelling out, so it never needs a sandbox.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

func (c *Calculator) Name() string { return "calculator" }
func (c *Calculator) Description() string {
	return "Evaluates an arithmetic expression and returns the numeric result."
}

func (c *Calculator) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        c.Name(),
			Description: c.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"expression": map[string]any{
						"type":        "string",
						"description": "An arithmetic expression, e.g. (10000 * 12 + 5000) / 2",
					},
				},
				"required": []string{"expression"},
			},
		},
	}
}

func (c *Calculator) Execute(ctx context.Context, input string) (string, error) {
	expr := ExtractPrimaryArgument(input)
	value, err := evalArithmetic(expr)
	if err != nil {
		return "", fmt.Errorf("calculator: %w", err)
	}
	return formatNumber(value), nil
}

func evalArithmetic(expr string) (float64, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("invalid expression: %w", err)
	}
	return evalNode(node)
}

func evalNode(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return 0, fmt.Errorf("unsupported literal kind")
		}
		var v float64
		if _, err := fmt.Sscan(n.Value, &v); err != nil {
			return 0, fmt.Errorf("invalid number %q", n.Value)
		}
		return v, nil
	case *ast.ParenExpr:
		return evalNode(n.X)
	case *ast.UnaryExpr:
		v, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.SUB:
			return -v, nil
		case token.ADD:
			return v, nil
		default:
			return 0, fmt.Errorf("unsupported unary operator %s", n.Op)
		}
	case *ast.BinaryExpr:
		left, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		right, err := evalNode(n.Y)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return left + right, nil
		case token.SUB:
			return left - right, nil
		case token.MUL:
			return left * right, nil
		case token.QUO:
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return left / right, nil
		default:
			return 0, fmt.Errorf("unsupported operator %s", n.Op)
		}
	default:
		return 0, fmt.Errorf("unsupported expression")
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
