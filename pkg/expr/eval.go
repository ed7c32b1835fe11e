package expr

import (
	"fmt"
	"sort"
	"sync"
)

// Context supplies the numeric values visible to an expression: variable
// names and ordered references (keyed by their literal form, e.g. "@3").
type Context map[string]float64

// Evaluate computes the numeric value of an AST against a context. Lookup
// misses and division by zero are errors, never silent zeros or non-finite
// numbers.
func Evaluate(root Node, ctx Context) (float64, error) {
	switch n := root.(type) {
	case *NumberNode:
		return n.Value, nil

	case *VariableNode:
		value, ok := ctx[n.Name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownIdentifier, n.Name)
		}
		return value, nil

	case *OrderRefNode:
		value, ok := ctx[n.Ref]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownIdentifier, n.Ref)
		}
		return value, nil

	case *UnaryNode:
		operand, err := Evaluate(n.Operand, ctx)
		if err != nil {
			return 0, err
		}
		if n.Op == '-' {
			return -operand, nil
		}
		return operand, nil

	case *BinaryNode:
		left, err := Evaluate(n.Left, ctx)
		if err != nil {
			return 0, err
		}
		right, err := Evaluate(n.Right, ctx)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case '+':
			return left + right, nil
		case '-':
			return left - right, nil
		case '*':
			return left * right, nil
		case '/':
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			return left / right, nil
		default:
			return 0, fmt.Errorf("unsupported operator %q", string(n.Op))
		}

	default:
		return 0, fmt.Errorf("unsupported AST node %T", root)
	}
}

// Parsing is a pure function of the source text, so parsed trees are cached
// process-wide and never invalidated.
//
//nolint:gochecknoglobals // shared parse memo, guarded by parseCacheMu
var (
	parseCacheMu sync.RWMutex
	parseCache   = make(map[string]Node)
)

// ParseText tokenizes and parses an expression, memoizing successful parses
// by source text.
func ParseText(text string) (Node, error) {
	parseCacheMu.RLock()
	cached, ok := parseCache[text]
	parseCacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	root, err := Parse(tokens)
	if err != nil {
		return nil, err
	}

	parseCacheMu.Lock()
	parseCache[text] = root
	parseCacheMu.Unlock()

	return root, nil
}

// EvaluateExpression parses (memoized) and evaluates an expression source
// string against a context.
func EvaluateExpression(text string, ctx Context) (float64, error) {
	root, err := ParseText(text)
	if err != nil {
		return 0, err
	}
	return Evaluate(root, ctx)
}

// Dependencies returns the deduplicated, sorted set of variable names and
// ordered references the expression depends on.
func Dependencies(text string) ([]string, error) {
	root, err := ParseText(text)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	collectDependencies(root, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func collectDependencies(root Node, seen map[string]struct{}) {
	switch n := root.(type) {
	case *VariableNode:
		seen[n.Name] = struct{}{}
	case *OrderRefNode:
		seen[n.Ref] = struct{}{}
	case *UnaryNode:
		collectDependencies(n.Operand, seen)
	case *BinaryNode:
		collectDependencies(n.Left, seen)
		collectDependencies(n.Right, seen)
	}
}

// ValidateExpression wraps tokenizer and parser failure into a structured
// report without surfacing an error.
func ValidateExpression(text string) ValidationResult {
	if _, err := ParseText(text); err != nil {
		return ValidationResult{IsValid: false, Errors: []string{err.Error()}}
	}
	return ValidationResult{IsValid: true}
}
