package lang

import (
	"math"
	"strconv"
	"strings"
)

// Filter transforms the rendered value of an expression.
type Filter func(string) string

// Functions resolves filter function names used after '|'.
// Names passed to Function are lower-cased.
type Functions interface {
	Function(name string) (Filter, bool)
}

// Placeholders resolves placeholder names used as identifiers.
// Names passed to Placeholder are lower-cased.
type Placeholders interface {
	Placeholder(name string) (string, bool)
}

// FunctionMap is a Functions backed by a map. Keys are matched
// case-insensitively.
type FunctionMap map[string]Filter

// Function implements Functions.
func (m FunctionMap) Function(name string) (Filter, bool) {
	if fn, ok := m[name]; ok {
		return fn, fn != nil
	}

	for k, fn := range m {
		if strings.EqualFold(k, name) {
			return fn, fn != nil
		}
	}

	return nil, false
}

// PlaceholderMap is a Placeholders backed by a map. Keys are matched
// case-insensitively.
type PlaceholderMap map[string]string

// Placeholder implements Placeholders.
func (m PlaceholderMap) Placeholder(name string) (string, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}

	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}

	return "", false
}

// evaluator renders nodes against a pair of providers. Either provider may be
// nil, which behaves as empty.
type evaluator struct {
	functions    Functions
	placeholders Placeholders
}

func (e evaluator) render(nodes []Node) string {
	var sb strings.Builder

	for _, n := range nodes {
		sb.WriteString(e.eval(n))
	}

	return sb.String()
}

func (e evaluator) eval(n Node) string {
	switch n := n.(type) {
	case *TextNode:
		return n.Literal

	case *NumberNode:
		return n.Literal

	case *IdentifierNode:
		return e.placeholder(n.Name)

	case *ConcatNode:
		return e.eval(n.Left) + e.eval(n.Right)

	case *ComparisonNode:
		return strconv.FormatBool(e.compare(n))

	case *TernaryNode:
		if e.truth(n.Condition) {
			return e.eval(n.WhenTrue)
		}

		if n.WhenFalse != nil {
			return e.eval(n.WhenFalse)
		}

		return ""

	case *PipeNode:
		return e.apply(n.Function, e.eval(n.Value))

	default:
		return ""
	}
}

// truth evaluates a ternary condition.
func (e evaluator) truth(n Node) bool {
	if c, ok := n.(*ComparisonNode); ok {
		return e.compare(c)
	}

	return strings.EqualFold(e.eval(n), "true")
}

func (e evaluator) compare(n *ComparisonNode) bool {
	left, right := e.eval(n.Left), e.eval(n.Right)

	if n.Op == OpEq {
		return left == right
	}

	cmp := strings.Compare(left, right)

	if l, ok := number(left); ok {
		if r, ok := number(right); ok {
			switch {
			case l < r:
				cmp = -1
			case l > r:
				cmp = 1
			default:
				cmp = 0
			}
		}
	}

	if n.Op == OpLt {
		return cmp < 0
	}

	return cmp > 0
}

func (e evaluator) placeholder(name string) string {
	if e.placeholders == nil {
		return ""
	}

	v, _ := e.placeholders.Placeholder(name)

	return v
}

// apply runs the named filter on s. Unknown filters, and filters that panic,
// leave s unchanged.
func (e evaluator) apply(name, s string) (out string) {
	if e.functions == nil {
		return s
	}

	fn, ok := e.functions.Function(name)
	if !ok {
		return s
	}

	defer func() {
		if recover() != nil {
			out = s
		}
	}()

	return fn(s)
}

// number parses s as a culture-invariant decimal number.
func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}

	return f, true
}
