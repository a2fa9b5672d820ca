package lang

import (
	"io"
	"strconv"
	"strings"
)

// Node is an element of a parsed template.
//
// The set of implementations is closed: *TextNode, *NumberNode,
// *IdentifierNode, *ConcatNode, *TernaryNode, *ComparisonNode, and *PipeNode.
// Nodes are immutable after parsing.
type Node interface {
	// Pos returns the character offset of the token that began the node.
	Pos() int

	// String renders the node in template syntax.
	String() string

	sealed()
}

// TextNode is verbatim text, either a plain run outside brackets or a quoted
// literal inside an expression.
type TextNode struct {
	Literal string
	At      int
}

// NumberNode is a numeric literal. It is kept as text and only interpreted as
// a number by comparisons.
type NumberNode struct {
	Literal string
	At      int
}

// IdentifierNode references a placeholder. Name is lower-cased.
type IdentifierNode struct {
	Name string
	At   int
}

// ConcatNode joins the rendered values of Left and Right.
type ConcatNode struct {
	Left  Node
	Right Node
	At    int
}

// TernaryNode selects WhenTrue or WhenFalse by Condition. WhenFalse may be
// nil, in which case a false condition renders as the empty string.
type TernaryNode struct {
	Condition Node
	WhenTrue  Node
	WhenFalse Node
	At        int
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota // ==
	OpLt           // <
	OpGt           // >
)

// String returns the operator's template syntax.
func (op Op) String() string {
	switch op {
	case OpEq:
		return "=="

	case OpLt:
		return "<"

	case OpGt:
		return ">"

	default:
		return "?"
	}
}

// ComparisonNode compares the rendered values of Left and Right.
type ComparisonNode struct {
	Op    Op
	Left  Node
	Right Node
	At    int
}

// PipeNode applies the filter function named Function to the rendered value
// of Value. Function is lower-cased.
type PipeNode struct {
	Value    Node
	Function string
	At       int
}

func (*TextNode) sealed()       {}
func (*NumberNode) sealed()     {}
func (*IdentifierNode) sealed() {}
func (*ConcatNode) sealed()     {}
func (*TernaryNode) sealed()    {}
func (*ComparisonNode) sealed() {}
func (*PipeNode) sealed()       {}

func (n *TextNode) Pos() int       { return n.At }
func (n *NumberNode) Pos() int     { return n.At }
func (n *IdentifierNode) Pos() int { return n.At }
func (n *ConcatNode) Pos() int     { return n.At }
func (n *TernaryNode) Pos() int    { return n.At }
func (n *ComparisonNode) Pos() int { return n.At }
func (n *PipeNode) Pos() int       { return n.At }

func (n *TextNode) String() string       { return strconv.Quote(n.Literal) }
func (n *NumberNode) String() string     { return n.Literal }
func (n *IdentifierNode) String() string { return n.Name }

func (n *ConcatNode) String() string {
	left := n.Left.String()
	if _, ok := n.Left.(*TernaryNode); ok {
		left = group(n.Left)
	}

	right := n.Right.String()
	switch n.Right.(type) {
	case *ConcatNode, *TernaryNode:
		right = group(n.Right)
	}

	return left + " + " + right
}

func (n *TernaryNode) String() string {
	s := group(n.Condition) + " ? " + group(n.WhenTrue)
	if n.WhenFalse != nil {
		s += " : " + group(n.WhenFalse)
	}

	return s
}

func (n *ComparisonNode) String() string {
	return group(n.Left) + " " + n.Op.String() + " " + group(n.Right)
}

func (n *PipeNode) String() string {
	return group(n.Value) + " | " + n.Function
}

// group brackets compound operands so String output reparses to the same
// tree.
func group(n Node) string {
	switch n.(type) {
	case *ConcatNode, *TernaryNode, *ComparisonNode:
		return "[" + n.String() + "]"

	default:
		return n.String()
	}
}

// ScriptContext is the result of parsing a template: the top-level nodes in
// source order together with the names they reference.
type ScriptContext struct {
	Nodes        []Node
	Dependencies Set
	Functions    Set
}

// Walk visits n and its descendants depth-first, stopping early when fn
// returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}

	if !fn(n) {
		return false
	}

	switch n := n.(type) {
	case *ConcatNode:
		return Walk(n.Left, fn) && Walk(n.Right, fn)

	case *TernaryNode:
		return Walk(n.Condition, fn) && Walk(n.WhenTrue, fn) &&
			Walk(n.WhenFalse, fn)

	case *ComparisonNode:
		return Walk(n.Left, fn) && Walk(n.Right, fn)

	case *PipeNode:
		return Walk(n.Value, fn)
	}

	return true
}

// Template renders the nodes back into template syntax. Plain text is
// written verbatim and every expression is wrapped in brackets.
func (c *ScriptContext) Template() string {
	var sb strings.Builder

	for _, n := range c.Nodes {
		if t, ok := n.(*TextNode); ok {
			sb.WriteString(t.Literal)

			continue
		}

		sb.WriteString("[")
		sb.WriteString(n.String())
		sb.WriteString("]")
	}

	return sb.String()
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

// Print writes a formatted representation of the tree to the writer.
func (c *ScriptContext) Print(w io.Writer) {
	for _, n := range c.Nodes {
		PrintNode(w, n, 0)
	}
}

// PrintNode writes a formatted representation of n with the specified
// indentation.
func PrintNode(w io.Writer, n Node, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch n := n.(type) {
	case *TextNode:
		put("\n", prefix+"Text", strconv.Quote(n.Literal))

	case *NumberNode:
		put("\n", prefix+"Number", n.Literal)

	case *IdentifierNode:
		put("\n", prefix+"Identifier", n.Name)

	case *ConcatNode:
		put("\n", prefix+"Concat")
		PrintNode(w, n.Left, indent+1)
		PrintNode(w, n.Right, indent+1)

	case *TernaryNode:
		put("\n", prefix+"Ternary")
		put("\n", prefix+"  Condition")
		PrintNode(w, n.Condition, indent+2)
		put("\n", prefix+"  WhenTrue")
		PrintNode(w, n.WhenTrue, indent+2)

		if n.WhenFalse != nil {
			put("\n", prefix+"  WhenFalse")
			PrintNode(w, n.WhenFalse, indent+2)
		}

	case *ComparisonNode:
		put("\n", prefix+"Comparison", n.Op.String())
		PrintNode(w, n.Left, indent+1)
		PrintNode(w, n.Right, indent+1)

	case *PipeNode:
		put("\n", prefix+"Pipe", n.Function)
		PrintNode(w, n.Value, indent+1)
	}
}
