package expr

// Node is a node in the expression AST. The node set is closed: number
// literals, variable references, ordered references, unary and binary
// operators. Nodes are immutable once built, so parsed trees are safe to
// cache and share.
type Node interface {
	node()
}

// NumberNode is a numeric literal
type NumberNode struct {
	Value float64
}

// VariableNode is a bare identifier referencing a named variable
type VariableNode struct {
	Name string
}

// OrderRefNode references a report line item by its position, written @N
type OrderRefNode struct {
	Ref string // the literal token text, e.g. "@3"
}

// UnaryNode applies unary + or - to its operand
type UnaryNode struct {
	Op      byte // '+' or '-'
	Operand Node
}

// BinaryNode applies a binary arithmetic operator, left-associative
type BinaryNode struct {
	Op    byte // '+', '-', '*' or '/'
	Left  Node
	Right Node
}

func (*NumberNode) node()   {}
func (*VariableNode) node() {}
func (*OrderRefNode) node() {}
func (*UnaryNode) node()    {}
func (*BinaryNode) node()   {}
