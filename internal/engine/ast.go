package engine

import "time"

// Node is an expression tree node. Every node records the byte offset
// of its first token so evaluation errors can point back into the
// source.
type Node interface {
	Pos() int
}

type NumberLit struct {
	pos   int
	Value float64
}

type DateLit struct {
	pos   int
	Value time.Time
}

// FieldRef is a {name} or {name[index]} reference. A nil Index means a
// plain reference; a negative index counts from the end of the bound
// list.
type FieldRef struct {
	pos   int
	Name  string
	Index *int
}

// FuncCall is one of the closed set of supported functions. Aggregate
// functions carry exactly one FieldRef argument; today carries none.
type FuncCall struct {
	pos  int
	Name string
	Args []Node
}

type BinOp struct {
	pos   int
	Op    tokenType
	Left  Node
	Right Node
}

// UnaryOp is logical not or arithmetic negation.
type UnaryOp struct {
	pos  int
	Op   tokenType
	Expr Node
}

func (n *NumberLit) Pos() int { return n.pos }
func (n *DateLit) Pos() int   { return n.pos }
func (n *FieldRef) Pos() int  { return n.pos }
func (n *FuncCall) Pos() int  { return n.pos }
func (n *BinOp) Pos() int     { return n.pos }
func (n *UnaryOp) Pos() int   { return n.pos }

// walkFields calls fn for every field reference in the tree.
func walkFields(n Node, fn func(*FieldRef)) {
	switch t := n.(type) {
	case *FieldRef:
		fn(t)
	case *FuncCall:
		for _, arg := range t.Args {
			walkFields(arg, fn)
		}
	case *BinOp:
		walkFields(t.Left, fn)
		walkFields(t.Right, fn)
	case *UnaryOp:
		walkFields(t.Expr, fn)
	}
}
