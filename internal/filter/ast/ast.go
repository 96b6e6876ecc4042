// Package ast defines the filter expression AST produced by
// internal/filter/parser and consumed by internal/filter/compiler
// (§4.6-4.7): a small tagged-variant tree, not a Go interface
// hierarchy per node kind, so the compiler can switch exhaustively on
// Node.Kind the way the type system switches on SemanticType.
package ast

import "github.com/populse/scandex/internal/valuetype"

// Kind discriminates the Node union.
type Kind int

const (
	KindOr Kind = iota
	KindAnd
	KindNot
	KindCompare
	KindLiteral
	KindColumnRef
	KindList
)

// CompareOp is one of the eight comparison operators (§4.6).
type CompareOp string

const (
	OpEq       CompareOp = "=="
	OpNeq      CompareOp = "!="
	OpLt       CompareOp = "<"
	OpLte      CompareOp = "<="
	OpGt       CompareOp = ">"
	OpGte      CompareOp = ">="
	OpIn       CompareOp = "IN"
	OpContains CompareOp = "CONTAINS"
)

// Node is a filter expression tree node. Exactly the fields relevant
// to Kind are populated; the rest are zero.
type Node struct {
	Kind Kind

	// KindOr / KindAnd
	Left, Right *Node

	// KindNot
	Operand *Node

	// KindCompare
	Op *CompareOp
	// Compare reuses Left/Right for its two operands.

	// KindLiteral
	Literal valuetype.Value

	// KindColumnRef
	Column string

	// KindList
	Elements []*Node
}

func Or(l, r *Node) *Node  { return &Node{Kind: KindOr, Left: l, Right: r} }
func And(l, r *Node) *Node { return &Node{Kind: KindAnd, Left: l, Right: r} }
func Not(n *Node) *Node    { return &Node{Kind: KindNot, Operand: n} }

func Compare(op CompareOp, l, r *Node) *Node {
	return &Node{Kind: KindCompare, Op: &op, Left: l, Right: r}
}

func Literal(v valuetype.Value) *Node { return &Node{Kind: KindLiteral, Literal: v} }
func ColumnRef(name string) *Node     { return &Node{Kind: KindColumnRef, Column: name} }
func List(elems []*Node) *Node        { return &Node{Kind: KindList, Elements: elems} }
