// Package compiler implements the Filter Compiler (§4.7): it lowers a
// parsed filter AST into either a pushed-down SQL WHERE fragment (the
// common case, every comparison scalar) or, when the expression
// touches list-valued columns or literals whose semantics the
// backend's native comparison operators cannot reproduce (lexicographic
// list ordering, element containment), a full-table scan evaluated
// in-memory with the same typed comparison rules.
package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/internal/errs"
	"github.com/populse/scandex/internal/filter/ast"
	"github.com/populse/scandex/internal/registry"
	"github.com/populse/scandex/internal/valuetype"
)

// columnLookup mirrors the slice of Registry the compiler depends on,
// matching the same narrow-interface pattern internal/store uses to
// keep the dependency direction one-way (compiler does not import
// store, avoiding a package cycle with the root package that wires
// both together).
type columnLookup interface {
	Get(ctx context.Context, name string) (registry.Column, error)
	List(ctx context.Context) ([]registry.Column, error)
}

// Compiler lowers and executes filter expressions against a backend.
type Compiler struct {
	db   database.Backend
	cols columnLookup
}

func New(db database.Backend, cols columnLookup) *Compiler {
	return &Compiler{db: db, cols: cols}
}

// Match returns the primary keys of every document matching expr.
func (c *Compiler) Match(ctx context.Context, expr *ast.Node) ([]string, error) {
	resolved, err := c.resolveColumns(ctx, expr)
	if err != nil {
		return nil, err
	}
	if needsScan(expr, resolved) {
		return c.matchByScan(ctx, expr, resolved)
	}
	return c.matchByQuery(ctx, expr, resolved)
}

type resolvedColumn struct {
	known bool
	typ   valuetype.SemanticType
}

// resolveColumns walks expr collecting, for every distinct column
// name referenced, whether it is declared and its type.
func (c *Compiler) resolveColumns(ctx context.Context, n *ast.Node) (map[string]resolvedColumn, error) {
	out := make(map[string]resolvedColumn)
	var walk func(*ast.Node) error
	walk = func(n *ast.Node) error {
		if n == nil {
			return nil
		}
		switch n.Kind {
		case ast.KindColumnRef:
			if _, ok := out[n.Column]; ok {
				return nil
			}
			col, err := c.cols.Get(ctx, n.Column)
			if errs.Is(err, errs.UnknownColumn) {
				out[n.Column] = resolvedColumn{known: false}
				return nil
			}
			if err != nil {
				return err
			}
			out[n.Column] = resolvedColumn{known: true, typ: col.Type}
			return nil
		case ast.KindOr, ast.KindAnd, ast.KindCompare:
			if err := walk(n.Left); err != nil {
				return err
			}
			return walk(n.Right)
		case ast.KindNot:
			return walk(n.Operand)
		case ast.KindList:
			for _, e := range n.Elements {
				if err := walk(e); err != nil {
					return err
				}
			}
			return nil
		default:
			return nil
		}
	}
	if err := walk(n); err != nil {
		return nil, err
	}
	return out, nil
}

// needsScan reports whether expr contains a comparison the SQL layer
// cannot evaluate directly: anything touching a list-typed column or
// a list literal (lexicographic ordering, element containment).
func needsScan(n *ast.Node, resolved map[string]resolvedColumn) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.KindCompare:
		return operandIsListy(n.Left, resolved) || operandIsListy(n.Right, resolved)
	case ast.KindOr, ast.KindAnd:
		return needsScan(n.Left, resolved) || needsScan(n.Right, resolved)
	case ast.KindNot:
		return needsScan(n.Operand, resolved)
	default:
		return false
	}
}

func operandIsListy(n *ast.Node, resolved map[string]resolvedColumn) bool {
	switch n.Kind {
	case ast.KindColumnRef:
		return resolved[n.Column].known && resolved[n.Column].typ.IsList()
	case ast.KindList:
		return true
	case ast.KindLiteral:
		return n.Literal.Type.IsList()
	default:
		return false
	}
}

// placeholderSeq allocates sequential bind-parameter placeholders in
// argument order, required for Postgres's positional $1/$2/... style
// (SQLite's "?" placeholder is position-independent but numbering it
// sequentially too is harmless).
type placeholderSeq struct {
	db database.Backend
	n  int
}

func (p *placeholderSeq) next() string {
	p.n++
	return p.db.Placeholder(p.n)
}

// matchByQuery pushes expr down into a SQL WHERE fragment.
func (c *Compiler) matchByQuery(ctx context.Context, expr *ast.Node, resolved map[string]resolvedColumn) ([]string, error) {
	seq := &placeholderSeq{db: c.db}
	frag, args, err := c.lower(expr, resolved, seq)
	if err != nil {
		return nil, err
	}
	if v, ok := frag.(boolLiteral); ok {
		if !bool(v) {
			return nil, nil
		}
		frag = sqlFragment("1=1")
	}
	q := c.db.Quote
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", q(database.PrimaryKeyColumn), q(database.DocumentTable), frag)

	if c.db.Dialect() == database.DialectPostgres {
		if err := validatePostgresWhere(string(frag.(sqlFragment))); err != nil {
			return nil, err
		}
	}

	rows, err := c.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "executing filter query")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Wrap(errs.BackendError, err, "scanning filter result")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// sqlFragment is a rendered WHERE-clause fragment; boolLiteral marks a
// fragment that collapsed to a compile-time-known true/false (e.g. an
// unknown column reference, or a statically type-mismatched literal),
// so matchByQuery can special-case "no rows can possibly match"
// without emitting degenerate SQL like "WHERE 0=1 AND ...".
type sqlFragment string
type boolLiteral bool

type lowered interface{ isLowered() }

func (sqlFragment) isLowered() {}
func (boolLiteral) isLowered() {}

// lower recursively renders a boolean AST node to a SQL fragment (or a
// statically-known boolLiteral) plus its bound parameters.
func (c *Compiler) lower(n *ast.Node, resolved map[string]resolvedColumn, seq *placeholderSeq) (lowered, []any, error) {
	switch n.Kind {
	case ast.KindAnd, ast.KindOr:
		lf, largs, err := c.lower(n.Left, resolved, seq)
		if err != nil {
			return nil, nil, err
		}
		rf, rargs, err := c.lower(n.Right, resolved, seq)
		if err != nil {
			return nil, nil, err
		}
		op := "AND"
		ident := true // AND identity: true
		if n.Kind == ast.KindOr {
			op = "OR"
			ident = false
		}
		if lb, ok := lf.(boolLiteral); ok {
			if bool(lb) == ident {
				return rf, rargs, nil
			}
			return boolLiteral(!ident), nil, nil
		}
		if rb, ok := rf.(boolLiteral); ok {
			if bool(rb) == ident {
				return lf, largs, nil
			}
			return boolLiteral(!ident), nil, nil
		}
		return sqlFragment(fmt.Sprintf("(%s %s %s)", lf.(sqlFragment), op, rf.(sqlFragment))), append(largs, rargs...), nil

	case ast.KindNot:
		inner, args, err := c.lower(n.Operand, resolved, seq)
		if err != nil {
			return nil, nil, err
		}
		if b, ok := inner.(boolLiteral); ok {
			return boolLiteral(!bool(b)), nil, nil
		}
		return sqlFragment(fmt.Sprintf("(NOT %s)", inner.(sqlFragment))), args, nil

	case ast.KindCompare:
		return c.lowerCompare(n, resolved, seq)

	default:
		return nil, nil, errs.New(errs.ParseError, "expression is not boolean-valued")
	}
}

func (c *Compiler) lowerCompare(n *ast.Node, resolved map[string]resolvedColumn, seq *placeholderSeq) (lowered, []any, error) {
	colNode, litNode, colOnLeft := operandSplit(n.Left, n.Right, resolved)
	if colNode == nil {
		return nil, nil, errs.New(errs.ParseError, "comparison requires a column reference")
	}
	rc := resolved[colNode.Column]
	if !rc.known {
		return boolLiteral(false), nil, nil
	}
	if litNode.Kind != ast.KindLiteral {
		return nil, nil, errs.New(errs.ParseError, "comparison requires a literal operand")
	}
	lit := litNode.Literal
	if !lit.Null && lit.Type != rc.typ {
		widensToFloat := rc.typ == valuetype.Float && lit.Type == valuetype.Integer
		if !widensToFloat {
			return boolLiteral(false), nil, nil
		}
	}

	q := c.db.Quote
	colSQL := q(colNode.Column)
	enc, err := valuetype.Encode(rc.typ, lit)
	if err != nil {
		return nil, nil, err
	}

	op := *n.Op
	if lit.Null {
		// Any comparison against null collapses to false (§4.7) -- SQL
		// already gives us this via NULL propagation in a WHERE clause,
		// but we render it explicitly so AND/OR short-circuit folding
		// above sees a boolLiteral instead of opaque SQL.
		return boolLiteral(false), nil, nil
	}

	sqlOp, ok := scalarOpSQL(op)
	if !ok {
		return nil, nil, errs.New(errs.ParseError, "operator %s is not valid for a scalar column", op)
	}
	if op == ast.OpContains {
		if rc.typ != valuetype.String {
			return boolLiteral(false), nil, nil
		}
		// instr/strpos match case-sensitively and take the needle
		// literally, unlike LIKE (case-insensitive for ASCII in SQLite).
		posFn := "instr"
		if c.db.Dialect() == database.DialectPostgres {
			posFn = "strpos"
		}
		return sqlFragment(fmt.Sprintf("%s(%s, %s) > 0", posFn, colSQL, seq.next())), []any{enc}, nil
	}
	if colOnLeft {
		return sqlFragment(fmt.Sprintf("%s %s %s", colSQL, sqlOp, seq.next())), []any{enc}, nil
	}
	return sqlFragment(fmt.Sprintf("%s %s %s", seq.next(), sqlOp, colSQL)), []any{enc}, nil
}

func scalarOpSQL(op ast.CompareOp) (string, bool) {
	switch op {
	case ast.OpEq:
		return "=", true
	case ast.OpNeq:
		return "!=", true
	case ast.OpLt:
		return "<", true
	case ast.OpLte:
		return "<=", true
	case ast.OpGt:
		return ">", true
	case ast.OpGte:
		return ">=", true
	case ast.OpContains:
		return "LIKE", true
	default:
		return "", false
	}
}

func operandSplit(l, r *ast.Node, resolved map[string]resolvedColumn) (col *ast.Node, lit *ast.Node, colOnLeft bool) {
	if l.Kind == ast.KindColumnRef {
		return l, r, true
	}
	if r.Kind == ast.KindColumnRef {
		return r, l, false
	}
	return nil, nil, false
}

// matchByScan evaluates expr in-memory over every document, used when
// list-valued comparisons are involved.
func (c *Compiler) matchByScan(ctx context.Context, expr *ast.Node, resolved map[string]resolvedColumn) ([]string, error) {
	cols, err := c.cols.List(ctx)
	if err != nil {
		return nil, err
	}
	colByName := make(map[string]registry.Column, len(cols))
	for _, col := range cols {
		colByName[col.Name] = col
	}

	q := c.db.Quote
	names := make([]string, 0, len(cols)+1)
	names = append(names, q(database.PrimaryKeyColumn))
	for _, col := range cols {
		names = append(names, q(col.Name))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), q(database.DocumentTable))
	rows, err := c.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "scanning documents for filter")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		dest := make([]any, len(names))
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errs.Wrap(errs.BackendError, err, "scanning filter row")
		}
		id, _ := (*(dest[0].(*any))).(string)
		values := make(map[string]valuetype.Value, len(cols))
		for i, col := range cols {
			raw := *(dest[i+1].(*any))
			v, err := valuetype.Decode(col.Type, raw)
			if err != nil {
				return nil, err
			}
			values[col.Name] = v
		}
		match, err := evalNode(expr, values, colByName)
		if err != nil {
			return nil, err
		}
		if match {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// evalNode evaluates a boolean AST node in-memory against one
// document's decoded values, implementing §4.7's semantics exactly
// (three-valued-logic-collapses-to-false, lexicographic list
// ordering, substring/element CONTAINS).
func evalNode(n *ast.Node, values map[string]valuetype.Value, cols map[string]registry.Column) (bool, error) {
	switch n.Kind {
	case ast.KindAnd:
		l, err := evalNode(n.Left, values, cols)
		if err != nil || !l {
			return false, err
		}
		return evalNode(n.Right, values, cols)
	case ast.KindOr:
		l, err := evalNode(n.Left, values, cols)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return evalNode(n.Right, values, cols)
	case ast.KindNot:
		v, err := evalNode(n.Operand, values, cols)
		return !v, err
	case ast.KindCompare:
		return evalCompare(n, values, cols)
	default:
		return false, errs.New(errs.ParseError, "expression is not boolean-valued")
	}
}

func evalCompare(n *ast.Node, values map[string]valuetype.Value, cols map[string]registry.Column) (bool, error) {
	colNode, otherNode, colOnLeft := operandSplitEval(n.Left, n.Right, cols)
	if colNode == nil {
		return false, errs.New(errs.ParseError, "comparison requires a column reference")
	}
	col, known := cols[colNode.Column]
	if !known {
		return false, nil
	}
	left := values[colNode.Column]
	right, err := resolveOperand(otherNode, col.Type, values, cols)
	if err != nil {
		return false, err
	}
	if !colOnLeft {
		left, right = right, left
	}
	if left.Null || right.Null {
		return false, nil
	}

	op := *n.Op
	switch op {
	case ast.OpEq:
		return typeCompatible(left, right) && left.Equal(right), nil
	case ast.OpNeq:
		return typeCompatible(left, right) && !left.Equal(right), nil
	case ast.OpLt:
		return typeCompatible(left, right) && left.Less(right), nil
	case ast.OpLte:
		return typeCompatible(left, right) && (left.Less(right) || left.Equal(right)), nil
	case ast.OpGt:
		return typeCompatible(left, right) && right.Less(left), nil
	case ast.OpGte:
		return typeCompatible(left, right) && (right.Less(left) || left.Equal(right)), nil
	case ast.OpIn:
		return evalIn(left, right), nil
	case ast.OpContains:
		return evalContains(left, right), nil
	default:
		return false, errs.New(errs.ParseError, "unknown operator %s", op)
	}
}

func typeCompatible(a, b valuetype.Value) bool {
	if a.Type == b.Type {
		return true
	}
	return (a.Type == valuetype.Float && b.Type == valuetype.Integer) ||
		(a.Type == valuetype.Integer && b.Type == valuetype.Float)
}

func evalIn(needle, haystack valuetype.Value) bool {
	if !haystack.Type.IsList() {
		return false
	}
	for _, e := range haystack.List {
		if typeCompatible(needle, e) && needle.Equal(e) {
			return true
		}
	}
	return false
}

func evalContains(container, needle valuetype.Value) bool {
	if container.Type == valuetype.String && needle.Type == valuetype.String {
		return strings.Contains(container.Str, needle.Str)
	}
	if container.Type.IsList() {
		for _, e := range container.List {
			if typeCompatible(e, needle) && e.Equal(needle) {
				return true
			}
		}
	}
	return false
}

func operandSplitEval(l, r *ast.Node, cols map[string]registry.Column) (col *ast.Node, other *ast.Node, colOnLeft bool) {
	if l.Kind == ast.KindColumnRef {
		return l, r, true
	}
	if r.Kind == ast.KindColumnRef {
		return r, l, false
	}
	return nil, nil, false
}

// resolveOperand evaluates the non-column side of a comparison: a
// literal value as-is, or (for IN against a list column compared with
// a list literal on the other side) a constructed list Value.
func resolveOperand(n *ast.Node, colType valuetype.SemanticType, values map[string]valuetype.Value, cols map[string]registry.Column) (valuetype.Value, error) {
	switch n.Kind {
	case ast.KindLiteral:
		return n.Literal, nil
	case ast.KindColumnRef:
		col, known := cols[n.Column]
		if !known {
			return valuetype.NullValue(colType), nil
		}
		return values[col.Name], nil
	case ast.KindList:
		elemType := colType
		if colType.IsList() {
			elemType = colType.Element()
		}
		elems := make([]valuetype.Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := resolveOperand(e, elemType, values, cols)
			if err != nil {
				return valuetype.Value{}, err
			}
			elems[i] = v
		}
		return valuetype.NewList(elemType, elems), nil
	default:
		return valuetype.Value{}, errs.New(errs.ParseError, "invalid comparison operand")
	}
}
