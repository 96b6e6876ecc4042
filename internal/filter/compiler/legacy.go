package compiler

import (
	"context"

	"github.com/populse/scandex/internal/filter/ast"
	"github.com/populse/scandex/internal/valuetype"
)

// MatchSearch desugars the legacy get_documents_matching_search
// interface (§4.7): a case-sensitive substring OR over the listed
// columns. Any structurally invalid input (empty text, no columns)
// yields an empty result rather than an error.
func (c *Compiler) MatchSearch(ctx context.Context, text string, columns []string) ([]string, error) {
	if text == "" || len(columns) == 0 {
		return nil, nil
	}
	var expr *ast.Node
	for _, col := range columns {
		cmp := ast.Compare(ast.OpContains, ast.ColumnRef(col), ast.Literal(valuetype.NewString(text)))
		if expr == nil {
			expr = cmp
			continue
		}
		expr = ast.Or(expr, cmp)
	}
	return c.Match(ctx, expr)
}

// SearchClause is one (column, text, negate) triple of the legacy
// get_documents_matching_advanced_search interface.
type SearchClause struct {
	Column string
	Text   string
	Negate bool
}

// MatchAdvancedSearch desugars get_documents_matching_advanced_search:
// an N-ary boolean combination with per-clause negation, ORed
// together (mirroring MatchSearch's OR-of-terms shape, each term
// optionally negated). A clause with an empty column name is a
// structural violation and the whole call returns an empty result.
func (c *Compiler) MatchAdvancedSearch(ctx context.Context, clauses []SearchClause) ([]string, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	var expr *ast.Node
	for _, cl := range clauses {
		if cl.Column == "" {
			return nil, nil
		}
		cmp := ast.Compare(ast.OpContains, ast.ColumnRef(cl.Column), ast.Literal(valuetype.NewString(cl.Text)))
		if cl.Negate {
			cmp = ast.Not(cmp)
		}
		if expr == nil {
			expr = cmp
			continue
		}
		expr = ast.Or(expr, cmp)
	}
	return c.Match(ctx, expr)
}

// MatchColumnValueCouples desugars
// get_documents_matching_column_value_couples: an AND of exact-match
// equalities.
func (c *Compiler) MatchColumnValueCouples(ctx context.Context, pairs map[string]valuetype.Value) ([]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	var expr *ast.Node
	for col, v := range pairs {
		if col == "" {
			return nil, nil
		}
		cmp := ast.Compare(ast.OpEq, ast.ColumnRef(col), ast.Literal(v))
		if expr == nil {
			expr = cmp
			continue
		}
		expr = ast.And(expr, cmp)
	}
	return c.Match(ctx, expr)
}
