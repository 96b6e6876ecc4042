package parser

import (
	"github.com/populse/scandex/internal/filter/ast"
	"github.com/populse/scandex/internal/valuetype"
)

// Parse compiles a filter expression string into an AST (§4.6).
// Column references are not resolved against a schema here; the
// compiler treats an unknown column reference as an empty result set
// rather than a parse-time error, per §4.7.
func Parse(src string) (*ast.Node, error) {
	p := &parserState{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, newParseError(p.cur.pos, "unexpected trailing input %q", p.cur.text)
	}
	return node, nil
}

type parserState struct {
	lex *lexer
	cur token
}

func (p *parserState) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parserState) expect(k tokenKind, what string) error {
	if p.cur.kind != k {
		return newParseError(p.cur.pos, "expected %s", what)
	}
	return p.advance()
}

// or_expr := and_expr ( "OR" and_expr )*
func (p *parserState) parseOr() (*ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.Or(left, right)
	}
	return left, nil
}

// and_expr := not_expr ( "AND" not_expr )*
func (p *parserState) parseAnd() (*ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.And(left, right)
	}
	return left, nil
}

// not_expr := "NOT"? cmp
func (p *parserState) parseNot() (*ast.Node, error) {
	if p.cur.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		return ast.Not(inner), nil
	}
	return p.parseCmp()
}

var cmpOps = map[tokenKind]ast.CompareOp{
	tokEq:       ast.OpEq,
	tokNeq:      ast.OpNeq,
	tokLt:       ast.OpLt,
	tokLte:      ast.OpLte,
	tokGt:       ast.OpGt,
	tokGte:      ast.OpGte,
	tokIn:       ast.OpIn,
	tokContains: ast.OpContains,
}

// cmp := operand ( cmp_op operand )?
func (p *parserState) parseCmp() (*ast.Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := cmpOps[p.cur.kind]
	if !ok {
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return ast.Compare(op, left, right), nil
}

// operand := literal | column_ref | "(" expr ")" | list
func (p *parserState) parseOperand() (*ast.Node, error) {
	switch p.cur.kind {
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokLBracket:
		return p.parseList()
	case tokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.ColumnRef(name), nil
	case tokString:
		v := valuetype.NewString(p.cur.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.Literal(v), nil
	case tokBool:
		v := valuetype.NewBool(p.cur.text == "true")
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.Literal(v), nil
	case tokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		// The semantic type of a bare null literal is resolved by the
		// compiler from comparison context; String is an inert default
		// carrier here (Null is what actually matters).
		return ast.Literal(valuetype.NullValue(valuetype.String)), nil
	case tokNumber:
		v, err := parseLiteralText(p.cur.pos, p.cur.text)
		if err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.Literal(v), nil
	default:
		return nil, newParseError(p.cur.pos, "expected literal, column reference, list, or '('")
	}
}

// list := "[" (operand ("," operand)*)? "]"
func (p *parserState) parseList() (*ast.Node, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var elems []*ast.Node
	for p.cur.kind != tokRBracket {
		elem, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return ast.List(elems), nil
}
