package parser

import (
	"testing"

	"github.com/populse/scandex/internal/filter/ast"
)

func TestParse_SimpleComparison(t *testing.T) {
	node, err := Parse(`age >= 18`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if node.Kind != ast.KindCompare || *node.Op != ast.OpGte {
		t.Fatalf("unexpected node: %+v", node)
	}
	if node.Left.Kind != ast.KindColumnRef || node.Left.Column != "age" {
		t.Fatalf("unexpected left operand: %+v", node.Left)
	}
	if node.Right.Kind != ast.KindLiteral || node.Right.Literal.Int != 18 {
		t.Fatalf("unexpected right operand: %+v", node.Right)
	}
}

func TestParse_BooleanConnectives(t *testing.T) {
	node, err := Parse(`NOT active AND (age < 10 OR age > 65)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if node.Kind != ast.KindAnd {
		t.Fatalf("expected top-level AND, got %+v", node)
	}
	if node.Left.Kind != ast.KindNot {
		t.Fatalf("expected NOT on the left, got %+v", node.Left)
	}
	if node.Right.Kind != ast.KindOr {
		t.Fatalf("expected OR on the right, got %+v", node.Right)
	}
}

func TestParse_InAndContains(t *testing.T) {
	node, err := Parse(`status IN ["a", "b"]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *node.Op != ast.OpIn || node.Right.Kind != ast.KindList || len(node.Right.Elements) != 2 {
		t.Fatalf("unexpected node: %+v", node)
	}

	node2, err := Parse(`tags CONTAINS "urgent"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *node2.Op != ast.OpContains {
		t.Fatalf("unexpected node: %+v", node2)
	}
}

func TestParse_Literals(t *testing.T) {
	tests := []struct {
		expr string
	}{
		{`score == 3.5`},
		{`active == true`},
		{`name == null`},
		{`created == 2024-1-15`},
		{`stamp == 2024-1-15T10:30:00.789`},
		{`moment == 10:30:00.5`},
	}
	for _, tc := range tests {
		if _, err := Parse(tc.expr); err != nil {
			t.Errorf("parse %q: %v", tc.expr, err)
		}
	}
}

func TestParse_UnterminatedString(t *testing.T) {
	if _, err := Parse(`name == "unterminated`); err == nil {
		t.Fatal("expected ParseError for unterminated string")
	}
}

func TestParse_TrailingInput(t *testing.T) {
	if _, err := Parse(`age == 1 )`); err == nil {
		t.Fatal("expected ParseError for trailing input")
	}
}
