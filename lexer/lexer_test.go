package lexer

import (
	"testing"

	"tabula/token"
)

func TestNextToken(t *testing.T) {
	input := `A1 + 22.5*(B2-3)/-1e2`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.REF, "A1"},
		{token.PLUS, "+"},
		{token.NUMBER, "22.5"},
		{token.ASTERISK, "*"},
		{token.LPAREN, "("},
		{token.REF, "B2"},
		{token.MINUS, "-"},
		{token.NUMBER, "3"},
		{token.RPAREN, ")"},
		{token.SLASH, "/"},
		{token.MINUS, "-"},
		{token.NUMBER, "1e2"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong token type. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"7", "7"},
		{"3.25", "3.25"},
		{"1e9", "1e9"},
		{"2E-3", "2E-3"},
		{"6e+4", "6e+4"},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != token.NUMBER || tok.Literal != tt.literal {
			t.Errorf("%q: expected NUMBER %q, got %s %q", tt.input, tt.literal, tok.Type, tok.Literal)
		}
	}
}

func TestCellRefNeedsRowDigits(t *testing.T) {
	tok := New("AB").NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for bare letters, got %s %q", tok.Type, tok.Literal)
	}
}

func TestLowercaseIsIllegal(t *testing.T) {
	tok := New("a1").NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for lowercase ref, got %s %q", tok.Type, tok.Literal)
	}
}

func TestColumnTracking(t *testing.T) {
	l := New("1 + C3")
	first := l.NextToken()
	op := l.NextToken()
	ref := l.NextToken()

	if first.Column != 1 {
		t.Errorf("number column: expected 1, got %d", first.Column)
	}
	if op.Column != 3 {
		t.Errorf("operator column: expected 3, got %d", op.Column)
	}
	if ref.Column != 5 {
		t.Errorf("ref column: expected 5, got %d", ref.Column)
	}
}
