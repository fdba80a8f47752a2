package spreadsheet

import (
	"errors"
	"testing"
)

// mapResolver serves canned values for formula evaluation tests.
type mapResolver map[Position]Value

func (m mapResolver) ValueAt(pos Position) (Value, bool) {
	v, ok := m[pos]
	return v, ok
}

func mustParseFormula(t *testing.T, expression string) *Formula {
	t.Helper()
	f, err := ParseFormula(expression)
	if err != nil {
		t.Fatalf("ParseFormula(%q): %v", expression, err)
	}
	return f
}

func TestParseFormulaSyntaxError(t *testing.T) {
	for _, expression := range []string{"", "1+", "(2", "hello"} {
		_, err := ParseFormula(expression)
		if !errors.Is(err, ErrFormulaSyntax) {
			t.Errorf("ParseFormula(%q): expected ErrFormulaSyntax, got %v", expression, err)
		}
	}
}

func TestEvaluateLookupSemantics(t *testing.T) {
	cells := mapResolver{
		{0, 0}: NumberValue(10),        // A1
		{0, 1}: TextValue("2.5"),       // B1
		{0, 2}: TextValue(""),          // C1
		{0, 3}: TextValue("hello"),     // D1
		{0, 4}: ErrorValue(FormulaErrorDiv0), // E1
	}

	tests := []struct {
		expression string
		expected   Value
	}{
		{"A1*2", NumberValue(20)},
		{"B1+1", NumberValue(3.5)},   // whole-string numeric text coerces
		{"C1+1", NumberValue(1)},     // empty text reads as 0
		{"Z99+1", NumberValue(1)},    // missing cell reads as 0
		{"D1+1", ErrorValue(FormulaErrorValue)},
		{"E1+1", ErrorValue(FormulaErrorDiv0)}, // upstream errors propagate
		{"1/0", ErrorValue(FormulaErrorDiv0)},
		{"A1/0", ErrorValue(FormulaErrorDiv0)},
		{"A20000+1", ErrorValue(FormulaErrorRef)}, // out-of-range reference
		{"D1+A20000", ErrorValue(FormulaErrorValue)}, // first error wins
	}

	for _, tt := range tests {
		f := mustParseFormula(t, tt.expression)
		if got := f.Evaluate(cells); got != tt.expected {
			t.Errorf("Evaluate(%q) = %v, expected %v", tt.expression, got, tt.expected)
		}
	}
}

func TestEvaluateStrictCoercion(t *testing.T) {
	// Only whole-string strict decimals coerce; everything else is a
	// Value error.
	bad := []string{" 3", "3 ", "3x", "0x10", "Inf", "NaN", "1_0", "1.2.3"}
	for _, text := range bad {
		cells := mapResolver{{0, 0}: TextValue(text)}
		f := mustParseFormula(t, "A1+1")
		if got := f.Evaluate(cells); got != ErrorValue(FormulaErrorValue) {
			t.Errorf("text %q: expected #VALUE!, got %v", text, got)
		}
	}

	good := map[string]float64{
		"3":     4,
		"-2.5":  -1.5,
		"+4":    5,
		"1e2":   101,
		"2.5E1": 26,
	}
	for text, expected := range good {
		cells := mapResolver{{0, 0}: TextValue(text)}
		f := mustParseFormula(t, "A1+1")
		if got := f.Evaluate(cells); got != NumberValue(expected) {
			t.Errorf("text %q: expected %v, got %v", text, expected, got)
		}
	}
}

func TestReferencedCells(t *testing.T) {
	f := mustParseFormula(t, "B2+A1*B2-A20000")
	refs := f.ReferencedCells()
	expected := []Position{{0, 0}, {1, 1}} // ascending, deduplicated, valid only
	if len(refs) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, refs)
	}
	for i := range expected {
		if refs[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, refs)
		}
	}
}

func TestExpressionCanonicalization(t *testing.T) {
	f := mustParseFormula(t, " 1 +  2 * A1 ")
	if got := f.Expression(); got != "1+2*A1" {
		t.Errorf("expected canonical %q, got %q", "1+2*A1", got)
	}
}
