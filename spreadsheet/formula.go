package spreadsheet

import (
	"errors"
	"fmt"
	"sort"

	"tabula/ast"
	"tabula/lexer"
	"tabula/parser"
)

// ValueResolver provides read access to cell values during formula
// evaluation. It is implemented by Sheet.
type ValueResolver interface {
	// ValueAt returns the value of the cell at pos, reporting false if
	// no cell is allocated there.
	ValueAt(pos Position) (Value, bool)
}

// Formula owns a parsed arithmetic expression. It evaluates against a
// resolver, renders its canonical text, and enumerates the valid
// positions it references.
type Formula struct {
	expr ast.Expression
	refs []Position
}

// ParseFormula parses an expression string (without the leading '='
// marker). Parse failures wrap ErrFormulaSyntax.
func ParseFormula(expression string) (*Formula, error) {
	p := parser.New(lexer.New(expression))
	expr := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrFormulaSyntax, parser.FormatParseErrors(errs, expression))
	}
	return &Formula{expr: expr, refs: referencedPositions(expr)}, nil
}

// referencedPositions maps the expression's reference names to valid
// positions, deduplicated and in ascending position order. Names that
// parse to out-of-range positions are dropped here; evaluation still
// sees them and fails with a Ref error.
func referencedPositions(expr ast.Expression) []Position {
	seen := make(map[Position]bool)
	var refs []Position
	for _, name := range ast.Refs(expr) {
		pos := PositionFromString(name)
		if !pos.IsValid() || seen[pos] {
			continue
		}
		seen[pos] = true
		refs = append(refs, pos)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// Evaluate executes the expression against the resolver and never
// fails: lookup and arithmetic errors come back as an error Value.
func (f *Formula) Evaluate(cells ValueResolver) Value {
	result, err := ast.Execute(f.expr, func(name string) (float64, error) {
		return lookupNumber(cells, name)
	})
	if err != nil {
		var fe FormulaError
		if errors.As(err, &fe) {
			return ErrorValue(fe)
		}
		// Division by zero and overflow both surface as non-finite
		// results.
		return ErrorValue(FormulaErrorDiv0)
	}
	return NumberValue(result)
}

// lookupNumber converts the referenced cell's value to a float64:
// missing or empty cells read as 0, numeric text coerces whole-string
// only, error values propagate as-is.
func lookupNumber(cells ValueResolver, name string) (float64, error) {
	pos := PositionFromString(name)
	if !pos.IsValid() {
		return 0, FormulaErrorRef
	}
	value, ok := cells.ValueAt(pos)
	if !ok {
		return 0, nil
	}
	switch value.Kind {
	case KindNumber:
		return value.Number, nil
	case KindText:
		if value.Text == "" {
			return 0, nil
		}
		n, ok := parseDecimal(value.Text)
		if !ok {
			return 0, FormulaErrorValue
		}
		return n, nil
	case KindError:
		return 0, value.Err
	}
	return 0, nil
}

// Expression renders the formula in canonical form, parentheses only
// where precedence requires them.
func (f *Formula) Expression() string {
	return ast.Format(f.expr)
}

// ReferencedCells returns the valid positions the formula references,
// deduplicated, in ascending order. The returned slice is shared; do
// not mutate it.
func (f *Formula) ReferencedCells() []Position {
	return f.refs
}
