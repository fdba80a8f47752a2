package spreadsheet

// cellKind tags a cell's content variant.
type cellKind uint8

const (
	kindEmpty cellKind = iota
	kindText
	kindFormula
)

// Content markers in cell source text.
const (
	FormulaMarker = '='
	EscapeMarker  = '\''
)

// Cell is one slot of the grid. Content is a tagged sum of empty, a
// literal text string, or a parsed formula with an optional cached
// result. Dependency edges are stored as positions, not pointers, so a
// cell can be removed and re-created without dangling references.
type Cell struct {
	pos Position

	kind    cellKind
	text    string
	formula *Formula
	cache   *Value

	outgoing map[Position]struct{}
	incoming map[Position]struct{}
}

func newCell(pos Position) *Cell {
	return &Cell{
		pos:      pos,
		outgoing: make(map[Position]struct{}),
		incoming: make(map[Position]struct{}),
	}
}

// content is a candidate cell implementation built from source text
// before it is committed.
type content struct {
	kind    cellKind
	text    string
	formula *Formula
}

// buildContent dispatches on the text form: empty, formula (leading
// '=' with a non-empty body), or literal text. A lone "=" is text.
func buildContent(text string) (content, error) {
	switch {
	case text == "":
		return content{kind: kindEmpty}, nil
	case len(text) >= 2 && text[0] == FormulaMarker:
		formula, err := ParseFormula(text[1:])
		if err != nil {
			return content{}, err
		}
		return content{kind: kindFormula, formula: formula}, nil
	default:
		return content{kind: kindText, text: text}, nil
	}
}

// referencedCells returns the candidate's outgoing positions.
func (c content) referencedCells() []Position {
	if c.kind != kindFormula {
		return nil
	}
	return c.formula.ReferencedCells()
}

// Position returns the cell's own grid coordinate.
func (c *Cell) Position() Position {
	return c.pos
}

// Value reads the cell's current value. Formula cells evaluate lazily
// and memoize the result until an upstream edit invalidates it.
func (c *Cell) Value(cells ValueResolver) Value {
	switch c.kind {
	case kindText:
		if len(c.text) > 0 && c.text[0] == EscapeMarker {
			return TextValue(c.text[1:])
		}
		return TextValue(c.text)
	case kindFormula:
		if c.cache == nil {
			v := c.formula.Evaluate(cells)
			c.cache = &v
		}
		return *c.cache
	}
	return TextValue("")
}

// Text reconstructs the cell's source text. Formula expressions come
// back canonicalized.
func (c *Cell) Text() string {
	switch c.kind {
	case kindText:
		return c.text
	case kindFormula:
		return string(FormulaMarker) + c.formula.Expression()
	}
	return ""
}

// ReferencedCells returns the positions the cell's formula references.
// Text and empty cells reference nothing.
func (c *Cell) ReferencedCells() []Position {
	if c.kind != kindFormula {
		return nil
	}
	return c.formula.ReferencedCells()
}

// IsReferenced reports whether any formula cell references this one. A
// referenced cell must stay allocated even when empty.
func (c *Cell) IsReferenced() bool {
	return len(c.incoming) > 0
}

// setContent swaps in a committed candidate, dropping any stale cache.
func (c *Cell) setContent(nc content) {
	c.kind = nc.kind
	c.text = nc.text
	c.formula = nc.formula
	c.cache = nil
}

func (c *Cell) hasCache() bool {
	return c.cache != nil
}

func (c *Cell) dropCache() {
	c.cache = nil
}
