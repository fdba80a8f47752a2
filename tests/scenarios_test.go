package tests

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabula/spreadsheet"
)

// End-to-end scenarios exercising the whole stack through the public
// sheet API only.

func pos(t *testing.T, name string) spreadsheet.Position {
	t.Helper()
	p := spreadsheet.PositionFromString(name)
	require.True(t, p.IsValid(), "bad test position %q", name)
	return p
}

func value(t *testing.T, s *spreadsheet.Sheet, name string) spreadsheet.Value {
	t.Helper()
	v, ok := s.ValueAt(pos(t, name))
	require.True(t, ok, "no cell at %s", name)
	return v
}

func TestBudgetSheet(t *testing.T) {
	s := spreadsheet.NewSheet()

	entries := map[string]string{
		"A1": "rent",
		"B1": "1200",
		"A2": "food",
		"B2": "450.75",
		"A3": "total",
		"B3": "=B1+B2",
		"C3": "=B3/30",
	}
	for name, text := range entries {
		require.NoError(t, s.SetCell(pos(t, name), text))
	}

	assert.Equal(t, spreadsheet.NumberValue(1650.75), value(t, s, "B3"))
	assert.Equal(t, spreadsheet.NumberValue(55.025), value(t, s, "C3"))

	// A price change flows through both formulas.
	require.NoError(t, s.SetCell(pos(t, "B1"), "1300"))
	assert.Equal(t, spreadsheet.NumberValue(1750.75), value(t, s, "B3"))

	var buf bytes.Buffer
	require.NoError(t, s.PrintTexts(&buf))
	assert.Contains(t, buf.String(), "=B1+B2")
}

func TestEditErrorsKeepSheetUsable(t *testing.T) {
	s := spreadsheet.NewSheet()
	require.NoError(t, s.SetCell(pos(t, "A1"), "1"))
	require.NoError(t, s.SetCell(pos(t, "B1"), "=A1+1"))

	require.Error(t, s.SetCell(pos(t, "B1"), "=)("))
	require.Error(t, s.SetCell(pos(t, "A1"), "=B1"))
	require.Error(t, s.SetCell(spreadsheet.InvalidPosition, "9"))

	assert.Equal(t, spreadsheet.NumberValue(2), value(t, s, "B1"))

	var values bytes.Buffer
	require.NoError(t, s.PrintValues(&values))
	assert.Equal(t, "1\t2\n", values.String())
}

func TestErrorPropagationThroughChain(t *testing.T) {
	s := spreadsheet.NewSheet()
	require.NoError(t, s.SetCell(pos(t, "A1"), "=1/0"))
	require.NoError(t, s.SetCell(pos(t, "B1"), "=A1+1"))
	require.NoError(t, s.SetCell(pos(t, "C1"), "=B1*2"))

	assert.Equal(t, spreadsheet.ErrorValue(spreadsheet.FormulaErrorDiv0), value(t, s, "C1"))

	// Fixing the root heals the whole chain.
	require.NoError(t, s.SetCell(pos(t, "A1"), "3"))
	assert.Equal(t, spreadsheet.NumberValue(8), value(t, s, "C1"))
}

func TestIndependentSheets(t *testing.T) {
	a := spreadsheet.NewSheet()
	b := spreadsheet.NewSheet()

	require.NoError(t, a.SetCell(pos(t, "A1"), "1"))
	cell, err := b.GetCell(pos(t, "A1"))
	require.NoError(t, err)
	assert.Nil(t, cell, "sheets must not share state")
}

func TestRenderedRectangleIsDense(t *testing.T) {
	s := spreadsheet.NewSheet()
	require.NoError(t, s.SetCell(pos(t, "C3"), "x"))

	var buf bytes.Buffer
	require.NoError(t, s.PrintValues(&buf))
	assert.Equal(t, "\t\t\n\t\t\n\t\tx\n", buf.String())
}
