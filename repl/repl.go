package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tabula/spreadsheet"
)

const PROMPT = "tabula> "

// Start begins an interactive sheet session. Assignments use the form
// `A1 = text`; everything after the first '=' is the cell source, so
// `A3 = =A1+A2` sets a formula.
func Start(in io.Reader, out io.Writer) {
	sheet := spreadsheet.NewSheet()

	var (
		tty     *ttyInput
		scanner *bufio.Scanner
	)
	if ti, ok := newTTYInput(in, out); ok {
		tty = ti
		defer tty.Close()
	} else {
		scanner = bufio.NewScanner(in)
	}

	sessionOut := out
	if tty != nil {
		// In raw TTY mode, normalize LF to CRLF so lines start in column 0.
		sessionOut = newTTYLineWriter(out)
	}

	fmt.Fprintf(sessionOut, "Tabula - interactive sheet\n")
	fmt.Fprintf(sessionOut, "Assign cells with A1 = <text>, formulas with A1 = =B1+1.\n")
	fmt.Fprintf(sessionOut, "Commands: get, text, clear, values, texts, size, :help, :quit\n\n")

	for {
		var (
			line string
			ok   bool
		)
		if tty != nil {
			line, ok = tty.readLine(PROMPT)
		} else {
			fmt.Fprint(out, PROMPT)
			if scanner.Scan() {
				line, ok = scanner.Text(), true
			}
		}
		if !ok {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if handleCommand(line, sessionOut) {
				return
			}
			continue
		}

		runStatement(sheet, line, sessionOut)
	}
}

// runStatement executes one input line against the sheet.
func runStatement(sheet *spreadsheet.Sheet, line string, out io.Writer) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "values":
		if err := sheet.PrintValues(out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return
	case "texts":
		if err := sheet.PrintTexts(out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return
	case "size":
		size := sheet.PrintableSize()
		fmt.Fprintf(out, "%d x %d\n", size.Rows, size.Cols)
		return
	case "get", "text", "clear":
		if len(fields) != 2 {
			fmt.Fprintf(out, "usage: %s <cell>\n", fields[0])
			return
		}
		runCellCommand(sheet, fields[0], fields[1], out)
		return
	}

	// Assignment: POS = text.
	pos, source, ok := splitAssignment(line)
	if !ok {
		fmt.Fprintf(out, "Unrecognized input (try :help)\n")
		return
	}
	if err := sheet.SetCell(pos, source); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	if cell := cellAt(sheet, pos); cell != nil {
		fmt.Fprintf(out, "%s = %s\n", pos, cell.Value(sheet))
	}
}

func runCellCommand(sheet *spreadsheet.Sheet, op, name string, out io.Writer) {
	pos := spreadsheet.PositionFromString(name)
	switch op {
	case "get":
		cell, err := sheet.GetCell(pos)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if cell == nil {
			fmt.Fprintf(out, "\n")
			return
		}
		fmt.Fprintf(out, "%s\n", cell.Value(sheet))
	case "text":
		cell, err := sheet.GetCell(pos)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if cell == nil {
			fmt.Fprintf(out, "\n")
			return
		}
		fmt.Fprintf(out, "%s\n", cell.Text())
	case "clear":
		if err := sheet.ClearCell(pos); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

// splitAssignment parses `A1 = text`. The position must parse and the
// '=' must follow it; the remainder, trimmed on the left, is the cell
// source text.
func splitAssignment(line string) (spreadsheet.Position, string, bool) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return spreadsheet.InvalidPosition, "", false
	}
	name := strings.TrimSpace(line[:eq])
	pos := spreadsheet.PositionFromString(name)
	if pos == spreadsheet.InvalidPosition {
		return spreadsheet.InvalidPosition, "", false
	}
	source := strings.TrimLeft(line[eq+1:], " \t")
	return pos, source, true
}

func cellAt(sheet *spreadsheet.Sheet, pos spreadsheet.Position) *spreadsheet.Cell {
	cell, err := sheet.GetCell(pos)
	if err != nil {
		return nil
	}
	return cell
}

// handleCommand processes REPL commands (starting with :).
// Returns true if the REPL should exit.
func handleCommand(cmd string, out io.Writer) bool {
	switch strings.TrimSpace(cmd) {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, "Goodbye!")
		return true

	case ":help", ":h":
		fmt.Fprintln(out, "Statements:")
		fmt.Fprintln(out, "  A1 = <text>   - set a cell (prefix the text with = for a formula)")
		fmt.Fprintln(out, "  get A1        - print a cell's value")
		fmt.Fprintln(out, "  text A1       - print a cell's source text")
		fmt.Fprintln(out, "  clear A1      - clear a cell")
		fmt.Fprintln(out, "  values        - print the sheet as values")
		fmt.Fprintln(out, "  texts         - print the sheet as source text")
		fmt.Fprintln(out, "  size          - print the printable size")
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help, :h     - show this help")
		fmt.Fprintln(out, "  :quit, :q     - exit")
		fmt.Fprintln(out, "  :clear        - clear the screen (same as Ctrl+L)")

	case ":clear":
		clearScreen(out)

	default:
		fmt.Fprintf(out, "Unknown command: %s (try :help)\n", cmd)
	}

	return false
}
