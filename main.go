package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"tabula/kernel"
	"tabula/repl"
	"tabula/spreadsheet"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	switch sub {
	case "-h", "--help", "help":
		usage()
		return
	case "repl":
		os.Exit(replCommand())
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	case "kernel":
		os.Exit(kernelCommand(os.Args[2:]))
	case "print":
		os.Exit(printCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  tabula <command> [arguments]\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  repl                     start the interactive sheet shell\n")
	fmt.Fprintf(os.Stderr, "  serve [addr]             start the websocket sheet server (default :8080)\n")
	fmt.Fprintf(os.Stderr, "  kernel <connection.json> start the calculation kernel service\n")
	fmt.Fprintf(os.Stderr, "  print [-texts] <file>    run a cell script and render the sheet (use - for stdin)\n")
	fmt.Fprintf(os.Stderr, "  help                     show this help message\n")
}

func replCommand() int {
	repl.Start(os.Stdin, os.Stdout)
	return 0
}

func serveCommand(args []string) int {
	addr := ":8080"
	if len(args) > 0 {
		addr = args[0]
	}
	server := spreadsheet.NewServer()
	if err := server.Start(addr); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return 1
	}
	return 0
}

func kernelCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: tabula kernel <connection.json>\n")
		return 2
	}
	k, err := kernel.NewKernel(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "kernel error: %v\n", err)
		return 1
	}
	if err := k.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "kernel error: %v\n", err)
		return 1
	}
	return 0
}

func printCommand(args []string) int {
	texts := false
	var positional []string
	for _, arg := range args {
		switch arg {
		case "-texts", "--texts":
			texts = true
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) != 1 {
		fmt.Fprintf(os.Stderr, "usage: tabula print [-texts] <file>\n")
		return 2
	}

	in := os.Stdin
	if positional[0] != "-" {
		f, err := os.Open(positional[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	sheet := spreadsheet.NewSheet()
	if err := applyScript(sheet, in); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	var renderErr error
	if texts {
		renderErr = sheet.PrintTexts(os.Stdout)
	} else {
		renderErr = sheet.PrintValues(os.Stdout)
	}
	if renderErr != nil {
		fmt.Fprintf(os.Stderr, "write error: %v\n", renderErr)
		return 1
	}
	return 0
}

// applyScript feeds tab-separated `POS<TAB>text` lines into the sheet.
// Blank lines and lines starting with # are skipped. A line with no tab
// clears the named cell.
func applyScript(sheet *spreadsheet.Sheet, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, text, hasText := strings.Cut(line, "\t")
		pos := spreadsheet.PositionFromString(strings.TrimSpace(name))

		var err error
		if hasText {
			err = sheet.SetCell(pos, text)
		} else {
			err = sheet.ClearCell(pos)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}
