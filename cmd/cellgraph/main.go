// Command cellgraph is a line-oriented driver over a single in-memory
// sheet. It reads commands from stdin, or from a script file named as the
// sole positional argument, and writes results to stdout.
//
// Commands:
//
//	set <CELL> <text...>
//	get <CELL>
//	text <CELL>
//	clear <CELL>
//	insertrows <before> <count>    insertcols <before> <count>
//	deleterows <first> <count>     deletecols <first> <count>
//	print        values of the printable region
//	printtext    texts of the printable region
//	size         printable size as RxC
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/arborsheet/cellgraph"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	in := os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "cellgraph:", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	sheet := cellgraph.New()
	sheet.SetLogger(log)
	if err := run(sheet, in, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "cellgraph:", err)
		os.Exit(1)
	}
}

func run(sheet *cellgraph.Sheet, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := dispatch(sheet, out, line); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
	return sc.Err()
}

func dispatch(sheet *cellgraph.Sheet, out io.Writer, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "set":
		name, text, _ := strings.Cut(rest, " ")
		pos, err := cellArg(name)
		if err != nil {
			return err
		}
		return sheet.SetCell(pos, text)
	case "get", "text", "clear":
		pos, err := cellArg(strings.TrimSpace(rest))
		if err != nil {
			return err
		}
		switch cmd {
		case "get":
			cell, err := sheet.GetCell(pos)
			if err != nil {
				return err
			}
			if cell != nil {
				fmt.Fprintln(out, cell.GetValue())
			} else {
				fmt.Fprintln(out)
			}
			return nil
		case "text":
			cell, err := sheet.GetCell(pos)
			if err != nil {
				return err
			}
			if cell != nil {
				fmt.Fprintln(out, cell.GetText())
			} else {
				fmt.Fprintln(out)
			}
			return nil
		default:
			return sheet.ClearCell(pos)
		}
	case "insertrows", "insertcols", "deleterows", "deletecols":
		a, b, err := intArgs(rest)
		if err != nil {
			return err
		}
		switch cmd {
		case "insertrows":
			return sheet.InsertRows(a, b)
		case "insertcols":
			return sheet.InsertCols(a, b)
		case "deleterows":
			return sheet.DeleteRows(a, b)
		default:
			return sheet.DeleteCols(a, b)
		}
	case "print":
		return sheet.PrintValues(out)
	case "printtext":
		return sheet.PrintTexts(out)
	case "size":
		_, err := fmt.Fprintln(out, sheet.GetPrintableSize())
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cellArg(name string) (cellgraph.Position, error) {
	pos, ok := cellgraph.ParsePosition(name)
	if !ok {
		return pos, fmt.Errorf("bad cell name %q", name)
	}
	return pos, nil
}

func intArgs(rest string) (int, int, error) {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want two integer arguments, got %q", rest)
	}
	a, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
