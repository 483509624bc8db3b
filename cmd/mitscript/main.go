// Command mitscript is the driver for the MITScript toolchain: token
// scanning, parsing, interpretation, the bytecode round-trip, and an
// interactive REPL.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/yuetongz417/MITScript/bytecode"

	mitscript "github.com/yuetongz417/MITScript"
)

const appName = "mitscript"

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func usage() {
	fmt.Printf(`Usage: %s [SUBCOMMAND] [input_file] [OPTIONS]

POSITIONALS:
  input_file TEXT             Path to input file, use '-' for stdin

OPTIONS:
  -h,     --help              Print this help message and exit
  -o,     --output TEXT       Path to output file, use '-' for stdout
  -m,     --mem UINT          Memory limit in MB

SUBCOMMANDS:
  scan
  parse
  compile
  interpret
  vm
  repl
`, appName)
}

// command is the parsed CLI invocation.
type command struct {
	kind   string
	input  string
	output string
	mem    int
}

func parseArgs(args []string, defaults config) (command, int) {
	c := command{input: "-", output: "-", mem: defaults.Run.MemMB}

	if len(args) < 1 {
		usage()
		return c, 1
	}
	switch args[0] {
	case "scan", "parse", "compile", "interpret", "vm", "repl":
		c.kind = args[0]
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown subcommand '%s'\n", args[0])
		usage()
		return c, 1
	}

	inputSet := false
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			usage()
			os.Exit(0)
		case arg == "-o" || arg == "--output":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: -o/--output requires a value")
				return c, 1
			}
			i++
			c.output = args[i]
		case arg == "-m" || arg == "--mem":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: -m/--mem requires a value")
				return c, 1
			}
			i++
			n := 0
			if _, err := fmt.Sscanf(args[i], "%d", &n); err != nil || n < 0 {
				fmt.Fprintf(os.Stderr, "Error: invalid memory limit '%s'\n", args[i])
				return c, 1
			}
			c.mem = n
		case !inputSet:
			c.input = arg
			inputSet = true
		default:
			fmt.Fprintln(os.Stderr, "Error: Too many positional arguments")
			return c, 1
		}
	}
	return c, 0
}

func main() {
	cfg := loadConfig()
	c, status := parseArgs(os.Args[1:], cfg)
	if status != 0 {
		os.Exit(status)
	}
	if c.kind == "repl" {
		os.Exit(cmdRepl(cfg, c.mem))
	}

	contents, err := readInput(c.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	out, closeOut, err := openOutput(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	switch c.kind {
	case "scan":
		os.Exit(cmdScan(contents, out))
	case "parse":
		os.Exit(cmdParse(contents))
	case "compile":
		fmt.Fprintln(os.Stderr, "Error: compile is not implemented")
		os.Exit(1)
	case "interpret":
		os.Exit(cmdInterpret(contents, out, c.mem))
	case "vm":
		os.Exit(cmdVM(contents, out))
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("Input file '%s' does not exist", path)
	}
	return string(b), nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func cmdScan(src string, out io.Writer) int {
	tokens := mitscript.NewLexer(src).Scan()
	if err := mitscript.PrintTokens(out, tokens); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if mitscript.HasErrors(tokens) {
		return 1
	}
	return 0
}

func frontend(src string) (*mitscript.Block, error) {
	tokens := mitscript.NewLexer(src).Scan()
	if mitscript.HasErrors(tokens) {
		return nil, &mitscript.Error{Kind: mitscript.LexicalError}
	}
	return mitscript.Parse(tokens)
}

func cmdParse(src string) int {
	if _, err := frontend(src); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func cmdInterpret(src string, out io.Writer, memMB int) int {
	prog, err := frontend(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ip, err := mitscript.NewInterpreter(
		mitscript.WithInput(os.Stdin),
		mitscript.WithOutput(out),
		mitscript.WithMemLimit(memMB),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := ip.Run(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func cmdVM(src string, out io.Writer) int {
	fn, err := bytecode.Parse(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := bytecode.Print(out, fn); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
