// repl.go: the interactive loop.
//
// Statements evaluate in a persistent global frame, so definitions survive
// across inputs. A line that ends inside an open bracket pair keeps reading
// with a continuation prompt. Errors print their mnemonic and detail and the
// session goes on.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	mitscript "github.com/yuetongz417/MITScript"
)

const (
	historyFile = ".mitscript_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

func historyPath(cfg config) string {
	if cfg.Repl.History != "" {
		return cfg.Repl.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

func cmdRepl(cfg config, memMB int) int {
	fmt.Printf("MITScript REPL. Ctrl+C cancels input, Ctrl+D exits.\n")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath(cfg)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ip, err := mitscript.NewInterpreter(
		mitscript.WithOutput(os.Stdout),
		mitscript.WithMemLimit(memMB),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}

	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}

		tokens := mitscript.NewLexer(code).Scan()
		if mitscript.HasErrors(tokens) {
			for _, t := range tokens {
				if t.Kind == mitscript.ERROR {
					fmt.Fprintln(os.Stderr, red("LexicalError: "+t.Lexeme))
					break
				}
			}
			continue
		}
		prog, err := mitscript.Parse(tokens)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(errorDetail(err)))
			continue
		}
		if err := ip.Run(prog); err != nil {
			fmt.Fprintln(os.Stderr, red(errorDetail(err)))
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

func errorDetail(err error) string {
	if e, ok := err.(*mitscript.Error); ok {
		return e.Detail()
	}
	return err.Error()
}

// readStatement reads one input, continuing over lines while brackets stay
// open. Returns false on Ctrl+D.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	prompt := promptMain
	for {
		line, err := ln.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			return "", true // Ctrl+C: drop the partial input
		}
		if err != nil {
			return "", false
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if !mitscript.Incomplete(b.String()) {
			return b.String(), true
		}
		prompt = promptCont
	}
}
