package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/graeme-hill/flc-go/lib"
	"github.com/peterh/liner"
)

const (
	promptMain  = "fl> "
	promptCont  = "... "
	historyFile = ".flc_history"
)

// session keeps the functions defined so far and evaluates input against
// them.
type session struct {
	evaluator *lib.Evaluator
	gen       *lib.Generator
}

func newSession() *session {
	evaluator := lib.NewEvaluator()
	return &session{evaluator: evaluator, gen: lib.NewGenerator(evaluator)}
}

// eval handles every element in code: declarations and definitions are
// added to the session, bare expressions are evaluated and printed.
func (s *session) eval(w io.Writer, code string) error {
	parser := lib.NewParser(strings.NewReader(code))
	for {
		node, done, err := parser.ParseTopOrExpression()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		switch n := node.(type) {
		case lib.Declaration:
			if err := s.gen.Generate(lib.Program{Elements: []lib.TopLevel{n}}); err != nil {
				return err
			}
			fmt.Fprintf(w, "declared %s/%d\n", n.Prototype.Name(), n.Prototype.Arity())
		case lib.Definition:
			if err := s.gen.Generate(lib.Program{Elements: []lib.TopLevel{n}}); err != nil {
				return err
			}
			fmt.Fprintf(w, "defined %s/%d\n", n.Prototype.Name(), n.Prototype.Arity())
		case lib.Expression:
			fn, err := s.gen.DefineAnonymous(n)
			if err != nil {
				return err
			}
			v, err := s.evaluator.Call(fn.Name)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
}

// incomplete reports whether code only failed to parse because it ended
// early, in which case the REPL asks for another line.
func incomplete(code string) bool {
	parser := lib.NewParser(strings.NewReader(code))
	for {
		_, done, err := parser.ParseTopOrExpression()
		if done {
			return false
		}
		if err != nil {
			var syntaxErr *lib.SyntaxError
			if errors.As(err, &syntaxErr) {
				_, eof := syntaxErr.Actual.(lib.EndOfFile)
				return eof
			}
			return false
		}
	}
}

func cmdRepl(_ []string) int {
	fmt.Printf("flc %s. Type :quit to exit.\n", lib.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

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

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	s := newSession()
	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(code)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return 0
		case strings.HasPrefix(trimmed, ":"):
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if err := s.eval(os.Stdout, code); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}
}

// readInput reads lines until they form something that parses or fails for
// a reason other than running out of input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}
