package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/graeme-hill/flc-go/lib"
)

const appName = "flc"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "lex":
		os.Exit(cmdLex(args))
	case "ast":
		os.Exit(cmdAST(args))
	case "build":
		os.Exit(cmdBuild(args))
	case "run":
		os.Exit(cmdRun(args))
	case "stage":
		os.Exit(cmdStage(args))
	case "watch":
		os.Exit(cmdWatch(args))
	case "repl":
		os.Exit(cmdRepl(args))
	case "version":
		fmt.Printf("%s %s (%s %s/%s)\n", appName, lib.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`flc %s

Usage:
  %s lex <file.fl>                          Print the token stream.
  %s ast <file.fl>                          Print the syntax tree.
  %s build [-o dir] [-pkg name] [-j n] <file.fl>...
                                             Write .lex, .ast and .go artifacts.
  %s run <file.fl> <func> [args...]         Evaluate a function.
  %s stage [-dsn dsn] [-table t] <file.fl>...
                                             Store artifacts in PostgreSQL.
  %s watch [-o dir] [-pkg name] <dir>        Rebuild a directory on change.
  %s repl                                   Start the REPL.
  %s version                                Print the compiler version.

`, lib.Version, appName, appName, appName, appName, appName, appName, appName, appName)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func red(s string) string {
	if !isTerminal(os.Stderr.Fd()) {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

// fail prints err the way every command reports errors and returns the exit
// code to use.
func fail(err error) int {
	fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
	return 1
}
