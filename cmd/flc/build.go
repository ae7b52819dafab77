package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/graeme-hill/flc-go/lib"
)

func loadConfig() lib.Config {
	return lib.DefaultConfig().WithEnv(os.LookupEnv)
}

func cmdLex(args []string) int {
	fs := flag.NewFlagSet("lex", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: flc lex <file.fl>")
		return 2
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	if err := lib.DumpTokens(os.Stdout, f); err != nil {
		return fail(err)
	}
	return 0
}

func cmdAST(args []string) int {
	fs := flag.NewFlagSet("ast", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: flc ast <file.fl>")
		return 2
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	if err := printElements(os.Stdout, f); err != nil {
		return fail(err)
	}
	return 0
}

// printElements prints each top-level element as soon as it is parsed, so
// everything before a syntax error still reaches w.
func printElements(w io.Writer, r io.Reader) error {
	parser := lib.NewParser(r)
	printer := lib.NewPrinter(w)
	for {
		elem, done, err := parser.ParseTop()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := printer.Print(elem); err != nil {
			return err
		}
	}
}

func cmdBuild(args []string) int {
	cfg := loadConfig()
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	fs.StringVar(&cfg.OutDir, "o", cfg.OutDir, "output directory")
	fs.StringVar(&cfg.Package, "pkg", cfg.Package, "package name of the generated Go code")
	fs.IntVar(&cfg.Parallelism, "j", cfg.Parallelism, "number of files compiled at once")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)
	log := newLogger(*verbose)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: flc build [-o dir] [-pkg name] [-j n] <file.fl>...")
		return 2
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	units, err := lib.CompileFiles(ctx, fs.Args(), cfg.Parallelism)
	if err != nil {
		return fail(err)
	}

	for _, u := range units {
		artifacts, err := lib.BuildArtifacts(u, cfg.Package)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", u.Path, err))
		}
		written, err := lib.WriteArtifacts(cfg.OutDir, artifacts)
		if err != nil {
			return fail(err)
		}
		for _, path := range written {
			log.Debug("wrote artifact", "unit", u.Name, "path", path)
		}
		log.Info("built", "unit", u.Name, "functions", len(u.Functions))
	}
	return 0
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: flc run <file.fl> <func> [args...]")
		return 2
	}

	u, err := lib.ReadUnitFromFile(fs.Arg(0))
	if err != nil {
		return fail(err)
	}

	callArgs := []float64{}
	for _, raw := range fs.Args()[2:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fail(fmt.Errorf("argument %q is not a number", raw))
		}
		callArgs = append(callArgs, v)
	}

	evaluator := lib.NewEvaluator()
	if err := lib.NewGenerator(evaluator).Generate(u.Program); err != nil {
		return fail(err)
	}
	result, err := evaluator.Call(fs.Arg(1), callArgs...)
	if err != nil {
		return fail(err)
	}
	fmt.Println(strconv.FormatFloat(result, 'g', -1, 64))
	return 0
}

func cmdStage(args []string) int {
	cfg := loadConfig()
	fs := flag.NewFlagSet("stage", flag.ExitOnError)
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL connection string (default $FLC_DSN)")
	fs.StringVar(&cfg.Table, "table", cfg.Table, "artifact table")
	fs.StringVar(&cfg.Package, "pkg", cfg.Package, "package name of the generated Go code")
	fs.IntVar(&cfg.Parallelism, "j", cfg.Parallelism, "number of files compiled at once")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)
	log := newLogger(*verbose)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: flc stage [-dsn dsn] [-table t] <file.fl>...")
		return 2
	}
	if cfg.DSN == "" {
		return fail(errors.New("no connection string: pass -dsn or set FLC_DSN"))
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	units, err := lib.CompileFiles(ctx, fs.Args(), cfg.Parallelism)
	if err != nil {
		return fail(err)
	}

	store, err := lib.OpenStore(ctx, cfg.DSN, cfg.Table)
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	for _, u := range units {
		artifacts, err := lib.BuildArtifacts(u, cfg.Package)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", u.Path, err))
		}
		if err := store.SaveArtifacts(ctx, artifacts); err != nil {
			return fail(fmt.Errorf("%s: %w", u.Path, err))
		}
		log.Info("staged", "unit", u.Name, "table", cfg.Table)
	}
	return 0
}
