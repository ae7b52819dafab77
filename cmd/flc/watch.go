package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/graeme-hill/flc-go/lib"
)

const rebuildDelay = 100 * time.Millisecond

func cmdWatch(args []string) int {
	cfg := loadConfig()
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.StringVar(&cfg.OutDir, "o", cfg.OutDir, "output directory")
	fs.StringVar(&cfg.Package, "pkg", cfg.Package, "package name of the generated Go code")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)
	log := newLogger(*verbose)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: flc watch [-o dir] [-pkg name] <dir>")
		return 2
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	dir := fs.Arg(0)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fail(err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rebuildDir(log, dir, cfg)
	log.Info("watching", "dir", dir)
	watchDir(ctx, log, watcher, dir, cfg)
	return 0
}

// watchDir rebuilds dir once changes to source files settle, until ctx is
// done or the watcher is closed.
func watchDir(ctx context.Context, log *slog.Logger, watcher *fsnotify.Watcher, dir string, cfg lib.Config) {
	timer := time.NewTimer(rebuildDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isSourceChange(ev) {
				continue
			}
			log.Debug("change", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(rebuildDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("watch failed", "err", err)
		case <-timer.C:
			rebuildDir(log, dir, cfg)
		}
	}
}

func isSourceChange(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != lib.SourceExt {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// rebuildDir builds every source file in dir. Errors are logged, the watch
// keeps going.
func rebuildDir(log *slog.Logger, dir string, cfg lib.Config) {
	units, err := lib.ReadSourcesDir(dir)
	if err != nil {
		log.Error("build failed", "err", err)
		return
	}
	for _, u := range units {
		artifacts, err := lib.BuildArtifacts(u, cfg.Package)
		if err != nil {
			log.Error("build failed", "unit", u.Name, "err", err)
			continue
		}
		if _, err := lib.WriteArtifacts(cfg.OutDir, artifacts); err != nil {
			log.Error("write failed", "unit", u.Name, "err", err)
			continue
		}
		log.Info("built", "unit", u.Name, "functions", len(u.Functions))
	}
}
