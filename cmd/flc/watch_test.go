package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/graeme-hill/flc-go/lib"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(out string) lib.Config {
	cfg := lib.DefaultConfig()
	cfg.OutDir = out
	return cfg
}

func TestIsSourceChange(t *testing.T) {
	cases := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"a.fl", fsnotify.Write, true},
		{"a.fl", fsnotify.Create, true},
		{"a.fl", fsnotify.Remove, true},
		{"a.fl", fsnotify.Rename, true},
		{"a.fl", fsnotify.Chmod, false},
		{"a.go", fsnotify.Write, false},
		{"a.fl.swp", fsnotify.Write, false},
	}

	for _, c := range cases {
		ev := fsnotify.Event{Name: filepath.Join("src", c.name), Op: c.op}
		require.Equal(t, c.want, isSourceChange(ev), "%s %s", c.name, c.op)
	}
}

func TestRebuildDirSkipsBrokenSources(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	path := filepath.Join(src, "calc.fl")

	require.NoError(t, os.WriteFile(path, []byte("def f() if 1 then 2"), 0o644))
	rebuildDir(quietLogger(), src, testConfig(out))
	_, err := os.Stat(filepath.Join(out, "calc.go"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(path, []byte("def f() if 1 then 2 else 3"), 0o644))
	rebuildDir(quietLogger(), src, testConfig(out))
	code, err := os.ReadFile(filepath.Join(out, "calc.go"))
	require.NoError(t, err)
	require.Contains(t, string(code), "func F() float64")
}

func TestWatchDirRebuildsOnChange(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()
	require.NoError(t, watcher.Add(src))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watchDir(ctx, quietLogger(), watcher, src, testConfig(out))
		close(done)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(src, "half.fl"), []byte("def half(x) x / 2"), 0o644))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "half.go"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watchDir did not stop")
	}
}
