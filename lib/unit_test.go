package lib

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir string, name string, src string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestReadSourcesDir(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "b_math.fl", "def avg(x, y) (x + y) / 2")
	writeSource(t, dir, "a_decls.fl", "dec avg(a, b)")
	writeSource(t, dir, "notes.txt", "not a source file")

	units, err := ReadSourcesDir(dir)
	require.NoError(t, err)
	require.Len(t, units, 2)

	require.Equal(t, "a_decls", units[0].Name)
	require.Equal(t, []Function{{Name: "avg", Arity: 2}}, units[0].Functions)

	require.Equal(t, "b_math", units[1].Name)
	require.Len(t, units[1].Program.Elements, 1)
	require.Equal(t, []Function{{Name: "avg", Arity: 2, Defined: true}}, units[1].Functions)
}

func TestReadUnitFromFileError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.fl", "def f(a,a) a")

	_, err := ReadUnitFromFile(path)
	require.True(t, IsSemanticError(err, DuplicateParameter))
	require.True(t, strings.HasPrefix(err.Error(), path))
}

func TestCompileFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{}
	for _, name := range []string{"z.fl", "y.fl", "x.fl", "w.fl"} {
		paths = append(paths, writeSource(t, dir, name, "def "+strings.TrimSuffix(name, ".fl")+"() 1"))
	}

	units, err := CompileFiles(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, units, 4)
	require.Equal(t, "z", units[0].Name)
	require.Equal(t, "y", units[1].Name)
	require.Equal(t, "x", units[2].Name)
	require.Equal(t, "w", units[3].Name)
}

func TestCompileFilesFails(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.fl", "def f() 1")
	bad := writeSource(t, dir, "bad.fl", "def f() if 1 then 2")

	_, err := CompileFiles(context.Background(), []string{good, bad}, 4)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.fl")
}

func TestCompileFilesRejectsDuplicateUnits(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))
	first := writeSource(t, dir, "a/x.fl", "def f() 1")
	second := writeSource(t, dir, "b/x.fl", "def g() 2")

	_, err := CompileFiles(context.Background(), []string{first, second}, 2)
	require.ErrorIs(t, err, ErrDuplicateUnit)
	require.Contains(t, err.Error(), second)
}

func TestUnitNameKeepsInnerDots(t *testing.T) {
	require.Equal(t, "foo.bar", unitNameFromPath("src/foo.bar.fl"))
	require.Equal(t, "x", unitNameFromPath("x.fl"))
	require.NotEqual(t, unitNameFromPath("foo.fl"), unitNameFromPath("foo.bar.fl"))
}

func TestBuildAndWriteArtifacts(t *testing.T) {
	u, err := NewUnit("avg", "def avg(x, y) (x + y) / 2")
	require.NoError(t, err)

	artifacts, err := BuildArtifacts(u, "flprog")
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	require.Equal(t, "avg.lex", artifacts[0].FileName())
	require.Equal(t, "avg.ast", artifacts[1].FileName())
	require.Equal(t, "avg.go", artifacts[2].FileName())
	require.True(t, strings.HasSuffix(string(artifacts[0].Content), "EndOfFile\n"))
	require.True(t, strings.HasPrefix(string(artifacts[1].Content), "Definition {"))
	require.Contains(t, string(artifacts[2].Content), "func Avg(argX, argY float64) float64")

	out := filepath.Join(t.TempDir(), "out")
	written, err := WriteArtifacts(out, artifacts)
	require.NoError(t, err)
	require.Len(t, written, 3)

	content, err := os.ReadFile(filepath.Join(out, "avg.ast"))
	require.NoError(t, err)
	require.Equal(t, artifacts[1].Content, content)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.fl", "dec half(x)\ndef quarter(x) half(half(x))")
	writeSource(t, dir, "b.fl", "def half(x) x / 2")

	dest := filepath.Join(t.TempDir(), "prog.go")
	err := Generate(dir, dest, "prog")
	require.NoError(t, err)

	code, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(code), "package prog")
	require.Contains(t, string(code), "func Quarter(argX float64) float64")
	require.Contains(t, string(code), "func Half(argX float64) float64")
	require.NotContains(t, string(code), "var Half")
}
