package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/graeme-hill/flc-go/lib"
	"github.com/graeme-hill/flc-go/test/store"
	"github.com/stretchr/testify/require"
)

const programsDir = "./programs"

func loadEvaluator(t *testing.T) *lib.Evaluator {
	units, err := lib.ReadSourcesDir(programsDir)
	require.NoError(t, err)
	require.Len(t, units, 2)

	evaluator := lib.NewEvaluator()
	gen := lib.NewGenerator(evaluator)
	for _, u := range units {
		require.NoError(t, gen.Generate(u.Program))
	}
	return evaluator
}

func call(t *testing.T, e *lib.Evaluator, name string, args ...float64) float64 {
	v, err := e.Call(name, args...)
	require.NoError(t, err)
	return v
}

// The generated package and the evaluator must agree on every function.
func TestGeneratedMatchesEvaluator(t *testing.T) {
	e := loadEvaluator(t)

	for _, x := range []float64{-3, 0, 0.5, 7} {
		require.Equal(t, store.Square(x), call(t, e, "square", x))
		require.Equal(t, store.Hypot2(x, 2), call(t, e, "hypot2", x, 2))
		require.Equal(t, store.Avg(x, 10), call(t, e, "avg", x, 10))
		require.Equal(t, store.Max(x, 1), call(t, e, "max", x, 1))
	}

	for n := 0.0; n <= 15; n++ {
		require.Equal(t, store.Fib(n), call(t, e, "fib", n))
	}

	require.Equal(t, 25.0, store.Hypot2(3, 4))
	require.Equal(t, 610.0, store.Fib(15))
}

func TestGenerateProgramsDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "programs.go")
	require.NoError(t, lib.Generate(programsDir, dest, "store"))

	generated, err := os.ReadFile(dest)
	require.NoError(t, err)

	code := string(generated)
	require.Contains(t, code, "package store")
	require.Contains(t, code, "func Square(argX float64) float64 {")
	require.Contains(t, code, "func Hypot2(argA, argB float64) float64 {")
	require.Contains(t, code, "return (Square(argA) + Square(argB))")
	require.Contains(t, code, "func Fib(argN float64) float64 {")
	require.NotContains(t, code, "var Square")
}

func TestBuildProgramsDir(t *testing.T) {
	units, err := lib.ReadSourcesDir(programsDir)
	require.NoError(t, err)

	out := t.TempDir()
	for _, u := range units {
		artifacts, err := lib.BuildArtifacts(u, "store")
		require.NoError(t, err)
		_, err = lib.WriteArtifacts(out, artifacts)
		require.NoError(t, err)
	}

	// on its own geometry.fl only declares square
	code, err := os.ReadFile(filepath.Join(out, "geometry.go"))
	require.NoError(t, err)
	require.Contains(t, string(code), "var Square func(float64) float64")

	tokens, err := os.ReadFile(filepath.Join(out, "math.lex"))
	require.NoError(t, err)
	require.Contains(t, string(tokens), `Identifier("fib")`)
}

// Needs a real database, eg: FLC_TEST_DSN="user=postgres password=password sslmode=disable"
func TestStagePrograms(t *testing.T) {
	connStr := os.Getenv("FLC_TEST_DSN")
	if connStr == "" {
		t.Skip("FLC_TEST_DSN not set")
	}

	ctx := context.Background()
	require.NoError(t, lib.StageDir(ctx, programsDir, connStr, "flc_e2e_artifacts", "store"))

	store, err := lib.OpenStore(ctx, connStr, "flc_e2e_artifacts")
	require.NoError(t, err)
	defer store.Close()

	content, err := store.LoadArtifact(ctx, "math", lib.ArtifactGo)
	require.NoError(t, err)
	require.Contains(t, string(content), "func Fib(argN float64) float64 {")
}
