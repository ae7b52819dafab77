package lib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// SourceExt is the file extension of source files.
const SourceExt = ".fl"

// Unit is one parsed and checked source file.
type Unit struct {
	Name      string
	Path      string
	Source    string
	Program   Program
	Functions []Function
}

// ReadSourcesDir loads every source file in dir, sorted by file name.
func ReadSourcesDir(dir string) ([]*Unit, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := []string{}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != SourceExt {
			continue
		}
		paths = append(paths, filepath.Join(dir, file.Name()))
	}
	sort.Strings(paths)

	units := []*Unit{}
	for _, path := range paths {
		u, err := ReadUnitFromFile(path)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// ReadUnitFromFile parses the file at path and checks its prototypes.
func ReadUnitFromFile(path string) (*Unit, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	u, err := NewUnit(unitNameFromPath(path), string(bytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	u.Path = path
	return u, nil
}

// NewUnit parses src and checks its prototypes.
func NewUnit(name string, src string) (*Unit, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}

	registry, err := CheckProgram(prog)
	if err != nil {
		return nil, err
	}

	return &Unit{
		Name:      name,
		Source:    src,
		Program:   prog,
		Functions: registry.Functions(),
	}, nil
}

// CompileFiles reads the given files concurrently, at most parallelism at a
// time. The result keeps the order of paths. Two paths with the same unit name
// are rejected before anything is read.
func CompileFiles(ctx context.Context, paths []string, parallelism int) ([]*Unit, error) {
	if parallelism < 1 {
		parallelism = 1
	}
	if err := checkUnitNames(paths); err != nil {
		return nil, err
	}
	units := make([]*Unit, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := ReadUnitFromFile(path)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

func unitNameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), SourceExt)
}

// ErrDuplicateUnit is returned when two source files would produce artifacts
// under the same unit name.
var ErrDuplicateUnit = errors.New("duplicate unit name")

func checkUnitNames(paths []string) error {
	seen := map[string]string{}
	for _, path := range paths {
		name := unitNameFromPath(path)
		if other, exists := seen[name]; exists {
			return fmt.Errorf("%w: %s and %s are both unit %q", ErrDuplicateUnit, other, path, name)
		}
		seen[name] = path
	}
	return nil
}
