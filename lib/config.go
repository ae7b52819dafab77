package lib

import (
	"errors"
	"go/token"
	"runtime"
)

// Config holds the driver settings shared by the commands.
type Config struct {
	OutDir      string
	Package     string
	Parallelism int
	DSN         string
	Table       string
}

func DefaultConfig() Config {
	return Config{
		OutDir:      "out",
		Package:     "flprog",
		Parallelism: runtime.NumCPU(),
		Table:       DefaultArtifactTable,
	}
}

// WithEnv fills the fields that have an environment override: FLC_DSN,
// FLC_OUT and FLC_TABLE. lookup is usually os.LookupEnv.
func (c Config) WithEnv(lookup func(string) (string, bool)) Config {
	if v, ok := lookup("FLC_DSN"); ok && v != "" {
		c.DSN = v
	}
	if v, ok := lookup("FLC_OUT"); ok && v != "" {
		c.OutDir = v
	}
	if v, ok := lookup("FLC_TABLE"); ok && v != "" {
		c.Table = v
	}
	return c
}

func (c Config) Validate() error {
	if !token.IsIdentifier(c.Package) {
		return errors.New("package name must be a Go identifier")
	}
	if c.Parallelism < 1 {
		return errors.New("parallelism must be at least 1")
	}
	return nil
}
