package lib

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

type ArtifactKind string

const (
	ArtifactTokens ArtifactKind = "lex"
	ArtifactAST    ArtifactKind = "ast"
	ArtifactGo     ArtifactKind = "go"
)

// Artifact is one output file produced for a unit.
type Artifact struct {
	Unit    string
	Kind    ArtifactKind
	Content []byte
}

// FileName is "<unit>.<kind>".
func (a Artifact) FileName() string {
	return a.Unit + "." + string(a.Kind)
}

// BuildArtifacts renders the token dump, the AST dump and the Go source of u.
func BuildArtifacts(u *Unit, pkg string) ([]Artifact, error) {
	var tokens bytes.Buffer
	err := DumpTokens(&tokens, strings.NewReader(u.Source))
	if err != nil {
		return nil, err
	}

	var tree bytes.Buffer
	err = DumpProgram(&tree, u.Program)
	if err != nil {
		return nil, err
	}

	var code bytes.Buffer
	err = EmitGo(&code, u.Program, pkg)
	if err != nil {
		return nil, err
	}

	return []Artifact{
		{Unit: u.Name, Kind: ArtifactTokens, Content: tokens.Bytes()},
		{Unit: u.Name, Kind: ArtifactAST, Content: tree.Bytes()},
		{Unit: u.Name, Kind: ArtifactGo, Content: code.Bytes()},
	}, nil
}

// WriteArtifacts writes each artifact into dir, creating dir if needed.
func WriteArtifacts(dir string, artifacts []Artifact) ([]string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, err
	}

	written := []string{}
	for _, a := range artifacts {
		path := filepath.Join(dir, a.FileName())
		err = os.WriteFile(path, a.Content, 0o644)
		if err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}
