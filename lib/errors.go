package lib

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned by Lex when it is called again after it has
// already produced EndOfFile.
var ErrInvalidState = errors.New("lexer already reached end of file")

// Location is a 1-based line and column in a source text.
type Location struct {
	Line int
	Col  int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

type LexErrorKind int

const (
	InvalidCharacter LexErrorKind = iota
	MalformedNumber
	InvalidOperator
)

func (k LexErrorKind) String() string {
	switch k {
	case InvalidCharacter:
		return "InvalidCharacter"
	case MalformedNumber:
		return "MalformedNumber"
	case InvalidOperator:
		return "InvalidOperator"
	default:
		return "?"
	}
}

// LexError points at the character that could not be tokenized. Text holds
// the accumulated run for MalformedNumber.
type LexError struct {
	Kind     LexErrorKind
	Char     rune
	Text     string
	Location Location
}

func (e *LexError) Error() string {
	switch e.Kind {
	case MalformedNumber:
		return fmt.Sprintf("Error at line %s: malformed number %q", e.Location, e.Text)
	case InvalidOperator:
		return fmt.Sprintf("Error at line %s: invalid operator %q", e.Location, e.Text)
	default:
		return fmt.Sprintf("Error at line %s: invalid character %q", e.Location, e.Char)
	}
}

// SyntaxError is raised by the parser when the lookahead token does not fit
// the grammar.
type SyntaxError struct {
	Expected string
	Actual   Token
	Location Location
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf(
		"Error at line %s: expected %s but got %s",
		e.Location,
		e.Expected,
		tokenDescription(e.Actual))
}

type SemanticErrorKind int

const (
	DuplicateParameter SemanticErrorKind = iota
	PrototypeMismatch
	Redefinition
	UnknownFunction
	UnknownParameter
)

func (k SemanticErrorKind) String() string {
	switch k {
	case DuplicateParameter:
		return "DuplicateParameter"
	case PrototypeMismatch:
		return "PrototypeMismatch"
	case Redefinition:
		return "Redefinition"
	case UnknownFunction:
		return "UnknownFunction"
	case UnknownParameter:
		return "UnknownParameter"
	default:
		return "?"
	}
}

// SemanticError covers the checks that go beyond the grammar. Name is the
// function involved; Detail is the offending parameter name for
// DuplicateParameter and UnknownParameter.
type SemanticError struct {
	Kind     SemanticErrorKind
	Name     string
	Detail   string
	Expected int
	Actual   int
}

func (e *SemanticError) Error() string {
	switch e.Kind {
	case DuplicateParameter:
		return fmt.Sprintf("function '%s' has duplicate parameter '%s'", e.Name, e.Detail)
	case PrototypeMismatch:
		return fmt.Sprintf(
			"function '%s' was declared with %d parameters but found %d",
			e.Name, e.Expected, e.Actual)
	case Redefinition:
		return fmt.Sprintf("function '%s' is already defined", e.Name)
	case UnknownFunction:
		return fmt.Sprintf("call to unknown function '%s'", e.Name)
	case UnknownParameter:
		return fmt.Sprintf("function '%s' has no parameter '%s'", e.Name, e.Detail)
	default:
		return fmt.Sprintf("semantic error in '%s'", e.Name)
	}
}

// IsLexError reports whether err is a LexError of the given kind.
func IsLexError(err error, kind LexErrorKind) bool {
	var lexErr *LexError
	return errors.As(err, &lexErr) && lexErr.Kind == kind
}

// IsSemanticError reports whether err is a SemanticError of the given kind.
func IsSemanticError(err error, kind SemanticErrorKind) bool {
	var semErr *SemanticError
	return errors.As(err, &semErr) && semErr.Kind == kind
}
