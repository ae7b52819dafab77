package lib

import (
	"fmt"
	"strconv"
)

type KeywordKind int

const (
	KeywordDec KeywordKind = iota
	KeywordDef
	KeywordIf
	KeywordThen
	KeywordElse
)

var keywords = map[string]KeywordKind{
	"dec":  KeywordDec,
	"def":  KeywordDef,
	"if":   KeywordIf,
	"then": KeywordThen,
	"else": KeywordElse,
}

func (k KeywordKind) String() string {
	switch k {
	case KeywordDec:
		return "Dec"
	case KeywordDef:
		return "Def"
	case KeywordIf:
		return "If"
	case KeywordThen:
		return "Then"
	case KeywordElse:
		return "Else"
	default:
		return "?"
	}
}

// Source returns the keyword as it is spelled in source text.
func (k KeywordKind) Source() string {
	for word, kind := range keywords {
		if kind == k {
			return word
		}
	}
	return "?"
}

type BracketKind int

const (
	BracketRoundStart BracketKind = iota
	BracketRoundEnd
)

func (b BracketKind) String() string {
	if b == BracketRoundStart {
		return "RoundStart"
	}
	return "RoundEnd"
}

// Operator is shared by the token model and the AST.
type Operator int

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpLowerThan
	OpLowerThanEqual
	OpGreaterThan
	OpGreaterThanEqual
)

func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "Add"
	case OpSubtract:
		return "Subtract"
	case OpMultiply:
		return "Multiply"
	case OpDivide:
		return "Divide"
	case OpEqual:
		return "Equal"
	case OpLowerThan:
		return "LowerThan"
	case OpLowerThanEqual:
		return "LowerThanEqual"
	case OpGreaterThan:
		return "GreaterThan"
	case OpGreaterThanEqual:
		return "GreaterThanEqual"
	default:
		return "?"
	}
}

// Symbol returns the operator as it is spelled in source text.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpEqual:
		return "=="
	case OpLowerThan:
		return "<"
	case OpLowerThanEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanEqual:
		return ">="
	default:
		return "?"
	}
}

// Token is one of EndOfFile, Keyword, Bracket, Identifier, Number, Operator,
// ParameterSeparator or Comment. String renders the token dump form.
type Token interface {
	isToken()
	String() string
}

func (EndOfFile) isToken()          {}
func (Keyword) isToken()            {}
func (Bracket) isToken()            {}
func (Identifier) isToken()         {}
func (Number) isToken()             {}
func (OperatorToken) isToken()      {}
func (ParameterSeparator) isToken() {}
func (Comment) isToken()            {}

type EndOfFile struct{}

type Keyword struct {
	Kind KeywordKind
}

type Bracket struct {
	Kind BracketKind
}

type Identifier struct {
	Name string
}

type Number struct {
	Value float64
}

type OperatorToken struct {
	Op Operator
}

type ParameterSeparator struct{}

type Comment struct {
	Text string
}

func (EndOfFile) String() string          { return "EndOfFile" }
func (k Keyword) String() string          { return fmt.Sprintf("Keyword(%s)", k.Kind) }
func (b Bracket) String() string          { return fmt.Sprintf("Bracket(%s)", b.Kind) }
func (i Identifier) String() string       { return fmt.Sprintf("Identifier(%q)", i.Name) }
func (n Number) String() string           { return fmt.Sprintf("Number(%s)", formatNumber(n.Value)) }
func (o OperatorToken) String() string    { return fmt.Sprintf("Operator(%s)", o.Op) }
func (ParameterSeparator) String() string { return "ParameterSeparator" }
func (c Comment) String() string          { return fmt.Sprintf("Comment(%q)", c.Text) }

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isKeyword(tok Token, kind KeywordKind) bool {
	kw, ok := tok.(Keyword)
	return ok && kw.Kind == kind
}

func isBracket(tok Token, kind BracketKind) bool {
	b, ok := tok.(Bracket)
	return ok && b.Kind == kind
}

// tokenDescription is used in syntax errors, eg: "identifier \"foo\"".
func tokenDescription(tok Token) string {
	switch t := tok.(type) {
	case EndOfFile:
		return "EOF"
	case Keyword:
		return fmt.Sprintf("'%s'", t.Kind.Source())
	case Bracket:
		if t.Kind == BracketRoundStart {
			return "'('"
		}
		return "')'"
	case Identifier:
		return fmt.Sprintf("identifier %q", t.Name)
	case Number:
		return fmt.Sprintf("number %s", formatNumber(t.Value))
	case OperatorToken:
		return fmt.Sprintf("'%s'", t.Op.Symbol())
	case ParameterSeparator:
		return "','"
	case Comment:
		return "comment"
	default:
		return "?"
	}
}
