package lib

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// A test helper that lexes the whole string and drops the final EndOfFile
// for easier assertions.
func getTokens(src string) ([]Token, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return tokens[:len(tokens)-1], nil
}

func requireLexError(t *testing.T, src string, kind LexErrorKind, line int, col int) {
	_, err := Tokenize(src)
	require.Error(t, err)
	var lexErr *LexError
	require.True(t, errors.As(err, &lexErr), "error type")
	require.Equal(t, kind, lexErr.Kind, "error kind")
	require.Equal(t, line, lexErr.Location.Line, "error line")
	require.Equal(t, col, lexErr.Location.Col, "error col")
}

func TestLexerIdentifier(t *testing.T) {
	tokens, err := getTokens("avg")
	require.NoError(t, err)
	require.Equal(t, []Token{Identifier{Name: "avg"}}, tokens)
}

func TestLexerKeywords(t *testing.T) {
	tokens, err := getTokens("dec def if then else define iff _if")
	require.NoError(t, err)
	require.Equal(t, []Token{
		Keyword{Kind: KeywordDec},
		Keyword{Kind: KeywordDef},
		Keyword{Kind: KeywordIf},
		Keyword{Kind: KeywordThen},
		Keyword{Kind: KeywordElse},
		Identifier{Name: "define"},
		Identifier{Name: "iff"},
		Identifier{Name: "_if"},
	}, tokens)
}

func TestLexerNumbers(t *testing.T) {
	tokens, err := getTokens("1 3.142 .5 10. 007")
	require.NoError(t, err)
	require.Equal(t, []Token{
		Number{Value: 1},
		Number{Value: 3.142},
		Number{Value: 0.5},
		Number{Value: 10},
		Number{Value: 7},
	}, tokens)
}

func TestLexerNumberThenWord(t *testing.T) {
	tokens, err := getTokens("12abc")
	require.NoError(t, err)
	require.Equal(t, []Token{Number{Value: 12}, Identifier{Name: "abc"}}, tokens)
}

func TestLexerOperators(t *testing.T) {
	tokens, err := getTokens("+ - * / < <= > >= ==")
	require.NoError(t, err)
	require.Equal(t, []Token{
		OperatorToken{Op: OpAdd},
		OperatorToken{Op: OpSubtract},
		OperatorToken{Op: OpMultiply},
		OperatorToken{Op: OpDivide},
		OperatorToken{Op: OpLowerThan},
		OperatorToken{Op: OpLowerThanEqual},
		OperatorToken{Op: OpGreaterThan},
		OperatorToken{Op: OpGreaterThanEqual},
		OperatorToken{Op: OpEqual},
	}, tokens)
}

func TestLexerOperatorsWithoutSpaces(t *testing.T) {
	tokens, err := getTokens("a<=b>c")
	require.NoError(t, err)
	require.Equal(t, []Token{
		Identifier{Name: "a"},
		OperatorToken{Op: OpLowerThanEqual},
		Identifier{Name: "b"},
		OperatorToken{Op: OpGreaterThan},
		Identifier{Name: "c"},
	}, tokens)
}

func TestLexerPrototype(t *testing.T) {
	tokens, err := getTokens("def avg(a,b)")
	require.NoError(t, err)
	require.Equal(t, []Token{
		Keyword{Kind: KeywordDef},
		Identifier{Name: "avg"},
		Bracket{Kind: BracketRoundStart},
		Identifier{Name: "a"},
		ParameterSeparator{},
		Identifier{Name: "b"},
		Bracket{Kind: BracketRoundEnd},
	}, tokens)
}

func TestLexerComments(t *testing.T) {
	tokens, err := getTokens("# first\n1 # second\n\n2 #last")
	require.NoError(t, err)
	require.Equal(t, []Token{
		Comment{Text: " first"},
		Number{Value: 1},
		Comment{Text: " second"},
		Number{Value: 2},
		Comment{Text: "last"},
	}, tokens)
}

func TestLexerEndOfFileOnce(t *testing.T) {
	l := NewLexer(strings.NewReader("a"))

	tok, err := l.Lex()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "a"}, tok)

	tok, err = l.Lex()
	require.NoError(t, err)
	require.Equal(t, EndOfFile{}, tok)

	_, err = l.Lex()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestLexerEmptyInput(t *testing.T) {
	tokens, err := Tokenize("  \n\t ")
	require.NoError(t, err)
	require.Equal(t, []Token{EndOfFile{}}, tokens)
}

func TestLexerLocations(t *testing.T) {
	l := NewLexer(strings.NewReader("def\n  foo(x)"))

	_, err := l.Lex()
	require.NoError(t, err)
	require.Equal(t, Location{Line: 1, Col: 1}, l.Location())

	_, err = l.Lex()
	require.NoError(t, err)
	require.Equal(t, Location{Line: 2, Col: 3}, l.Location())

	_, err = l.Lex()
	require.NoError(t, err)
	require.Equal(t, Location{Line: 2, Col: 6}, l.Location())
}

func TestLexerLoneEqual(t *testing.T) {
	requireLexError(t, "a = b", InvalidOperator, 1, 3)
	requireLexError(t, "a =", InvalidOperator, 1, 3)
}

func TestLexerMalformedNumber(t *testing.T) {
	requireLexError(t, "..", MalformedNumber, 1, 1)
	requireLexError(t, "1 + .", MalformedNumber, 1, 5)
	requireLexError(t, "1.2.3", MalformedNumber, 1, 1)
}

func TestLexerHugeNumberIsInfinite(t *testing.T) {
	tokens, err := getTokens(strings.Repeat("9", 400))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	num, ok := tokens[0].(Number)
	require.True(t, ok)
	require.True(t, math.IsInf(num.Value, 1))
}

func TestLexerInvalidCharacter(t *testing.T) {
	requireLexError(t, "a $ b", InvalidCharacter, 1, 3)
	requireLexError(t, "x;", InvalidCharacter, 1, 2)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestLexerReadError(t *testing.T) {
	l := NewLexer(failingReader{})
	_, err := l.Lex()
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk on fire")
}

func TestDumpTokens(t *testing.T) {
	var sb strings.Builder
	err := DumpTokens(&sb, strings.NewReader("def avg(x, y) # mean\n  (x + y) / 2.5"))
	require.NoError(t, err)
	require.Equal(t, `Keyword(Def)
Identifier("avg")
Bracket(RoundStart)
Identifier("x")
ParameterSeparator
Identifier("y")
Bracket(RoundEnd)
Comment(" mean")
Bracket(RoundStart)
Identifier("x")
Operator(Add)
Identifier("y")
Bracket(RoundEnd)
Operator(Divide)
Number(2.5)
EndOfFile
`, sb.String())
}
