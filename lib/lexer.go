package lib

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

var singleCharOperators = map[rune]Operator{
	'+': OpAdd,
	'-': OpSubtract,
	'*': OpMultiply,
	'/': OpDivide,
}

// Lexer turns a character stream into tokens on demand. It keeps a single
// character of lookahead and never moves backwards.
type Lexer struct {
	src          *charSource
	lookahead    charInfo
	hasLookahead bool
	atEnd        bool
	done         bool
	tokenLoc     Location
}

func NewLexer(r io.Reader) *Lexer {
	return &Lexer{src: newCharSource(r)}
}

// Location returns where the most recently lexed token started.
func (l *Lexer) Location() Location {
	return l.tokenLoc
}

func (l *Lexer) peek() (charInfo, bool, error) {
	if l.hasLookahead {
		return l.lookahead, true, nil
	}
	if l.atEnd {
		return charInfo{location: l.lookahead.location}, false, nil
	}
	info, ok, err := l.src.next()
	if err != nil {
		return charInfo{}, false, fmt.Errorf("reading source: %w", err)
	}
	if !ok {
		l.atEnd = true
		l.lookahead = info
		return info, false, nil
	}
	l.lookahead = info
	l.hasLookahead = true
	return info, true, nil
}

func (l *Lexer) advance() {
	l.hasLookahead = false
}

// Lex returns the next token. After EndOfFile has been returned once, every
// further call fails with ErrInvalidState.
func (l *Lexer) Lex() (Token, error) {
	if l.done {
		return nil, ErrInvalidState
	}

	next, ok, err := l.skipWhitespace()
	if err != nil {
		return nil, err
	}
	l.tokenLoc = next.location
	if !ok {
		l.done = true
		return EndOfFile{}, nil
	}

	ch := next.ch
	switch {
	case isIdentStart(ch):
		return l.scanWord()
	case isDigit(ch) || ch == '.':
		return l.scanNumber()
	}

	switch ch {
	case '(':
		l.advance()
		return Bracket{Kind: BracketRoundStart}, nil
	case ')':
		l.advance()
		return Bracket{Kind: BracketRoundEnd}, nil
	case ',':
		l.advance()
		return ParameterSeparator{}, nil
	case '#':
		return l.scanComment()
	case '+', '-', '*', '/', '<', '>', '=':
		return l.scanOperator(ch)
	}

	return nil, &LexError{Kind: InvalidCharacter, Char: ch, Location: next.location}
}

func (l *Lexer) skipWhitespace() (charInfo, bool, error) {
	for {
		next, ok, err := l.peek()
		if err != nil || !ok {
			return next, ok, err
		}
		if !unicode.IsSpace(next.ch) {
			return next, true, nil
		}
		l.advance()
	}
}

// scanRun consumes the maximal run of characters matching accept.
func (l *Lexer) scanRun(accept func(rune) bool) (string, error) {
	var sb strings.Builder
	for {
		next, ok, err := l.peek()
		if err != nil {
			return "", err
		}
		if !ok || !accept(next.ch) {
			return sb.String(), nil
		}
		sb.WriteRune(next.ch)
		l.advance()
	}
}

func (l *Lexer) scanWord() (Token, error) {
	word, err := l.scanRun(isIdentPart)
	if err != nil {
		return nil, err
	}
	if kind, isKw := keywords[word]; isKw {
		return Keyword{Kind: kind}, nil
	}
	return Identifier{Name: word}, nil
}

func (l *Lexer) scanNumber() (Token, error) {
	text, err := l.scanRun(func(ch rune) bool {
		return isDigit(ch) || ch == '.'
	})
	if err != nil {
		return nil, err
	}
	// a literal too large for float64 is still well formed and becomes +Inf
	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, &LexError{Kind: MalformedNumber, Text: text, Location: l.tokenLoc}
	}
	return Number{Value: value}, nil
}

func (l *Lexer) scanOperator(first rune) (Token, error) {
	l.advance()

	if op, isSingle := singleCharOperators[first]; isSingle {
		return OperatorToken{Op: op}, nil
	}

	ahead, ok, err := l.peek()
	if err != nil {
		return nil, err
	}
	followedByEqual := ok && ahead.ch == '='
	if followedByEqual {
		l.advance()
	}

	switch first {
	case '<':
		if followedByEqual {
			return OperatorToken{Op: OpLowerThanEqual}, nil
		}
		return OperatorToken{Op: OpLowerThan}, nil
	case '>':
		if followedByEqual {
			return OperatorToken{Op: OpGreaterThanEqual}, nil
		}
		return OperatorToken{Op: OpGreaterThan}, nil
	default:
		// '=' on its own is not an operator
		if followedByEqual {
			return OperatorToken{Op: OpEqual}, nil
		}
		return nil, &LexError{Kind: InvalidOperator, Char: first, Text: "=", Location: l.tokenLoc}
	}
}

// scanComment reads from '#' up to and including the end of the line.
func (l *Lexer) scanComment() (Token, error) {
	l.advance()
	text, err := l.scanRun(func(ch rune) bool {
		return ch != '\n'
	})
	if err != nil {
		return nil, err
	}

	// eat the newline that ended the comment, if any
	_, ok, err := l.peek()
	if err != nil {
		return nil, err
	}
	if ok {
		l.advance()
	}
	return Comment{Text: text}, nil
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// Tokenize lexes a whole source string, including the final EndOfFile.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(strings.NewReader(src))
	tokens := []Token{}
	for {
		tok, err := l.Lex()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if _, isEOF := tok.(EndOfFile); isEOF {
			return tokens, nil
		}
	}
}

// DumpTokens writes one line per token read from r, ending with EndOfFile.
func DumpTokens(w io.Writer, r io.Reader) error {
	l := NewLexer(r)
	for {
		tok, err := l.Lex()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, tok.String()); err != nil {
			return err
		}
		if _, isEOF := tok.(EndOfFile); isEOF {
			return nil
		}
	}
}
