package lib

// tokenBuffer holds the parser's single token of lookahead. Comments are
// dropped on the way through and EndOfFile is sticky, so the lexer is never
// asked for anything past the end.
type tokenBuffer struct {
	lexer     *Lexer
	peeked    Token
	peekedLoc Location
	hasPeeked bool
	eof       bool
	lastLoc   Location
}

func newTokenBuffer(lexer *Lexer) *tokenBuffer {
	return &tokenBuffer{lexer: lexer}
}

func (tb *tokenBuffer) Next() (Token, error) {
	tok, err := tb.Peek()
	if err != nil {
		return nil, err
	}
	tb.lastLoc = tb.peekedLoc
	if !tb.eof {
		tb.hasPeeked = false
	}
	return tok, nil
}

func (tb *tokenBuffer) Peek() (Token, error) {
	if tb.hasPeeked {
		return tb.peeked, nil
	}

	for {
		tok, err := tb.lexer.Lex()
		if err != nil {
			return nil, err
		}
		if _, isComment := tok.(Comment); isComment {
			continue
		}
		if _, isEOF := tok.(EndOfFile); isEOF {
			tb.eof = true
		}
		tb.peeked = tok
		tb.peekedLoc = tb.lexer.Location()
		tb.hasPeeked = true
		return tok, nil
	}
}

// Location is where the lookahead token starts, or where the last consumed
// token started when nothing has been peeked yet.
func (tb *tokenBuffer) Location() Location {
	if tb.hasPeeked {
		return tb.peekedLoc
	}
	return tb.lastLoc
}
