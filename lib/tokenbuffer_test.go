package lib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBuffer(src string) *tokenBuffer {
	return newTokenBuffer(NewLexer(strings.NewReader(src)))
}

func TestNext(t *testing.T) {
	buf := newTestBuffer("hello")

	tok, err := buf.Next()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "hello"}, tok)
}

func TestNextDone(t *testing.T) {
	buf := newTestBuffer("hello")

	tok, err := buf.Next()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "hello"}, tok)

	tok, err = buf.Next()
	require.NoError(t, err)
	require.Equal(t, EndOfFile{}, tok)
}

func TestNextDoneMulti(t *testing.T) {
	buf := newTestBuffer("")

	for i := 0; i < 3; i++ {
		tok, err := buf.Next()
		require.NoError(t, err)
		require.Equal(t, EndOfFile{}, tok)
	}
}

func TestPeek(t *testing.T) {
	buf := newTestBuffer("hello world")

	tok, err := buf.Peek()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "hello"}, tok)

	tok, err = buf.Peek()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "hello"}, tok)

	tok, err = buf.Next()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "hello"}, tok)

	tok, err = buf.Next()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "world"}, tok)
}

func TestSkipsComments(t *testing.T) {
	buf := newTestBuffer("# one\n# two\nx # three")

	tok, err := buf.Next()
	require.NoError(t, err)
	require.Equal(t, Identifier{Name: "x"}, tok)
	require.Equal(t, Location{Line: 3, Col: 1}, buf.Location())

	tok, err = buf.Next()
	require.NoError(t, err)
	require.Equal(t, EndOfFile{}, tok)
}

func TestPeekError(t *testing.T) {
	buf := newTestBuffer("$")

	_, err := buf.Peek()
	require.True(t, IsLexError(err, InvalidCharacter))
}
