package lib

import (
	"bufio"
	"io"
)

type charInfo struct {
	ch       rune
	location Location
}

// charSource hands out runes one at a time. End of input is reported through
// the ok flag rather than a reserved rune value.
type charSource struct {
	reader   *bufio.Reader
	location Location
}

func newCharSource(r io.Reader) *charSource {
	return &charSource{
		reader:   bufio.NewReader(r),
		location: Location{Line: 1, Col: 1},
	}
}

func (s *charSource) next() (info charInfo, ok bool, err error) {
	ch, _, err := s.reader.ReadRune()
	if err == io.EOF {
		return charInfo{location: s.location}, false, nil
	}
	if err != nil {
		return charInfo{}, false, err
	}

	info = charInfo{ch: ch, location: s.location}
	if ch == '\n' {
		s.location.Line++
		s.location.Col = 1
	} else {
		s.location.Col++
	}
	return info, true, nil
}
