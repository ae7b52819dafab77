package lib

type tokenReader interface {
	Next() (tok Token, err error)
	Peek() (tok Token, err error)
	Location() Location
}
