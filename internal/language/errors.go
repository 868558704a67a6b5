package language

import "fmt"

// Error is a sentinel-prefixed error raised by the selection AST adapter.
// The prefix is stable so callers can match on it (spec §6's "known error
// prefixes").
type Error struct {
	Prefix  string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(prefix, format string, args ...any) *Error {
	msg := prefix
	if format != "" {
		msg = prefix + fmt.Sprintf(format, args...)
	}
	return &Error{Prefix: prefix, Message: msg}
}

// ErrNoOperation reports that a query document carries no operation
// definition to execute.
func ErrNoOperation() error {
	return newError("No operation definition found", "")
}

// ErrNoFragment reports a named fragment spread that does not resolve
// against the document's fragment map.
func ErrNoFragment(name string) error {
	return newError("No fragment named ", "%s", name)
}
