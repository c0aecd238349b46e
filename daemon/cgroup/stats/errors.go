package stats

import (
	"errors"
	"fmt"
)

// ErrInvalidData is the sentinel every parse error wraps, so callers can
// test for "this file's contents were malformed" uniformly with errors.Is,
// the same way the source collapses its ParseError enum into an
// InvalidData-kind io.Error.
var ErrInvalidData = errors.New("stats: invalid data")

// DuplicateFieldError reports a recognized key seen twice in a format that
// disallows duplicates.
type DuplicateFieldError struct {
	Field string
	Line  int
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("stats: duplicate field %q at line %d", e.Field, e.Line)
}

func (e *DuplicateFieldError) Unwrap() error { return ErrInvalidData }

// InvalidKeyValueError reports a recognized key whose value failed to parse
// as a uint64.
type InvalidKeyValueError struct {
	Key, Value string
	Line       int
	Source     error
}

func (e *InvalidKeyValueError) Error() string {
	return fmt.Sprintf("stats: invalid value %q for key %q at line %d: %s", e.Value, e.Key, e.Line, e.Source)
}

func (e *InvalidKeyValueError) Unwrap() error { return ErrInvalidData }

// InvalidValueError reports a single-line scalar file whose sole value
// failed to parse.
type InvalidValueError struct {
	Value string
	Line  int
	Source error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("stats: invalid value %q at line %d: %s", e.Value, e.Line, e.Source)
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidData }
