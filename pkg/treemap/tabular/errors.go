package tabular

import (
	"errors"
	"fmt"
)

// ErrUnknownColumn indicates a column name that is not among the headers.
var ErrUnknownColumn = errors.New("unknown column")

// ErrRowOutOfRange indicates a row index outside of the dataset.
var ErrRowOutOfRange = errors.New("row out of range")

// LookupError reports a column or row lookup that does not match the dataset.
// It signals a mismatch between configuration and data and is never
// recovered from locally.
type LookupError struct {
	Column string
	Row    int
	Size   int
	Err    error
}

func (e *LookupError) Error() string {
	if errors.Is(e.Err, ErrRowOutOfRange) {
		return fmt.Sprintf("lookup error: row %d from total size %d: %v", e.Row, e.Size, e.Err)
	}
	return fmt.Sprintf("lookup error: column %q: %v", e.Column, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func columnError(name string) error {
	return &LookupError{Column: name, Row: -1, Err: ErrUnknownColumn}
}

func rowError(row, size int) error {
	return &LookupError{Row: row, Size: size, Err: ErrRowOutOfRange}
}
