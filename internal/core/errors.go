package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrUnreadable     = errors.New("file unreadable")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrAmountOverflow = errors.New("total exceeds the largest representable amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptySKU       = errors.New("sku must be non-empty")
	ErrInvalidTop     = errors.New("top must be at least 1")
)

// SchemaError reports required columns missing from the header row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 0 {
		return "missing header row"
	}
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// ValidationError reports a data row that could not be parsed.
type ValidationError struct {
	Line  int
	Field string // column that failed, empty for malformed CSV
	Value string
	Raw   string
	Err   error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "line %d: ", e.Line)
	if e.Field != "" {
		fmt.Fprintf(&b, "%s %q: ", e.Field, e.Value)
	}
	b.WriteString(e.Err.Error())
	if e.Raw != "" {
		fmt.Fprintf(&b, " (row %q)", e.Raw)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// OutputError reports a failure writing the report file.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// IsInputError returns true for errors caused by the input file or its content.
func IsInputError(err error) bool {
	var schemaErr *SchemaError
	var validationErr *ValidationError
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrUnreadable) ||
		errors.As(err, &schemaErr) ||
		errors.As(err, &validationErr)
}
