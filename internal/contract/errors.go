package contract

import (
	"errors"
	"fmt"
	"strings"
)

// FormattingError reports model output that is not a well-formed JSON object
// once code fences are removed.
type FormattingError struct {
	Text string
	Err  error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("score output is not a JSON object: %v", e.Err)
}

func (e *FormattingError) Unwrap() error { return e.Err }

// SchemaError reports a parsed record with required fields missing or blank.
type SchemaError struct {
	Text    string
	Missing []string
	Blank   []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Blank) > 0 {
		parts = append(parts, "blank "+strings.Join(e.Blank, ", "))
	}
	return "score output violates schema: " + strings.Join(parts, "; ")
}

// TypeError reports a field that is present but cannot be coerced to the
// required type.
type TypeError struct {
	Text  string
	Field string
	Want  string
	Got   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("score output field %q: cannot use %s as %s", e.Field, e.Got, e.Want)
}

// IsViolation reports whether err is one of the contract failure kinds.
func IsViolation(err error) bool {
	var fe *FormattingError
	var se *SchemaError
	var te *TypeError
	return errors.As(err, &fe) || errors.As(err, &se) || errors.As(err, &te)
}

// OffendingText returns the canonical text carried by a contract violation,
// or "" when err is not one.
func OffendingText(err error) string {
	var fe *FormattingError
	if errors.As(err, &fe) {
		return fe.Text
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Text
	}
	var te *TypeError
	if errors.As(err, &te) {
		return te.Text
	}
	return ""
}
