// Package errors defines the structured error kinds used throughout cot.
//
// It is modeled on daisy.DError from compute-image-tools: a small error
// kind enumeration, aggregation of multiple causes into one value, and a
// safe Error() rendering. Unlike daisy.DError it has no "anonymized
// message" concept, since cot never phones errors home.
package errors

import (
	"fmt"
	"strings"
)

// Kind categorizes an Error per spec.md section 7.
type Kind string

// Error kinds recognized by cot.
const (
	// InvalidInput covers malformed XML, malformed TAR, missing required
	// sections, and property values outside a qualifier's bounds.
	InvalidInput Kind = "InvalidInput"
	// NotFound covers a referenced file-id, disk-id, profile, network, or
	// property key that does not exist.
	NotFound Kind = "NotFound"
	// Conflict covers instance-ID collisions, duplicate file-ids without
	// --force, and self-overwrite of an open input.
	Conflict Kind = "Conflict"
	// Capability covers a required helper tool that is missing and not
	// installable.
	Capability Kind = "Capability"
	// Environmental covers insufficient disk space, I/O failure, and
	// permission errors.
	Environmental Kind = "Environmental"
	// Cancelled covers caller-triggered abort via a cancellation token.
	Cancelled Kind = "Cancelled"
	// Internal covers invariant violations - bugs, not user mistakes.
	Internal Kind = "Internal"
	// multiKind is used only when aggregating more than one error.
	multiKind Kind = "MultiError"
)

// Error is cot's error value: a kind plus one or more underlying causes.
type Error struct {
	kind  Kind
	causes []error
}

// New creates a single-cause Error of the given kind.
func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{kind: kind, causes: []error{fmt.Errorf(format, a...)}}
}

// Wrap creates an Error of the given kind wrapping an existing error.
// If err is nil, Wrap returns nil.
func Wrap(kind Kind, err error, format string, a ...interface{}) *Error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, a...)
	return &Error{kind: kind, causes: []error{fmt.Errorf("%s: %w", msg, err)}}
}

// TooLow reports a value below a minimum supported value.
// Ported from COT.data_validation.ValueTooLowError.
func TooLow(what string, actual, minimum interface{}) *Error {
	return New(InvalidInput, "value %q for %s is too low - must be at least %v", actual, what, minimum)
}

// TooHigh reports a value above a maximum supported value.
// Ported from COT.data_validation.ValueTooHighError.
func TooHigh(what string, actual, maximum interface{}) *Error {
	return New(InvalidInput, "value %q for %s is too high - must be at most %v", actual, what, maximum)
}

// Unsupported reports a value outside an enumerated set of supported values.
// Ported from COT.data_validation.ValueUnsupportedError.
func Unsupported(what string, actual, expected interface{}) *Error {
	return New(InvalidInput, "unsupported value %q for %s - expected %v", actual, what, expected)
}

// Kind returns the error's kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch len(e.causes) {
	case 0:
		return string(e.kind)
	case 1:
		return fmt.Sprintf("%s: %s", e.kind, e.causes[0].Error())
	default:
		lines := make([]string, len(e.causes))
		for i, c := range e.causes {
			lines[i] = "* " + c.Error()
		}
		return fmt.Sprintf("%s:\n%s", e.kind, strings.Join(lines, "\n"))
	}
}

// Unwrap supports errors.Is/errors.As against the first cause.
func (e *Error) Unwrap() error {
	if len(e.causes) == 0 {
		return nil
	}
	return e.causes[0]
}

// Add merges another error into this one, flattening nested *Error values
// and escalating the kind to multiKind once more than one cause is present.
// Add on a nil *Error returns a new *Error; callers should reassign:
//
//	err = err.Add(next)
func (e *Error) Add(err error) *Error {
	if err == nil {
		return e
	}
	if e == nil {
		e = &Error{}
	}
	if other, ok := err.(*Error); ok {
		e.causes = append(e.causes, other.causes...)
	} else {
		e.causes = append(e.causes, err)
	}
	if len(e.causes) > 1 {
		e.kind = multiKind
	} else if e.kind == "" {
		e.kind = Internal
	}
	return e
}

// Is reports whether err is a cot *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.kind == kind
}
