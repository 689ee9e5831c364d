package docsel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Application error codes.
//
// ESYNTAX, ENOTFOUND and EAMBIGUOUS form the locator error taxonomy. Errors
// returned by a document backend are never rewritten into one of these codes.
const (
	ESYNTAX    = "syntax"
	ENOTFOUND  = "not_found"
	EAMBIGUOUS = "ambiguous"
	EINVALID   = "invalid"
	EINTERNAL  = "internal"
)

// Error represents an application-specific error.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string

	// Spec is the offending locator, anchor or fragment, if any.
	Spec any

	// Count is the number of matches for EAMBIGUOUS errors.
	Count int
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	if e.Spec == nil {
		return fmt.Sprintf("docsel error: code=%s message=%s", e.Code, e.Message)
	}
	return fmt.Sprintf("docsel error: code=%s message=%s spec=%s", e.Code, e.Message, formatSpec(e.Spec))
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// SyntaxErrorf returns an ESYNTAX error carrying the offending fragment.
func SyntaxErrorf(fragment any, format string, args ...any) *Error {
	e := Errorf(ESYNTAX, format, args...)
	e.Spec = fragment
	return e
}

// NotFoundError returns an ENOTFOUND error tagged with the spec that matched nothing.
func NotFoundError(spec any, format string, args ...any) *Error {
	e := Errorf(ENOTFOUND, format, args...)
	e.Spec = spec
	return e
}

// AmbiguousError returns an EAMBIGUOUS error tagged with the locator and the
// number of elements it matched.
func AmbiguousError(loc *Locator, count int) *Error {
	return &Error{
		Code:    EAMBIGUOUS,
		Message: fmt.Sprintf("expected 1 element but found %d", count),
		Spec:    loc,
		Count:   count,
	}
}

// IsSyntaxError reports whether err is a locator syntax error.
func IsSyntaxError(err error) bool { return ErrorCode(err) == ESYNTAX }

// IsNotFound reports whether err is an element-not-found error.
func IsNotFound(err error) bool { return ErrorCode(err) == ENOTFOUND }

// IsAmbiguous reports whether err is an ambiguous-locator error.
func IsAmbiguous(err error) bool { return ErrorCode(err) == EAMBIGUOUS }

// formatSpec renders a spec for diagnostics, preferring its JSON form.
func formatSpec(spec any) string {
	b, err := json.Marshal(spec)
	if err != nil {
		return fmt.Sprintf("%v", spec)
	}
	return string(b)
}
