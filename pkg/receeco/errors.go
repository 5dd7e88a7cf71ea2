package receeco

import (
	"errors"
	"fmt"
)

// Error codes produced by the client itself. Codes reported by the remote
// service inside an error envelope are passed through verbatim.
const (
	CodeAPIKeyRequired     = "API_KEY_REQUIRED"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeRequestFailed      = "REQUEST_FAILED"
	CodeInvalidResponse    = "INVALID_RESPONSE"
	CodeUnknownError       = "UNKNOWN_ERROR"
	CodeIDGenerationFailed = "ID_GENERATION_FAILED"

	// CodeUnknown is used when an error envelope carries no code at all.
	CodeUnknown = "UNKNOWN"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrAPIKeyRequired  = &Error{Code: CodeAPIKeyRequired}
	ErrInvalidInput    = &Error{Code: CodeInvalidInput}
	ErrRequestFailed   = &Error{Code: CodeRequestFailed}
	ErrInvalidResponse = &Error{Code: CodeInvalidResponse}
	ErrUnknownError    = &Error{Code: CodeUnknownError}
)

// Error is the single failure kind returned by the client. Callers should
// branch on Code; Message is meant for humans.
type Error struct {
	Code    string
	Message string
	Err     error
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("receeco: %s", e.Code)
	}
	return fmt.Sprintf("receeco: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr.Code
	}
	return ""
}
