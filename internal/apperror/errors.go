package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUpstream      Kind = "UPSTREAM_ERROR"
	KindConfiguration Kind = "CONFIGURATION_ERROR"
	KindParse         Kind = "PARSE_ERROR"
)

// Error is the failure type shared by the POS client, the language model and the assistant.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s (caused by: %v)", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Upstream(op, message string, cause error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Message: message, Cause: cause}
}

func Configuration(op, message string) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: message}
}

func Parse(op, message string, cause error) *Error {
	return &Error{Kind: KindParse, Op: op, Message: message, Cause: cause}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// UserMessage turns an error into a short sentence safe to show in chat.
func UserMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "Something went wrong while answering. Please try again."
	}
	switch appErr.Kind {
	case KindConfiguration:
		return "This feature is unavailable: " + appErr.Message + "."
	case KindParse:
		return "The data service sent a response I couldn't read. Please try again later."
	default:
		return "I couldn't reach " + appErr.Op + " right now (" + appErr.Message + ")."
	}
}
