package quizlet

import (
	"errors"
	"fmt"
)

type ParseErrorKind int

const (
	NotFound ParseErrorKind = iota
	InvalidJSON
	UnexpectedFolderCount
	UnknownPhotoFormat
)

func (k ParseErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidJSON:
		return "invalid json"
	case UnexpectedFolderCount:
		return "unexpected folder count"
	case UnknownPhotoFormat:
		return "unknown photo format"
	}
	return fmt.Sprintf("unknown kind %d", int(k))
}

// ParseError means a page or api response did not have the shape expected
// of it.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "quizlet: " + e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err has a ParseError of the given kind in its
// chain.
func IsParseError(err error, kind ParseErrorKind) bool {
	var perr *ParseError
	return errors.As(err, &perr) && perr.Kind == kind
}

// FetchError is a request that failed, either with a non 2xx status or
// before any response came back (Network is set).
type FetchError struct {
	URL     string
	Status  int
	Captcha bool
	Network error
	// Diagnostic is the full request/response exchange, or the transport
	// error if there was no response.
	Diagnostic string
}

func (e *FetchError) Error() string {
	if e.Network != nil {
		return fmt.Sprintf("quizlet: fetch %s: %v", e.URL, e.Network)
	}
	if e.Captcha {
		return fmt.Sprintf("quizlet: fetch %s: status %d (captcha challenge)", e.URL, e.Status)
	}
	return fmt.Sprintf("quizlet: fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Network
}

type ValidationErrorKind int

const (
	MalformedUrl ValidationErrorKind = iota
	MissingDeckId
)

// ValidationError is user input that could not be turned into something to
// import.
type ValidationError struct {
	Kind  ValidationErrorKind
	Input string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingDeckId:
		return fmt.Sprintf("quizlet: no deck id found in %q", e.Input)
	default:
		return fmt.Sprintf("quizlet: not a quizlet url: %q", e.Input)
	}
}
