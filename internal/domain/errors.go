package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures at the API client boundary.
type ErrorKind int

const (
	// KindNone is reported by KindOf for nil or unclassified errors.
	KindNone ErrorKind = iota
	// KindInvalidReference means the repository URL matched none of the accepted shapes.
	KindInvalidReference
	// KindUnauthorized means the credential is missing, invalid or expired (HTTP 401).
	KindUnauthorized
	// KindNotFound means the repository does not exist or is not visible (HTTP 404).
	KindNotFound
	// KindUpstream is any other non-success status; StatusText carries the reason phrase.
	KindUpstream
	// KindNetwork is a transport-level failure with no HTTP response.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidReference:
		return "invalid_reference"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream_error"
	case KindNetwork:
		return "network_failure"
	default:
		return "none"
	}
}

// Sentinels for errors.Is comparisons. Matching is by kind only.
var (
	ErrInvalidReference = &Error{Kind: KindInvalidReference}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrUpstream         = &Error{Kind: KindUpstream}
	ErrNetwork          = &Error{Kind: KindNetwork}
)

// Error is the tagged error value returned by the API client.
type Error struct {
	Kind ErrorKind
	// Op names the failed operation, e.g. "fetch repository".
	Op string
	// StatusCode and StatusText are set for KindUnauthorized, KindNotFound and KindUpstream.
	StatusCode int
	StatusText string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusText != "" {
		msg = fmt.Sprintf("%s (%d %s)", msg, e.StatusCode, e.StatusText)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Message returns the text shown to users for this error.
func (e *Error) Message() string {
	switch e.Kind {
	case KindInvalidReference:
		return "Invalid GitHub repository URL"
	case KindUnauthorized:
		return "Authentication required. Please check your access token."
	case KindNotFound:
		return "Repository not found. Please check the URL and your access permissions."
	case KindUpstream:
		if e.Op != "" {
			return fmt.Sprintf("Failed to %s: %s", e.Op, e.StatusText)
		}
		return "Request failed: " + e.StatusText
	case KindNetwork:
		return "Network request failed. Please check your connection."
	default:
		return "An error occurred"
	}
}

// KindOf extracts the ErrorKind from err, or KindNone when err carries no *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

// UserMessage returns a human-readable message for any error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
