package errors

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// APIErrorKind distinguishes the ways a report call can fail
type APIErrorKind string

const (
	// APIKindStatus is a non-success HTTP status
	APIKindStatus APIErrorKind = "status"
	// APIKindNetwork is a transport failure before a response was read
	APIKindNetwork APIErrorKind = "network"
	// APIKindParse is a success response whose body could not be decoded
	APIKindParse APIErrorKind = "parse"
)

// MaxBodyInError caps how much of a response body is kept on an error
const MaxBodyInError = 512

// Context keys set on API errors
const (
	CtxKind       = "kind"
	CtxEndpoint   = "endpoint"
	CtxPage       = "page"
	CtxStatusCode = "status_code"
	CtxBody       = "body"
)

// NewAPIError creates a report API error of the given kind
func NewAPIError(kind APIErrorKind, endpoint string, page int, message string, cause error) *AppError {
	return NewAppError(ErrTypeAPI, message, cause).
		WithContext(CtxKind, kind).
		WithContext(CtxEndpoint, endpoint).
		WithContext(CtxPage, page)
}

// NewAPIStatusError creates an API error for a non-success HTTP status.
// The body is truncated to MaxBodyInError bytes.
func NewAPIStatusError(endpoint string, page, statusCode int, body []byte) *AppError {
	return NewAPIError(APIKindStatus, endpoint, page,
		fmt.Sprintf("report API returned status %d", statusCode), nil).
		WithContext(CtxStatusCode, statusCode).
		WithContext(CtxBody, Truncate(string(body), MaxBodyInError))
}

// Truncate shortens s to at most n bytes, marking the cut. The cut never
// splits a multi-byte rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "...(truncated)"
}

// AsAppError extracts the first AppError in the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == errType
}

// KindOf returns the API error kind, or "" for anything else
func KindOf(err error) APIErrorKind {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Type != ErrTypeAPI {
		return ""
	}
	kind, _ := appErr.Context[CtxKind].(APIErrorKind)
	return kind
}

// StatusCodeOf returns the HTTP status carried by a status-kind API error
func StatusCodeOf(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return 0
	}
	code, _ := appErr.Context[CtxStatusCode].(int)
	return code
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return 1
	}
	switch appErr.Type {
	case ErrTypeConfig:
		return 2
	case ErrTypeAPI:
		return 3
	case ErrTypePagination:
		return 4
	case ErrTypeWrite:
		return 5
	default:
		return 1
	}
}
