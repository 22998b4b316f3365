package types

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every error caused by bad caller input.
// Callers can fix the input and retry.
var ErrValidation = errors.New("validation failed")

// Validation errors.
var (
	ErrInvalidPage     = fmt.Errorf("%w: page must be >= 1", ErrValidation)
	ErrInvalidPageSize = fmt.Errorf("%w: pageSize must be 1..%d", ErrValidation, MaxPageSize)
	ErrStatusRequired  = fmt.Errorf("%w: status is required", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: status must be one of: %s", ErrValidation, StatusNames())
	ErrInvalidRequest  = fmt.Errorf("%w: malformed request", ErrValidation)
)

// ErrNotFound is returned when no case has the requested id.
var ErrNotFound = errors.New("case not found")

// ErrTransport is matched by every *RemoteError.
var ErrTransport = errors.New("remote backend failure")

// Machine-readable error codes carried in HTTP error bodies.
const (
	CodeInvalidPage     = "invalid_page"
	CodeInvalidPageSize = "invalid_page_size"
	CodeStatusRequired  = "status_required"
	CodeInvalidStatus   = "invalid_status"
	CodeInvalidRequest  = "invalid_request"
	CodeNotFound        = "not_found"
	CodeInternal        = "internal"
)

// errorCodes pairs each code with its sentinel, most specific first.
var errorCodes = []struct {
	code string
	err  error
}{
	{CodeInvalidPage, ErrInvalidPage},
	{CodeInvalidPageSize, ErrInvalidPageSize},
	{CodeStatusRequired, ErrStatusRequired},
	{CodeInvalidStatus, ErrInvalidStatus},
	{CodeInvalidRequest, ErrInvalidRequest},
	{CodeNotFound, ErrNotFound},
}

// ErrorCode returns the code for err, CodeInvalidRequest for any other
// validation error, and CodeInternal for everything else.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	if errors.Is(err, ErrValidation) {
		return CodeInvalidRequest
	}
	return CodeInternal
}

// ErrorForCode returns the sentinel for code, or nil if code is unknown.
func ErrorForCode(code string) error {
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err
		}
	}
	return nil
}

// RemoteError reports a failed call to a remote backend: the peer was
// unreachable, answered with an unexpected status, or sent a body that
// could not be decoded. It matches ErrTransport.
type RemoteError struct {
	Op         string // operation, e.g. "list cases"
	StatusCode int    // HTTP status; 0 when no response arrived
	Reason     string // HTTP reason phrase
	Body       string // response body, possibly truncated
	Err        error  // underlying cause, if any
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	msg := fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, e.Reason)
	if e.Body != "" {
		msg += ". " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *RemoteError) Is(target error) bool { return target == ErrTransport }
