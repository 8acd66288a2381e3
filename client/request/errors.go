package request

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed marks failures without a usable error envelope: transport
	// errors and non-success responses whose body is not JSON.
	ErrRequestFailed = errors.New("request failed")
	// ErrInvalidResponseFormat marks a success status with a body that is not a
	// valid envelope. It is a server contract violation, not a transient failure.
	ErrInvalidResponseFormat = errors.New("invalid response format")
)

// Error is returned for every non-success response. Code is the optional
// machine-readable code from the error envelope.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("request: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("request: %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCanceled reports whether err comes from an aborted request. Such errors are
// expected whenever a newer request supersedes an older one.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var reqErr *Error
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

// CodeOf returns the machine-readable code carried by err, or "".
func CodeOf(err error) string {
	var reqErr *Error
	if errors.As(err, &reqErr) {
		return reqErr.Code
	}
	return ""
}
