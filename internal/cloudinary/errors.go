package cloudinary

import (
	"errors"
	"fmt"
)

// ErrDeletionNotConfigured is returned by DeleteFile when no API secret is set.
var ErrDeletionNotConfigured = errors.New("asset deletion requires CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")

// ValidationError reports an upload rejected before any network I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransportError is a connection failure or timeout talking to the host.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HostError is a non-success response from the host.
type HostError struct {
	StatusCode int
	Message    string
}

func (e *HostError) Error() string {
	return e.Message
}

func newHostError(status int, message string) *HostError {
	if message == "" {
		message = fmt.Sprintf("upload failed with status %d", status)
	}
	return &HostError{StatusCode: status, Message: message}
}
