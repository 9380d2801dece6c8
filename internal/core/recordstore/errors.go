package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind categorizes remote store failures.
type ErrorKind string

const (
	// KindTimeout means the call did not finish within its bound.
	KindTimeout ErrorKind = "TIMEOUT"
	// KindConnectivity means the store could not be reached.
	KindConnectivity ErrorKind = "CONNECTIVITY"
	// KindRejection means the store answered and refused the call.
	KindRejection ErrorKind = "REJECTION"
)

// Sentinels usable with errors.Is against any *RemoteError.
var (
	ErrTimeout      = errors.New("remote store timeout")
	ErrConnectivity = errors.New("remote store unreachable")
	ErrRejected     = errors.New("remote store rejected the call")

	errStoreClosed = errors.New("store closed")
)

// RemoteError is returned by every Store adapter.
type RemoteError struct {
	Kind       ErrorKind
	Op         string
	Collection string
	// Code and Message are set for rejections (HTTP status, PG SQLSTATE, redis prefix).
	Code    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch e.Kind {
	case KindRejection:
		return fmt.Sprintf("%s %s: rejected (%s): %s", e.Op, e.Collection, e.Code, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Collection, e.kindText(), e.Err)
		}
		return fmt.Sprintf("%s %s: %s", e.Op, e.Collection, e.kindText())
	}
}

func (e *RemoteError) kindText() string {
	if e.Kind == KindTimeout {
		return "timeout"
	}
	return "connectivity failure"
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) and friends match on kind.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrConnectivity:
		return e.Kind == KindConnectivity
	case ErrRejected:
		return e.Kind == KindRejection
	}
	return false
}

// Timeout builds a timeout error.
func Timeout(op, collection string, err error) *RemoteError {
	return &RemoteError{Kind: KindTimeout, Op: op, Collection: collection, Err: err}
}

// Connectivity builds a connectivity error.
func Connectivity(op, collection string, err error) *RemoteError {
	return &RemoteError{Kind: KindConnectivity, Op: op, Collection: collection, Err: err}
}

// Rejection builds a backend rejection.
func Rejection(op, collection, code, message string) *RemoteError {
	return &RemoteError{Kind: KindRejection, Op: op, Collection: collection, Code: code, Message: message}
}

// Classify converts a transport level error into a *RemoteError. Errors that
// already are remote errors pass through unchanged.
func Classify(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(op, collection, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout(op, collection, err)
	}
	return Connectivity(op, collection, err)
}

// KindOf returns the kind of a remote error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Kind
	}
	return ""
}

// CodeDuplicateID is the rejection code for an insert whose id is taken.
const CodeDuplicateID = "DUPLICATE_ID"

// IsDuplicate reports whether err rejected an insert because its id exists.
func IsDuplicate(err error) bool {
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Kind != KindRejection {
		return false
	}
	return remote.Code == CodeDuplicateID || remote.Code == "23505"
}
