package checkin

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoConnectivity is returned when the backend could not be reached at all.
var ErrNoConnectivity = errors.New("no connectivity")

// RemoteRejectedError is returned when the backend answered but refused the
// request, either with a non-success status or an explicit failure body.
type RemoteRejectedError struct {
	Code    int
	Message string
}

func (e *RemoteRejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	if msg == "" {
		return fmt.Sprintf("remote rejected request (status %d)", e.Code)
	}
	return fmt.Sprintf("remote rejected request (status %d): %s", e.Code, msg)
}

// UnexpectedError wraps any failure that is neither a connectivity problem
// nor a remote rejection, such as a malformed response.
type UnexpectedError struct {
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Unexpected wraps err as an UnexpectedError with the given context message.
func Unexpected(msg string, err error) error {
	return &UnexpectedError{Message: msg, Err: err}
}

// UserMessage renders err as text suitable for showing to a driver.
// Connectivity failures and remote rejections get their own wording.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rejected *RemoteRejectedError
	switch {
	case errors.Is(err, ErrNoConnectivity):
		return "No connection to the fleet server. Check your network and try again."
	case errors.As(err, &rejected):
		if rejected.Message != "" {
			return fmt.Sprintf("The fleet server rejected the request (%d): %s", rejected.Code, rejected.Message)
		}
		return fmt.Sprintf("The fleet server rejected the request (%d).", rejected.Code)
	default:
		return "Something went wrong: " + err.Error()
	}
}
