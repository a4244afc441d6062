package client

import (
	"errors"
	"fmt"

	"github.com/zephyrnaut/euphoxide-go/conn"
)

// supervisorKind classifies why a Client's connect/join loop gave up on one
// attempt, or stopped entirely. Unlike conn.Error, the type is unexported:
// callers see these errors only as the Err of a Disconnected event, where
// they can read the message but not branch on the kind. Inside the package
// they drive the fatal/non-fatal classification that decides whether the
// Client reconnects or emits a terminal Stopped event.
type supervisorKind int

const (
	kindConnError supervisorKind = iota
	kindStopped
	kindAuthRequired
	kindInvalidPassword
	kindOutOfJoinAttempts
)

type supervisorError struct {
	kind  supervisorKind
	cause error
}

func (e *supervisorError) Error() string {
	switch e.kind {
	case kindStopped:
		return "client stopped"
	case kindAuthRequired:
		return "room requires authentication this client was not configured for"
	case kindInvalidPassword:
		return "room rejected the configured password"
	case kindOutOfJoinAttempts:
		return "exhausted configured join attempts"
	default:
		return fmt.Sprintf("connection error: %s", e.cause)
	}
}

func (e *supervisorError) Unwrap() error {
	return e.cause
}

// isFatal reports whether the supervisor should stop retrying entirely
// rather than reconnect. Stopped, an auth misconfiguration, and exhausting
// the join-attempt budget are all unrecoverable by retrying the same
// Config; everything else (including ordinary transport errors) is worth
// another attempt, with one exception: an HTTP 404 during the WebSocket
// upgrade means the room does not exist, which redialing cannot fix.
func (e *supervisorError) isFatal() bool {
	switch e.kind {
	case kindStopped, kindAuthRequired, kindInvalidPassword, kindOutOfJoinAttempts:
		return true
	case kindConnError:
		var connErr *conn.Error
		if errors.As(e.cause, &connErr) && connErr.Kind == conn.KindTransport {
			var statusErr *conn.HTTPStatusError
			if errors.As(connErr.Cause, &statusErr) && statusErr.StatusCode == 404 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func stoppedError() *supervisorError {
	return &supervisorError{kind: kindStopped}
}

func authRequiredError() *supervisorError {
	return &supervisorError{kind: kindAuthRequired}
}

func invalidPasswordError() *supervisorError {
	return &supervisorError{kind: kindInvalidPassword}
}

func outOfJoinAttemptsError() *supervisorError {
	return &supervisorError{kind: kindOutOfJoinAttempts}
}

func connError(cause error) *supervisorError {
	return &supervisorError{kind: kindConnError, cause: cause}
}
