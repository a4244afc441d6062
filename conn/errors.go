package conn

import (
	"fmt"

	"github.com/zephyrnaut/euphoxide-go/api"
)

// Kind classifies an Error for callers that need to branch on failure
// category rather than match on a specific message.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConnectionClosed means the connection has ended; no further
	// operations on it will succeed.
	KindConnectionClosed
	// KindConnectionTimeout means the opening handshake did not complete
	// within the configured connect deadline.
	KindConnectionTimeout
	// KindPingTimeout means a liveness ping (transport or protocol layer)
	// was not acknowledged within one ping interval.
	KindPingTimeout
	// KindCommandTimeout means a sent command did not receive a reply
	// within the configured command deadline.
	KindCommandTimeout
	// KindEuph means the server replied to a command with an
	// application-level error string.
	KindEuph
	// KindMalformedPacket means packet serialization failed locally.
	KindMalformedPacket
	// KindReceivedMalformedPacket means the server sent invalid JSON, or
	// JSON that didn't match the packet's declared type.
	KindReceivedMalformedPacket
	// KindReceivedBinaryMessage means the server sent a binary WebSocket
	// frame, which the protocol never uses.
	KindReceivedBinaryMessage
	// KindReceivedUnexpectedPacket means a reply's payload type didn't
	// match the type the waiting command expected.
	KindReceivedUnexpectedPacket
	// KindTransport covers TLS, TCP, and WebSocket framing failures that
	// passed through from the underlying dialer or connection.
	KindTransport
)

// Error is the error type surfaced by Connection and its handle. Use
// errors.As to recover it and inspect Kind.
type Error struct {
	Kind         Kind
	Message      string
	PacketType   api.PacketType
	Cause        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnectionClosed:
		return "connection closed"
	case KindConnectionTimeout:
		return "connection timed out"
	case KindPingTimeout:
		return "ping timed out"
	case KindCommandTimeout:
		return "command timed out"
	case KindEuph:
		return fmt.Sprintf("server error: %s", e.Message)
	case KindMalformedPacket:
		return fmt.Sprintf("malformed outgoing packet: %s", e.Cause)
	case KindReceivedMalformedPacket:
		return fmt.Sprintf("malformed incoming packet: %s", e.Cause)
	case KindReceivedBinaryMessage:
		return "received unexpected binary message"
	case KindReceivedUnexpectedPacket:
		return fmt.Sprintf("received unexpected packet type: %s", e.PacketType)
	case KindTransport:
		return fmt.Sprintf("transport error: %s", e.Cause)
	default:
		return "unknown connection error"
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, conn.ErrConnectionClosed).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// Sentinel errors for use with errors.Is. Only Kind is compared.
var (
	ErrConnectionClosed          = &Error{Kind: KindConnectionClosed}
	ErrConnectionTimeout         = &Error{Kind: KindConnectionTimeout}
	ErrPingTimeout               = &Error{Kind: KindPingTimeout}
	ErrCommandTimeout            = &Error{Kind: KindCommandTimeout}
	ErrReceivedBinaryMessage     = &Error{Kind: KindReceivedBinaryMessage}
)

func euphError(message string) *Error {
	return &Error{Kind: KindEuph, Message: message}
}

func malformedPacketError(cause error) *Error {
	return &Error{Kind: KindMalformedPacket, Cause: cause}
}

func receivedMalformedPacketError(cause error) *Error {
	return &Error{Kind: KindReceivedMalformedPacket, Cause: cause}
}

func receivedUnexpectedPacketError(t api.PacketType) *Error {
	return &Error{Kind: KindReceivedUnexpectedPacket, PacketType: t}
}

func transportError(cause error) *Error {
	return &Error{Kind: KindTransport, Cause: cause}
}
