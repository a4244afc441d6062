package client

import (
	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/conn"
)

// EventKind discriminates the fields populated on an Event. The grammar a
// Client emits is:
//
//	(Started) (Connecting (Connected Packet* (Joined Packet*)?)? Disconnected)* Stopped
type EventKind int

const (
	// Started is emitted exactly once, before the first connect attempt.
	Started EventKind = iota
	// Connecting is emitted before every dial, including reconnects.
	Connecting
	// Connected is emitted once the WebSocket upgrade succeeds, before the
	// room handshake (BounceEvent/HelloEvent/SnapshotEvent) completes.
	Connected
	// Joined is emitted once the handshake completes and the mirrored
	// state transitions from Joining to Joined.
	Joined
	// Packet is emitted for every packet received once Connected, whether
	// or not the connection has reached Joined.
	Packet
	// Disconnected is emitted once per connection attempt that ends,
	// whether or not it ever reached Connected.
	Disconnected
	// Stopped is emitted exactly once, terminally: no further events
	// follow it and the Client's goroutine has exited.
	Stopped
)

// Event is one entry in a Client's event stream. Which fields are valid
// depends on Kind: Conn is set from Connected onward (until Disconnected),
// State is set on Joined and Packet, and Packet is set only on Packet.
type Event struct {
	Kind   EventKind
	Conn   *conn.Handle
	State  conn.State
	Packet *api.ParsedPacket
	Err    error
}
