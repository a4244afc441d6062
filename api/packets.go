// Package api models the wire shape of the Euphoria protocol: the packet
// envelope, the enumerated packet types, and the handful of typed payloads
// the connection and client state machines actually inspect. Payload bodies
// the state machine never looks at (account/room-host/staff command
// families) are represented only as PacketType members; their JSON is
// carried through as raw data rather than given dedicated structs.
package api

import (
	"encoding/json"
	"fmt"
)

// PacketType identifies the kind of a Packet. The wire representation is a
// kebab-case string.
type PacketType string

// Event types, sent unsolicited by the server.
const (
	PacketTypeBounceEvent      PacketType = "bounce-event"
	PacketTypeDisconnectEvent  PacketType = "disconnect-event"
	PacketTypeHelloEvent       PacketType = "hello-event"
	PacketTypeJoinEvent        PacketType = "join-event"
	PacketTypeLoginEvent       PacketType = "login-event"
	PacketTypeLogoutEvent      PacketType = "logout-event"
	PacketTypeNetworkEvent     PacketType = "network-event"
	PacketTypeNickEvent        PacketType = "nick-event"
	PacketTypeEditMessageEvent PacketType = "edit-message-event"
	PacketTypePartEvent        PacketType = "part-event"
	PacketTypePingEvent        PacketType = "ping-event"
	PacketTypePmInitiateEvent  PacketType = "pm-initiate-event"
	PacketTypeSendEvent        PacketType = "send-event"
	PacketTypeSnapshotEvent    PacketType = "snapshot-event"
)

// Session commands and replies.
const (
	PacketTypeAuth       PacketType = "auth"
	PacketTypeAuthReply  PacketType = "auth-reply"
	PacketTypePing       PacketType = "ping"
	PacketTypePingReply  PacketType = "ping-reply"
)

// Room commands and replies.
const (
	PacketTypeGetMessage      PacketType = "get-message"
	PacketTypeGetMessageReply PacketType = "get-message-reply"
	PacketTypeLog             PacketType = "log"
	PacketTypeLogReply        PacketType = "log-reply"
	PacketTypeNick            PacketType = "nick"
	PacketTypeNickReply       PacketType = "nick-reply"
	PacketTypePmInitiate      PacketType = "pm-initiate"
	PacketTypePmInitiateReply PacketType = "pm-initiate-reply"
	PacketTypeSend            PacketType = "send"
	PacketTypeSendReply       PacketType = "send-reply"
	PacketTypeWho             PacketType = "who"
	PacketTypeWhoReply        PacketType = "who-reply"
)

// Account, room-host, and staff command families. The state machine never
// inspects these payloads; they round-trip as raw JSON under Packet.Data.
const (
	PacketTypeChangeName      PacketType = "change-name"
	PacketTypeChangeEmail     PacketType = "change-email"
	PacketTypeChangePassword  PacketType = "change-password"
	PacketTypeLogin           PacketType = "login"
	PacketTypeLoginReply      PacketType = "login-reply"
	PacketTypeLogout          PacketType = "logout"
	PacketTypeRegisterAccount PacketType = "register-account"
	PacketTypeResetPassword   PacketType = "reset-password"

	PacketTypeEditMessage    PacketType = "edit-message"
	PacketTypeBan            PacketType = "ban"
	PacketTypeUnban          PacketType = "unban"
	PacketTypeEditRoom       PacketType = "edit-room"
	PacketTypeGrantManager   PacketType = "grant-manager"
	PacketTypeRevokeManager  PacketType = "revoke-manager"
	PacketTypeGrantAccess    PacketType = "grant-access"
	PacketTypeRevokeAccess   PacketType = "revoke-access"
	PacketTypeLockDown       PacketType = "lock-down"
	PacketTypeUnlock         PacketType = "unlock"

	PacketTypeGetRoom     PacketType = "get-room"
	PacketTypeGrantStaff  PacketType = "grant-staff"
	PacketTypeRevokeStaff PacketType = "revoke-staff"
)

// Packet is the JSON envelope of every frame exchanged with the server.
type Packet struct {
	ID              *string         `json:"id,omitempty"`
	Type            PacketType      `json:"type"`
	Data            json.RawMessage `json:"data,omitempty"`
	Error           *string         `json:"error,omitempty"`
	Throttled       bool            `json:"throttled,omitempty"`
	ThrottledReason *string         `json:"throttled_reason,omitempty"`
}

// Data is implemented by every typed payload this library understands.
// PacketType reports the wire type that produced the value.
type Data interface {
	PacketType() PacketType
}

// Unimplemented wraps the raw JSON of a packet type this library does not
// give a dedicated struct to (account/room-host/staff command families).
type Unimplemented struct {
	Type PacketType
	Raw  json.RawMessage
}

func (u Unimplemented) PacketType() PacketType { return u.Type }

// MarshalJSON re-emits the original payload bytes verbatim.
func (u Unimplemented) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}

// Command is implemented by request payloads that expect a typed reply.
type Command interface {
	Data
}

// ParsedPacket is a Packet whose Data has been decoded into a typed value
// (or, for a command/reply pair, into an application-level error).
type ParsedPacket struct {
	ID              *string
	Type            PacketType
	Content         Data
	ContentErr      *string
	Throttled       bool
	ThrottledReason *string
}

// IntoPacket re-encodes a ParsedPacket back into its wire Packet form.
func (p *ParsedPacket) IntoPacket() (*Packet, error) {
	pkt := &Packet{
		ID:              p.ID,
		Type:            p.Type,
		Error:           p.ContentErr,
		Throttled:       p.Throttled,
		ThrottledReason: p.ThrottledReason,
	}

	if p.Content != nil {
		raw, err := json.Marshal(p.Content)
		if err != nil {
			return nil, fmt.Errorf("marshalling packet data: %w", err)
		}
		pkt.Data = raw
	}

	return pkt, nil
}

// ParsePacket decodes a wire Packet into a ParsedPacket, dispatching on Type
// to the right concrete Data implementation.
func ParsePacket(pkt *Packet) (*ParsedPacket, error) {
	parsed := &ParsedPacket{
		ID:              pkt.ID,
		Type:            pkt.Type,
		ContentErr:      pkt.Error,
		Throttled:       pkt.Throttled,
		ThrottledReason: pkt.ThrottledReason,
	}

	if pkt.Error != nil {
		return parsed, nil
	}

	data, err := decodeData(pkt.Type, pkt.Data)
	if err != nil {
		return nil, err
	}
	parsed.Content = data

	return parsed, nil
}

func decodeData(t PacketType, raw json.RawMessage) (Data, error) {
	target := newPayload(t)

	if u, ok := target.(*Unimplemented); ok {
		u.Raw = raw
		return u, nil
	}

	if len(raw) == 0 {
		return target, nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", t, err)
	}

	return target, nil
}

func newPayload(t PacketType) Data {
	switch t {
	case PacketTypeBounceEvent:
		return &BounceEvent{}
	case PacketTypeHelloEvent:
		return &HelloEvent{}
	case PacketTypeSnapshotEvent:
		return &SnapshotEvent{}
	case PacketTypeJoinEvent:
		return &JoinEvent{}
	case PacketTypePartEvent:
		return &PartEvent{}
	case PacketTypeNetworkEvent:
		return &NetworkEvent{}
	case PacketTypeNickEvent:
		return &NickEvent{}
	case PacketTypeNickReply:
		return &NickReply{}
	case PacketTypeSendEvent:
		return &SendEvent{}
	case PacketTypeSendReply:
		return &SendReply{}
	case PacketTypePing:
		return &Ping{}
	case PacketTypePingReply:
		return &PingReply{}
	case PacketTypePingEvent:
		return &PingEvent{}
	case PacketTypeAuth:
		return &Auth{}
	case PacketTypeAuthReply:
		return &AuthReply{}
	case PacketTypeNick:
		return &Nick{}
	case PacketTypeSend:
		return &Send{}
	case PacketTypeWho:
		return &Who{}
	case PacketTypeWhoReply:
		return &WhoReply{}
	case PacketTypeDisconnectEvent:
		return &DisconnectEvent{}
	default:
		return &Unimplemented{Type: t}
	}
}
