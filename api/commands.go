package api

// AuthOption enumerates the kinds of authentication a room may require.
type AuthOption string

const AuthOptionPasscode AuthOption = "passcode"

// Auth attempts to authenticate with the room, e.g. after a BounceEvent.
type Auth struct {
	Type     AuthOption `json:"type"`
	Passcode *string    `json:"passcode,omitempty"`
}

func (Auth) PacketType() PacketType { return PacketTypeAuth }

// AuthReply is the server's response to an Auth command.
type AuthReply struct {
	Success bool    `json:"success"`
	Reason  *string `json:"reason,omitempty"`
}

func (AuthReply) PacketType() PacketType { return PacketTypeAuthReply }

// Ping is a protocol-level keep-alive command, distinct from the transport
// ping/pong frames.
type Ping struct {
	Time Time `json:"time"`
}

func (Ping) PacketType() PacketType { return PacketTypePing }

// PingReply answers a Ping (or a server PingEvent) by echoing its timestamp.
type PingReply struct {
	Time Time `json:"time"`
}

func (PingReply) PacketType() PacketType { return PacketTypePingReply }

// Nick requests a nick change for the client's own session.
type Nick struct {
	Name string `json:"name"`
}

func (Nick) PacketType() PacketType { return PacketTypeNick }

// NickReply is the server's response to a Nick command.
type NickReply struct {
	SessionID SessionId `json:"session_id"`
	ID        UserId    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
}

func (NickReply) PacketType() PacketType { return PacketTypeNickReply }

// Send submits a new message to the room, optionally as a reply to an
// existing one.
type Send struct {
	Content string     `json:"content"`
	Parent  *MessageId `json:"parent,omitempty"`
}

func (Send) PacketType() PacketType { return PacketTypeSend }

// SendReply is the server's response to a Send command, carrying the
// message as it was actually recorded.
type SendReply struct {
	Message
}

func (SendReply) PacketType() PacketType { return PacketTypeSendReply }

// Who requests the current roster.
type Who struct{}

func (Who) PacketType() PacketType { return PacketTypeWho }

// WhoReply is the server's response to a Who command: the full roster.
type WhoReply struct {
	Listing []SessionView `json:"listing"`
}

func (WhoReply) PacketType() PacketType { return PacketTypeWhoReply }
