package api

// HelloEvent greets a client with its own session view right after connecting.
type HelloEvent struct {
	ID      UserId               `json:"id"`
	Account *PersonalAccountView `json:"account,omitempty"`
	Session SessionView          `json:"session"`
}

func (HelloEvent) PacketType() PacketType { return PacketTypeHelloEvent }

// SnapshotEvent carries the initial roster and, if already set, the
// client's own nick.
type SnapshotEvent struct {
	Identity  UserId        `json:"identity"`
	SessionID SessionId     `json:"session_id"`
	Version   string        `json:"version"`
	Listing   []SessionView `json:"listing"`
	Nick      *string       `json:"nick,omitempty"`
}

func (SnapshotEvent) PacketType() PacketType { return PacketTypeSnapshotEvent }

// BounceEvent announces that authentication is required before the room
// may be joined.
type BounceEvent struct {
	Reason      *string      `json:"reason,omitempty"`
	AuthOptions []AuthOption `json:"auth_options,omitempty"`
	AgentID     *string      `json:"agent_id,omitempty"`
	IP          *string      `json:"ip,omitempty"`
}

func (BounceEvent) PacketType() PacketType { return PacketTypeBounceEvent }

// JoinEvent announces a new session joining the room.
type JoinEvent struct {
	SessionView
}

func (JoinEvent) PacketType() PacketType { return PacketTypeJoinEvent }

// PartEvent announces a session leaving the room.
type PartEvent struct {
	SessionView
}

func (PartEvent) PacketType() PacketType { return PacketTypePartEvent }

// NetworkEvent announces a server-side network condition, such as a
// partition, affecting some sessions.
type NetworkEvent struct {
	Type      string `json:"type"`
	ServerID  string `json:"server_id"`
	ServerEra string `json:"server_era"`
}

func (NetworkEvent) PacketType() PacketType { return PacketTypeNetworkEvent }

// NickEvent announces a session's nick change, observed by everyone in the
// room (including the session itself).
type NickEvent struct {
	SessionID SessionId `json:"session_id"`
	ID        UserId    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
}

func (NickEvent) PacketType() PacketType { return PacketTypeNickEvent }

// SendEvent announces a new message sent to the room.
type SendEvent struct {
	Message
}

func (SendEvent) PacketType() PacketType { return PacketTypeSendEvent }

// PingEvent is a server-initiated keep-alive; the client must reply with a
// PingReply echoing Time.
type PingEvent struct {
	Time     Time `json:"time"`
	NextTime Time `json:"next"`
}

func (PingEvent) PacketType() PacketType { return PacketTypePingEvent }

// DisconnectEvent tells the client to reconnect, usually because the server
// is about to restart.
type DisconnectEvent struct {
	Reason string `json:"reason"`
}

func (DisconnectEvent) PacketType() PacketType { return PacketTypeDisconnectEvent }
