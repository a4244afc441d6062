package api

import (
	"strings"
	"time"
)

// SessionId identifies one session's connection to a room, unique per
// server era.
type SessionId string

// UserId identifies a session's owner: an agent, an account, or a bot.
// Its session type is recoverable from its prefix.
type UserId string

// SessionType classifies a UserId by its prefix.
type SessionType int

const (
	SessionTypeUnknown SessionType = iota
	SessionTypeAgent
	SessionTypeAccount
	SessionTypeBot
)

// Type inspects the UserId's prefix to classify its owner.
func (id UserId) Type() SessionType {
	switch {
	case strings.HasPrefix(string(id), "agent:"):
		return SessionTypeAgent
	case strings.HasPrefix(string(id), "account:"):
		return SessionTypeAccount
	case strings.HasPrefix(string(id), "bot:"):
		return SessionTypeBot
	default:
		return SessionTypeUnknown
	}
}

// AccountId identifies a persistent user account.
type AccountId Snowflake

// MessageId identifies a single message in a room.
type MessageId Snowflake

// PmId identifies a private-message conversation.
type PmId Snowflake

// Time is a Euphoria protocol timestamp: Unix seconds.
type Time int64

// AsTime converts to a standard library time.Time in UTC.
func (t Time) AsTime() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// TimeFromStd converts a time.Time to a protocol Time, truncating to the
// second.
func TimeFromStd(t time.Time) Time {
	return Time(t.Unix())
}

// SessionView describes one session's presence in a room, as seen by
// JoinEvent, PartEvent, the WhoReply listing, or the client's own HelloEvent.
type SessionView struct {
	ID               UserId    `json:"id"`
	Name             string    `json:"name"`
	ServerID         string    `json:"server_id"`
	ServerEra        string    `json:"server_era"`
	SessionID        SessionId `json:"session_id"`
	IsStaff          bool      `json:"is_staff,omitempty"`
	IsManager        bool      `json:"is_manager,omitempty"`
	ClientAddress    string    `json:"client_address,omitempty"`
	RealClientAddress string   `json:"real_client_address,omitempty"`
}

// AccountView is the minimal, publicly-visible view of an account.
type AccountView struct {
	ID   AccountId `json:"id"`
	Name string    `json:"name"`
}

// PersonalAccountView is the account view a client sees of its own logged-in
// account, with a few additional fields.
type PersonalAccountView struct {
	ID    AccountId `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Message is a single chat message as observed in SendEvent and SendReply.
type Message struct {
	ID              MessageId  `json:"id"`
	Parent          *MessageId `json:"parent,omitempty"`
	PreviousEditID  *MessageId `json:"previous_edit_id,omitempty"`
	Time            Time       `json:"time"`
	Sender          SessionView `json:"sender"`
	Content         string     `json:"content"`
	EncryptionKeyID string     `json:"encryption_key_id,omitempty"`
	Edited          *Time      `json:"edited,omitempty"`
	Deleted         *Time      `json:"deleted,omitempty"`
	Truncated       bool       `json:"truncated,omitempty"`
}
