package client

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zephyrnaut/euphoxide-go/conn"
)

// ServerConfig groups the defaults shared by every Client connecting to the
// same server: which host to dial, how to carry cookie continuity across
// reconnects, and the retry/timeout tuning. A Config additionally names the
// room and identity for one particular Client.
type ServerConfig struct {
	Domain string
	Human  bool
	Cookies *CookieJar

	// JoinAttempts caps how many times a Client will try to reach the
	// Joined state before giving up as OutOfJoinAttempts. The counter
	// resets to zero on every successful join.
	JoinAttempts int
	// ReconnectDelay is how long a Client waits before redialing after a
	// connection attempt fails before ever reaching Joined. A failure
	// after Joined reconnects immediately.
	ReconnectDelay time.Duration

	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	PingInterval   time.Duration
	ChannelBufsize int

	Logger *slog.Logger

	// Dialer overrides the websocket.Dialer used to connect. Left nil,
	// conn.ConnectWithConfig uses websocket.DefaultDialer; tests point
	// this at a Dialer with a relaxed TLSClientConfig to reach a fake
	// server.
	Dialer *websocket.Dialer
}

// DefaultServerConfig returns the ServerConfig the reference client uses
// absent any overrides.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Domain:         conn.DefaultDomain,
		Cookies:        NewCookieJar(),
		JoinAttempts:   5,
		ReconnectDelay: 30 * time.Second,
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 30 * time.Second,
		PingInterval:   30 * time.Second,
		ChannelBufsize: 10,
		Logger:         slog.Default(),
	}
}

func (s ServerConfig) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s ServerConfig) connConfig() conn.Config {
	return conn.Config{
		Domain:         s.Domain,
		Human:          s.Human,
		ChannelBufsize: s.ChannelBufsize,
		ConnectTimeout: s.ConnectTimeout,
		CommandTimeout: s.CommandTimeout,
		PingInterval:   s.PingInterval,
		Logger:         s.Logger,
		Dialer:         s.Dialer,
	}
}

// Config is the full configuration for one Client: a room on a server, plus
// the identity it should present once joined.
type Config struct {
	Server ServerConfig
	Room   string

	// Username is the nick to set after joining. Left empty, the server's
	// randomly assigned nick is kept.
	Username string
	// ForceUsername re-sends Username after every reconnect even if the
	// server remembered a previous nick for this agent/account.
	ForceUsername bool
	// Password, if set, is sent in response to a BounceEvent requiring
	// passcode authentication.
	Password *string
}

// NewConfig builds a Config for room using server's shared defaults.
func NewConfig(server ServerConfig, room string) Config {
	return Config{Server: server, Room: room}
}
