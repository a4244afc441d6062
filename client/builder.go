package client

import "context"

// Builder fluently assembles a Config, then starts a Client from it. Its
// zero value is not usable; start from NewBuilder or NewBuilderForServer.
type Builder struct {
	config Config
}

// NewBuilder starts a Builder for room using DefaultServerConfig.
func NewBuilder(room string) Builder {
	return NewBuilderForServer(DefaultServerConfig(), room)
}

// NewBuilderForServer starts a Builder for room sharing server's dialing
// and retry defaults with any other Client built from the same
// ServerConfig (notably its CookieJar).
func NewBuilderForServer(server ServerConfig, room string) Builder {
	return Builder{config: NewConfig(server, room)}
}

// WithUsername sets the nick the Client adopts once joined.
func (b Builder) WithUsername(username string) Builder {
	b.config.Username = username
	return b
}

// WithForceUsername makes the Client re-assert its username after every
// reconnect, even if the server remembered a previous nick.
func (b Builder) WithForceUsername(force bool) Builder {
	b.config.ForceUsername = force
	return b
}

// WithPassword configures the passcode sent in response to a room's
// BounceEvent. Omitting it while the room requires one is a fatal
// configuration error, not a retryable one.
func (b Builder) WithPassword(password string) Builder {
	b.config.Password = &password
	return b
}

// WithHuman sets whether the connection identifies itself as
// human-operated (?h=1), exempting it from some bot-only room policies.
func (b Builder) WithHuman(human bool) Builder {
	b.config.Server.Human = human
	return b
}

// Config returns the Config assembled so far.
func (b Builder) Config() Config {
	return b.config
}

// Build starts a Client from the assembled Config. See New.
func (b Builder) Build(ctx context.Context, events chan<- Event) *Client {
	return New(ctx, b.config, events)
}
