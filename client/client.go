// Package client supervises a single room connection: it dials, carries a
// connection through the join handshake, mirrors its packets out as an
// event stream, and reconnects on failure according to a join-attempt
// budget and backoff policy. Package conn does the wire-level work; Client
// adds the retry loop and the nick/auth bookkeeping that make a bare
// connection into something a bot can depend on staying up.
package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/conn"
)

// Client supervises one room across however many reconnects it takes,
// until Stop is called, its context is canceled, or it gives up for a
// fatal reason. Its event stream follows:
//
//	(Started) (Connecting (Connected Packet* (Joined Packet*)?)? Disconnected)* Stopped
type Client struct {
	id        uuid.UUID
	config    Config
	startTime time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool

	currentConn atomic.Pointer[conn.Handle]
}

// New starts a Client supervising config.Room and returns immediately; the
// supervisor runs in its own goroutine until ctx is canceled or Stop is
// called, emitting events to the caller-owned events channel (which the
// caller must keep drained; a full channel stalls the Client). Events stops
// being written to only after a final Stopped event.
func New(ctx context.Context, config Config, events chan<- Event) *Client {
	c := &Client{
		id:        uuid.New(),
		config:    config,
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-c.stopCh:
		case <-runCtx.Done():
		}
		cancel()
	}()

	go c.run(runCtx, events)

	return c
}

// ID returns an identifier unique to this Client instance, stable across
// its reconnects but distinct from any other Client built from the same
// Config, useful for correlating log lines across restarts of a bot
// process that rebuilds its Clients from the same room list.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// StartTime returns when the Client was constructed.
func (c *Client) StartTime() time.Time {
	return c.startTime
}

// Stop requests that the Client disconnect and stop reconnecting. It
// returns immediately; watch for the terminal Stopped event to know when
// the supervisor goroutine has actually exited.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Stopped reports whether the supervisor goroutine has exited.
func (c *Client) Stopped() bool {
	return c.stopped.Load()
}

// Conn returns the Handle of the connection currently in flight, if any.
func (c *Client) Conn() (*conn.Handle, bool) {
	h := c.currentConn.Load()
	return h, h != nil
}

func (c *Client) logger() *slog.Logger {
	return c.config.Server.logger()
}

func (c *Client) emit(events chan<- Event, ev Event) {
	events <- ev
}

func (c *Client) run(ctx context.Context, events chan<- Event) {
	defer func() {
		c.stopped.Store(true)
		c.emit(events, Event{Kind: Stopped})
	}()

	c.emit(events, Event{Kind: Started})

	failedAttempts := 0

	for {
		select {
		case <-ctx.Done():
			c.logger().Debug("client stopping", "id", c.id, "room", c.config.Room, "error", stoppedError())
			return
		default:
		}

		c.emit(events, Event{Kind: Connecting})

		reachedJoined, err := c.runOnce(ctx, events)

		c.currentConn.Store(nil)
		c.emit(events, Event{Kind: Disconnected, Err: err})

		if err != nil {
			var sErr *supervisorError
			if !errors.As(err, &sErr) {
				sErr = connError(err)
			}
			if sErr.isFatal() {
				c.logger().Warn("client stopped", "id", c.id, "room", c.config.Room, "error", sErr)
				return
			}
		}

		if reachedJoined {
			failedAttempts = 0
		} else {
			failedAttempts++
			if failedAttempts >= c.config.Server.JoinAttempts {
				c.logger().Warn("client out of join attempts", "id", c.id, "room", c.config.Room,
					"attempts", failedAttempts, "error", outOfJoinAttemptsError())
				return
			}
		}

		delay := time.Duration(0)
		if !reachedJoined {
			delay = c.config.Server.ReconnectDelay
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

type recvResult struct {
	pkt   *api.ParsedPacket
	state conn.State
	err   error
}

// runOnce carries one connection attempt from dial through to either a
// clean close, a transport failure, or ctx cancellation. It reports whether
// the attempt ever reached the Joined state, which governs both the
// reconnect delay and the join-attempt budget.
func (c *Client) runOnce(ctx context.Context, events chan<- Event) (reachedJoined bool, err error) {
	connCfg := c.config.Server.connConfig()
	cookies := c.config.Server.Cookies.Header()

	cn, setCookies, dialErr := conn.ConnectWithConfig(ctx, c.config.Room, cookies, connCfg)
	if dialErr != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, connError(dialErr)
	}
	defer cn.Close()

	c.config.Server.Cookies.Merge(setCookies)

	handle := cn.Handle()
	c.currentConn.Store(handle)

	c.emit(events, Event{Kind: Connected, Conn: handle})

	recvCh := make(chan recvResult, connCfg.ChannelBufsize)
	go func() {
		for {
			pkt, recvErr := cn.Recv()
			var state conn.State
			if recvErr == nil {
				state = cn.State()
			}
			select {
			case recvCh <- recvResult{pkt: pkt, state: state, err: recvErr}:
			case <-ctx.Done():
				return
			}
			if recvErr != nil {
				return
			}
		}
	}()

	nickSet := false
	nickWasUnset := false

	for {
		select {
		case res := <-recvCh:
			if res.err != nil {
				if errors.Is(res.err, io.EOF) {
					return reachedJoined, nil
				}
				return reachedJoined, connError(res.err)
			}

			switch p := res.pkt.Content.(type) {
			case *api.BounceEvent:
				if len(p.AuthOptions) == 0 {
					break
				}
				if c.config.Password == nil {
					return reachedJoined, authRequiredError()
				}
				if sendErr := handle.SendOnly(ctx, &api.Auth{
					Type:     api.AuthOptionPasscode,
					Passcode: c.config.Password,
				}); sendErr != nil {
					return reachedJoined, connError(sendErr)
				}

			case *api.AuthReply:
				if !p.Success {
					return reachedJoined, invalidPasswordError()
				}

			case *api.SnapshotEvent:
				nickWasUnset = p.Nick == nil
			}

			state := res.state
			c.emit(events, Event{Kind: Packet, Conn: handle, State: state, Packet: res.pkt})

			if state.Joined != nil && !reachedJoined {
				reachedJoined = true

				if !nickSet && c.config.Username != "" &&
					(c.config.ForceUsername || nickWasUnset) {
					nickSet = true
					if sendErr := handle.SendOnly(ctx, &api.Nick{Name: c.config.Username}); sendErr != nil {
						return reachedJoined, connError(sendErr)
					}
				}

				c.emit(events, Event{Kind: Joined, Conn: handle, State: state})
			}

		case <-ctx.Done():
			return reachedJoined, nil
		}
	}
}
