// Package multiclient aggregates any number of client.Client supervisors
// behind one caller-keyed collection and one fan-in event stream, so a bot
// can run in many rooms (or under many identities) while reading a single
// channel and holding a single handle.
package multiclient

import (
	"context"
	"time"

	"github.com/zephyrnaut/euphoxide-go/client"
)

const defaultGCInterval = 30 * time.Second

// defaultIdleTimeout is how long the aggregator waits, once every child has
// died and no new AddClient has arrived, before closing Events on its own.
const defaultIdleTimeout = 5 * time.Second

const idleCheckInterval = time.Second

type cmdKind int

const (
	cmdAdd cmdKind = iota
	cmdGetClients
)

type addResult[K comparable] struct {
	cl    *client.Client
	added bool
}

type command[K comparable] struct {
	kind      cmdKind
	key       K
	config    client.Config
	resultAdd chan addResult[K]
	resultGet chan map[K]*client.Client
}

type wrappedEvent[K comparable] struct {
	key K
	ev  client.Event
}

type childEntry[K comparable] struct {
	cl     *client.Client
	cancel context.CancelFunc
}

// MultiClient owns a keyed collection of Clients and fans their events into
// one ordered stream. K is whatever the caller wants to distinguish
// children by: a room name, a (room, identity) struct, anything comparable.
// Adding an already-present key is a no-op that returns the existing
// Client, so callers can reconcile a desired-state list against the
// collection idempotently.
type MultiClient[K comparable] struct {
	startTime time.Time

	ctx    context.Context
	cancel context.CancelFunc

	cmdCh          chan command[K]
	internalEvents chan wrappedEvent[K]
	out            chan Event[K]

	gcInterval  time.Duration
	idleTimeout time.Duration
}

// New starts a MultiClient. It runs until ctx is canceled, Stop is called,
// or every child Client has died and no AddClient call arrives for
// defaultIdleTimeout, at which point any remaining children are stopped
// and the Events channel is closed.
func New[K comparable](ctx context.Context, bufsize int) *MultiClient[K] {
	return newWithIdleTimeout[K](ctx, bufsize, defaultIdleTimeout)
}

func newWithIdleTimeout[K comparable](ctx context.Context, bufsize int, idleTimeout time.Duration) *MultiClient[K] {
	if bufsize <= 0 {
		bufsize = 10
	}

	childCtx, cancel := context.WithCancel(ctx)
	mc := &MultiClient[K]{
		startTime:      time.Now(),
		ctx:            childCtx,
		cancel:         cancel,
		cmdCh:          make(chan command[K], bufsize),
		internalEvents: make(chan wrappedEvent[K], bufsize),
		out:            make(chan Event[K], bufsize),
		gcInterval:     defaultGCInterval,
		idleTimeout:    idleTimeout,
	}

	go mc.run()

	return mc
}

// StartTime returns when the MultiClient was constructed, usable as the
// aggregate's own uptime baseline (see command/botrulez.Uptime).
func (mc *MultiClient[K]) StartTime() time.Time {
	return mc.startTime
}

// Events returns the aggregated event stream. The caller must keep it
// drained: a full channel applies back-pressure all the way down to every
// child Client's own event emission.
func (mc *MultiClient[K]) Events() <-chan Event[K] {
	return mc.out
}

// Stop stops every child Client and tears down the aggregator.
func (mc *MultiClient[K]) Stop() {
	mc.cancel()
}

// AddClient adds a new Client for key if one is not already present,
// starting it with config. It returns the Client either way, and whether
// this call was the one that created it.
func (mc *MultiClient[K]) AddClient(key K, config client.Config) (*client.Client, bool) {
	resultCh := make(chan addResult[K], 1)

	select {
	case mc.cmdCh <- command[K]{kind: cmdAdd, key: key, config: config, resultAdd: resultCh}:
	case <-mc.ctx.Done():
		return nil, false
	}

	select {
	case res := <-resultCh:
		return res.cl, res.added
	case <-mc.ctx.Done():
		return nil, false
	}
}

// GetClients returns a point-in-time snapshot of every child currently
// registered. Mutating the returned map does not affect the MultiClient.
func (mc *MultiClient[K]) GetClients() map[K]*client.Client {
	resultCh := make(chan map[K]*client.Client, 1)

	select {
	case mc.cmdCh <- command[K]{kind: cmdGetClients, resultGet: resultCh}:
	case <-mc.ctx.Done():
		return map[K]*client.Client{}
	}

	select {
	case snap := <-resultCh:
		return snap
	case <-mc.ctx.Done():
		return map[K]*client.Client{}
	}
}

// ClientBuilder starts a fluent Builder for a new child keyed by key, using
// DefaultServerConfig.
func (mc *MultiClient[K]) ClientBuilder(key K, room string) ClientBuilder[K] {
	return mc.ClientBuilderForServer(key, client.DefaultServerConfig(), room)
}

// ClientBuilderForServer is ClientBuilder, sharing server's dialing and
// retry defaults (notably its CookieJar) across every child built from it.
func (mc *MultiClient[K]) ClientBuilderForServer(key K, server client.ServerConfig, room string) ClientBuilder[K] {
	return ClientBuilder[K]{mc: mc, key: key, inner: client.NewBuilderForServer(server, room)}
}

func (mc *MultiClient[K]) run() {
	clients := make(map[K]childEntry[K])
	gcTicker := time.NewTicker(mc.gcInterval)
	defer gcTicker.Stop()
	idleTicker := time.NewTicker(idleCheckInterval)
	defer idleTicker.Stop()
	defer close(mc.out)

	stopAll := func() {
		for _, e := range clients {
			e.cl.Stop()
		}
	}

	var idleSince time.Time

	for {
		select {
		case <-mc.ctx.Done():
			stopAll()
			return

		case cmd := <-mc.cmdCh:
			mc.onCommand(clients, cmd)

		case we := <-mc.internalEvents:
			entry, ok := clients[we.key]
			if !ok {
				// The child was already purged; a race between its
				// forwarder and the table mutation above. Drop silently.
				continue
			}

			if we.ev.Kind == client.Stopped {
				entry.cancel()
				delete(clients, we.key)
			}

			mc.publish(Event[K]{Key: we.key, Event: we.ev})

		case <-gcTicker.C:
			for k, e := range clients {
				if e.cl.Stopped() {
					e.cancel()
					delete(clients, k)
				}
			}

		case <-idleTicker.C:
			// Once every child has died and no new AddClient has shown up
			// for idleTimeout, there is nothing left for this aggregator to
			// ever emit again; close Events rather than make the caller
			// guess whether it should give up on reading it.
			if len(clients) > 0 {
				idleSince = time.Time{}
				continue
			}
			if idleSince.IsZero() {
				idleSince = time.Now()
			} else if time.Since(idleSince) >= mc.idleTimeout {
				mc.cancel()
				return
			}
		}
	}
}

func (mc *MultiClient[K]) onCommand(clients map[K]childEntry[K], cmd command[K]) {
	switch cmd.kind {
	case cmdAdd:
		if existing, ok := clients[cmd.key]; ok {
			cmd.resultAdd <- addResult[K]{cl: existing.cl, added: false}
			return
		}

		childCtx, cancel := context.WithCancel(mc.ctx)
		childEvents := make(chan client.Event, cmd.config.Server.ChannelBufsize)
		cl := client.New(childCtx, cmd.config, childEvents)
		clients[cmd.key] = childEntry[K]{cl: cl, cancel: cancel}

		go mc.forward(cmd.key, childEvents)

		cmd.resultAdd <- addResult[K]{cl: cl, added: true}

	case cmdGetClients:
		snap := make(map[K]*client.Client, len(clients))
		for k, e := range clients {
			snap[k] = e.cl
		}
		cmd.resultGet <- snap
	}
}

func (mc *MultiClient[K]) forward(key K, childEvents <-chan client.Event) {
	for ev := range childEvents {
		select {
		case mc.internalEvents <- wrappedEvent[K]{key: key, ev: ev}:
		case <-mc.ctx.Done():
			return
		}
	}
}

func (mc *MultiClient[K]) publish(ev Event[K]) {
	select {
	case mc.out <- ev:
	case <-mc.ctx.Done():
	}
}
