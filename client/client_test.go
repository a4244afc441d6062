package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrnaut/euphoxide-go/api"
)

// fakeRoomServer runs a TLS httptest server upgrading every request to a
// WebSocket and handing it to handle, so a Client can be driven through its
// dial/handshake/reconnect loop without a real Euphoria instance. TLS (not
// plain HTTP) is required because ConnectWithConfig always dials wss://.
func fakeRoomServer(t *testing.T, handle func(*websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go handle(ws)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// serverConfigFor builds a ServerConfig that dials srv: its Domain is srv's
// host, and its Dialer trusts srv's self-signed certificate.
func serverConfigFor(srv *httptest.Server) ServerConfig {
	s := DefaultServerConfig()
	s.Domain = strings.TrimPrefix(srv.URL, "https://")
	s.Dialer = &websocket.Dialer{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // test-only fake server
	}
	s.JoinAttempts = 1
	s.ConnectTimeout = 2 * time.Second
	s.ReconnectDelay = 10 * time.Millisecond
	return s
}

// writeEventPacket is called from fakeRoomServer's own goroutine, so it
// reports failures with assert (safe from any goroutine) rather than
// require/Fatal (safe only from the test's own goroutine).
func writeEventPacket(t *testing.T, ws *websocket.Conn, payload api.Data) {
	t.Helper()
	data, err := json.Marshal(payload)
	if !assert.NoError(t, err) {
		return
	}
	raw, err := json.Marshal(api.Packet{Type: payload.PacketType(), Data: data})
	if !assert.NoError(t, err) {
		return
	}
	assert.NoError(t, ws.WriteMessage(websocket.TextMessage, raw))
}

// handshakeServer sends the HelloEvent/SnapshotEvent pair that carries a
// Connection into the Joined state, then blocks servicing whatever handler
// is given (used to additionally script nick-command responses).
func handshakeServer(t *testing.T, nick *string, after func(ws *websocket.Conn)) func(*websocket.Conn) {
	return func(ws *websocket.Conn) {
		writeEventPacket(t, ws, &api.HelloEvent{
			ID:      "u1",
			Session: api.SessionView{ID: "u1", Name: "guest", SessionID: "s1"},
		})
		writeEventPacket(t, ws, &api.SnapshotEvent{
			Identity:  "u1",
			SessionID: "s1",
			Nick:      nick,
		})
		if after != nil {
			after(ws)
		}
	}
}

func collectUntilJoined(t *testing.T, events chan Event, timeout time.Duration) []Event {
	t.Helper()
	var got []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-events:
			got = append(got, ev)
			if ev.Kind == Joined || ev.Kind == Stopped {
				return got
			}
		case <-deadline:
			t.Fatal("timed out waiting for Joined/Stopped event")
			return nil
		}
	}
}

func TestClientResendsNickWhenSnapshotNickUnset(t *testing.T) {
	nickCh := make(chan string, 1)

	srv := fakeRoomServer(t, handshakeServer(t, nil, func(ws *websocket.Conn) {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var pkt api.Packet
		if !assert.NoError(t, json.Unmarshal(data, &pkt)) {
			return
		}
		assert.Equal(t, api.PacketTypeNick, pkt.Type)
		var n api.Nick
		if !assert.NoError(t, json.Unmarshal(pkt.Data, &n)) {
			return
		}
		nickCh <- n.Name
	}))

	server := serverConfigFor(srv)
	cfg := NewConfig(server, "test")
	cfg.Username = "bot"
	cfg.ForceUsername = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 16)
	cl := New(ctx, cfg, events)
	defer cl.Stop()

	collectUntilJoined(t, events, 2*time.Second)

	select {
	case name := <-nickCh:
		assert.Equal(t, "bot", name)
	case <-time.After(2 * time.Second):
		t.Fatal("client never sent a Nick command after an unset snapshot nick")
	}
}

func TestClientSkipsNickResendWhenSnapshotNickAlreadySet(t *testing.T) {
	already := "bot"
	sawNick := make(chan struct{}, 1)

	srv := fakeRoomServer(t, handshakeServer(t, &already, func(ws *websocket.Conn) {
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var pkt api.Packet
			if json.Unmarshal(data, &pkt) == nil && pkt.Type == api.PacketTypeNick {
				sawNick <- struct{}{}
				return
			}
		}
	}))

	server := serverConfigFor(srv)
	cfg := NewConfig(server, "test")
	cfg.Username = "bot"
	cfg.ForceUsername = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 16)
	cl := New(ctx, cfg, events)
	defer cl.Stop()

	collectUntilJoined(t, events, 2*time.Second)

	select {
	case <-sawNick:
		t.Fatal("client resent Nick even though the snapshot already carried one")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClientForceUsernameAlwaysResendsNick(t *testing.T) {
	already := "bot"
	nickCh := make(chan string, 1)

	srv := fakeRoomServer(t, handshakeServer(t, &already, func(ws *websocket.Conn) {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var pkt api.Packet
		if !assert.NoError(t, json.Unmarshal(data, &pkt)) {
			return
		}
		var n api.Nick
		if !assert.NoError(t, json.Unmarshal(pkt.Data, &n)) {
			return
		}
		nickCh <- n.Name
	}))

	server := serverConfigFor(srv)
	cfg := NewConfig(server, "test")
	cfg.Username = "bot"
	cfg.ForceUsername = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 16)
	cl := New(ctx, cfg, events)
	defer cl.Stop()

	collectUntilJoined(t, events, 2*time.Second)

	select {
	case name := <-nickCh:
		assert.Equal(t, "bot", name)
	case <-time.After(2 * time.Second):
		t.Fatal("ForceUsername client never resent its nick despite an already-set snapshot nick")
	}
}

func TestClientEmitsStartedConnectingConnectedJoinedInOrder(t *testing.T) {
	srv := fakeRoomServer(t, handshakeServer(t, nil, func(ws *websocket.Conn) {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))

	server := serverConfigFor(srv)
	cfg := NewConfig(server, "test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 16)
	cl := New(ctx, cfg, events)
	defer cl.Stop()

	kinds := []EventKind{}
	for len(kinds) < 3 {
		kinds = append(kinds, (<-events).Kind)
	}
	require.Equal(t, []EventKind{Started, Connecting, Connected}, kinds)

	got := collectUntilJoined(t, events, 2*time.Second)
	require.Equal(t, Joined, got[len(got)-1].Kind)
}

func TestClientStopsAfterExhaustingJoinAttempts(t *testing.T) {
	srv := fakeRoomServer(t, func(ws *websocket.Conn) {
		// Upgrade succeeds but the room never completes the handshake;
		// the client must eventually give up rather than hang forever.
		_ = ws.Close()
	})

	server := serverConfigFor(srv)
	server.JoinAttempts = 2
	server.ReconnectDelay = 5 * time.Millisecond
	cfg := NewConfig(server, "test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 32)
	cl := New(ctx, cfg, events)
	defer cl.Stop()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == Stopped {
				assert.True(t, cl.Stopped())
				return
			}
		case <-deadline:
			t.Fatal("client never reached Stopped after exhausting its join-attempt budget")
		}
	}
}

func TestClientReconnectsAfterAFailedAttempt(t *testing.T) {
	var attempt atomic.Int32
	attemptCh := make(chan int32, 4)

	srv := fakeRoomServer(t, func(ws *websocket.Conn) {
		n := attempt.Add(1) - 1
		attemptCh <- n
		if n == 0 {
			// First attempt: drop immediately without ever joining.
			_ = ws.Close()
			return
		}
		handshakeServer(t, nil, func(inner *websocket.Conn) {
			for {
				if _, _, err := inner.ReadMessage(); err != nil {
					return
				}
			}
		})(ws)
	})

	server := serverConfigFor(srv)
	server.JoinAttempts = 5
	server.ReconnectDelay = 5 * time.Millisecond
	cfg := NewConfig(server, "test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 32)
	cl := New(ctx, cfg, events)
	defer cl.Stop()

	collectUntilJoined(t, events, 5*time.Second)

	select {
	case first := <-attemptCh:
		assert.Equal(t, int32(0), first)
	case <-time.After(time.Second):
		t.Fatal("server never observed a first connection attempt")
	}
}

func TestClientStopIsIdempotentAndEmitsStopped(t *testing.T) {
	srv := fakeRoomServer(t, handshakeServer(t, nil, nil))

	server := serverConfigFor(srv)
	cfg := NewConfig(server, "test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 16)
	cl := New(ctx, cfg, events)

	collectUntilJoined(t, events, 2*time.Second)

	cl.Stop()
	cl.Stop() // must not panic or block

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == Stopped {
				assert.True(t, cl.Stopped())
				return
			}
		case <-deadline:
			t.Fatal("Stop never produced a terminal Stopped event")
		}
	}
}

func TestRunOnceReturnsAuthRequiredWhenPasswordMissing(t *testing.T) {
	reason := "passcode required"
	srv := fakeRoomServer(t, func(ws *websocket.Conn) {
		writeEventPacket(t, ws, &api.BounceEvent{
			Reason:      &reason,
			AuthOptions: []api.AuthOption{api.AuthOptionPasscode},
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	})

	server := serverConfigFor(srv)
	server.JoinAttempts = 1
	cfg := NewConfig(server, "test")
	// No Password set: the room's bounce cannot be satisfied.

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 16)
	cl := New(ctx, cfg, events)
	defer cl.Stop()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == Disconnected {
				var sErr *supervisorError
				require.True(t, errors.As(ev.Err, &sErr))
				assert.Equal(t, kindAuthRequired, sErr.kind)
			}
			if ev.Kind == Stopped {
				return
			}
		case <-deadline:
			t.Fatal("client never stopped after a bounce it could not satisfy")
		}
	}
}
