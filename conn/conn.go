package conn

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zephyrnaut/euphoxide-go/api"
)

const (
	writeWait = 10 * time.Second

	// DefaultDomain is the host of the reference Euphoria instance.
	DefaultDomain = "euphoria.leet.nu"
)

// Config configures a Connection. The zero value is not usable; use
// DefaultConfig to obtain sane defaults.
type Config struct {
	Domain          string
	Human           bool
	ChannelBufsize  int
	ConnectTimeout  time.Duration
	CommandTimeout  time.Duration
	PingInterval    time.Duration
	Logger          *slog.Logger

	// Dialer overrides the websocket.Dialer used by ConnectWithConfig.
	// Left nil, websocket.DefaultDialer is used; tests point this at a
	// Dialer with a relaxed TLSClientConfig to dial an httptest.NewTLSServer.
	Dialer *websocket.Dialer
}

// DefaultConfig returns the Config the reference client uses absent any
// overrides.
func DefaultConfig() Config {
	return Config{
		Domain:         DefaultDomain,
		Human:          false,
		ChannelBufsize: 10,
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 30 * time.Second,
		PingInterval:   30 * time.Second,
		Logger:         slog.Default(),
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

type wsFrame struct {
	messageType int
	data        []byte
	err         error
}

type connCommandKind int

const (
	cmdSend connCommandKind = iota
	cmdGetState
)

type connCommand struct {
	kind   connCommandKind
	data   api.Data
	result chan sendResult
	state  chan State
}

type sendResult struct {
	pending *PendingReply
	err     error
}

// Connection runs one WebSocket to completion: it frames outbound and
// inbound JSON packets, maintains dual-layer liveness pings, correlates
// command replies by id, and keeps a mirrored room State up to date. A
// Connection is driven entirely by repeated calls to Recv from a single
// goroutine; other goroutines interact with it only through a Handle.
type Connection struct {
	ws     *websocket.Conn
	config Config

	readCh chan wsFrame
	cmdCh  chan connCommand
	done   chan struct{}
	closeOnce sync.Once

	lastID  atomic.Uint64
	replies *replies

	pingMu              sync.Mutex
	havePinged          bool
	lastWSPingPayload   []byte
	lastWSPingReplied   bool
	lastEuphPingTime    api.Time
	lastEuphPingReplied bool

	state State
}

// Connect opens a TLS WebSocket to the given room on domain using default
// Config otherwise.
func Connect(ctx context.Context, domain, room string, cookies string) (*Connection, []string, error) {
	config := DefaultConfig()
	config.Domain = domain
	return ConnectWithConfig(ctx, room, cookies, config)
}

// ConnectWithConfig opens a TLS WebSocket to config.Domain's room, attaching
// cookies as a single Cookie request header if non-empty. It fails with
// ErrConnectionTimeout if the handshake does not complete within
// config.ConnectTimeout.
func ConnectWithConfig(ctx context.Context, room string, cookies string, config Config) (*Connection, []string, error) {
	human := ""
	if config.Human {
		human = "?h=1"
	}
	url := fmt.Sprintf("wss://%s/room/%s/ws%s", config.Domain, room, human)

	header := http.Header{}
	if cookies != "" {
		header.Set("Cookie", cookies)
	}

	ctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	config.logger().Debug("connecting", "url", url)

	dialer := config.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	ws, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, ErrConnectionTimeout
		}
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, nil, &Error{Kind: KindTransport, Cause: &HTTPStatusError{StatusCode: resp.StatusCode}}
		}
		return nil, nil, transportError(err)
	}

	var setCookies []string
	if resp != nil {
		setCookies = resp.Header.Values("Set-Cookie")
	}

	c := wrapConnection(ws, config)
	return c, setCookies, nil
}

// HTTPStatusError wraps a non-101 HTTP response encountered during the
// WebSocket upgrade, most notably 404 when the room does not exist.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status during upgrade: %d", e.StatusCode)
}

func wrapConnection(ws *websocket.Conn, config Config) *Connection {
	if config.ChannelBufsize <= 0 {
		config.ChannelBufsize = 10
	}
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = 30 * time.Second
	}
	if config.PingInterval <= 0 {
		config.PingInterval = 30 * time.Second
	}

	c := &Connection{
		ws:      ws,
		config:  config,
		readCh:  make(chan wsFrame, config.ChannelBufsize),
		cmdCh:   make(chan connCommand, config.ChannelBufsize),
		done:    make(chan struct{}),
		replies: newReplies(config.CommandTimeout),
		state:   NewState(),
	}

	c.ws.SetPongHandler(c.onPong)

	go c.readPump()

	return c
}

func (c *Connection) readPump() {
	for {
		mt, data, err := c.ws.ReadMessage()
		select {
		case c.readCh <- wsFrame{messageType: mt, data: data, err: err}:
		case <-c.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (c *Connection) onPong(payload string) error {
	c.pingMu.Lock()
	defer c.pingMu.Unlock()
	if c.lastWSPingPayload != nil && payload == string(c.lastWSPingPayload) {
		c.lastWSPingReplied = true
	}
	return nil
}

// Close initiates a graceful WebSocket close. Subsequent Recv calls return
// io.EOF once the socket finishes closing.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(writeWait)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = c.ws.Close()
		close(c.done)
	})
	return err
}

// Handle returns a clonable, cheaply-passable capability for interacting
// with this Connection from other goroutines.
func (c *Connection) Handle() *Handle {
	return &Handle{cmdCh: c.cmdCh}
}

// State returns a cheap snapshot of the room state as of the last packet
// Recv returned.
func (c *Connection) State() State {
	return c.state.Clone()
}

// Send allocates the next correlation id, encodes payload as a text frame,
// and hands it to the transport. It does not wait for a reply.
func (c *Connection) Send(payload api.Data) (string, error) {
	id := strconv.FormatUint(c.lastID.Add(1), 10)
	return id, c.sendWithID(id, payload)
}

func (c *Connection) sendWithID(id string, payload api.Data) error {
	pp := &api.ParsedPacket{ID: &id, Type: payload.PacketType(), Content: payload}
	pkt, err := pp.IntoPacket()
	if err != nil {
		return malformedPacketError(err)
	}

	raw, err := json.Marshal(pkt)
	if err != nil {
		return malformedPacketError(err)
	}

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return transportError(err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
		return transportError(err)
	}

	return nil
}

// Recv is the Connection's driver loop. It concurrently services transport
// reads, queued handle commands, and the periodic ping tick, returning the
// next fully-processed packet. It returns io.EOF when the socket closes
// cleanly, or a non-nil error otherwise.
func (c *Connection) Recv() (*api.ParsedPacket, error) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		c.replies.purge()

		select {
		case frame := <-c.readCh:
			pkt, err := c.handleFrame(frame)
			if err != nil {
				return nil, err
			}
			if pkt == nil {
				continue
			}
			return pkt, nil

		case cmd := <-c.cmdCh:
			c.onCommand(cmd)
			continue

		case <-ticker.C:
			if err := c.onPingTick(); err != nil {
				return nil, err
			}
			continue

		case <-c.done:
			return nil, io.EOF
		}
	}
}

func (c *Connection) handleFrame(frame wsFrame) (*api.ParsedPacket, error) {
	if frame.err != nil {
		if websocket.IsCloseError(frame.err,
			websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
			errors.Is(frame.err, io.EOF) ||
			errors.Is(frame.err, net.ErrClosed) {
			return nil, io.EOF
		}
		return nil, transportError(frame.err)
	}

	if frame.messageType == websocket.BinaryMessage {
		_ = c.Close()
		return nil, ErrReceivedBinaryMessage
	}

	var pkt api.Packet
	if err := json.Unmarshal(frame.data, &pkt); err != nil {
		_ = c.Close()
		return nil, receivedMalformedPacketError(err)
	}

	parsed, err := api.ParsePacket(&pkt)
	if err != nil {
		_ = c.Close()
		return nil, receivedMalformedPacketError(err)
	}

	c.onPacket(parsed)

	return parsed, nil
}

func (c *Connection) onPacket(pkt *api.ParsedPacket) {
	switch p := pkt.Content.(type) {
	case *api.PingReply:
		c.pingMu.Lock()
		if p.Time == c.lastEuphPingTime {
			c.lastEuphPingReplied = true
		}
		c.pingMu.Unlock()

	case *api.PingEvent:
		reply := &api.PingReply{Time: p.Time}
		if pkt.ID != nil {
			_ = c.sendWithID(*pkt.ID, reply)
		} else {
			_, _ = c.Send(reply)
		}
	}

	if pkt.Content != nil {
		c.state.OnData(pkt.Content)
	}

	if pkt.ID != nil {
		c.replies.complete(*pkt.ID, pkt)
	}
}

func (c *Connection) onCommand(cmd connCommand) {
	switch cmd.kind {
	case cmdSend:
		id, err := c.Send(cmd.data)
		if err != nil {
			cmd.result <- sendResult{err: err}
			return
		}
		cmd.result <- sendResult{pending: c.replies.waitFor(id)}

	case cmdGetState:
		cmd.state <- c.state.Clone()
	}
}

func (c *Connection) onPingTick() error {
	c.pingMu.Lock()
	if c.havePinged && !(c.lastWSPingReplied && c.lastEuphPingReplied) {
		c.pingMu.Unlock()
		_ = c.Close()
		return ErrPingTimeout
	}

	now := time.Now()
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, uint64(now.UnixMilli()))

	c.lastWSPingPayload = payload
	c.lastWSPingReplied = false

	euphTime := api.TimeFromStd(now)
	c.lastEuphPingTime = euphTime
	c.lastEuphPingReplied = false

	c.havePinged = true
	c.pingMu.Unlock()

	if err := c.ws.WriteControl(websocket.PingMessage, payload, now.Add(writeWait)); err != nil {
		return transportError(err)
	}

	if _, err := c.Send(&api.Ping{Time: euphTime}); err != nil {
		return err
	}

	return nil
}

// Handle is a clonable, cheaply-passable capability referring to a running
// Connection. Its zero value is not usable.
type Handle struct {
	cmdCh chan connCommand
}

// SendCommand submits a command to the server and returns a PendingReply
// that resolves to the typed reply once it arrives (or to a command
// timeout / connection-closed error). The returned error only reflects
// failure to submit the command itself.
func (h *Handle) SendCommand(ctx context.Context, payload api.Data) (*PendingReply, error) {
	resultCh := make(chan sendResult, 1)

	select {
	case h.cmdCh <- connCommand{kind: cmdSend, data: payload, result: resultCh}:
	case <-ctx.Done():
		return nil, ErrConnectionClosed
	}

	select {
	case res := <-resultCh:
		return res.pending, res.err
	case <-ctx.Done():
		return nil, ErrConnectionClosed
	}
}

// SendOnly is equivalent to SendCommand but discards the reply future.
func (h *Handle) SendOnly(ctx context.Context, payload api.Data) error {
	_, err := h.SendCommand(ctx, payload)
	return err
}

// State retrieves the current room State via a round-trip to the
// Connection's driver loop.
func (h *Handle) State(ctx context.Context) (State, error) {
	resultCh := make(chan State, 1)

	select {
	case h.cmdCh <- connCommand{kind: cmdGetState, state: resultCh}:
	case <-ctx.Done():
		return State{}, ErrConnectionClosed
	}

	select {
	case st := <-resultCh:
		return st, nil
	case <-ctx.Done():
		return State{}, ErrConnectionClosed
	}
}

// AwaitReply blocks on a PendingReply and decodes it as T, translating
// replies/timeout into the public Error taxonomy. T must be the pointer
// type the api package decodes the expected reply into, such as
// *api.NickReply.
func AwaitReply[T api.Data](ctx context.Context, pending *PendingReply) (T, error) {
	var zero T

	pkt, err := pending.Get(ctx)
	if err != nil {
		switch {
		case IsReplyTimeout(err):
			return zero, ErrCommandTimeout
		case IsReplyCanceled(err):
			return zero, ErrConnectionClosed
		default:
			return zero, err
		}
	}

	if pkt.ContentErr != nil {
		return zero, euphError(*pkt.ContentErr)
	}

	typed, ok := pkt.Content.(T)
	if !ok {
		return zero, receivedUnexpectedPacketError(pkt.Type)
	}

	return typed, nil
}
