package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Handler receives inbound frames for one event name. The payload is the raw
// frame data; handlers decode it themselves.
type Handler func(event string, data json.RawMessage)

// Subscription identifies a registered handler so it can be removed with Off.
type Subscription struct {
	event string
	id    int
	err   bool
}

type subEntry struct {
	id int
	fn Handler
}

type errEntry struct {
	id int
	fn func(error)
}

// SendOptions controls Send behavior while not connected and per-write
// deadlines.
type SendOptions struct {
	// Retry queues the message for the next successful connect instead of
	// dropping it. The Send still fails: queued means deferred, not
	// delivered.
	Retry bool
	// Timeout, when positive, bounds the transport write.
	Timeout time.Duration
}

// Channel is one logical realtime connection with its own state, pending
// queue, and subscriptions. All methods are safe for concurrent use.
type Channel struct {
	opts   Options
	dialer Dialer

	mu           sync.Mutex
	wmu          sync.Mutex // serializes transport writes
	state        State
	conn         Conn
	gen          int // connection generation; invalidates stale pumps
	attempts     int
	reconnecting bool
	cancelRetry  chan struct{}
	stopBeat     chan struct{}
	pending      sendQueue
	subs         map[string][]subEntry
	errSubs      []errEntry
	nextID       int
}

// NewChannel builds a disconnected channel. Nothing is dialed until Connect.
func NewChannel(opts Options) *Channel {
	o := opts.withDefaults()
	return &Channel{
		opts:   o,
		dialer: wsDialer{d: websocket.DefaultDialer},
		pending: sendQueue{
			limit: o.QueueLimit,
		},
		subs: make(map[string][]subEntry),
	}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// QueueLen reports how many messages await the next successful connect.
func (c *Channel) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.len()
}

// Connect dials the endpoint and starts the read pump and heartbeat. Only
// legal from the disconnected state. On success the pending queue is flushed
// in FIFO order; a flush failure is reported through OnError callbacks and
// does not abort the remaining flush.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		st := c.state
		c.mu.Unlock()
		return &InvalidStateError{Op: "connect", State: st}
	}
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	header := http.Header{}
	if c.opts.Token != "" {
		header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	conn, err := c.dialer.Dial(dialCtx, c.opts.Endpoint, header)
	cancel()
	if err != nil {
		c.mu.Lock()
		if c.gen == gen && c.state == StateConnecting {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		if errors.Is(err, context.DeadlineExceeded) {
			return &ConnectionTimeoutError{Endpoint: c.opts.Endpoint, Timeout: c.opts.ConnectTimeout}
		}
		return &TransportError{Op: "dial", Err: err}
	}

	c.mu.Lock()
	if c.gen != gen || c.state != StateConnecting {
		// Disconnect raced the dial; release the fresh socket.
		c.mu.Unlock()
		_ = conn.Close()
		return &InvalidStateError{Op: "connect", State: StateDisconnected}
	}
	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	// A successful connect ends any reconnection cycle here, under the
	// same lock that publishes the connected state, so a read pump that
	// dies immediately still sees the cycle as finished and can start a
	// fresh one.
	c.reconnecting = false
	if c.cancelRetry != nil {
		close(c.cancelRetry)
		c.cancelRetry = nil
	}
	stop := make(chan struct{})
	c.stopBeat = stop
	queued := c.pending.drain()
	c.mu.Unlock()

	go c.readPump(conn, gen)
	go c.heartbeat(stop)

	for _, m := range queued {
		if err := c.Send(m.event, m.data, m.opts); err != nil {
			c.reportError(err)
		}
	}
	return nil
}

// Disconnect closes the connection with a normal-closure frame, stops the
// heartbeat and any pending reconnection cycle, and leaves the channel
// disconnected. Safe to call in any state; a no-op when already down.
func (c *Channel) Disconnect() error {
	c.mu.Lock()
	if c.state == StateDisconnected && !c.reconnecting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateDisconnecting
	c.gen++
	conn := c.conn
	c.conn = nil
	if c.stopBeat != nil {
		close(c.stopBeat)
		c.stopBeat = nil
	}
	if c.cancelRetry != nil {
		close(c.cancelRetry)
		c.cancelRetry = nil
	}
	c.reconnecting = false
	c.attempts = 0
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.wmu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		c.wmu.Unlock()
		_ = conn.Close()
	}
	return nil
}

// Send serializes {event, data, timestamp} as a text frame and writes it.
// While not connected: with Retry the message joins the pending queue
// (oldest evicted at the bound) and the call still fails; without Retry
// nothing is queued.
func (c *Channel) Send(event string, data any, opts SendOptions) error {
	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		if opts.Retry {
			c.pending.push(pendingSend{event: event, data: data, opts: opts})
			c.mu.Unlock()
			return &NotConnectedError{Event: event, Queued: true}
		}
		c.mu.Unlock()
		return &NotConnectedError{Event: event}
	}
	conn := c.conn
	c.mu.Unlock()

	raw, err := json.Marshal(data)
	if err != nil {
		serr := &SerializationError{Event: event, Err: err}
		c.reportError(serr)
		return serr
	}
	payload, err := json.Marshal(Frame{Event: event, Data: raw, Timestamp: time.Now().UTC()})
	if err != nil {
		serr := &SerializationError{Event: event, Err: err}
		c.reportError(serr)
		return serr
	}

	c.wmu.Lock()
	if opts.Timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(opts.Timeout))
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}
	err = conn.WriteMessage(websocket.TextMessage, payload)
	c.wmu.Unlock()
	if err != nil {
		terr := &TransportError{Op: "send", Err: err}
		c.reportError(terr)
		return terr
	}
	return nil
}

// On registers a handler for an event name. Handlers for the same event run
// in registration order.
func (c *Channel) On(event string, fn Handler) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.subs[event] = append(c.subs[event], subEntry{id: c.nextID, fn: fn})
	return Subscription{event: event, id: c.nextID}
}

// OnError registers a callback for background failures: heartbeat send
// errors, malformed inbound frames, unclean closes, reconnect exhaustion.
func (c *Channel) OnError(fn func(error)) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.errSubs = append(c.errSubs, errEntry{id: c.nextID, fn: fn})
	return Subscription{id: c.nextID, err: true}
}

// Off removes the handler identified by sub. Removing an already-removed
// subscription is a no-op.
func (c *Channel) Off(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub.err {
		for i, e := range c.errSubs {
			if e.id == sub.id {
				c.errSubs = append(c.errSubs[:i:i], c.errSubs[i+1:]...)
				return
			}
		}
		return
	}
	list := c.subs[sub.event]
	for i, e := range list {
		if e.id == sub.id {
			c.subs[sub.event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (c *Channel) readPump(conn Conn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, gen, err)
			return
		}
		var f Frame
		if uerr := json.Unmarshal(raw, &f); uerr != nil {
			c.reportError(&SerializationError{Err: uerr})
			continue
		}
		if f.Event == "" {
			c.reportError(&SerializationError{Err: errors.New("frame missing event name")})
			continue
		}
		c.dispatch(f)
	}
}

func (c *Channel) dispatch(f Frame) {
	c.mu.Lock()
	entries := append([]subEntry(nil), c.subs[f.Event]...)
	c.mu.Unlock()
	for _, e := range entries {
		e.fn(f.Event, f.Data)
	}
}

// handleClose runs when the read pump exits. A clean close (normal closure
// or explicit Disconnect) ends here; an unclean one starts the reconnection
// cycle, at most one at a time.
func (c *Channel) handleClose(conn Conn, gen int, err error) {
	c.mu.Lock()
	if c.gen != gen || c.conn != conn {
		// Explicit disconnect or a newer connection owns the state.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	if c.stopBeat != nil {
		close(c.stopBeat)
		c.stopBeat = nil
	}
	clean := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
	var cancel chan struct{}
	if !clean && !c.reconnecting && c.opts.MaxReconnectAttempts > 0 {
		c.reconnecting = true
		cancel = make(chan struct{})
		c.cancelRetry = cancel
	}
	c.mu.Unlock()

	_ = conn.Close()
	if !clean {
		c.reportError(&TransportError{Op: "read", Err: err})
	}
	if cancel != nil {
		go c.reconnectLoop(cancel)
	}
}

func (c *Channel) reconnectLoop(cancel <-chan struct{}) {
	for {
		c.mu.Lock()
		if !c.reconnecting {
			c.mu.Unlock()
			return
		}
		if c.attempts >= c.opts.MaxReconnectAttempts {
			c.reconnecting = false
			c.cancelRetry = nil
			limit := c.opts.MaxReconnectAttempts
			c.mu.Unlock()
			c.reportError(&MaxReconnectAttemptsError{Attempts: limit})
			return
		}
		delay := backoffDelay(c.opts.BaseDelay, c.opts.MaxDelay, c.attempts)
		c.attempts++
		c.mu.Unlock()

		select {
		case <-cancel:
			return
		case <-time.After(delay):
		}

		err := c.Connect(context.Background())
		if err == nil {
			// Connect cleared the cycle state under its own lock; a newer
			// cycle may already own the flags, so leave them alone here.
			return
		}
		var inv *InvalidStateError
		if errors.As(err, &inv) {
			// The caller connected or disconnected while we slept; either
			// path already reset the cycle state.
			return
		}
		c.reportError(err)
	}
}

func (c *Channel) heartbeat(stop <-chan struct{}) {
	t := time.NewTicker(c.opts.HeartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			// Send reports transport and encode failures itself; a
			// NotConnected race with a close needs no extra noise.
			_ = c.Send(c.opts.HeartbeatEvent, pingPayload{Type: "ping"}, SendOptions{})
		}
	}
}

func (c *Channel) reportError(err error) {
	c.mu.Lock()
	entries := append([]errEntry(nil), c.errSubs...)
	c.mu.Unlock()
	for _, e := range entries {
		e.fn(err)
	}
}
