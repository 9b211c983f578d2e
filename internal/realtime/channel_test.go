package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type readResult struct {
	data []byte
	err  error
}

type fakeConn struct {
	mu        sync.Mutex
	writes    [][]byte
	reads     chan readResult
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads: make(chan readResult, 16),
		done:  make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case r := <-f.reads:
		if r.err != nil {
			return 0, nil, r.err
		}
		return websocket.TextMessage, r.data, nil
	case <-f.done:
		return 0, nil, errors.New("fake: connection closed")
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

// sentFrames decodes recorded writes, skipping the close frame Disconnect
// appends.
func (f *fakeConn) sentFrames() []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Frame
	for _, w := range f.writes {
		var fr Frame
		if err := json.Unmarshal(w, &fr); err == nil && fr.Event != "" {
			out = append(out, fr)
		}
	}
	return out
}

type fakeDialer struct {
	mu    sync.Mutex
	dials int
	conns []*fakeConn
	dial  func(n int) (*fakeConn, error)
}

func (d *fakeDialer) Dial(context.Context, string, http.Header) (Conn, error) {
	d.mu.Lock()
	n := d.dials
	d.dials++
	d.mu.Unlock()
	conn, err := d.dial(n)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func newTestChannel(opts Options, dial func(n int) (*fakeConn, error)) (*Channel, *fakeDialer) {
	c := NewChannel(opts)
	d := &fakeDialer{dial: dial}
	c.dialer = d
	return c, d
}

func alwaysConn() func(n int) (*fakeConn, error) {
	return func(int) (*fakeConn, error) { return newFakeConn(), nil }
}

type errLog struct {
	mu   sync.Mutex
	errs []error
}

func (l *errLog) add(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *errLog) countMaxReconnect() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, err := range l.errs {
		var m *MaxReconnectAttemptsError
		if errors.As(err, &m) {
			n++
		}
	}
	return n
}

func (l *errLog) hasSerialization() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, err := range l.errs {
		var s *SerializationError
		if errors.As(err, &s) {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, d time.Duration, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConnectRejectsWhenNotDisconnected(t *testing.T) {
	c, d := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	err := c.Connect(context.Background())
	var inv *InvalidStateError
	if !errors.As(err, &inv) {
		t.Fatalf("second connect error = %v, want InvalidStateError", err)
	}
	if inv.State != StateConnected {
		t.Fatalf("error state = %s, want connected", inv.State)
	}
	if d.dialCount() != 1 {
		t.Fatalf("dials = %d, want 1 (rejected connect must not dial)", d.dialCount())
	}
	_ = c.Disconnect()
}

func TestConnectDialFailure(t *testing.T) {
	c, _ := newTestChannel(Options{Endpoint: "ws://test"}, func(int) (*fakeConn, error) {
		return nil, errors.New("refused")
	})
	err := c.Connect(context.Background())
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("connect error = %v, want TransportError", err)
	}
	if got := c.State(); got != StateDisconnected {
		t.Fatalf("state = %s, want disconnected", got)
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	c, _ := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())

	err := c.Send("doc.created", map[string]string{"id": "1"}, SendOptions{})
	var nc *NotConnectedError
	if !errors.As(err, &nc) || nc.Queued {
		t.Fatalf("send error = %v, want NotConnectedError without queueing", err)
	}
	if c.QueueLen() != 0 {
		t.Fatalf("queue len = %d, want 0", c.QueueLen())
	}

	err = c.Send("doc.created", map[string]string{"id": "2"}, SendOptions{Retry: true})
	if !errors.As(err, &nc) || !nc.Queued {
		t.Fatalf("retry send error = %v, want NotConnectedError with Queued", err)
	}
	if c.QueueLen() != 1 {
		t.Fatalf("queue len = %d, want 1", c.QueueLen())
	}
}

func TestPendingQueueEvictsOldest(t *testing.T) {
	c, _ := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())
	for i := 1; i <= DefaultQueueLimit+1; i++ {
		_ = c.Send(fmt.Sprintf("evt-%d", i), nil, SendOptions{Retry: true})
	}
	if c.QueueLen() != DefaultQueueLimit {
		t.Fatalf("queue len = %d, want %d", c.QueueLen(), DefaultQueueLimit)
	}
	c.mu.Lock()
	first := c.pending.items[0].event
	last := c.pending.items[len(c.pending.items)-1].event
	c.mu.Unlock()
	if first != "evt-2" {
		t.Fatalf("queue head = %s, want evt-2 (evt-1 evicted)", first)
	}
	if last != fmt.Sprintf("evt-%d", DefaultQueueLimit+1) {
		t.Fatalf("queue tail = %s, want evt-%d", last, DefaultQueueLimit+1)
	}
}

func TestFlushOrderOnConnect(t *testing.T) {
	c, d := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())
	for i := 1; i <= 3; i++ {
		_ = c.Send(fmt.Sprintf("evt-%d", i), map[string]int{"seq": i}, SendOptions{Retry: true})
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	frames := d.conns[0].sentFrames()
	if len(frames) != 3 {
		t.Fatalf("sent frames = %d, want 3", len(frames))
	}
	for i, f := range frames {
		want := fmt.Sprintf("evt-%d", i+1)
		if f.Event != want {
			t.Fatalf("frame[%d].event = %s, want %s", i, f.Event, want)
		}
	}
	if c.QueueLen() != 0 {
		t.Fatalf("queue len after flush = %d, want 0", c.QueueLen())
	}
	_ = c.Disconnect()
}

func TestSendFrameShape(t *testing.T) {
	c, d := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Send("queue.updated", map[string]string{"id": "d1"}, SendOptions{}); err != nil {
		t.Fatalf("send: %v", err)
	}
	frames := d.conns[0].sentFrames()
	if len(frames) != 1 {
		t.Fatalf("sent frames = %d, want 1", len(frames))
	}
	f := frames[0]
	if f.Event != "queue.updated" {
		t.Fatalf("event = %s, want queue.updated", f.Event)
	}
	if f.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
	var payload map[string]string
	if err := json.Unmarshal(f.Data, &payload); err != nil || payload["id"] != "d1" {
		t.Fatalf("data = %s (err %v), want {\"id\":\"d1\"}", f.Data, err)
	}
	_ = c.Disconnect()
}

func TestDisconnectIdempotent(t *testing.T) {
	c, _ := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())
	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect while down: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if got := c.State(); got != StateDisconnected {
		t.Fatalf("state = %s, want disconnected", got)
	}
}

func TestHeartbeatPing(t *testing.T) {
	c, d := newTestChannel(Options{Endpoint: "ws://test", HeartbeatInterval: 5 * time.Millisecond}, alwaysConn())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Disconnect()

	waitFor(t, 2*time.Second, func() bool {
		for _, f := range d.conns[0].sentFrames() {
			if f.Event == DefaultHeartbeatEvent {
				var p pingPayload
				return json.Unmarshal(f.Data, &p) == nil && p.Type == "ping"
			}
		}
		return false
	}, "heartbeat ping frame")
}

func TestDispatchOrderAndOff(t *testing.T) {
	c, d := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())

	var mu sync.Mutex
	var got []string
	subA := c.On("doc.updated", func(string, json.RawMessage) {
		mu.Lock()
		got = append(got, "a")
		mu.Unlock()
	})
	c.On("doc.updated", func(string, json.RawMessage) {
		mu.Lock()
		got = append(got, "b")
		mu.Unlock()
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Disconnect()

	frame, _ := json.Marshal(Frame{Event: "doc.updated", Data: json.RawMessage(`{}`), Timestamp: time.Now()})
	d.conns[0].reads <- readResult{data: frame}
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, "both handlers")
	mu.Lock()
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("dispatch order = %v, want [a b]", got)
	}
	mu.Unlock()

	c.Off(subA)
	d.conns[0].reads <- readResult{data: frame}
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, "remaining handler")
	mu.Lock()
	if got[2] != "b" {
		t.Fatalf("post-Off dispatch = %v, want b only", got[2:])
	}
	mu.Unlock()
}

func TestMalformedInboundReported(t *testing.T) {
	c, d := newTestChannel(Options{Endpoint: "ws://test"}, alwaysConn())
	log := &errLog{}
	c.OnError(log.add)

	var mu sync.Mutex
	delivered := 0
	c.On("doc.updated", func(string, json.RawMessage) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Disconnect()

	d.conns[0].reads <- readResult{data: []byte("{not json")}
	waitFor(t, 2*time.Second, log.hasSerialization, "serialization error")

	frame, _ := json.Marshal(Frame{Event: "doc.updated", Data: json.RawMessage(`{}`), Timestamp: time.Now()})
	d.conns[0].reads <- readResult{data: frame}
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 1
	}, "valid frame after malformed one")
}

func TestReconnectAfterUncleanClose(t *testing.T) {
	c, d := newTestChannel(Options{
		Endpoint:             "ws://test",
		BaseDelay:            2 * time.Millisecond,
		MaxReconnectAttempts: 5,
	}, alwaysConn())

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Disconnect()

	d.conns[0].reads <- readResult{err: errors.New("connection reset")}
	waitFor(t, 2*time.Second, func() bool {
		return d.dialCount() == 2 && c.State() == StateConnected
	}, "reconnect")

	c.mu.Lock()
	attempts := c.attempts
	c.mu.Unlock()
	if attempts != 0 {
		t.Fatalf("attempts after successful reconnect = %d, want 0", attempts)
	}
}

func TestReconnectRestartsAfterRecoveredConnDies(t *testing.T) {
	// Every dialed connection fails on its first read. Each successful
	// redial resets the attempt budget and must leave the cycle state
	// cleared before its read pump can die, so the channel keeps opening
	// fresh cycles instead of stalling after the first recovery.
	c, d := newTestChannel(Options{
		Endpoint:             "ws://test",
		BaseDelay:            time.Millisecond,
		MaxDelay:             2 * time.Millisecond,
		MaxReconnectAttempts: 3,
	}, func(int) (*fakeConn, error) {
		conn := newFakeConn()
		conn.reads <- readResult{err: errors.New("broken pipe")}
		return conn, nil
	})
	log := &errLog{}
	c.OnError(log.add)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return d.dialCount() >= 4 }, "repeated reconnect cycles")
	_ = c.Disconnect()

	if n := log.countMaxReconnect(); n != 0 {
		t.Fatalf("max-reconnect errors = %d, want 0 (budget resets on each recovery)", n)
	}
}

func TestReconnectExhaustion(t *testing.T) {
	c, d := newTestChannel(Options{
		Endpoint:             "ws://test",
		BaseDelay:            2 * time.Millisecond,
		MaxReconnectAttempts: 2,
	}, func(n int) (*fakeConn, error) {
		if n == 0 {
			return newFakeConn(), nil
		}
		return nil, errors.New("refused")
	})
	log := &errLog{}
	c.OnError(log.add)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	d.conns[0].reads <- readResult{err: errors.New("connection reset")}
	waitFor(t, 2*time.Second, func() bool {
		return log.countMaxReconnect() == 1
	}, "reconnect exhaustion error")

	if got := c.State(); got != StateDisconnected {
		t.Fatalf("state = %s, want disconnected", got)
	}
	if d.dialCount() != 3 {
		t.Fatalf("dials = %d, want 3 (initial + 2 retries)", d.dialCount())
	}

	// no further automatic attempts
	time.Sleep(50 * time.Millisecond)
	if d.dialCount() != 3 {
		t.Fatalf("dials after settle = %d, want 3", d.dialCount())
	}
	if log.countMaxReconnect() != 1 {
		t.Fatalf("exhaustion errors = %d, want exactly 1", log.countMaxReconnect())
	}
}

func TestDisconnectCancelsPendingReconnect(t *testing.T) {
	c, d := newTestChannel(Options{
		Endpoint:             "ws://test",
		BaseDelay:            500 * time.Millisecond,
		MaxReconnectAttempts: 5,
	}, alwaysConn())

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	d.conns[0].reads <- readResult{err: errors.New("connection reset")}
	waitFor(t, 2*time.Second, func() bool { return c.State() == StateDisconnected }, "unclean close")

	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if d.dialCount() != 1 {
		t.Fatalf("dials = %d, want 1 (backoff cancelled)", d.dialCount())
	}
	c.mu.Lock()
	reconnecting := c.reconnecting
	c.mu.Unlock()
	if reconnecting {
		t.Fatal("reconnect cycle still marked active after disconnect")
	}
}

func TestCleanCloseDoesNotReconnect(t *testing.T) {
	c, d := newTestChannel(Options{
		Endpoint:             "ws://test",
		BaseDelay:            2 * time.Millisecond,
		MaxReconnectAttempts: 5,
	}, alwaysConn())

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	d.conns[0].reads <- readResult{err: &websocket.CloseError{Code: websocket.CloseNormalClosure}}
	waitFor(t, 2*time.Second, func() bool { return c.State() == StateDisconnected }, "close")

	time.Sleep(30 * time.Millisecond)
	if d.dialCount() != 1 {
		t.Fatalf("dials = %d, want 1 (clean close must not reconnect)", d.dialCount())
	}
}
