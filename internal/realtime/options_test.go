package realtime

import (
	"testing"
	"time"
)

func TestBackoffDelaySequence(t *testing.T) {
	base := time.Second
	max := 30 * time.Second
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for attempt, w := range want {
		if got := backoffDelay(base, max, attempt); got != w {
			t.Fatalf("backoffDelay(attempt=%d) = %s, want %s", attempt, got, w)
		}
	}
	for attempt := 5; attempt < 40; attempt += 7 {
		if got := backoffDelay(base, max, attempt); got != max {
			t.Fatalf("backoffDelay(attempt=%d) = %s, want clamp %s", attempt, got, max)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Endpoint: "ws://test"}.withDefaults()
	if o.ConnectTimeout != DefaultConnectTimeout {
		t.Fatalf("ConnectTimeout = %s, want %s", o.ConnectTimeout, DefaultConnectTimeout)
	}
	if o.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Fatalf("HeartbeatInterval = %s, want %s", o.HeartbeatInterval, DefaultHeartbeatInterval)
	}
	if o.HeartbeatEvent != DefaultHeartbeatEvent {
		t.Fatalf("HeartbeatEvent = %s, want %s", o.HeartbeatEvent, DefaultHeartbeatEvent)
	}
	if o.MaxReconnectAttempts != DefaultMaxReconnects {
		t.Fatalf("MaxReconnectAttempts = %d, want %d", o.MaxReconnectAttempts, DefaultMaxReconnects)
	}
	if o.QueueLimit != DefaultQueueLimit {
		t.Fatalf("QueueLimit = %d, want %d", o.QueueLimit, DefaultQueueLimit)
	}

	disabled := Options{Endpoint: "ws://test", MaxReconnectAttempts: -1}.withDefaults()
	if disabled.MaxReconnectAttempts != -1 {
		t.Fatalf("negative MaxReconnectAttempts rewritten to %d", disabled.MaxReconnectAttempts)
	}
}

func TestSendQueueFIFO(t *testing.T) {
	q := sendQueue{limit: 3}
	for i := 0; i < 3; i++ {
		if evicted := q.push(pendingSend{event: string(rune('a' + i))}); evicted {
			t.Fatalf("push %d evicted below the bound", i)
		}
	}
	if !q.push(pendingSend{event: "d"}) {
		t.Fatal("push at the bound did not evict")
	}
	drained := q.drain()
	if len(drained) != 3 {
		t.Fatalf("drained = %d, want 3", len(drained))
	}
	for i, want := range []string{"b", "c", "d"} {
		if drained[i].event != want {
			t.Fatalf("drained[%d] = %s, want %s", i, drained[i].event, want)
		}
	}
	if q.len() != 0 {
		t.Fatalf("len after drain = %d, want 0", q.len())
	}
}
