package realtime

import "time"

// Defaults applied by withDefaults for zero-valued Options fields.
const (
	DefaultConnectTimeout    = 5 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultHeartbeatEvent    = "connection.health"
	DefaultBaseDelay         = time.Second
	DefaultMaxDelay          = 30 * time.Second
	DefaultMaxReconnects     = 5
	DefaultQueueLimit        = 100
)

// Options configures a Channel. The struct is copied at construction; a
// Channel never reads it again from the caller, so one Options value can be
// reused across instances safely.
type Options struct {
	// Endpoint is the ws:// or wss:// URL to dial.
	Endpoint string
	// Token, when set, is sent as a bearer token at connect time.
	Token string

	ConnectTimeout    time.Duration
	HeartbeatInterval time.Duration
	// HeartbeatEvent is the event name carried by heartbeat frames.
	HeartbeatEvent string

	// BaseDelay and MaxDelay bound the reconnect backoff:
	// min(BaseDelay*2^attempt, MaxDelay).
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// MaxReconnectAttempts caps automatic reconnection after an unclean
	// close. Zero means the default; negative disables reconnection.
	MaxReconnectAttempts int

	// QueueLimit bounds the pending queue for Send with Retry. Oldest
	// entries are evicted first.
	QueueLimit int
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.HeartbeatEvent == "" {
		o.HeartbeatEvent = DefaultHeartbeatEvent
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.MaxReconnectAttempts == 0 {
		o.MaxReconnectAttempts = DefaultMaxReconnects
	}
	if o.QueueLimit <= 0 {
		o.QueueLimit = DefaultQueueLimit
	}
	return o
}

// backoffDelay returns the reconnect delay for the given attempt number
// (0-based), doubling from base and clamped at max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt > 30 {
		return max
	}
	d := base << uint(attempt)
	if d <= 0 || d > max {
		return max
	}
	return d
}
