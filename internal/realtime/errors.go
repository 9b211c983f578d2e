package realtime

import (
	"fmt"
	"time"
)

// InvalidStateError reports an operation attempted in a state that does not
// allow it, e.g. Connect while already connected.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("realtime: %s not allowed in state %s", e.Op, e.State)
}

// NotConnectedError reports a Send attempted while the channel was not
// connected. Queued indicates the message was retained for the next flush;
// either way the message was not delivered.
type NotConnectedError struct {
	Event  string
	Queued bool
}

func (e *NotConnectedError) Error() string {
	if e.Queued {
		return fmt.Sprintf("realtime: not connected, %q queued for retry", e.Event)
	}
	return fmt.Sprintf("realtime: not connected, %q dropped", e.Event)
}

// TransportError wraps a socket-level failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("realtime: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConnectionTimeoutError reports a dial that did not complete in time.
type ConnectionTimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *ConnectionTimeoutError) Error() string {
	return fmt.Sprintf("realtime: connect to %s timed out after %s", e.Endpoint, e.Timeout)
}

// MaxReconnectAttemptsError reports an exhausted reconnection cycle. The
// channel stays disconnected until the caller connects again.
type MaxReconnectAttemptsError struct {
	Attempts int
}

func (e *MaxReconnectAttemptsError) Error() string {
	return fmt.Sprintf("realtime: gave up after %d reconnect attempts", e.Attempts)
}

// SerializationError reports a payload that could not be encoded or an
// inbound frame that could not be parsed.
type SerializationError struct {
	Event string
	Err   error
}

func (e *SerializationError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("realtime: encode %q: %v", e.Event, e.Err)
	}
	return fmt.Sprintf("realtime: bad inbound frame: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
