// Package realtime maintains one logical event stream over a WebSocket.
//
// A Channel owns its connection lifecycle: dial with timeout, periodic
// heartbeat, automatic reconnection with exponential backoff, and a bounded
// queue for messages sent while disconnected. Inbound frames are dispatched
// to handlers registered per event name, in registration order.
//
// Background failures (heartbeat, malformed frames, reconnect exhaustion)
// are reported through OnError callbacks; Connect and Send return their
// errors directly to the caller.
package realtime
