package realtime

import (
	"encoding/json"
	"time"
)

// Frame is the wire format for every message on the channel, inbound and
// outbound: a JSON text frame with an application event name, an arbitrary
// payload, and an RFC 3339 timestamp.
type Frame struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type pingPayload struct {
	Type string `json:"type"`
}
