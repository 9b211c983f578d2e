package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of a WebSocket connection the channel uses. Satisfied
// by *websocket.Conn.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer opens connections for a Channel.
type Dialer interface {
	Dial(ctx context.Context, endpoint string, header http.Header) (Conn, error)
}

type wsDialer struct {
	d *websocket.Dialer
}

func (w wsDialer) Dial(ctx context.Context, endpoint string, header http.Header) (Conn, error) {
	conn, resp, err := w.d.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	return conn, nil
}
