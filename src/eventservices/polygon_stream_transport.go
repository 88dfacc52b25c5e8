package eventservices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGracePeriod = time.Second

// StreamConn is a message-oriented connection to the market data provider.
// Close must be safe to call more than once and from another goroutine, and must
// unblock a pending ReadMessage.
type StreamConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	SetReadDeadline(t time.Time) error
	Close() error
}

type StreamDialer interface {
	Dial(ctx context.Context, url string) (StreamConn, error)
}

type WebsocketStreamDialer struct {
	dialer *websocket.Dialer
}

func NewWebsocketStreamDialer(handshakeTimeout time.Duration) *WebsocketStreamDialer {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = handshakeTimeout

	return &WebsocketStreamDialer{
		dialer: &dialer,
	}
}

func (d *WebsocketStreamDialer) Dial(ctx context.Context, url string) (StreamConn, error) {
	c, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("WebsocketStreamDialer: failed to dial %s: %w", url, err)
	}

	if c == nil {
		return nil, fmt.Errorf("WebsocketStreamDialer: failed to connect to websocket server: connection is nil")
	}

	return &websocketStreamConn{conn: c}, nil
}

type websocketStreamConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (c *websocketStreamConn) ReadMessage() ([]byte, error) {
	_, message, err := c.conn.ReadMessage()
	return message, err
}

func (c *websocketStreamConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *websocketStreamConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close sends a close frame, bounded by closeGracePeriod, then releases the socket.
func (c *websocketStreamConn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		c.closeErr = c.conn.Close()
	})

	return c.closeErr
}
