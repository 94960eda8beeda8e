package share

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scratchview/internal/logx"
)

// Client is run by a peer joining a host's hub.
type Client struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}
	once sync.Once
}

// Dial connects to the hub at addr (host:port).
func Dial(ctx context.Context, addr string) (*Client, error) {
	url := "ws://" + addr + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c, nil
}

// Send queues msg for the hub. It never blocks; when the queue is full or
// the client is closed the message is dropped.
func (c *Client) Send(msg Message) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		logx.Logger().Warn("send queue full, message dropped", "type", msg.Type)
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				logx.Logger().Debug("write to host failed", "err", err)
				c.Close()
				return
			}
		}
	}
}

// Run reads messages from the hub and hands each valid one to deliver
// until the connection ends. It returns nil after Close.
func (c *Client) Run(deliver func(Message)) error {
	defer c.Close()
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read from host: %w", err)
		}
		if err := msg.Validate(); err != nil {
			logx.Logger().Debug("dropping message", "err", err)
			continue
		}
		deliver(msg)
	}
}

// Close ends the connection. It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}
