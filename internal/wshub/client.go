package wshub

import (
	"context"

	"github.com/coder/websocket"

	"timingchallenge/internal/players"
)

const sendBuffer = 32

// Client is a single WebSocket connection and the player bound to it.
type Client struct {
	Player *players.Player
	conn   *websocket.Conn
	send   chan []byte
}

func newClient(p *players.Player, conn *websocket.Conn) *Client {
	return &Client{
		Player: p,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// WritePump drains the send channel onto the connection until the channel
// closes or the context ends.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}
