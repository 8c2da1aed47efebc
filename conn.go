package main

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

type connection struct {
	sock     socket
	send     chan []byte
	ticker   *mTicker
	identity identity

	mu     sync.Mutex // Protects closed and sends on send
	closed bool
}

func newConnection(sock socket, t *mTicker, id identity) *connection {
	return &connection{
		sock:     sock,
		send:     make(chan []byte, sendQueueSize),
		ticker:   t,
		identity: id,
	}
}

func (c *connection) deliver(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%w: connection closed", ErrDeliveryFailure)
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return fmt.Errorf("%w: send queue full", ErrDeliveryFailure)
	}
}

// close stops the writer after it has flushed what is already queued.
func (c *connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *connection) readMessage() ([]byte, error) {
	message, err := c.sock.read()
	if err != nil {
		return nil, err
	}
	incr("conn.recv", 1)
	return message, nil
}

// writer owns all writes to the socket until send is closed or a write fails.
func (c *connection) writer() {
	sub := c.ticker.subscribe()
	defer func() {
		c.ticker.unsubscribe(sub)
		c.sock.close()
	}()

	tick := sub.tick
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.sock.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.sock.write(websocket.TextMessage, message); err != nil {
				return
			}
			incr("conn.send", 1)
		case _, ok := <-tick:
			if !ok {
				// Ticker stopped; keep serving send without pings.
				tick = nil
				continue
			}
			if err := c.sock.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
