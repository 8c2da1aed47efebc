package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Deadline for any single write, pings and close frames included.
	writeWait = 10 * time.Second

	// A peer that neither sends nor answers a ping for this long is gone.
	pongWait = 30 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Inbound frames above this size end the connection.
	maxFrameSize = 4096
)

// socket is the part of *websocket.Conn a connection needs. Tests drive
// connections through a fake.
type socket interface {
	armReader()
	read() ([]byte, error)
	write(messageType int, payload []byte) error
	reject(code int, reason string) error
	close()
}

type wsSocket struct {
	conn     *websocket.Conn
	pongWait time.Duration
}

// armReader caps inbound frames and starts the keepalive deadline, which
// every pong pushes back.
func (s wsSocket) armReader() {
	s.conn.SetReadLimit(maxFrameSize)
	s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})
}

func (s wsSocket) read() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

func (s wsSocket) write(messageType int, payload []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, payload)
}

// reject sends a close frame with code. The caller still has to close.
func (s wsSocket) reject(code int, reason string) error {
	return s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
}

func (s wsSocket) close() {
	s.conn.Close()
}
