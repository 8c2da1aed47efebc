package main

import (
	"context"
	"log/slog"
)

// Inbound messages an assisted session may hold while a reply is pending.
const pendingQueueSize = 16

// session drives one authenticated connection on one channel. A nil
// assistant makes it a plain relay.
type session struct {
	ch        *channel
	assistant *assistant
	conn      *connection
	log       *slog.Logger
}

// run blocks until the peer goes away. ctx bounds the assistant's work and
// outlives the connection, so a reply in flight still reaches the others.
func (s *session) run(ctx context.Context) {
	go s.conn.writer()

	s.conn.sock.armReader()

	if err := s.ch.subscribe(s.conn); err != nil {
		s.log.Debug("initial state not delivered", "error", err)
		s.conn.close()
		return
	}
	incr("websockets", 1)
	s.log.Debug("member joined", "members", s.ch.registry.len())
	defer func() {
		decr("websockets", 1)
		s.ch.unsubscribe(s.conn)
		s.conn.close()
	}()

	handle := func(text []byte) { s.handle(ctx, text) }
	if s.assistant != nil {
		if err := s.assistant.greet(ctx, s.conn); err != nil {
			return
		}
		// Replies are produced off the read loop so pongs keep being read
		// while the provider is slow.
		pending := make(chan []byte, pendingQueueSize)
		defer close(pending)
		go s.work(ctx, pending)
		handle = func(text []byte) { s.enqueue(pending, text) }
	}

	for {
		message, err := s.conn.readMessage()
		if err != nil {
			return
		}
		handle(message)
	}
}

// work handles queued messages in arrival order until pending is closed
// and drained.
func (s *session) work(ctx context.Context, pending <-chan []byte) {
	for message := range pending {
		s.handle(ctx, message)
	}
}

func (s *session) enqueue(pending chan<- []byte, message []byte) {
	select {
	case pending <- message:
	default:
		incr("messages.dropped", 1)
		s.log.Warn("message dropped, replies pending", "queued", len(pending))
	}
}

func (s *session) handle(ctx context.Context, data []byte) {
	sender, text, ok := decodeInbound(data)
	if !ok {
		return
	}
	var t tag
	if s.assistant != nil {
		t = tagUser
	}
	if err := s.ch.publish(newMessage(sender, text, t)); err != nil {
		s.log.Error("publish failed", "error", err)
		return
	}
	if s.assistant == nil {
		return
	}
	if err := s.assistant.respond(ctx, s.ch, text); err != nil {
		s.log.Error("assistant reply failed", "error", err)
	}
}
