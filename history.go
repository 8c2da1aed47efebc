package main

import "sync"

// history keeps the most recent messages of a channel, oldest first.
type history struct {
	mu       sync.Mutex
	capacity int
	messages []Message
}

func newHistory(capacity int) *history {
	return &history{
		capacity: capacity,
		messages: make([]Message, 0, capacity),
	}
}

// append adds msg, evicts from the front past capacity and returns a copy of
// the resulting sequence.
func (h *history) append(msg Message) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	if over := len(h.messages) - h.capacity; over > 0 {
		n := copy(h.messages, h.messages[over:])
		clear(h.messages[n:])
		h.messages = h.messages[:n]
	}
	return h.copyLocked()
}

func (h *history) snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copyLocked()
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func (h *history) copyLocked() []Message {
	return append(make([]Message, 0, len(h.messages)), h.messages...)
}
