package main

import (
	"log/slog"
	"sync"
)

// channel is one relay topic: its members and its history.
type channel struct {
	name     string
	registry *registry
	history  *history
	log      *slog.Logger

	// Serializes history changes with the broadcasts they trigger, so every
	// member sees state frames in the order the history grew.
	publishMu sync.Mutex
}

type channels map[string]*channel

func newChannel(name string, log *slog.Logger) *channel {
	return &channel{
		name:     name,
		registry: newRegistry(),
		history:  newHistory(historyCapacity),
		log:      log.With("channel", name),
	}
}

// subscribe adds m and sends it the current history. Holding publishMu
// keeps a concurrent publish from slipping between the two.
func (c *channel) subscribe(m member) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	frame, err := encodeState(c.history.snapshot())
	if err != nil {
		return err
	}
	c.registry.join(m)
	if err := m.deliver(frame); err != nil {
		c.evict(m, err)
		return err
	}
	return nil
}

func (c *channel) unsubscribe(m member) {
	if c.registry.leave(m) {
		c.log.Debug("member left", "members", c.registry.len())
	}
}

// publish appends msg and pushes the full history to every member.
func (c *channel) publish(msg Message) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	frame, err := encodeState(c.history.append(msg))
	if err != nil {
		return err
	}
	incr("messages."+c.name, 1)
	c.broadcast(frame)
	return nil
}

func (c *channel) announce(s status) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	frame, err := encodeStatus(s)
	if err != nil {
		return err
	}
	c.broadcast(frame)
	return nil
}

// broadcast delivers frame to a snapshot of the registry and evicts every
// member whose delivery fails. It returns the number of successful
// deliveries.
func (c *channel) broadcast(frame []byte) int {
	delivered := 0
	for _, m := range c.registry.snapshot() {
		if err := m.deliver(frame); err != nil {
			c.evict(m, err)
			continue
		}
		delivered++
	}
	return delivered
}

func (c *channel) evict(m member, reason error) {
	if !c.registry.leave(m) {
		return
	}
	m.close()
	incr("conn.evicted", 1)
	c.log.Info("member evicted", "reason", reason, "members", c.registry.len())
}

// closeAll disconnects every member, used on shutdown.
func (c *channel) closeAll() {
	for _, m := range c.registry.snapshot() {
		c.registry.leave(m)
		m.close()
	}
}
