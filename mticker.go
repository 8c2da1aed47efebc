package main

import (
	"sync"
	"time"
)

// mTicker fans one time.Ticker out to every connection writer so that an
// idle server runs a single timer for keepalive pings instead of one per
// socket.
type mTicker struct {
	mux         sync.Mutex // Protects subscribers and stopped
	subscribers subscribers
	stopped     bool

	ticker *time.Ticker
	stopCh chan struct{}
}

type subscribers map[*subscriber]struct{}

type subscriber struct {
	tick chan time.Time
}

func newMTicker(interval time.Duration) *mTicker {
	t := &mTicker{
		subscribers: make(subscribers),
		ticker:      time.NewTicker(interval),
		stopCh:      make(chan struct{}),
	}
	go t.run()
	return t
}

// subscribe returns a subscriber whose channel receives ticks. Ticks that
// can't be delivered because the subscriber is busy are discarded. Once the
// ticker is stopped the returned channel is already closed.
func (t *mTicker) subscribe() *subscriber {
	t.mux.Lock()
	defer t.mux.Unlock()

	sub := &subscriber{tick: make(chan time.Time, 1)}
	if t.stopped {
		close(sub.tick)
		return sub
	}
	t.subscribers[sub] = struct{}{}
	return sub
}

func (t *mTicker) unsubscribe(sub *subscriber) {
	t.mux.Lock()
	defer t.mux.Unlock()

	if _, ok := t.subscribers[sub]; !ok {
		return
	}
	close(sub.tick)
	delete(t.subscribers, sub)
}

// stop halts the ticker and closes every subscribed channel.
func (t *mTicker) stop() {
	t.mux.Lock()
	defer t.mux.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	t.ticker.Stop()
	close(t.stopCh)
	for sub := range t.subscribers {
		close(sub.tick)
		delete(t.subscribers, sub)
	}
}

func (t *mTicker) len() int {
	t.mux.Lock()
	defer t.mux.Unlock()
	return len(t.subscribers)
}

func (t *mTicker) run() {
	for {
		select {
		case tick := <-t.ticker.C:
			t.mux.Lock()
			for sub := range t.subscribers {
				select {
				case sub.tick <- tick:
				default:
					incr("ticks.dropped", 1)
				}
			}
			t.mux.Unlock()
		case <-t.stopCh:
			return
		}
	}
}
