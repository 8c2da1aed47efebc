package main

import (
	"sync"

	"github.com/samber/lo"
)

// member is anything a channel can push frames to.
type member interface {
	// deliver queues frame without blocking. An error wrapping
	// ErrDeliveryFailure means the member can no longer be written to.
	deliver(frame []byte) error
	close()
}

type members map[member]struct{}

// registry is the set of open connections of one channel.
type registry struct {
	mu      sync.Mutex
	members members
}

func newRegistry() *registry {
	return &registry{members: make(members)}
}

func (r *registry) join(m member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m] = struct{}{}
}

// leave reports whether m was a member.
func (r *registry) leave(m member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m]; !ok {
		return false
	}
	delete(r.members, m)
	return true
}

// snapshot copies the current members. Joins and leaves that happen while
// the caller iterates the copy are not reflected in it.
func (r *registry) snapshot() []member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Keys(r.members)
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
