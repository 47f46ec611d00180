// Package stores holds the client-side state containers: the last fetched
// snapshot of a resource, loading/error flags, and the actions that call
// the service façade and refresh the snapshot.
//
// Stores are plain values built with their constructors and handed to
// whatever needs them. Snapshots returned by State share slices with the
// store; treat them as read-only.
package stores

import "sync"

type container[S any] struct {
	mu    sync.RWMutex
	state S
	subs  []subscriber[S]
	next  int
}

type subscriber[S any] struct {
	id int
	fn func(S)
}

func (c *container[S]) get() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// set applies fn under the lock and notifies subscribers outside it.
func (c *container[S]) set(fn func(*S)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.state
	subs := make([]subscriber[S], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
}

func (c *container[S]) subscribe(fn func(S)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	id := c.next
	c.subs = append(c.subs, subscriber[S]{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}
