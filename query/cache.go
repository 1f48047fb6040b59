// Package query is the fetch-orchestration layer between the REST client and
// the entity store: read-through single-entity queries, predicate lookups,
// batched fetches, cursor-driven infinite lists and mutations. It guarantees
// at most one in-flight request per cache key and discards responses that
// resolve after their consumer aborted or the identity changed.
package query

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fedikit/fedicache/store"
)

// Key joins an ordered tuple of strings into a cache key.
func Key(parts ...string) string { return strings.Join(parts, "/") }

// State is the per-key fetch state exposed to consumers instead of thrown
// errors: a failed background refresh keeps showing cached data while the
// flags tell the UI what went wrong.
type State struct {
	Loading      bool
	Err          error
	Unauthorized bool
	Forbidden    bool
	FetchedAt    time.Time
}

// listSplicer is how the cache addresses registered infinite queries without
// knowing their element type.
type listSplicer interface {
	PrependID(id string) bool
	RemoveID(id string) bool
	clear()
}

// Cache coordinates all queries against one identity's entity store. It has
// application lifetime and is reset on logout or account switch; requests
// still in flight for the previous identity fail the generation check on
// resolution and never write.
type Cache struct {
	store *store.Store
	group singleflight.Group

	gen atomic.Uint64

	mu     sync.Mutex
	states map[string]*State
	lists  map[string]listSplicer
	local  map[string]any // last fetched value per key, in case the store entry is evicted
}

// NewCache binds a Cache to st.
func NewCache(st *store.Store) *Cache {
	return &Cache{
		store:  st,
		states: make(map[string]*State),
		lists:  make(map[string]listSplicer),
		local:  make(map[string]any),
	}
}

// Store exposes the underlying entity store for read-only selectors.
func (c *Cache) Store() *store.Store { return c.store }

// State returns a snapshot of the fetch state for key.
func (c *Cache) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[key]; ok {
		return *s
	}
	return State{}
}

// Invalidate drops the cached state for key so the next query refetches.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, key)
	delete(c.local, key)
}

// Reset clears the query cache and the entity store. Every registered list
// is emptied and the generation bumped so in-flight responses are ignored.
func (c *Cache) Reset() {
	c.gen.Add(1)
	c.mu.Lock()
	c.states = make(map[string]*State)
	c.local = make(map[string]any)
	for _, l := range c.lists {
		l.clear()
	}
	c.mu.Unlock()
	c.store.Reset()
	resetsTotal.Inc()
}

// RemoveFromLists splices id out of every registered list projection. Used
// by dismiss mutations and streaming delete events.
func (c *Cache) RemoveFromLists(id string) {
	c.mu.Lock()
	ls := make([]listSplicer, 0, len(c.lists))
	for _, l := range c.lists {
		ls = append(ls, l)
	}
	c.mu.Unlock()
	for _, l := range ls {
		l.RemoveID(id)
	}
}

// PrependToList inserts id at the head of the named list if it is not
// already present anywhere in it. Reports whether an insert happened.
func (c *Cache) PrependToList(key, id string) bool {
	c.mu.Lock()
	l, ok := c.lists[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return l.PrependID(id)
}

func (c *Cache) registerList(key string, l listSplicer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[key] = l
}

func (c *Cache) setState(key string, mut func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[key]
	if !ok {
		s = &State{}
		c.states[key] = s
	}
	mut(s)
}

func (c *Cache) setLocal(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[key] = v
}

// Local returns the last value fetched under key, surviving store eviction.
func (c *Cache) Local(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.local[key]
	return v, ok
}

// generation returns the current identity generation.
func (c *Cache) generation() uint64 { return c.gen.Load() }
