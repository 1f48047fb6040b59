// Package store implements the normalized in-memory entity cache: one bucket
// per entity type, one entry per id, last-write-wins on import.
//
// The store is an explicit instance, not a package global. Applications hold
// one per identity and call Reset on logout or account switch; tests create
// as many as they need.
package store

import (
	"sync"

	"github.com/fedikit/fedicache/entities"
)

// bucket holds one entity type. order preserves first-insertion order so
// Find scans deterministically.
type bucket struct {
	order []string
	byID  map[string]entities.Entity
}

func newBucket() *bucket {
	return &bucket{byID: make(map[string]entities.Entity)}
}

func (b *bucket) put(e entities.Entity) {
	id := e.EntityID()
	if _, ok := b.byID[id]; !ok {
		b.order = append(b.order, id)
	}
	b.byID[id] = e
}

func (b *bucket) remove(id string) {
	if _, ok := b.byID[id]; !ok {
		return
	}
	delete(b.byID, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Store is the normalized entity cache. All methods are safe for concurrent
// use; none of them can fail and none touch the network.
type Store struct {
	mu      sync.RWMutex
	buckets map[entities.EntityType]*bucket
}

// New constructs an empty Store.
func New() *Store {
	return &Store{buckets: make(map[entities.EntityType]*bucket)}
}

func (s *Store) bucketFor(typ entities.EntityType) *bucket {
	b, ok := s.buckets[typ]
	if !ok {
		b = newBucket()
		s.buckets[typ] = b
	}
	return b
}

// Import upserts every entity into its type bucket. Embedded entities are
// split out via entities.Normalize and imported alongside. Importing the
// same entity twice is indistinguishable from importing it once.
func (s *Store) Import(byType map[entities.EntityType][]entities.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for typ, list := range byType {
		for _, e := range list {
			s.importOne(typ, e)
		}
	}
}

// ImportOne upserts a single entity and its embeds.
func (s *Store) ImportOne(typ entities.EntityType, e entities.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importOne(typ, e)
}

func (s *Store) importOne(typ entities.EntityType, e entities.Entity) {
	if e == nil || e.EntityID() == "" {
		return
	}
	flat, nested := entities.Normalize(typ, e)
	s.bucketFor(typ).put(flat)
	importsTotal.WithLabelValues(string(typ)).Inc()
	for _, t := range nested {
		if t.Entity == nil || t.Entity.EntityID() == "" {
			continue
		}
		s.bucketFor(t.Type).put(t.Entity)
		importsTotal.WithLabelValues(string(t.Type)).Inc()
	}
}

// Get returns the entity stored under (typ, id).
func (s *Store) Get(typ entities.EntityType, id string) (entities.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[typ]
	if !ok {
		return nil, false
	}
	e, ok := b.byID[id]
	return e, ok
}

// GetMany returns the subset of ids present in the typ bucket, keyed by id.
func (s *Store) GetMany(typ entities.EntityType, ids []string) map[string]entities.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]entities.Entity, len(ids))
	b, ok := s.buckets[typ]
	if !ok {
		return out
	}
	for _, id := range ids {
		if e, ok := b.byID[id]; ok {
			out[id] = e
		}
	}
	return out
}

// Find scans the typ bucket in insertion order and returns the first entity
// matching pred. Used for lookup by alternate key (an account by handle)
// before the id is known. O(n) over the in-memory set, which is bounded by
// what the consumer has loaded.
func (s *Store) Find(typ entities.EntityType, pred func(entities.Entity) bool) (entities.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[typ]
	if !ok {
		return nil, false
	}
	for _, id := range b.order {
		if e := b.byID[id]; pred(e) {
			return e, true
		}
	}
	return nil, false
}

// Delete removes (typ, id) outright. Most removal flows should prefer list
// dismissal at the query layer or MarkDeleted for statuses.
func (s *Store) Delete(typ entities.EntityType, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[typ]; ok {
		b.remove(id)
	}
}

// MarkDeleted tombstones a status in place instead of purging it, so UIs can
// render a placeholder. Non-status entities are removed.
func (s *Store) MarkDeleted(typ entities.EntityType, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[typ]
	if !ok {
		return
	}
	if st, ok := b.byID[id].(*entities.Status); ok {
		cp := *st
		cp.Deleted = true
		b.byID[id] = &cp
		tombstonesTotal.Inc()
		return
	}
	b.remove(id)
}

// Len reports the number of entities stored under typ.
func (s *Store) Len(typ entities.EntityType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.buckets[typ]; ok {
		return len(b.byID)
	}
	return 0
}

// Reset drops every bucket. Called on logout / account switch; responses of
// requests still in flight for the previous identity are discarded by the
// query layer's generation check, not here.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[entities.EntityType]*bucket)
	resetsTotal.Inc()
}
