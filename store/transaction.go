package store

import (
	"sync"

	"github.com/fedikit/fedicache/entities"
)

// Changes names the entities a transaction touches: for each (type, id), a
// transform producing the replacement value. Transforms must treat their
// argument as immutable and return a modified copy; the engine relies on
// that to snapshot prior values for rollback.
type Changes map[entities.EntityType]map[string]func(entities.Entity) entities.Entity

// Transaction applies every transform synchronously. Ids not present in the
// store are skipped. Transaction itself cannot fail; it performs no I/O.
func (s *Store) Transaction(changes Changes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(changes, nil)
}

func (s *Store) apply(changes Changes, saved *[]savedEntity) {
	for typ, byID := range changes {
		b, ok := s.buckets[typ]
		if !ok {
			continue
		}
		for id, fn := range byID {
			prev, ok := b.byID[id]
			if !ok {
				continue
			}
			next := fn(prev)
			if next == nil {
				continue
			}
			if saved != nil {
				*saved = append(*saved, savedEntity{typ: typ, id: id, prev: prev})
			}
			b.byID[id] = next
		}
	}
}

type savedEntity struct {
	typ  entities.EntityType
	id   string
	prev entities.Entity
}

// Rollback undoes one optimistic mutation. Rollback is idempotent; calling
// it after the request succeeded is the caller's bug, so don't.
type Rollback struct {
	st    *Store
	once  sync.Once
	saved []savedEntity
}

// OptimisticMutate applies changes immediately and returns a handle whose
// Rollback restores the exact prior values of every entity the forward
// mutation touched. This replaces the convention of hand-writing a textually
// inverse transaction at every call site: the caller mutates, fires the
// request, and invokes Rollback in the failure branch only.
func (s *Store) OptimisticMutate(changes Changes) *Rollback {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Rollback{st: s}
	s.apply(changes, &r.saved)
	return r
}

// Rollback restores the snapshots taken by OptimisticMutate, exactly once.
func (r *Rollback) Rollback() {
	r.once.Do(func() {
		r.st.mu.Lock()
		defer r.st.mu.Unlock()
		// Restore in reverse application order.
		for i := len(r.saved) - 1; i >= 0; i-- {
			sv := r.saved[i]
			if b, ok := r.st.buckets[sv.typ]; ok {
				if _, still := b.byID[sv.id]; still {
					b.byID[sv.id] = sv.prev
				}
			}
		}
		rollbacksTotal.Inc()
	})
}
