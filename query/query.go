package query

import (
	"context"
	"fmt"
	"time"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// FetchFunc performs one network request for a single entity.
type FetchFunc[E entities.Entity] func(ctx context.Context) (E, error)

// FetchOption tunes a single-entity query.
type FetchOption[E entities.Entity] func(*fetchConfig[E])

type fetchConfig[E entities.Entity] struct {
	refetch   bool
	transform func(E) E
}

// WithRefetch forces a network fetch even when the entity is cached.
func WithRefetch[E entities.Entity]() FetchOption[E] {
	return func(cfg *fetchConfig[E]) { cfg.refetch = true }
}

// WithTransform applies fn to the fetched entity before it is stored.
func WithTransform[E entities.Entity](fn func(E) E) FetchOption[E] {
	return func(cfg *fetchConfig[E]) { cfg.transform = fn }
}

// FetchEntity is the single-entity read-through: return the stored value if
// present, otherwise fetch exactly once per key even under concurrent
// callers, validate, transform, import and return.
//
// A response resolving after ctx was cancelled or after Reset never writes
// to the store; the caller gets ctx.Err() or ErrStale instead.
func FetchEntity[E entities.Entity](ctx context.Context, c *Cache, typ entities.EntityType, id string, fetch FetchFunc[E], opts ...FetchOption[E]) (E, error) {
	var zero E
	var cfg fetchConfig[E]
	for _, opt := range opts {
		opt(&cfg)
	}

	key := Key(string(typ), id)
	if !cfg.refetch {
		if e, ok := c.store.Get(typ, id); ok {
			if v, ok := e.(E); ok {
				hitsTotal.Inc()
				return v, nil
			}
		}
	}
	missesTotal.Inc()

	v, err := fetchShared(ctx, c, key, func(ctx context.Context) (E, error) {
		e, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if e.EntityID() == "" {
			return zero, apierr.NewValidationError(string(typ), fmt.Errorf("entity with empty id"))
		}
		if cfg.transform != nil {
			e = cfg.transform(e)
		}
		return e, nil
	})
	if err != nil {
		return zero, err
	}
	c.store.ImportOne(typ, v)
	c.setLocal(key, v)
	return v, nil
}

// ErrStale is returned when a response resolved after the cache was reset
// for a new identity. The response is discarded.
var ErrStale = fmt.Errorf("response discarded: cache was reset while the request was in flight")

// fetchShared runs fn under the per-key single-flight group, maintains the
// key's State, and enforces the abort and generation guards before the
// result may be used.
func fetchShared[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	gen := c.generation()
	c.setState(key, func(s *State) {
		s.Loading = true
	})

	res, err, shared := c.group.Do(key, func() (any, error) {
		return fn(ctx)
	})
	if shared {
		dedupedTotal.Inc()
	}

	// A response nobody wants anymore must not mutate shared state.
	if cerr := ctx.Err(); cerr != nil {
		c.setState(key, func(s *State) { s.Loading = false })
		return zero, cerr
	}
	if c.generation() != gen {
		return zero, ErrStale
	}

	c.setState(key, func(s *State) {
		s.Loading = false
		s.Err = err
		s.Unauthorized = apierr.IsUnauthorized(err)
		s.Forbidden = apierr.IsForbidden(err)
		if err == nil {
			s.FetchedAt = time.Now()
		}
	})
	if err != nil {
		errorsTotal.Inc()
		return zero, err
	}
	return res.(T), nil
}

// GetCached returns the stored entity under (typ, id) typed as E, falling
// back to the query's local copy if the store entry was evicted.
func GetCached[E entities.Entity](c *Cache, typ entities.EntityType, id string) (E, bool) {
	var zero E
	if e, ok := c.store.Get(typ, id); ok {
		if v, ok := e.(E); ok {
			return v, true
		}
	}
	if v, ok := c.Local(Key(string(typ), id)); ok {
		if e, ok := v.(E); ok {
			return e, true
		}
	}
	return zero, false
}
