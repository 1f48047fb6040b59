package query

import (
	"context"
	"sort"
	"strings"

	"github.com/fedikit/fedicache/entities"
)

// BatchFetchFunc fetches the named entities in a single network call.
type BatchFetchFunc[E entities.Entity] func(ctx context.Context, ids []string) ([]E, error)

// FetchBatched returns a map id→entity for ids, issuing at most one batch
// request for the ids not already cached. This is the N+1 avoidance path for
// fan-out widgets like relationship badges on a list of accounts.
//
// When refetchAll is true, every id is refetched regardless of cache state
// (relationship freshness after a mutation).
func FetchBatched[E entities.Entity](ctx context.Context, c *Cache, typ entities.EntityType, ids []string, fetch BatchFetchFunc[E], refetchAll bool) (map[string]E, error) {
	var missing []string
	if refetchAll {
		missing = append(missing, ids...)
	} else {
		cached := c.store.GetMany(typ, ids)
		for _, id := range ids {
			if _, ok := cached[id]; !ok {
				missing = append(missing, id)
			}
		}
	}

	if len(missing) > 0 {
		// Stable key: concurrent widgets asking for the same id set share
		// one request.
		sorted := append([]string(nil), missing...)
		sort.Strings(sorted)
		key := Key(string(typ), "batch", strings.Join(sorted, ","))

		fetched, err := fetchShared(ctx, c, key, func(ctx context.Context) ([]E, error) {
			return fetch(ctx, missing)
		})
		if err != nil {
			return nil, err
		}
		for _, e := range fetched {
			c.store.ImportOne(typ, e)
		}
	}

	out := make(map[string]E, len(ids))
	for id, e := range c.store.GetMany(typ, ids) {
		if v, ok := e.(E); ok {
			out[id] = v
		}
	}
	return out, nil
}
