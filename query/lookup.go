package query

import (
	"context"
	"fmt"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// LookupEntity resolves an entity by a caller-supplied predicate instead of
// its id — typically an account by handle before the id is known. The store
// is scanned first; on a miss the fetch runs under single-flight keyed by
// lookupKey (e.g. "accounts/lookup/alice@example.social"), and the result is
// imported so subsequent lookups and id reads both hit.
func LookupEntity[E entities.Entity](ctx context.Context, c *Cache, typ entities.EntityType, lookupKey string, pred func(E) bool, fetch FetchFunc[E]) (E, error) {
	var zero E
	if e, ok := c.store.Find(typ, func(e entities.Entity) bool {
		v, ok := e.(E)
		return ok && pred(v)
	}); ok {
		hitsTotal.Inc()
		return e.(E), nil
	}
	missesTotal.Inc()

	v, err := fetchShared(ctx, c, lookupKey, func(ctx context.Context) (E, error) {
		e, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if e.EntityID() == "" {
			return zero, apierr.NewValidationError(string(typ), fmt.Errorf("entity with empty id"))
		}
		return e, nil
	})
	if err != nil {
		return zero, err
	}
	c.store.ImportOne(typ, v)
	c.setLocal(lookupKey, v)
	return v, nil
}
