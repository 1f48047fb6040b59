package query

import (
	"context"
	"fmt"

	"github.com/fedikit/fedicache/internal/apierr"
	"github.com/fedikit/fedicache/entities"
)

// Mutations wrap a single network call and reconcile the caches on success.
// Unlike fetches they surface the error directly to the caller — UI code
// handles it (toast, revert) — and perform no automatic rollback; rollback
// belongs to the optimistic helpers built on store.OptimisticMutate.

// CreateEntity runs call, imports the result and, when listKey names a
// registered list, prepends the new id to it.
func CreateEntity[E entities.Entity](ctx context.Context, c *Cache, typ entities.EntityType, listKey string, call FetchFunc[E]) (E, error) {
	var zero E
	e, err := call(ctx)
	if err != nil {
		return zero, err
	}
	if e.EntityID() == "" {
		return zero, apierr.NewValidationError(string(typ), fmt.Errorf("entity with empty id"))
	}
	c.store.ImportOne(typ, e)
	if listKey != "" {
		c.PrependToList(listKey, e.EntityID())
	}
	mutationsTotal.WithLabelValues("create").Inc()
	return e, nil
}

// DeleteEntity runs call and, on success, splices id out of every list
// projection and removes the entity — statuses are tombstoned in place so
// consumers can render a placeholder instead of a gap.
func DeleteEntity(ctx context.Context, c *Cache, typ entities.EntityType, id string, call func(ctx context.Context) error) error {
	if err := call(ctx); err != nil {
		return err
	}
	c.RemoveFromLists(id)
	c.store.MarkDeleted(typ, id)
	mutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

// DismissEntity runs call and, on success, removes id from list projections
// only — the entity itself stays cached. This is the "remove from pending
// queue" semantic used for processed follow requests and dismissed
// notifications.
func DismissEntity(ctx context.Context, c *Cache, id string, call func(ctx context.Context) error) error {
	if err := call(ctx); err != nil {
		return err
	}
	c.RemoveFromLists(id)
	mutationsTotal.WithLabelValues("dismiss").Inc()
	return nil
}
