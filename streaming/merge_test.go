package streaming

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/fedikit/fedicache/entities"
	"github.com/fedikit/fedicache/query"
	"github.com/fedikit/fedicache/store"
)

func newTestMerge(t *testing.T) (*Merge, *query.Cache) {
	t.Helper()
	c := query.NewCache(store.New())
	m := NewMerge(c)
	t.Cleanup(func() { _ = m.Close() })
	return m, c
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func primedFeed(t *testing.T, c *query.Cache, key string, ids ...string) *query.InfiniteQuery[*entities.Status] {
	t.Helper()
	q := query.NewInfinite(c, key, entities.TypeStatus, func(ctx context.Context, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
		items := make([]*entities.Status, len(ids))
		for i, id := range ids {
			items[i] = &entities.Status{ID: id}
		}
		return entities.Page[*entities.Status]{Items: items}, nil
	})
	if err := q.FetchInitial(context.Background()); err != nil {
		t.Fatalf("prime feed: %v", err)
	}
	return q
}

func TestMerge_CreateImportsAndInserts(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)
	feed := primedFeed(t, c, "home", "s1", "s2")
	m.BindFeed("user", "home")

	st := &entities.Status{ID: "s3", Content: "live", Account: &entities.Account{ID: "a1"}}
	err := m.Apply("user", Event{Op: OpCreate, EntityType: entities.TypeStatus, Payload: mustRaw(t, st)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !reflect.DeepEqual(feed.IDs(), []string{"s3", "s1", "s2"}) {
		t.Fatalf("create must prepend to the bound feed: %v", feed.IDs())
	}
	if _, ok := c.Store().Get(entities.TypeAccount, "a1"); !ok {
		t.Fatal("embedded author must be imported")
	}
}

func TestMerge_ReplayedCreateDedupes(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)
	feed := primedFeed(t, c, "home", "s1", "s2")
	m.BindFeed("user", "home")

	// After a reconnect the server replays an event for an id already on the
	// first page; the feed must not grow.
	ev := Event{Op: OpCreate, EntityType: entities.TypeStatus, Payload: mustRaw(t, &entities.Status{ID: "s1"})}
	if err := m.Apply("user", ev); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := m.Apply("user", ev); err != nil {
		t.Fatalf("replay: %v", err)
	}

	if !reflect.DeepEqual(feed.IDs(), []string{"s1", "s2"}) {
		t.Fatalf("replayed event must collapse: %v", feed.IDs())
	}
}

func TestMerge_UpdateDoesNotInsert(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)
	feed := primedFeed(t, c, "home", "s1")
	m.BindFeed("user", "home")

	err := m.Apply("user", Event{
		Op:         OpUpdate,
		EntityType: entities.TypeStatus,
		Payload:    mustRaw(t, &entities.Status{ID: "s9", Content: "edited"}),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !reflect.DeepEqual(feed.IDs(), []string{"s1"}) {
		t.Fatalf("update must not splice into the feed: %v", feed.IDs())
	}
	got, ok := c.Store().Get(entities.TypeStatus, "s9")
	if !ok || got.(*entities.Status).Content != "edited" {
		t.Fatal("update must still import the entity")
	}
}

func TestMerge_DeleteSplicesAndTombstones(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)
	feed := primedFeed(t, c, "home", "s1", "s2")

	err := m.Apply("user", Event{Op: OpDelete, EntityType: entities.TypeStatus, Payload: mustRaw(t, "s1")})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !reflect.DeepEqual(feed.IDs(), []string{"s2"}) {
		t.Fatalf("delete must splice the feed: %v", feed.IDs())
	}
	got, ok := c.Store().Get(entities.TypeStatus, "s1")
	if !ok || !got.(*entities.Status).Deleted {
		t.Fatal("deleted status must be tombstoned in place")
	}
}

func TestMerge_DeleteObjectPayload(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)
	c.Store().ImportOne(entities.TypeStatus, &entities.Status{ID: "s1"})

	err := m.Apply("user", Event{
		Op:         OpDelete,
		EntityType: entities.TypeStatus,
		Payload:    json.RawMessage(`{"id":"s1"}`),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got, _ := c.Store().Get(entities.TypeStatus, "s1")
	if !got.(*entities.Status).Deleted {
		t.Fatal("object-form delete payload not handled")
	}
}

func TestMerge_MalformedPayloadDropped(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)

	err := m.Apply("user", Event{
		Op:         OpCreate,
		EntityType: entities.TypeStatus,
		Payload:    json.RawMessage(`{"id":`),
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if c.Store().Len(entities.TypeStatus) != 0 {
		t.Fatal("malformed payload must never reach the store")
	}

	err = m.Apply("user", Event{
		Op:         OpCreate,
		EntityType: entities.TypeStatus,
		Payload:    json.RawMessage(`{"id":""}`),
	})
	if err == nil {
		t.Fatal("empty-id payload must be rejected")
	}
}

func TestMerge_UnknownOpDropped(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)

	err := m.Apply("user", Event{Op: "rename", EntityType: entities.TypeStatus, Payload: mustRaw(t, &entities.Status{ID: "s1"})})
	if err != nil {
		t.Fatalf("unknown op must be dropped silently, got %v", err)
	}
	if c.Store().Len(entities.TypeStatus) != 0 {
		t.Fatal("unknown op must not write")
	}
}

func TestMerge_UnknownEntityTypeDropped(t *testing.T) {
	t.Parallel()
	m, _ := newTestMerge(t)

	err := m.Apply("user", Event{Op: OpCreate, EntityType: "polls", Payload: json.RawMessage(`{"id":"p1"}`)})
	if err == nil {
		t.Fatal("unknown entity type must be reported")
	}
}

func TestMerge_QueuedOrdering(t *testing.T) {
	t.Parallel()
	m, c := newTestMerge(t)
	feed := primedFeed(t, c, "home")
	m.BindFeed("user", "home")

	// Enqueue a burst; after the barrier, the feed must hold them in exact
	// reverse receipt order (each create prepends).
	for _, id := range []string{"s1", "s2", "s3"} {
		ev := Event{Op: OpCreate, EntityType: entities.TypeStatus, Payload: mustRaw(t, &entities.Status{ID: id})}
		if err := m.enqueue(context.Background(), "user", func(context.Context) error {
			return m.Apply("user", ev)
		}); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}

	if err := m.Flush(context.Background(), "user"); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !reflect.DeepEqual(feed.IDs(), []string{"s3", "s2", "s1"}) {
		t.Fatalf("receipt order not preserved: %v", feed.IDs())
	}
}
