package query

import (
	"context"
	"sync"

	"github.com/fedikit/fedicache/entities"
	"github.com/fedikit/fedicache/store"
)

// PageFetcher performs one stateless page fetch: nil cursor means the first
// page, otherwise the cursor addresses the adjacent page exactly as the
// server advertised it.
type PageFetcher[E entities.Entity] func(ctx context.Context, cur *entities.Cursor) (entities.Page[E], error)

// cachedPage keeps the minified page together with the cursor it was fetched
// with, so a Partial page can be re-polled in place.
type cachedPage struct {
	page   entities.Page[string]
	origin *entities.Cursor
}

// InfiniteQuery is a cursor-driven paginated list. Each fetched page is
// minified — full entities go into the store, the list keeps ids only — and
// pagination follows the server's cursors rather than recomputed offsets, so
// it survives concurrent server-side insertions and deletions.
//
// The query registers itself with its Cache under key, which lets dismiss
// mutations and streaming events splice ids without knowing the element
// type.
type InfiniteQuery[E entities.Entity] struct {
	c     *Cache
	key   string
	typ   entities.EntityType
	fetch PageFetcher[E]

	mu     sync.Mutex
	pages  []cachedPage
	primed bool
}

// NewInfinite constructs an InfiniteQuery and registers it under key.
func NewInfinite[E entities.Entity](c *Cache, key string, typ entities.EntityType, fetch PageFetcher[E]) *InfiniteQuery[E] {
	q := &InfiniteQuery[E]{c: c, key: key, typ: typ, fetch: fetch}
	c.registerList(key, q)
	return q
}

// Key returns the cache key the query is registered under.
func (q *InfiniteQuery[E]) Key() string { return q.key }

// FetchInitial loads the first page if none is loaded yet. Concurrent calls
// share a single request.
func (q *InfiniteQuery[E]) FetchInitial(ctx context.Context) error {
	q.mu.Lock()
	if q.primed {
		q.mu.Unlock()
		return nil
	}
	q.mu.Unlock()

	page, err := q.fetchPage(ctx, q.key+"#initial", nil)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.primed {
		q.pages = append([]cachedPage{{page: page}}, q.pages...)
		q.primed = true
	}
	return nil
}

// FetchNextPage appends the page after the newest loaded one. A no-op when
// no next cursor exists. Concurrent calls share one request, and only one
// of them splices the result in.
func (q *InfiniteQuery[E]) FetchNextPage(ctx context.Context) error {
	q.mu.Lock()
	if !q.primed || len(q.pages) == 0 {
		q.mu.Unlock()
		return q.FetchInitial(ctx)
	}
	cur := q.pages[len(q.pages)-1].page.Next
	q.mu.Unlock()
	if cur == nil {
		return nil
	}

	page, err := q.fetchPage(ctx, q.key+"#next?"+cur.Query, cur)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pages) == 0 {
		return nil
	}
	// Splice only if the tail still ends at the cursor we fetched from; a
	// concurrent caller sharing the same fetch has already appended otherwise.
	if next := q.pages[len(q.pages)-1].page.Next; next == nil || next.Query != cur.Query {
		return nil
	}
	q.pages = append(q.pages, cachedPage{page: page, origin: cur})
	return nil
}

// FetchPreviousPage prepends the page before the oldest loaded one. A no-op
// when no previous cursor exists.
func (q *InfiniteQuery[E]) FetchPreviousPage(ctx context.Context) error {
	q.mu.Lock()
	if !q.primed || len(q.pages) == 0 {
		q.mu.Unlock()
		return q.FetchInitial(ctx)
	}
	cur := q.pages[0].page.Prev
	q.mu.Unlock()
	if cur == nil {
		return nil
	}

	page, err := q.fetchPage(ctx, q.key+"#prev?"+cur.Query, cur)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pages) == 0 {
		return nil
	}
	if prev := q.pages[0].page.Prev; prev == nil || prev.Query != cur.Query {
		return nil
	}
	q.pages = append([]cachedPage{{page: page, origin: cur}}, q.pages...)
	return nil
}

// PollPartial refetches, in place, every loaded page still marked Partial.
// Positions of all other pages are preserved. Callers poll until it reports
// no partial page remained.
func (q *InfiniteQuery[E]) PollPartial(ctx context.Context) (bool, error) {
	q.mu.Lock()
	var idx []int
	var origins []*entities.Cursor
	for i, p := range q.pages {
		if p.page.Partial {
			idx = append(idx, i)
			origins = append(origins, p.origin)
		}
	}
	q.mu.Unlock()
	if len(idx) == 0 {
		return false, nil
	}

	for n, i := range idx {
		sfKey := q.key + "#poll"
		if origins[n] != nil {
			sfKey += "?" + origins[n].Query
		}
		page, err := q.fetchPage(ctx, sfKey, origins[n])
		if err != nil {
			return true, err
		}
		q.mu.Lock()
		if i < len(q.pages) {
			q.pages[i] = cachedPage{page: page, origin: origins[n]}
		}
		q.mu.Unlock()
	}
	return true, nil
}

// fetchPage runs one minifying page fetch under single-flight.
func (q *InfiniteQuery[E]) fetchPage(ctx context.Context, sfKey string, cur *entities.Cursor) (entities.Page[string], error) {
	return fetchShared(ctx, q.c, sfKey, func(ctx context.Context) (entities.Page[string], error) {
		raw, err := q.fetch(ctx, cur)
		if err != nil {
			return entities.Page[string]{}, err
		}
		return store.MinifyPage(q.c.store, q.typ, raw), nil
	})
}

// HasNextPage reports whether a next cursor exists past the newest page.
func (q *InfiniteQuery[E]) HasNextPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.primed || len(q.pages) == 0 {
		return false
	}
	return q.pages[len(q.pages)-1].page.Next != nil
}

// HasPreviousPage reports whether a previous cursor exists before the oldest
// page.
func (q *InfiniteQuery[E]) HasPreviousPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.primed || len(q.pages) == 0 {
		return false
	}
	return q.pages[0].page.Prev != nil
}

// Pages returns a snapshot of the minified pages in order.
func (q *InfiniteQuery[E]) Pages() []entities.Page[string] {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]entities.Page[string], len(q.pages))
	for i, p := range q.pages {
		out[i] = p.page
	}
	return out
}

// IDs returns the flattened id list across all pages, in page order.
func (q *InfiniteQuery[E]) IDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []string
	for _, p := range q.pages {
		out = append(out, p.page.Items...)
	}
	return out
}

// Entities resolves the flattened id list against the store at read time.
// Ids whose entity was evicted are skipped; tombstoned statuses are kept so
// consumers can render placeholders.
func (q *InfiniteQuery[E]) Entities() []E {
	ids := q.IDs()
	found := q.c.store.GetMany(q.typ, ids)
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		if e, ok := found[id]; ok {
			if v, ok := e.(E); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// PrependID inserts id at the head of the first page unless it is already
// present in any loaded page. Reports whether an insert happened. Used for
// feed-insertion streaming events and post-create splices.
func (q *InfiniteQuery[E]) PrependID(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range q.pages {
		for _, have := range p.page.Items {
			if have == id {
				return false
			}
		}
	}
	if len(q.pages) == 0 {
		q.pages = []cachedPage{{page: entities.Page[string]{Items: []string{id}}}}
		q.primed = true
		return true
	}
	first := &q.pages[0].page
	first.Items = append([]string{id}, first.Items...)
	return true
}

// RemoveID splices id out of every loaded page, preserving the positions of
// all other items and pages. Reports whether anything was removed.
func (q *InfiniteQuery[E]) RemoveID(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := false
	for i := range q.pages {
		items := q.pages[i].page.Items
		for j, have := range items {
			if have == id {
				q.pages[i].page.Items = append(items[:j], items[j+1:]...)
				removed = true
				break
			}
		}
	}
	return removed
}

// clear empties the query on cache reset.
func (q *InfiniteQuery[E]) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pages = nil
	q.primed = false
}
