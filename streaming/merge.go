package streaming

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fedikit/fedicache/query"
	"github.com/fedikit/fedicache/streaming/internal/eventqueue"
)

// Merge folds stream events into the entity store and list projections.
// One Merge serves all channels of an identity; it owns the apply queue
// that serializes events per channel.
type Merge struct {
	cache *query.Cache
	queue *eventqueue.Executor

	mu    sync.Mutex
	feeds map[string]string // channel name → list key for feed insertions
}

// NewMerge binds a Merge to the cache (and through it, the store). Queue
// tunables come from EQ_* environment variables.
func NewMerge(cache *query.Cache) *Merge {
	cfg, err := eventqueue.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("stream: bad EQ_* environment, using defaults")
		cfg = eventqueue.Config{}
	}
	cfg.ErrorHandler = func(err error) {
		log.Warn().Err(err).Msg("stream: event apply failed")
	}
	return &Merge{cache: cache, queue: eventqueue.New(cfg), feeds: make(map[string]string)}
}

// Close stops the apply queue after draining it. Safe to call multiple
// times.
func (m *Merge) Close() error { return m.queue.Close() }

// Flush blocks until every event received on channel so far has been
// applied.
func (m *Merge) Flush(ctx context.Context, channel string) error {
	return m.queue.Barrier(ctx, channel)
}

// enqueue hands one apply to the per-channel FIFO queue.
func (m *Merge) enqueue(ctx context.Context, channel string, apply func(context.Context) error) error {
	return m.queue.Submit(ctx, channel, apply)
}

// BindFeed declares that create events on channel are feed insertions for
// the registered list under listKey: new ids are prepended to the list's
// first page unless already present anywhere in the list.
func (m *Merge) BindFeed(channel, listKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeds[channel] = listKey
}

// Apply folds one event into the caches. Create and update both import the
// payload (and its embedded entities); deletes splice the id out of every
// list projection and tombstone statuses in place. Apply never touches the
// network and is safe to call from the per-channel apply queue only.
func (m *Merge) Apply(channel string, ev Event) error {
	switch ev.Op {
	case OpCreate, OpUpdate:
		e, err := decodeEntity(ev.EntityType, ev.Payload)
		if err != nil {
			eventsDropped.Inc()
			return fmt.Errorf("stream %s: %w", channel, err)
		}
		m.cache.Store().ImportOne(ev.EntityType, e)
		if ev.Op == OpCreate {
			m.mu.Lock()
			listKey, feed := m.feeds[channel]
			m.mu.Unlock()
			if feed {
				if m.cache.PrependToList(listKey, e.EntityID()) {
					feedInsertions.Inc()
				}
			}
		}
		eventsApplied.WithLabelValues(string(ev.Op)).Inc()
		return nil

	case OpDelete:
		id, err := decodeDeleteID(ev.Payload)
		if err != nil {
			eventsDropped.Inc()
			return fmt.Errorf("stream %s: %w", channel, err)
		}
		m.cache.RemoveFromLists(id)
		m.cache.Store().MarkDeleted(ev.EntityType, id)
		eventsApplied.WithLabelValues(string(OpDelete)).Inc()
		return nil

	default:
		eventsDropped.Inc()
		log.Warn().Str("channel", channel).Str("op", string(ev.Op)).Msg("stream: unknown op, event dropped")
		return nil
	}
}
