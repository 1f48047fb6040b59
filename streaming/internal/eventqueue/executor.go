// Package eventqueue provides a lightweight sharded apply-queue that
// guarantees FIFO order *per key* while allowing parallelism across shards.
// The streaming layer submits every received event keyed by its channel
// name, so events of one channel apply strictly in receipt order — later
// events may depend on earlier ones having already updated the store —
// while independent channels do not stall each other.
//
// Apply functions are cache writes: they do not fail transiently, so there
// is no retry here. A returned error is reported to the ErrorHandler and the
// queue moves on.
package eventqueue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Apply is one unit of in-order work.
type Apply func(ctx context.Context) error

type queuedApply struct {
	ctx   context.Context
	apply Apply
}

// Executor runs Apply functions on worker goroutines partitioned by a stable
// hash of the key. FIFO ordering is preserved within a shard.
//
// Callers must not invoke Submit concurrently for the *same* key; FIFO
// ordering relies on that external serialisation. The streaming layer
// satisfies this naturally: one read loop per channel.
type Executor struct {
	cfg    Config
	queues []chan queuedApply // len == cfg.Shards

	done   chan struct{} // closed in Stop()
	closed uint32        // 0 → running, 1 → closed

	wg sync.WaitGroup
}

// New constructs the executor and starts its shard workers.
func New(cfg Config) *Executor {
	// Apply zero-value defaults.
	if cfg.Shards <= 0 {
		cfg.Shards = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}

	e := &Executor{
		cfg:    cfg,
		queues: make([]chan queuedApply, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedApply, cfg.QueueSize)
		e.queues[i] = ch
		e.wg.Add(1)
		go e.runWorker(i, ch)
	}
	return e
}

// Submit enqueues apply for the shard derived from key.
//
//   - Returns nil on success.
//   - Returns ErrExecutorClosed if the executor is stopped.
//   - Returns ErrQueueFull (wrapped in *QueueFullError) if the shard is full
//     after EnqueueTimeout elapses.
//   - Returns ctx.Err() if the caller-provided context is cancelled first.
func (e *Executor) Submit(ctx context.Context, key string, apply Apply) error {
	// Fast checks to avoid accepting work after Stop().
	if atomic.LoadUint32(&e.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	qa := queuedApply{ctx: ctx, apply: apply}
	shard := e.shardFor(key)
	ch := e.queues[shard]

	timer := time.NewTimer(e.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- qa:
		appliedTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil

	case <-e.done: // Stop() may be called while waiting for space
		return ErrExecutorClosed

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{
			Shard:    shard,
			Length:   len(ch),
			Capacity: cap(ch),
		}
	}
}

// Barrier enqueues a no-op apply on the shard for key and waits until it
// runs, ensuring all previously submitted events for that key have been
// applied. Tests and shutdown paths use it to observe a quiesced cache.
func (e *Executor) Barrier(ctx context.Context, key string) error {
	done := make(chan struct{})
	noop := func(context.Context) error {
		close(done)
		return nil
	}
	if err := e.Submit(ctx, key, noop); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stop signals every worker to finish draining its current queue, waits for
// them to terminate, and then returns. It is idempotent and safe for
// concurrent use.
func (e *Executor) Stop() {
	if !atomic.CompareAndSwapUint32(&e.closed, 0, 1) {
		return // already closed
	}
	close(e.done)
	e.wg.Wait()
	log.Debug().Int("shards", e.cfg.Shards).Msg("eventqueue: executor stopped, all queues drained")
}

// Close lets Executor satisfy io.Closer.
func (e *Executor) Close() error {
	e.Stop()
	return nil
}

// ------------------------- internals -------------------------

func (e *Executor) runWorker(idx int, ch <-chan queuedApply) {
	defer e.wg.Done()

	// Protect the executor from a panicking apply function.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", idx).Interface("panic", r).Msg("eventqueue: worker panic")
		}
	}()

	label := labelFor(idx)

	for {
		select {
		case qa := <-ch:
			e.runOne(label, qa)
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-e.done:
			// Drain remaining events, preserving FIFO, then exit.
			for {
				select {
				case qa := <-ch:
					e.runOne(label, qa)
				default:
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

func (e *Executor) runOne(label string, qa queuedApply) {
	if qa.apply == nil {
		return
	}
	// Honour caller context so a cancelled event doesn't stall the shard.
	select {
	case <-qa.ctx.Done():
		e.safeHandleError(qa.ctx.Err())
		return
	default:
	}

	start := time.Now()
	err := qa.apply(qa.ctx)
	applyDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		e.safeHandleError(err)
	}
}

func (e *Executor) safeHandleError(err error) {
	if err == nil || e.cfg.ErrorHandler == nil {
		return
	}
	func() {
		// Guard against panics in the user-supplied handler.
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("eventqueue: error handler panic")
			}
		}()
		e.cfg.ErrorHandler(err)
	}()
}

func (e *Executor) shardFor(key string) int {
	h := fnv.New32a() // fast and sufficient at our scale
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % e.cfg.Shards
}
