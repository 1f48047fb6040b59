package streaming

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// State is the channel lifecycle. A channel moves
// CONNECTING → OPEN and terminates in EOSE (server said goodbye),
// ERROR (transport failure), or CLOSED (local Close or ctx cancel).
// The terminal state is stable after Done.
type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateEOSE
	StateError
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateEOSE:
		return "eose"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Channel is one live subscription. Events are handed to the per-channel
// apply queue in receipt order; nothing is applied after Close has been
// requested, even if a message was already in flight.
//
// A failed channel is not retried here — reconnection is the caller's call,
// typically via Resubscribe.
type Channel struct {
	name string
	conn *websocket.Conn

	merge *Merge

	readTimeout time.Duration

	state     atomic.Int32
	cancelled atomic.Bool // set before the transport is torn down
	closeOnce sync.Once
	done      chan struct{}

	errMu   sync.Mutex
	lastErr error
}

// Subscribe dials the streaming endpoint and begins delivering events for
// the named channel ("user", "public", "public:local", "hashtag", …) to
// merge. The returned Channel is OPEN on success.
//
// ctx covers the dial and, once subscribed, cancels the channel when done.
func Subscribe(ctx context.Context, cfg Config, merge *Merge, name string, params url.Values) (*Channel, error) {
	c := &Channel{
		name:        name,
		merge:       merge,
		readTimeout: cfg.ReadTimeout,
		done:        make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))

	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("stream", name)
	if cfg.AccessToken != "" {
		q.Set("access_token", cfg.AccessToken)
	}
	endpoint := cfg.StreamingURL + "/api/v1/streaming?" + q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		c.state.Store(int32(StateError))
		return nil, err
	}
	c.conn = conn
	c.state.Store(int32(StateOpen))
	channelsOpen.Inc()

	go c.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()
	return c, nil
}

// Close aborts the transport. Idempotent: a channel can be closed any number
// of times safely, and no further events are applied once the first Close
// has been requested.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.cancelled.Store(true)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Done is closed when the channel has fully terminated.
func (c *Channel) Done() <-chan struct{} { return c.done }

// State reports the current lifecycle state.
func (c *Channel) State() State { return State(c.state.Load()) }

// Err returns the transport error that ended the channel, nil for a clean
// close or local cancellation.
func (c *Channel) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

func (c *Channel) readLoop() {
	defer func() {
		// A terminal EOSE/ERROR set by the read branch below must survive; only
		// a locally cancelled channel falls back to CLOSED.
		c.state.CompareAndSwap(int32(StateOpen), int32(StateClosed))
		c.state.CompareAndSwap(int32(StateConnecting), int32(StateClosed))
		channelsOpen.Dec()
		close(c.done)
	}()

	for {
		if c.readTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case c.cancelled.Load():
				// Local close: not an error.
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.state.Store(int32(StateEOSE))
			default:
				c.state.Store(int32(StateError))
				c.errMu.Lock()
				c.lastErr = err
				c.errMu.Unlock()
			}
			return
		}
		if len(msg) == 0 {
			continue // heartbeat
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			eventsDropped.Inc()
			log.Warn().Err(err).Str("channel", c.name).Msg("stream: malformed event, dropped")
			continue
		}

		// Queue keyed by channel name: receipt order is preserved. The
		// cancellation check runs inside the queued apply so an event read
		// just before Close still does not mutate the caches.
		submitErr := c.merge.enqueue(context.Background(), c.name, func(context.Context) error {
			if c.cancelled.Load() {
				return nil
			}
			return c.merge.Apply(c.name, ev)
		})
		if submitErr != nil {
			log.Warn().Err(submitErr).Str("channel", c.name).Msg("stream: event not queued")
		}
	}
}
