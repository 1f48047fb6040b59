package streaming

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Resubscribe keeps a subscription alive across failures: it calls subscribe,
// waits for the resulting channel to terminate, and dials again with
// exponential backoff after an error. It returns when the channel closes
// cleanly (EOSE) or ctx is cancelled.
//
// Delivery across reconnects is at-least-once: the server may replay events
// already seen. The merge path dedupes feed insertions by id and entity
// imports are last-write-wins, so replays converge instead of duplicating.
func Resubscribe(ctx context.Context, subscribe func(ctx context.Context) (*Channel, error)) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry until ctx ends

	for {
		ch, err := subscribe(ctx)
		if err == nil {
			bo.Reset()
			select {
			case <-ctx.Done():
				ch.Close()
				<-ch.Done()
				return ctx.Err()
			case <-ch.Done():
			}
			switch ch.State() {
			case StateEOSE, StateClosed:
				if ch.Err() == nil {
					return nil
				}
			}
			err = ch.Err()
			reconnectsTotal.Inc()
		}

		wait := bo.NextBackOff()
		log.Warn().Err(err).Dur("retry_in", wait).Msg("stream: channel down, resubscribing")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
