package membership

import (
	"context"
	"math/rand"
	"time"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/metrics"
)

// Bounded-retry parameters for epoch/CAS contention, matching the original
// hash_shard_map's retry_op: exponential backoff from an initial 100ms,
// doubling, capped at 1000ms, with up to maxAttempts tries before giving
// up and surfacing the contention to the caller.
const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 1000 * time.Millisecond
	maxAttempts    = 5
)

// retryOnContention runs op up to maxAttempts times, backing off with
// jitter between attempts whenever op returns a retryable error (epoch
// conflict or transient unavailability). It returns the last error once
// attempts are exhausted.
func retryOnContention(ctx context.Context, op string, fn func() error) error {
	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.EpochRetriesTotal.WithLabelValues(op).Inc()
			select {
			case <-time.After(jitter(backoff)):
			case <-ctx.Done():
				return errs.Wrap(errs.Unavailable, op, ctx.Err())
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !errs.IsRetryable(err) {
			return err
		}
		lastErr = err
	}
	return errs.Wrap(errs.Retry, op, lastErr)
}

// jitter adds a uniform random extra delay in [0, d) on top of the base
// backoff, so a burst of contending mutators don't retry in lockstep.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(rand.Int63n(int64(d)))
}
