package shard

import (
	"context"
	"math/rand"
	"time"

	"github.com/groupshard/groupshard/pkg/errs"
)

// Bounded-retry parameters for peer-sync RPCs during Syncing. Same shape
// and numbers as membership's CAS-contention retry, but a distinct
// instantiation: this one guards network/RPC failures against a peer
// node, per spec.md §4.1's "RPC failures are caller-retried with
// exponential backoff", not local epoch contention.
const (
	peerRetryInitialBackoff = 100 * time.Millisecond
	peerRetryMaxBackoff     = 1000 * time.Millisecond
	peerRetryMaxAttempts    = 5
)

func retryPeerSync(ctx context.Context, op string, fn func() error) error {
	backoff := peerRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < peerRetryMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(peerJitter(backoff)):
			case <-ctx.Done():
				return errs.Wrap(errs.Unavailable, op, ctx.Err())
			}
			backoff *= 2
			if backoff > peerRetryMaxBackoff {
				backoff = peerRetryMaxBackoff
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return errs.Wrap(errs.Unavailable, op, lastErr)
}

func peerJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(rand.Int63n(int64(d)))
}
