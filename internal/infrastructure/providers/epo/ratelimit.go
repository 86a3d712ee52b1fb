package epo

import (
	"context"
	"sync"
	"time"
)

// rateLimiter is a sliding one-minute window over outbound requests.
// When the window is full, Wait sleeps for the remainder of the window
// measured from the oldest recorded request.  Cooperative, not queued:
// concurrent callers may all wake on the same expiry.
type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	marks  []time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		window: time.Minute,
		limit:  limit,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait blocks until a request slot is available or ctx is canceled.
func (rl *rateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := rl.now()
		cutoff := now.Add(-rl.window)
		kept := rl.marks[:0]
		for _, m := range rl.marks {
			if m.After(cutoff) {
				kept = append(kept, m)
			}
		}
		rl.marks = kept

		if len(rl.marks) < rl.limit {
			rl.marks = append(rl.marks, now)
			rl.mu.Unlock()
			return nil
		}

		wait := rl.window - now.Sub(rl.marks[0])
		rl.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := rl.sleep(ctx, wait); err != nil {
			return err
		}
	}
}
