package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
// 429 is excluded: upstream rate limits are surfaced with their retry hint instead.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 408, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}

// Policy bounds retries of transient failures.
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
	// Sleep waits between attempts; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy allows three attempts with 250ms doubling backoff.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Base: 250 * time.Millisecond, Cap: 2 * time.Second}
}

// Do runs op until it succeeds, returns a non-retryable error, or attempts run out.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := ExponentialBackoff(attempt-1, p.Base, p.Cap)
			log.Debug().
				Str("op", op).
				Int("attempt", attempt+1).
				Dur("backoff", wait).
				Err(err).
				Msg("Retrying after transient failure")
			if sleepErr := sleep(ctx, wait); sleepErr != nil {
				return sleepErr
			}
		}
		err = fn(ctx)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
