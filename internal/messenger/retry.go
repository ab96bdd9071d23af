package messenger

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy governs how connection attempts are spaced. The zero
// MaxAttempts means retry forever; the service is useless without the
// broker, so giving up is opt-in rather than the default.
type RetryPolicy struct {
	// Interval is the fixed delay between attempts.
	Interval time.Duration

	// MaxAttempts bounds the number of attempts. Zero retries forever.
	MaxAttempts int

	// Jitter adds up to this much random extra delay per attempt, spreading
	// reconnect storms across replicas.
	Jitter time.Duration

	// sleep is injectable so tests can run without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy retries forever every two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: 2 * time.Second}
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The last attempt's error is returned on failure.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return err
		}

		delay := p.Interval
		if p.Jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(p.Jitter)))
		}
		if serr := sleep(ctx, delay); serr != nil {
			return err
		}
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
