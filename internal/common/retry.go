package common

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy configures bounded exponential backoff. Delays are not
// jittered: attempt n waits InitialDelay * Multiplier^(n-1).
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Multiplier   float64

	// RetryIf reports whether an error should be retried. Nil retries everything.
	RetryIf func(error) bool

	// Notify is called before each sleep with the failed attempt's error.
	Notify func(err error, next time.Duration)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		Multiplier:   1.5,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = max(p.InitialDelay, 0)
	b.Multiplier = p.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

// Retry runs op until it succeeds, the retry budget is spent or ctx is
// done. The op runs at most MaxRetries+1 times and the last error is
// returned as is.
func Retry[T any](ctx context.Context, p RetryPolicy, op func() (T, error)) (T, error) {
	if p.MaxRetries <= 0 {
		return op()
	}

	attempt := func() (T, error) {
		res, err := op()
		if err != nil && p.RetryIf != nil && !p.RetryIf(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	res, err := backoff.RetryNotifyWithData(attempt, p.backOff(ctx), p.Notify)
	if err != nil && ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, err
}
