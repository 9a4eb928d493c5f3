package gateway

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often a transient failure is retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is three attempts, waiting 2s then 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy().BaseDelay
	}
	return p
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.BaseDelay << uint(p.MaxAttempts)
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// Retrier runs gateway operations under a RetryPolicy.
type Retrier struct {
	Policy RetryPolicy
	Logger *zap.Logger
	Vendor string
}

// Retry calls fn until it succeeds, fails with a non-transient error, the
// attempts run out or ctx is done. The delay before retry n is BaseDelay*2^(n-1).
func Retry[T any](ctx context.Context, r Retrier, op string, fn func(context.Context) (T, error)) (T, error) {
	policy := r.Policy.normalized()
	attempt := 0

	operation := func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, next time.Duration) {
		r.Logger.Warn("gateway call failed, retrying",
			zap.String("vendor", r.Vendor),
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("retry_in", next),
			zap.Error(err))
	}

	v, err := backoff.RetryNotifyWithData(operation, policy.backOff(ctx), notify)
	if err == nil {
		return v, nil
	}
	if _, ok := AsError(err); !ok {
		err = fromContext(r.Vendor, op, err)
	}
	if IsTransient(err) {
		r.Logger.Error("gateway call failed after retries",
			zap.String("vendor", r.Vendor),
			zap.String("op", op),
			zap.Int("attempts", attempt),
			zap.Error(err))
	}
	return v, err
}
