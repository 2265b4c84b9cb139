package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RateLimitError marks a response the remote service rejected for rate
// limiting. Retried on a steeper curve than ordinary transport failures.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// AuthError marks an authentication or authorization failure. Never retried.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Policy wraps every remote call in the pipeline. Delay grows as
// InitialDelay * 2^attempt, or * 3^attempt after a rate-limit response.
type Policy struct {
	Attempts     int
	InitialDelay time.Duration
}

// policyBackOff picks its multiplier from the class of the last error seen,
// which backoff.ExponentialBackOff's single static multiplier cannot do.
type policyBackOff struct {
	initial     time.Duration
	attempt     int
	rateLimited bool
}

func (b *policyBackOff) NextBackOff() time.Duration {
	mult := 2.0
	if b.rateLimited {
		mult = 3.0
	}
	d := time.Duration(float64(b.initial) * math.Pow(mult, float64(b.attempt)))
	b.attempt++
	return d
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
	b.rateLimited = false
}

// Do runs op until it succeeds, auth-fails, exhausts the attempt budget, or
// ctx is cancelled. Exhaustion and auth failures return the last error to the
// caller; cancellation surfaces immediately without a further attempt.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	pb := &policyBackOff{initial: p.InitialDelay}

	wrapped := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := op()
		if err == nil {
			return nil
		}
		if IsAuth(err) {
			return backoff.Permanent(err)
		}
		pb.rateLimited = IsRateLimit(err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(pb, uint64(attempts-1)), ctx)
	return backoff.Retry(wrapped, b)
}
