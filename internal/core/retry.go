// AngelaMos | 2026
// retry.go

package core

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry calls op with exponential backoff until it succeeds, ctx is done, or
// maxElapsed has passed. A non-positive maxElapsed means a single attempt.
func Retry(ctx context.Context, maxElapsed time.Duration, op func() error) error {
	if maxElapsed <= 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxElapsed

	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
