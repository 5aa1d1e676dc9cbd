package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/rlmproc/internal/oracle"
)

const MaxRetries = 3

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// WithRetry wraps an oracle so transient transport failures (rate limits,
// server errors) are retried with backoff before surfacing to the caller.
func WithRetry(o oracle.Oracle, log *slog.Logger) oracle.Oracle {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &retryOracle{inner: o, log: log}
}

type retryOracle struct {
	inner oracle.Oracle
	log   *slog.Logger
}

func (r *retryOracle) Query(ctx context.Context, req oracle.Request) (string, error) {
	var reply string
	var err error
	for attempt := range MaxRetries {
		reply, err = r.inner.Query(ctx, req)
		if err == nil || !oracle.IsTransient(err) {
			return reply, err
		}
		if attempt == MaxRetries-1 {
			break
		}
		r.log.Warn("transient oracle error, retrying", "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}
