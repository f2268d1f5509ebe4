package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/quikeats/Vouchy/internal/platform/retry"
)

const (
	connectMaxAttempts    = 5
	connectInitialBackoff = time.Second
	connectMaxBackoff     = 10 * time.Second
)

// NewClient creates a go-redis client from a URL (e.g., "redis://localhost:6379")
// and verifies the connection, retrying transient ping failures with backoff.
// The metrics and circuit breaker hooks are registered only after the probe
// succeeds, so bootstrap failures never count against the breaker. Metrics
// before breaker: fast-failed operations still show up in metrics.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)

	policy := retry.Policy{
		MaxAttempts:    connectMaxAttempts,
		InitialBackoff: connectInitialBackoff,
		MaxBackoff:     connectMaxBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Redis ping failed, retrying",
				"attempt", attempt,
				"backoff_seconds", backoff.Seconds(),
				"error", err)
		},
	}
	err = retry.DoVoid(ctx, policy, classifyPingError, func() error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	rdb.AddHook(&MetricsHook{})
	rdb.AddHook(NewCircuitBreakerHook())
	return rdb, nil
}

// classifyPingError treats errors the server itself replied with (bad
// credentials, ACL denials) as permanent; anything else is network trouble
// worth another attempt.
func classifyPingError(err error) retry.Action {
	var redisErr goredis.Error
	if errors.As(err, &redisErr) {
		return retry.Stop
	}
	return retry.Retry
}
