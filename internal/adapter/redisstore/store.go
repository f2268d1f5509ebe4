// Package redisstore persists the vouch ledger in a Redis hash. It is the
// backend for deployments where the ledger must survive host loss or be
// shared with other services, and it carries the same circuit breaker and
// metrics instrumentation as the rest of the Redis plumbing.
package redisstore

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/quikeats/Vouchy/internal/domain"
)

// ledgerKey is the hash holding one field per user ID with the point total
// as a decimal string.
const ledgerKey = "vouchy:ledger"

type Store struct {
	rdb *goredis.Client
}

var _ domain.LedgerStore = (*Store)(nil)

func New(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Load(ctx context.Context) (map[string]int64, error) {
	fields, err := s.rdb.HGetAll(ctx, ledgerKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading ledger hash: %w", err)
	}

	totals := make(map[string]int64, len(fields))
	for userID, raw := range fields {
		points, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ledger hash holds invalid points %q for user %s: %w", raw, userID, err)
		}
		totals[userID] = points
	}
	return totals, nil
}

// Save replaces the whole hash. Delete and rewrite run in one MULTI/EXEC
// block so concurrent readers never observe a half-written ledger.
func (s *Store) Save(ctx context.Context, totals map[string]int64) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, ledgerKey)
		if len(totals) > 0 {
			fields := make(map[string]any, len(totals))
			for userID, points := range totals {
				fields[userID] = points
			}
			pipe.HSet(ctx, ledgerKey, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving ledger hash: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
