package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pendingMarker is stored while the first request holds the key.
	pendingMarker = "-"
	// pendingTTL bounds how long a crashed request can block its key.
	pendingTTL = 2 * time.Minute
)

// IdempotencyStore maps client Idempotency-Key headers to the id of the
// resource the first request created.
// Key format: idem:<scope>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. Completed keys expire after ttl.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim atomically reserves the key with SETNX. If another request got there
// first the stored result id is returned, empty while that request is still
// running.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) (string, bool, error) {
	k := s.key(scope, key)
	ok, err := s.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as still in flight.
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if val == pendingMarker {
		return "", false, nil
	}
	return val, false, nil
}

// Complete stores the result id for replay.
func (s *IdempotencyStore) Complete(ctx context.Context, scope, key, resultID string) error {
	return s.client.Set(ctx, s.key(scope, key), resultID, s.ttl).Err()
}

// Release drops a claim after a failed request so the client can retry.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	return s.client.Del(ctx, s.key(scope, key)).Err()
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
