// Package idempotency makes creation POSTs safely retryable: the first
// response produced for a given (Idempotency-Key, user) pair is persisted
// and replayed verbatim on every retry, so at most one resource is ever
// created per pair.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is a previously produced HTTP response.
type Record struct {
	StatusCode int    `json:"status"`
	Body       []byte `json:"body"`
}

// Store persists records keyed by (key, user).
type Store interface {
	// Lookup returns the stored record, or nil when the pair is unseen.
	Lookup(ctx context.Context, key, userID string) (*Record, error)
	Save(ctx context.Context, key, userID string, record Record) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Store on the shared Redis client. Records expire
// after ttl rather than living forever, bounding storage growth.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Lookup(ctx context.Context, key, userID string) (*Record, error) {
	raw, err := s.client.Get(ctx, recordKey(key, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *redisStore) Save(ctx context.Context, key, userID string, record Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, recordKey(key, userID), raw, s.ttl).Err()
}

func recordKey(key, userID string) string {
	return fmt.Sprintf("idempotency:%s:%s", userID, key)
}
