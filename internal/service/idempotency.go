package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// idempotencyTTL bounds how long a client's Idempotency-Key is honored.
// SubmitAnswer is the only mutating endpoint in this engine and the
// original never specified a retry window, so this follows common REST
// idempotency-key practice rather than any one example repo.
const idempotencyTTL = 24 * time.Hour

// IdempotencyStore deduplicates retried SubmitAnswer calls carrying the
// same client-supplied key, supplementing the original's interactor (which
// has no such guard) to harden the at-least-once delivery case a retried
// HTTP request can trigger.
type IdempotencyStore interface {
	// Load returns the cached SubmitResult for key, if one was stored by an
	// earlier call that completed successfully.
	Load(ctx context.Context, key string) (SubmitResult, bool, error)
	// Store records result under key for idempotencyTTL.
	Store(ctx context.Context, key string, result SubmitResult) error
}

type redisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore builds an IdempotencyStore over client.
func NewRedisIdempotencyStore(client *redis.Client) IdempotencyStore {
	return &redisIdempotencyStore{client: client}
}

func (s *redisIdempotencyStore) Load(ctx context.Context, key string) (SubmitResult, bool, error) {
	raw, err := s.client.Get(ctx, idempotencyKeyFor(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return SubmitResult{}, false, nil
		}
		return SubmitResult{}, false, err
	}
	var result SubmitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return SubmitResult{}, false, err
	}
	return result, true, nil
}

func (s *redisIdempotencyStore) Store(ctx context.Context, key string, result SubmitResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKeyFor(key), raw, idempotencyTTL).Err()
}

func idempotencyKeyFor(key string) string {
	return "idempotency:submit_answer:" + key
}
