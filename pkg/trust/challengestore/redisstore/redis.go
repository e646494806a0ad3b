// Package redisstore is the Redis-backed challenge store, for deployments
// where verification must survive restarts or span instances. Entries carry
// a TTL equal to the challenge lifetime, so Redis itself reaps expired
// codes and the sweep has nothing left to do.
package redisstore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/trust"
)

const (
	defaultPrefix = "trust:challenge"

	fieldCode     = "code"
	fieldIssuedAt = "issued_at"
	fieldAttempts = "attempts"

	maxTxRetries = 16
)

// RedisStore implements trust.ChallengeStore on a Redis hash per identity.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store whose entries expire after ttl.
func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(identity string) string {
	return s.prefix + ":" + identity
}

// Put stores a challenge, replacing any existing entry and resetting the TTL.
func (s *RedisStore) Put(ctx context.Context, ch trust.Challenge) error {
	key := s.key(ch.Identity)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		fieldCode:     ch.Code,
		fieldIssuedAt: ch.IssuedAt.UTC().Format(time.RFC3339Nano),
		fieldAttempts: ch.Attempts,
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return errx.Wrap(err, "failed to store challenge", errx.TypeInternal)
	}
	return nil
}

// Get returns a snapshot of the entry for an identity.
func (s *RedisStore) Get(ctx context.Context, identity string) (*trust.Challenge, error) {
	vals, err := s.client.HGetAll(ctx, s.key(identity)).Result()
	if err != nil {
		return nil, errx.Wrap(err, "failed to read challenge", errx.TypeInternal)
	}
	if len(vals) == 0 {
		return nil, trust.ErrChallengeNotFound()
	}
	return challengeFromHash(identity, vals)
}

// Mutate performs an optimistic read-modify-write transaction: WATCH makes a
// concurrent writer abort the EXEC, and the sequence retries until it has
// seen a consistent snapshot. Attempt counts therefore never race.
func (s *RedisStore) Mutate(ctx context.Context, identity string, fn trust.MutateFunc) error {
	key := s.key(identity)

	for range maxTxRetries {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			vals, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return errx.Wrap(err, "failed to read challenge", errx.TypeInternal)
			}
			if len(vals) == 0 {
				return trust.ErrChallengeNotFound()
			}

			ch, err := challengeFromHash(identity, vals)
			if err != nil {
				return err
			}

			remove, fnErr := fn(ch)

			_, txErr := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if remove {
					pipe.Del(ctx, key)
					return nil
				}
				pipe.HSet(ctx, key, map[string]any{
					fieldCode:     ch.Code,
					fieldAttempts: ch.Attempts,
				})
				return nil
			})
			if txErr != nil {
				return txErr
			}
			return fnErr
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return errx.Internal("challenge mutation kept failing under contention")
}

// Delete removes the entry for an identity, if any.
func (s *RedisStore) Delete(ctx context.Context, identity string) error {
	if err := s.client.Del(ctx, s.key(identity)).Err(); err != nil {
		return errx.Wrap(err, "failed to delete challenge", errx.TypeInternal)
	}
	return nil
}

// SweepExpired is a no-op: Redis TTLs reap expired entries on their own.
func (s *RedisStore) SweepExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func challengeFromHash(identity string, vals map[string]string) (*trust.Challenge, error) {
	issuedAt, err := time.Parse(time.RFC3339Nano, vals[fieldIssuedAt])
	if err != nil {
		return nil, errx.Wrap(err, "corrupt challenge entry", errx.TypeInternal)
	}

	attempts := 0
	if raw := vals[fieldAttempts]; raw != "" {
		if attempts, err = strconv.Atoi(raw); err != nil {
			return nil, errx.Wrap(err, "corrupt challenge entry", errx.TypeInternal)
		}
	}

	return &trust.Challenge{
		Identity: identity,
		Code:     vals[fieldCode],
		IssuedAt: issuedAt,
		Attempts: attempts,
	}, nil
}
