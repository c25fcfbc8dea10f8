package devlicense

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed CodeStore and SessionStore. TTL semantics are
// handled natively by Redis based on each record's ExpiresAt, so codes and
// sessions survive dev server restarts.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "devlicense:",
	}
}

// NewRedisStoreWithPrefix creates a Redis-backed store with a custom key prefix.
func NewRedisStoreWithPrefix(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) SaveCode(ctx context.Context, code IssuedCode) error {
	if code.Email == "" {
		return errors.New("code email cannot be empty")
	}
	return s.save(ctx, s.codeKey(code.Email), code, code.ExpiresAt)
}

func (s *RedisStore) GetCode(ctx context.Context, email string) (IssuedCode, error) {
	var code IssuedCode
	if err := s.load(ctx, s.codeKey(email), &code); err != nil {
		return IssuedCode{}, err
	}
	return code, nil
}

func (s *RedisStore) DeleteCode(ctx context.Context, email string) error {
	if email == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.codeKey(email)).Err()
}

func (s *RedisStore) SaveSession(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}
	return s.save(ctx, s.sessionKey(sess.Token), sess, sess.ExpiresAt)
}

func (s *RedisStore) GetSession(ctx context.Context, token string) (Session, error) {
	var sess Session
	if err := s.load(ctx, s.sessionKey(token), &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.sessionKey(token)).Err()
}

func (s *RedisStore) save(ctx context.Context, key string, value any, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Record is already expired, don't save it
		return errors.New("record is expired")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *RedisStore) load(ctx context.Context, key string, dst any) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

func (s *RedisStore) codeKey(email string) string    { return s.prefix + "code:" + email }
func (s *RedisStore) sessionKey(token string) string { return s.prefix + "session:" + token }
