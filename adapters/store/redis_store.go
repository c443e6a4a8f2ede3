package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0xacademy/academy/ports"
)

// RedisTokenCache stores the persisted session document in Redis
type RedisTokenCache struct {
	client *redis.Client
	key    string
}

// NewRedisTokenCache creates a token cache under the 0xacademy-auth key, optionally namespaced
func NewRedisTokenCache(client *redis.Client, namespace string) *RedisTokenCache {
	key := AuthKey
	if namespace != "" {
		key = namespace + ":" + AuthKey
	}
	return &RedisTokenCache{
		client: client,
		key:    key,
	}
}

// Load reads the token from Redis
func (c *RedisTokenCache) Load(ctx context.Context) (string, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return decodeAuthState(raw)
}

// Save writes the token to Redis without expiry; the backend decides validity
func (c *RedisTokenCache) Save(ctx context.Context, token string) error {
	raw, err := encodeAuthState(token)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear deletes the token key
func (c *RedisTokenCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// RedisNonceStore is a Redis implementation of ports.NonceStore
type RedisNonceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisNonceStore creates a new Redis nonce store
func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{
		client: client,
		prefix: "academy:nonce:",
	}
}

// Put stores the nonce with expiration
func (s *RedisNonceStore) Put(ctx context.Context, nonce, address string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+nonce, address, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the nonce
func (s *RedisNonceStore) Consume(ctx context.Context, nonce string) (string, error) {
	address, err := s.client.GetDel(ctx, s.prefix+nonce).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrNotFound
		}
		return "", fmt.Errorf("failed to consume nonce: %w", err)
	}
	return address, nil
}
