package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore indexes session refs to order ids so a broker re-instantiated
// mid-poll (page reload, restart) can still resolve callbacks. Entries expire
// with the provider session; the sessions themselves stay provider-owned.
type SessionStore interface {
	Put(ctx context.Context, sessionRef string, orderID uint64, ttl time.Duration) error
	GetOrderID(ctx context.Context, sessionRef string) (uint64, error)
}

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func sessionKey(sessionRef string) string {
	return "checkout:session:" + sessionRef
}

func (s *redisSessionStore) Put(ctx context.Context, sessionRef string, orderID uint64, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(sessionRef), orderID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to index checkout session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) GetOrderID(ctx context.Context, sessionRef string) (uint64, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionRef)).Result()
	if err == redis.Nil {
		return 0, ErrSessionUnknown
	}
	if err != nil {
		return 0, err
	}

	orderID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session index entry %q: %w", val, err)
	}
	return orderID, nil
}
