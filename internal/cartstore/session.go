package cartstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionBackend is the server-side replica of the cart, keyed by the
// opaque session id. Get returns "" when no cart is stored.
type SessionBackend interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID string, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type RedisSessions struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisSessions(addr, password string, db int, log *zap.Logger) (*RedisSessions, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisSessions{client: rdb, log: log}, nil
}

func (r *RedisSessions) Close() error {
	return r.client.Close()
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (r *RedisSessions) Get(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (r *RedisSessions) Set(ctx context.Context, sessionID string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(sessionID), value, ttl).Err()
}

func (r *RedisSessions) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

// MemorySessions is an in-process SessionBackend for tests and local runs
// without Redis.
type MemorySessions struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{data: map[string]string{}}
}

func (m *MemorySessions) Get(_ context.Context, sessionID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[sessionID], nil
}

func (m *MemorySessions) Set(_ context.Context, sessionID string, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = value
	return nil
}

func (m *MemorySessions) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}
