package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound key 不存在或已过期
var ErrKeyNotFound = errors.New("key not found")

// EphemeralStore 短期键值存储，保存握手信息与 refresh token。
// 单个 key 的读写是原子的，不提供跨 key 事务。
type EphemeralStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisStore struct {
	rdb redis.Cmdable
}

// NewRedisStore 基于 Redis 的实现
func NewRedisStore(rdb redis.Cmdable) EphemeralStore {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *redisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis setex %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// memorySweepInterval 两次清理过期 key 的最小间隔
const memorySweepInterval = time.Minute

type memoryItem struct {
	value     string
	expiresAt time.Time
}

type memoryStore struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore 进程内实现，用于本地开发与测试。now 为 nil 时使用 time.Now。
func NewMemoryStore(now func() time.Time) EphemeralStore {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		items:     make(map[string]memoryItem),
		now:       now,
		lastSweep: now(),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	if !s.now().Before(item.expiresAt) {
		delete(s.items, key)
		return "", ErrKeyNotFound
	}
	return item.value, nil
}

func (s *memoryStore) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s for key %s", ttl, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.items[key] = memoryItem{value: value, expiresAt: now.Add(ttl)}
	// 未被读取的握手信息和 refresh token 在写入时顺带清理
	if now.Sub(s.lastSweep) >= memorySweepInterval {
		s.sweep(now)
	}
	return nil
}

// sweep 删除所有过期 key，调用方持有锁
func (s *memoryStore) sweep(now time.Time) {
	for k, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, k)
		}
	}
	s.lastSweep = now
}

// Len 当前保存的 key 数量，包括尚未清理的过期 key
func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
