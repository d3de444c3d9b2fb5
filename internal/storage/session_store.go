package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// トークンごとのセッションを払い出す
type SessionProvider interface {
	Session(token string) SessionStore
}

// メモリ上のセッション。テストと開発用。
type MemorySessions struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{data: map[string]map[string][]byte{}}
}

func (m *MemorySessions) Session(token string) SessionStore {
	return &memorySession{parent: m, token: token}
}

type memorySession struct {
	parent *MemorySessions
	token  string
}

func (s *memorySession) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	sess, ok := s.parent.data[s.token]
	if !ok {
		return nil, false, nil
	}
	b, ok := sess[key]
	return b, ok, nil
}

func (s *memorySession) Set(ctx context.Context, key string, value []byte) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	sess, ok := s.parent.data[s.token]
	if !ok {
		sess = map[string][]byte{}
		s.parent.data[s.token] = sess
	}
	sess[key] = value
	return nil
}

func (s *memorySession) Delete(ctx context.Context, key string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if sess, ok := s.parent.data[s.token]; ok {
		delete(sess, key)
	}
	return nil
}

// Redisのハッシュに載せるセッション。本番用。
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func (r *RedisSessions) Session(token string) SessionStore {
	return &redisSession{client: r.client, key: "cartsess:" + token, ttl: r.ttl}
}

type redisSession struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *redisSession) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.HGet(ctx, s.key, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis session get: %w", err)
	}
	return b, true, nil
}

func (s *redisSession) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis session set: %w", err)
		}
	}
	return nil
}

func (s *redisSession) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("redis session delete: %w", err)
	}
	return nil
}
