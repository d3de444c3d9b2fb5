package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopcart/internal/domain/model"

	"github.com/go-redis/redis/v8"
)

// キャッシュタイムアウトのデフォルトは5日
const DefaultCacheTimeout = 5 * 24 * time.Hour

// Redisに保存するバックエンド。
// エントリはタイムアウトで消える。認証・匿名で移行はしない。
type CacheStorage struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

func NewCacheStorage(client *redis.Client, sessionKey string, id Identity, timeout time.Duration) *CacheStorage {
	if timeout <= 0 {
		timeout = DefaultCacheTimeout
	}
	return &CacheStorage{
		client:  client,
		key:     fmt.Sprintf("%s-%s", sessionKey, id.Key()),
		timeout: timeout,
	}
}

func (s *CacheStorage) Load(ctx context.Context) (model.CartData, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return model.CartData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache load: %w", err)
	}

	var data model.CartData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("cache load: %w", err)
	}
	if data == nil {
		data = model.CartData{}
	}
	return data, nil
}

func (s *CacheStorage) Save(ctx context.Context, data model.CartData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cache save: %w", err)
	}
	if err := s.client.Set(ctx, s.key, b, s.timeout).Err(); err != nil {
		return fmt.Errorf("cache save: %w", err)
	}
	return nil
}

func (s *CacheStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}
