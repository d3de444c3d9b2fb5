package storage

import (
	"context"
	"fmt"
	"time"

	"shopcart/internal/repository"

	"github.com/go-redis/redis/v8"
)

// 組み込みバックエンド名
const (
	BackendSession = "session"
	BackendCache   = "cache"
	BackendDB      = "db"
)

// バックエンド構築に必要な部品一式。使うものだけ埋めれば良い。
type Deps struct {
	SessionKey   string
	CacheTimeout time.Duration
	Session      SessionStore
	Cache        *redis.Client
	Records      repository.CartRecordRepository
}

type Factory func(ctx context.Context, deps Deps, id Identity) (Storage, error)

var registry = map[string]Factory{
	BackendSession: newSessionBackend,
	BackendCache:   newCacheBackend,
	BackendDB:      newDBBackend,
}

// Register は独自バックエンドを名前で登録する。起動時に呼ぶこと。
func Register(name string, f Factory) {
	registry[name] = f
}

// Known は名前が登録済みかどうか。設定検証用。
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// New は設定名からバックエンドを作る。未知の名前は即エラー。
func New(ctx context.Context, name string, deps Deps, id Identity) (Storage, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown cart storage backend: %q", name)
	}
	return f(ctx, deps, id)
}

func newSessionBackend(ctx context.Context, deps Deps, id Identity) (Storage, error) {
	if deps.Session == nil {
		return nil, fmt.Errorf("session backend requires a session store")
	}
	return NewSessionStorage(deps.Session, deps.SessionKey), nil
}

func newCacheBackend(ctx context.Context, deps Deps, id Identity) (Storage, error) {
	if deps.Cache == nil {
		return nil, fmt.Errorf("cache backend requires a redis client")
	}
	return NewCacheStorage(deps.Cache, deps.SessionKey, id, deps.CacheTimeout), nil
}

func newDBBackend(ctx context.Context, deps Deps, id Identity) (Storage, error) {
	if deps.Session == nil {
		return nil, fmt.Errorf("db backend requires a session store")
	}
	if deps.Records == nil {
		return nil, fmt.Errorf("db backend requires a cart record repository")
	}
	return NewDBStorage(ctx, id, NewSessionStorage(deps.Session, deps.SessionKey), deps.Records)
}
