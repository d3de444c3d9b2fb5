package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"shopcart/internal/storage"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	SessionKey     string        // カートの保存キー（CART-ID）
	DefaultPrefix  string        // prefix無指定時のカート名
	StorageBackend string        // session / cache / db
	CacheTimeout   time.Duration // cacheバックエンドのTTL

	RedisAddr string // cacheバックエンドとRedisセッションで使う
	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod
}

// Loadは環境変数から読む。バックエンド名の検証までここでやる（fail fast）。
func Load() (Config, error) {
	cacheTimeout, err := timeoutFromEnv("CART_CACHE_TIMEOUT", storage.DefaultCacheTimeout)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		SessionKey:     getenv("CART_SESSION_KEY", "CART-ID"),
		DefaultPrefix:  getenv("CART_DEFAULT_PREFIX", "default"),
		StorageBackend: getenv("CART_STORAGE_BACKEND", storage.BackendSession),
		CacheTimeout:   cacheTimeout,

		RedisAddr: os.Getenv("REDIS_ADDR"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	//未知のバックエンド名は起動時に落とす
	if !storage.Known(cfg.StorageBackend) {
		return Config{}, fmt.Errorf("unknown cart storage backend: %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == storage.BackendCache && cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required for the cache backend")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// 秒指定の環境変数をDurationに変換する
func timeoutFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("%s must be positive: %d", key, secs)
	}
	return time.Duration(secs) * time.Second, nil
}
