package main

import (
	"shopcart/internal/config"
	"shopcart/internal/domain/model"
	"shopcart/internal/handler"
	"shopcart/internal/infra/db"
	infraRepo "shopcart/internal/infra/repository"
	"shopcart/internal/server"
	"shopcart/internal/storage"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	//.envは無くても良い
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.StoredCart{},
		&model.Product{},
	); err != nil {
		panic(err)
	}

	//Redis（cacheバックエンドとセッションで使う）
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	//セッション。Redisがあれば本物、無ければメモリ。
	var sessions storage.SessionProvider
	if redisClient != nil {
		sessions = storage.NewRedisSessions(redisClient, cfg.CacheTimeout)
	} else {
		sessions = storage.NewMemorySessions()
	}

	//Repository（GORM実装）生成
	records := infraRepo.NewCartRecordGormRepository(gormDB)
	resolver := infraRepo.NewProductGormResolver(gormDB)

	deps := storage.Deps{
		SessionKey:   cfg.SessionKey,
		CacheTimeout: cfg.CacheTimeout,
		Cache:        redisClient,
		Records:      records,
	}

	//Handler生成
	cartH := handler.NewCartHandler(cfg, deps, resolver, nil)

	//Server起動
	e := server.New(cartH, sessions)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	if err := server.Start(e, addr); err != nil {
		panic(err)
	}
}
