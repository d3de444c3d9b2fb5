package storage

import (
	"context"

	"shopcart/internal/domain/model"
)

// Identity は1リクエストぶんの身元。
// 認証済みならUserID、匿名ならSessionKey（セッショントークン）で引く。
type Identity struct {
	SessionKey string
	UserID     string
}

func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// Key はキャッシュキーなどに使う識別子
func (id Identity) Key() string {
	if id.Authenticated() {
		return id.UserID
	}
	return id.SessionKey
}

// ホスト側セッションに要求する能力。getは見つからなければok=false。
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// カートデータの永続化の約束。構築時にidentityへ束縛される。
// 同じidentityへの並行リクエストは後勝ち（上書き）。ここでは解決しない。
type Storage interface {
	Load(ctx context.Context) (model.CartData, error)
	Save(ctx context.Context, data model.CartData) error
	Clear(ctx context.Context) error
}
