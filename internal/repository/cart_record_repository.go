package repository

import (
	"context"
	"errors"

	"shopcart/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 認証ユーザーのカート行の永続化だけを約束。
// 生存行は1ユーザー1行。Upsertは上書きで、追記はしない。
type CartRecordRepository interface {
	FindByCustomer(ctx context.Context, customerID string) (model.StoredCart, error)
	Upsert(ctx context.Context, customerID string, data model.CartData) error
	DeleteByCustomer(ctx context.Context, customerID string) error
}
