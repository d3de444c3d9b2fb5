package repository

import (
	"context"

	"shopcart/internal/domain/model"
)

// 商品参照の解決。見つからなければ ErrNotFound を返す。
// カート側は ErrNotFound の明細を黙って捨てる（古いデータの掃除扱い）。
type ProductResolver interface {
	Resolve(ctx context.Context, productPK string) (model.CartProduct, error)
}
