package repository

import (
	"context"
	"errors"
	"strconv"

	"shopcart/internal/domain/model"
	repo "shopcart/internal/repository"

	"gorm.io/gorm"
)

// サンプルカタログのResolver実装。
// 消えた商品・非公開の商品は ErrNotFound 扱いにして、カート側に捨てさせる。
type ProductGormResolver struct {
	db *gorm.DB
}

// DI
func NewProductGormResolver(db *gorm.DB) *ProductGormResolver {
	return &ProductGormResolver{db: db}
}

func (r *ProductGormResolver) Resolve(ctx context.Context, productPK string) (model.CartProduct, error) {
	id, err := strconv.ParseInt(productPK, 10, 64)
	if err != nil {
		return nil, repo.ErrNotFound
	}

	var p model.Product
	findErr := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error

	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if findErr != nil {
		return nil, findErr
	}
	return &p, nil
}
