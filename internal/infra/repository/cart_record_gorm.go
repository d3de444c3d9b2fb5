package repository

import (
	"context"
	"encoding/json"
	"errors"

	"shopcart/internal/domain/model"
	repo "shopcart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRecordGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartRecordGormRepository(db *gorm.DB) *CartRecordGormRepository {
	return &CartRecordGormRepository{db: db}
}

// ユーザーのカート行を取得
func (r *CartRecordGormRepository) FindByCustomer(ctx context.Context, customerID string) (model.StoredCart, error) {
	var stored model.StoredCart

	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&stored).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StoredCart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.StoredCart{}, err
	}
	return stored, nil
}

// Upsert はユーザーの行を上書き保存する。行が無ければ作る。
// 1ユーザー1行の不変条件はcustomer_idのunique indexで守る。
func (r *CartRecordGormRepository) Upsert(ctx context.Context, customerID string, data model.CartData) error {
	items, err := json.Marshal(data)
	if err != nil {
		return err
	}

	stored := model.StoredCart{
		CustomerID: customerID,
		Items:      items,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
		}).
		Create(&stored).Error
}

// DeleteByCustomer は行を消す。無くてもエラーにしない。
func (r *CartRecordGormRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&model.StoredCart{}).Error
}
