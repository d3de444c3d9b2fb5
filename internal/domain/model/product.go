package model

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// 商品側に要求する能力。カート本体は商品エンティティを所有しない。
// GetPrice には明細を渡す（variantやmetadataで価格を変えられるように）。
type CartProduct interface {
	PK() string
	GetPrice(line ItemRecord) int64
}

// サンプルカタログの商品エンティティ。
// 価格は最小通貨単位のint64。
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) PK() string {
	return strconv.FormatInt(p.ID, 10)
}

func (p *Product) GetPrice(line ItemRecord) int64 {
	return p.Price
}
