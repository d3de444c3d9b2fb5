package cart

import (
	"shopcart/internal/domain/model"

	"github.com/google/uuid"
)

// カートの明細1行。
// 同一性は product + variant で決まり、metadataは一切関与しない。
type Item struct {
	ID        string
	ProductPK string
	Quantity  int
	Variant   model.Variant
	Metadata  map[string]any

	product model.CartProduct
}

func newItem(product model.CartProduct, variant model.Variant, metadata map[string]any) *Item {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Item{
		ID:        uuid.NewString(),
		ProductPK: product.PK(),
		Quantity:  0,
		Variant:   variant,
		Metadata:  metadata,
		product:   product,
	}
}

func itemFromRecord(rec model.ItemRecord, product model.CartProduct) *Item {
	metadata := rec.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Item{
		ID:        rec.ID,
		ProductPK: rec.ProductPK,
		Quantity:  rec.Quantity,
		Variant:   rec.Variant,
		Metadata:  metadata,
		product:   product,
	}
}

// Product は解決済みの商品を返す
func (it *Item) Product() model.CartProduct {
	return it.product
}

// Matches は同一性判定。metadata・数量は見ない。
func (it *Item) Matches(productPK string, variant model.Variant) bool {
	return it.ProductPK == productPK && it.Variant.Equal(variant)
}

// Price は商品側の価格メソッドに明細を渡して取る
func (it *Item) Price() int64 {
	return it.product.GetPrice(it.Record())
}

func (it *Item) Subtotal() int64 {
	return it.Price() * int64(it.Quantity)
}

// Record は保存用の生データを返す
func (it *Item) Record() model.ItemRecord {
	return model.ItemRecord{
		ID:        it.ID,
		ProductPK: it.ProductPK,
		Quantity:  it.Quantity,
		Variant:   it.Variant,
		Metadata:  it.Metadata,
	}
}
