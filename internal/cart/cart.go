package cart

import (
	"context"
	"errors"
	"fmt"

	"shopcart/internal/domain/model"
	"shopcart/internal/repository"
	"shopcart/internal/storage"
)

const DefaultPrefix = "default"

// Cart は1つのidentity・prefixに束縛された明細の集合。
// 変更系は最後に必ずバックエンドへ保存する。
// リクエスト内で作って使い捨てる前提。並行アクセスは守らない。
type Cart struct {
	st       storage.Storage
	resolver repository.ProductResolver
	hooks    Hooks
	prefix   string
	items    []*Item
	metadata map[string]any
}

type Options struct {
	Prefix string
	Hooks  Hooks
}

// New はバックエンドから読み込んでカートを組み立てる。
// 商品が解決できない明細は黙って捨てる（古いデータの掃除扱い）。
func New(ctx context.Context, st storage.Storage, resolver repository.ProductResolver, opts Options) (*Cart, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = NoopHooks{}
	}

	c := &Cart{
		st:       st,
		resolver: resolver,
		hooks:    hooks,
		prefix:   prefix,
		metadata: map[string]any{},
	}

	data, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart load: %w", err)
	}

	rec := data[prefix]
	if rec.Metadata != nil {
		c.metadata = rec.Metadata
	}
	for _, ir := range rec.Items {
		product, err := resolver.Resolve(ctx, ir.ProductPK)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cart load: %w", err)
		}
		c.items = append(c.items, itemFromRecord(ir, product))
	}
	return c, nil
}

type AddInput struct {
	Quantity         int
	Variant          model.Variant
	OverrideQuantity bool
	Metadata         map[string]any
}

// Add は明細を追加する。同じ(商品, variant)が既にあれば数量をまとめる。
// metadataを渡した場合は古いmetadataを置き換える。
func (c *Cart) Add(ctx context.Context, product model.CartProduct, in AddInput) (*Item, error) {
	if in.Quantity < 1 {
		return nil, newValidationError("quantity must be >= 1: %d", in.Quantity)
	}

	item := c.findMatch(product.PK(), in.Variant)
	if item == nil {
		item = newItem(product, in.Variant, in.Metadata)
		c.items = append(c.items, item)
	} else if in.Metadata != nil {
		item.Metadata = in.Metadata
	}

	c.hooks.BeforeAdd(c, item, in.Quantity)
	if in.OverrideQuantity {
		item.Quantity = in.Quantity
	} else {
		item.Quantity += in.Quantity
	}
	c.hooks.AfterAdd(c, item)

	if err := c.save(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

// Increase は既存明細の数量を増やす。idが無ければ(nil, nil)。
func (c *Cart) Increase(ctx context.Context, itemID string, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, newValidationError("quantity must be >= 1: %d", quantity)
	}

	item := c.findByID(itemID)
	if item == nil {
		return nil, nil
	}

	c.hooks.BeforeAdd(c, item, quantity)
	item.Quantity += quantity
	c.hooks.AfterAdd(c, item)

	if err := c.save(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove は明細を減らすか消す。quantity <= 0 は全削除。
// 呼んだ後に明細が残っていなければnilを返し、残っていれば更新後の明細を返す。
// idが無ければ(nil, nil)。
func (c *Cart) Remove(ctx context.Context, itemID string, quantity int) (*Item, error) {
	item := c.findByID(itemID)
	if item == nil {
		return nil, nil
	}

	if quantity < 0 {
		quantity = 0
	}
	c.hooks.BeforeRemove(c, item, quantity)
	if quantity > 0 {
		item.Quantity -= quantity
	} else {
		item.Quantity = 0
	}

	removed := item.Quantity <= 0
	if removed {
		c.drop(item)
		c.hooks.AfterRemove(c, nil)
	} else {
		c.hooks.AfterRemove(c, item)
	}

	if err := c.save(ctx); err != nil {
		return nil, err
	}
	if removed {
		return nil, nil
	}
	return item, nil
}

// Empty は全明細を消す。clearMetadata=falseならカートのmetadataは残す。
func (c *Cart) Empty(ctx context.Context, clearMetadata bool) error {
	c.items = nil
	if clearMetadata {
		c.metadata = map[string]any{}
	}
	return c.save(ctx)
}

// EmptyAll はこのidentityの全prefixのカートを消す
func (c *Cart) EmptyAll(ctx context.Context) error {
	c.items = nil
	c.metadata = map[string]any{}
	if err := c.st.Clear(ctx); err != nil {
		return fmt.Errorf("cart empty all: %w", err)
	}
	return nil
}

// UpdateMetadata はカートのmetadataに浅くマージする
func (c *Cart) UpdateMetadata(ctx context.Context, metadata map[string]any) error {
	for k, v := range metadata {
		c.metadata[k] = v
	}
	return c.save(ctx)
}

// ClearMetadata は指定キーを消す。キー無指定なら全部消す。
func (c *Cart) ClearMetadata(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		c.metadata = map[string]any{}
	} else {
		for _, k := range keys {
			delete(c.metadata, k)
		}
	}
	return c.save(ctx)
}

// 検索条件。ゼロ値のフィールドは無視。AND結合の完全一致。
type Criteria struct {
	ID        string
	ProductPK string
	Variant   *model.Variant
	Quantity  int
}

func (q Criteria) matches(it *Item) bool {
	if q.ID != "" && it.ID != q.ID {
		return false
	}
	if q.ProductPK != "" && it.ProductPK != q.ProductPK {
		return false
	}
	if q.Variant != nil && !it.Variant.Equal(*q.Variant) {
		return false
	}
	if q.Quantity != 0 && it.Quantity != q.Quantity {
		return false
	}
	return true
}

func (c *Cart) Find(q Criteria) []*Item {
	var out []*Item
	for _, it := range c.items {
		if q.matches(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Cart) FindOne(q Criteria) *Item {
	for _, it := range c.items {
		if q.matches(it) {
			return it
		}
	}
	return nil
}

// Items は挿入順の明細を返す
func (c *Cart) Items() []*Item {
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// Contains は同一性（商品+variant）での所属判定
func (c *Cart) Contains(item *Item) bool {
	if item == nil {
		return false
	}
	for _, it := range c.items {
		if it.Matches(item.ProductPK, item.Variant) {
			return true
		}
	}
	return false
}

// Count は数量の合計
func (c *Cart) Count() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// UniqueCount は明細数
func (c *Cart) UniqueCount() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Total は小計の合計
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// Products は重複を除いた解決済み商品の一覧
func (c *Cart) Products() []model.CartProduct {
	seen := map[string]struct{}{}
	var out []model.CartProduct
	for _, it := range c.items {
		if _, ok := seen[it.ProductPK]; ok {
			continue
		}
		seen[it.ProductPK] = struct{}{}
		out = append(out, it.product)
	}
	return out
}

// VariantsGroupByProduct は商品PKごとに存在するvariantを挿入順で返す
func (c *Cart) VariantsGroupByProduct() map[string][]model.Variant {
	out := map[string][]model.Variant{}
	for _, it := range c.items {
		out[it.ProductPK] = append(out[it.ProductPK], it.Variant)
	}
	return out
}

func (c *Cart) Metadata() map[string]any {
	return c.metadata
}

func (c *Cart) Prefix() string {
	return c.prefix
}

func (c *Cart) findByID(id string) *Item {
	for _, it := range c.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (c *Cart) findMatch(productPK string, variant model.Variant) *Item {
	for _, it := range c.items {
		if it.Matches(productPK, variant) {
			return it
		}
	}
	return nil
}

func (c *Cart) drop(item *Item) {
	for i, it := range c.items {
		if it == item {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// save は自分のprefixだけを入れ替えて書き戻す。
// 他prefixのカートを消さないため、先に既存データを読み直す。
func (c *Cart) save(ctx context.Context) error {
	data, err := c.st.Load(ctx)
	if err != nil {
		return fmt.Errorf("cart save: %w", err)
	}
	if data == nil {
		data = model.CartData{}
	}

	items := make([]model.ItemRecord, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it.Record())
	}
	data[c.prefix] = model.CartRecord{Items: items, Metadata: c.metadata}

	if err := c.st.Save(ctx, data); err != nil {
		return fmt.Errorf("cart save: %w", err)
	}
	return nil
}
