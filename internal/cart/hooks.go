package cart

// 変更の前後に呼ばれる拡張ポイント。
// 通知専用で、戻り値は無く、保存を止めることはできない。
type Hooks interface {
	BeforeAdd(c *Cart, item *Item, quantity int)
	AfterAdd(c *Cart, item *Item)
	// quantityは部分削除の数量。全削除のときは0。
	BeforeRemove(c *Cart, item *Item, quantity int)
	// 完全に消えたときitemはnil
	AfterRemove(c *Cart, item *Item)
}

// デフォルトは何もしない
type NoopHooks struct{}

func (NoopHooks) BeforeAdd(c *Cart, item *Item, quantity int)    {}
func (NoopHooks) AfterAdd(c *Cart, item *Item)                   {}
func (NoopHooks) BeforeRemove(c *Cart, item *Item, quantity int) {}
func (NoopHooks) AfterRemove(c *Cart, item *Item)                {}

// 複数のHooksを順に呼ぶ
type HookList []Hooks

func (l HookList) BeforeAdd(c *Cart, item *Item, quantity int) {
	for _, h := range l {
		h.BeforeAdd(c, item, quantity)
	}
}

func (l HookList) AfterAdd(c *Cart, item *Item) {
	for _, h := range l {
		h.AfterAdd(c, item)
	}
}

func (l HookList) BeforeRemove(c *Cart, item *Item, quantity int) {
	for _, h := range l {
		h.BeforeRemove(c, item, quantity)
	}
}

func (l HookList) AfterRemove(c *Cart, item *Item) {
	for _, h := range l {
		h.AfterRemove(c, item)
	}
}
