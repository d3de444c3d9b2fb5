package model

import "time"

// カートの永続レコード（DBバックエンド用）。
// 1ユーザーにつき生存行は1つ。itemsにはCartData全体（prefix込み）をJSONで保存する。
type StoredCart struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"customer_id"`
	Items      []byte    `gorm:"type:jsonb;not null" json:"items"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// CartRecord はprefix1つぶんの生データ。
type CartRecord struct {
	Items    []ItemRecord   `json:"items"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IsEmpty は明細もメタデータも無いときtrue
func (r CartRecord) IsEmpty() bool {
	return len(r.Items) == 0 && len(r.Metadata) == 0
}

// CartData はidentity1つぶんの全カート。キーはprefix。
type CartData map[string]CartRecord

// IsEmpty は全prefixが空のときtrue
func (d CartData) IsEmpty() bool {
	for _, rec := range d {
		if !rec.IsEmpty() {
			return false
		}
	}
	return true
}
