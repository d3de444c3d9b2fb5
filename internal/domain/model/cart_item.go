package model

// カート明細の生データ（保存形式）。
// バックエンド非依存。metadataはJSON化できるものなら何でも良い。
type ItemRecord struct {
	ID        string         `json:"id"`
	ProductPK string         `json:"product_pk"`
	Quantity  int            `json:"quantity"`
	Variant   Variant        `json:"variant,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
