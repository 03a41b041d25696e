package catalog

import (
	"time"
)

// Asset is a purchasable leaf of a category hierarchy (template, picture, clip or track)
type Asset struct {
	ID            string        `json:"id" db:"id"`
	MediaCategory MediaCategory `json:"media_category" db:"media_category"`
	ParentID      string        `json:"parent_id" db:"folder_id"`
	Title         string        `json:"title" db:"title"`
	BasePrice     int64         `json:"base_price" db:"base_price"`
	DiscountPrice *int64        `json:"discount_price,omitempty" db:"discount_price"`
	PreviewURL    string        `json:"preview_url,omitempty" db:"preview_url"`
	DownloadURL   string        `json:"-" db:"download_url"` // only handed out by delivery
	QRPayload     string        `json:"-" db:"qr_payload"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

func (a *Asset) EffectivePrice() int64 {
	return effectivePrice(a.BasePrice, a.DiscountPrice)
}
