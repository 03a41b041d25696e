package catalog

import (
	"time"
)

type Folder struct {
	ID            string        `json:"id" db:"id"`
	MediaCategory MediaCategory `json:"media_category" db:"media_category"`
	ParentID      *string       `json:"parent_id" db:"parent_id"` // NULL = category root
	Name          string        `json:"name" db:"name"`
	IsPurchasable bool          `json:"is_purchasable" db:"is_purchasable"`
	BasePrice     int64         `json:"base_price" db:"base_price"`
	DiscountPrice *int64        `json:"discount_price,omitempty" db:"discount_price"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// EffectivePrice is the discount price when set, otherwise the base price
func (f *Folder) EffectivePrice() int64 {
	return effectivePrice(f.BasePrice, f.DiscountPrice)
}

func effectivePrice(base int64, discount *int64) int64 {
	if discount != nil {
		return *discount
	}
	return base
}
