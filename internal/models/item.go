// internal/models/item.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// Item is a listing as the backend reports it. The gateway keeps a mirror of
// each item it has seen; ChainItemID links it to the marketplace contract.
type Item struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ChainItemID *uint64        `json:"chain_item_id,omitempty" gorm:"index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Price       int64          `json:"price" gorm:"not null"`
	Explanation string         `json:"explanation" gorm:"type:text"`
	ImageURLs   pq.StringArray `json:"image_urls,omitempty" gorm:"type:text[]"`
	UID         string         `json:"uid" gorm:"size:128;index"`
	Category    string         `json:"category" gorm:"size:100;index"`
	IsPurchased bool           `json:"ifPurchased"`
	Status      ItemStatus     `json:"status,omitempty" gorm:"type:varchar(20);default:'listed';index"`
	LikeCount   int64          `json:"like_count" gorm:"default:0"`
	TxHash      string         `json:"tx_hash,omitempty" gorm:"size:66"`
	CreatedAt   time.Time      `json:"created_at"`

	// Local bookkeeping, never sent by the backend.
	StatusHint bool      `json:"status_hint,omitempty"`
	SyncedAt   time.Time `json:"-"`
}

// OnChain reports whether the item is backed by a contract listing.
func (i *Item) OnChain() bool {
	return i.ChainItemID != nil && *i.ChainItemID > 0
}

// EffectiveStatus fills in a status for backend records that only carry the
// purchase flag.
func (i *Item) EffectiveStatus() ItemStatus {
	if i.Status != "" {
		return i.Status
	}
	if i.IsPurchased {
		return ItemStatusPurchased
	}
	return ItemStatusListed
}

// ApplyStatus sets the lifecycle status and keeps the purchase flag in step.
func (i *Item) ApplyStatus(status ItemStatus) {
	i.Status = status
	i.IsPurchased = status.IsSold()
}
