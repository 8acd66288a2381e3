package wishlist

import (
	"time"

	"storefront.GO/model/entity/catalog"
)

// WishlistItem represents wishlist_item table
type WishlistItem struct {
	WishlistItemID uint             `gorm:"column:wishlist_item_id;primaryKey;autoIncrement" json:"wishlist_item_id,omitempty"`
	CustomerID     uint             `gorm:"column:customer_id;not null;uniqueIndex:idx_wishlist_customer_product" json:"customer_id"`
	ProductID      uint             `gorm:"column:product_id;not null;uniqueIndex:idx_wishlist_customer_product" json:"product_id"`
	Product        *catalog.Product `gorm:"foreignKey:ProductID;references:ProductID" json:"product,omitempty"`
	AddedAt        time.Time        `gorm:"column:added_at;autoCreateTime" json:"added_at"`
}

func (WishlistItem) TableName() string {
	return "wishlist_item"
}
