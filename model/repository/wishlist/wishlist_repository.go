package wishlist

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	wishlistEntity "storefront.GO/model/entity/wishlist"
)

type WishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// List returns a customer's items with their products, newest first.
func (r *WishlistRepository) List(ctx context.Context, customerID uint) ([]wishlistEntity.WishlistItem, error) {
	var items []wishlistEntity.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Seasons").
		Preload("Product.Occasions").
		Where("customer_id = ?", customerID).
		Order("added_at DESC, wishlist_item_id DESC").
		Find(&items).Error
	return items, err
}

// Add saves productID for a customer. Adding twice keeps the first entry.
func (r *WishlistRepository) Add(ctx context.Context, customerID, productID uint) (*wishlistEntity.WishlistItem, error) {
	db := r.db.WithContext(ctx)
	item := wishlistEntity.WishlistItem{CustomerID: customerID, ProductID: productID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
		return nil, err
	}
	err := db.Preload("Product").
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes an item; removing a missing item is not an error.
func (r *WishlistRepository) Remove(ctx context.Context, customerID, productID uint) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&wishlistEntity.WishlistItem{}).Error
}
