// Package model migrates the storefront schema.
package model

import (
	"fmt"

	"gorm.io/gorm"

	entity "storefront.GO/model/entity"
	"storefront.GO/model/entity/catalog"
	"storefront.GO/model/entity/currency"
	"storefront.GO/model/entity/wishlist"
)

// Migrate creates or updates every table the storefront uses.
func Migrate(db *gorm.DB) error {
	models := append(catalog.Models(),
		&entity.Customer{},
		&entity.RefreshToken{},
		&currency.ExchangeRate{},
		&wishlist.WishlistItem{},
	)
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("model: migrate: %w", err)
	}
	return nil
}
