package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogEntity "storefront.GO/model/entity/catalog"
)

// Save creates or updates p matched by SKU. Seasons and occasions on p replace
// the stored links. created reports whether the SKU was new.
func (r *ProductRepository) Save(ctx context.Context, p *catalogEntity.Product) (created bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing catalogEntity.Product
		findErr := tx.Select("product_id", "created_at").Where("sku = ?", p.SKU).First(&existing).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			created = true
		case findErr != nil:
			return findErr
		default:
			p.ProductID = existing.ProductID
			p.CreatedAt = existing.CreatedAt
		}

		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		if err := tx.Model(p).Association("Seasons").Replace(p.Seasons); err != nil {
			return err
		}
		return tx.Model(p).Association("Occasions").Replace(p.Occasions)
	})
	if err != nil {
		return false, fmt.Errorf("catalog: save %s: %w", p.SKU, err)
	}
	return created, nil
}

// Each streams every product, with links loaded, in batches of size.
func (r *ProductRepository) Each(ctx context.Context, size int, fn func([]catalogEntity.Product) error) error {
	if size <= 0 {
		size = 500
	}
	var batch []catalogEntity.Product
	res := r.db.WithContext(ctx).
		Preload("Seasons").
		Preload("Occasions").
		FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return res.Error
}
