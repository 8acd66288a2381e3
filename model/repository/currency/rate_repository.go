package currency

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	currencyEntity "storefront.GO/model/entity/currency"
)

type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

// All returns every stored rate ordered by currency code.
func (r *RateRepository) All(ctx context.Context) ([]currencyEntity.ExchangeRate, error) {
	var rates []currencyEntity.ExchangeRate
	err := r.db.WithContext(ctx).Order("currency_code").Find(&rates).Error
	return rates, err
}

// Upsert writes rates, replacing existing quotes for the same codes.
func (r *RateRepository) Upsert(ctx context.Context, rates []currencyEntity.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(&rates).Error
}
