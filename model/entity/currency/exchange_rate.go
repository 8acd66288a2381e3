package currency

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate quotes one display currency: Rate canonical units buy one unit
// of CurrencyCode.
type ExchangeRate struct {
	CurrencyCode string          `gorm:"column:currency_code;type:varchar(3);primaryKey" json:"currency_code"`
	Rate         decimal.Decimal `gorm:"column:rate;type:decimal(20,8);not null" json:"rate"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ExchangeRate) TableName() string {
	return "directory_currency_rate"
}
