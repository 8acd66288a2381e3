package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is a fragrance. Price is stored in the canonical currency.
type Product struct {
	ProductID         uint                        `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id"`
	SKU               string                      `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name              string                      `gorm:"column:name;type:varchar(255);not null;index" json:"name"`
	Brand             string                      `gorm:"column:brand;type:varchar(128);index" json:"brand"`
	Description       string                      `gorm:"column:description;type:text" json:"description,omitempty"`
	Gender            string                      `gorm:"column:gender;type:varchar(16);index" json:"gender"`
	Concentration     string                      `gorm:"column:concentration;type:varchar(16);index" json:"concentration"`
	Price             decimal.Decimal             `gorm:"column:price;type:decimal(12,4);not null;default:0" json:"price"`
	Rating            float64                     `gorm:"column:rating;not null;default:0" json:"rating"`
	FragranceFamilyID *uint                       `gorm:"column:fragrance_family_id;index" json:"fragrance_family_id,omitempty"`
	LongevityID       *uint                       `gorm:"column:longevity_id;index" json:"longevity_id,omitempty"`
	SillageID         *uint                       `gorm:"column:sillage_id;index" json:"sillage_id,omitempty"`
	Notes             datatypes.JSONSlice[string] `gorm:"column:notes" json:"notes"`
	Seasons           []Season                    `gorm:"many2many:catalog_product_season;joinForeignKey:ProductID;joinReferences:SeasonID" json:"seasons,omitempty"`
	Occasions         []Occasion                  `gorm:"many2many:catalog_product_occasion;joinForeignKey:ProductID;joinReferences:OccasionID" json:"occasions,omitempty"`
	CreatedAt         time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "catalog_product"
}

// SeasonIDs lists the loaded season ids.
func (p *Product) SeasonIDs() []uint {
	ids := make([]uint, 0, len(p.Seasons))
	for _, s := range p.Seasons {
		ids = append(ids, s.ID)
	}
	return ids
}

// OccasionIDs lists the loaded occasion ids.
func (p *Product) OccasionIDs() []uint {
	ids := make([]uint, 0, len(p.Occasions))
	for _, o := range p.Occasions {
		ids = append(ids, o.ID)
	}
	return ids
}
