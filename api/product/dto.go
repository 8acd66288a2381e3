package product

import (
	"time"

	"github.com/shopspring/decimal"

	catalogEntity "storefront.GO/model/entity/catalog"
)

// ProductDTO is the listing shape of a product. Price is canonical currency.
type ProductDTO struct {
	ID                uint            `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Brand             string          `json:"brand"`
	Description       string          `json:"description,omitempty"`
	Gender            string          `json:"gender"`
	Concentration     string          `json:"concentration"`
	Price             decimal.Decimal `json:"price"`
	Rating            float64         `json:"rating"`
	FragranceFamilyID uint            `json:"fragranceFamilyId,omitempty"`
	LongevityID       uint            `json:"longevityId,omitempty"`
	SillageID         uint            `json:"sillageId,omitempty"`
	SeasonIDs         []uint          `json:"seasonIds"`
	OccasionIDs       []uint          `json:"occasionIds"`
	Notes             []string        `json:"notes"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// PageDTO is one page of a listing.
type PageDTO struct {
	Items      []ProductDTO `json:"items"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}

func ToDTO(p *catalogEntity.Product) ProductDTO {
	notes := []string(p.Notes)
	if notes == nil {
		notes = []string{}
	}
	return ProductDTO{
		ID:                p.ProductID,
		SKU:               p.SKU,
		Name:              p.Name,
		Brand:             p.Brand,
		Description:       p.Description,
		Gender:            p.Gender,
		Concentration:     p.Concentration,
		Price:             p.Price,
		Rating:            p.Rating,
		FragranceFamilyID: deref(p.FragranceFamilyID),
		LongevityID:       deref(p.LongevityID),
		SillageID:         deref(p.SillageID),
		SeasonIDs:         p.SeasonIDs(),
		OccasionIDs:       p.OccasionIDs(),
		Notes:             notes,
		CreatedAt:         p.CreatedAt,
	}
}

func deref(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
