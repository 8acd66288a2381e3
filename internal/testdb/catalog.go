package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogEntity "storefront.GO/model/entity/catalog"
	catalogRepo "storefront.GO/model/repository/catalog"
)

// Lookup ids created by SeedCatalog.
const (
	Floral   uint = 1
	Oriental uint = 2
	Fresh    uint = 3

	Spring uint = 1
	Summer uint = 2
	Autumn uint = 3
	Winter uint = 4

	Office  uint = 1
	Evening uint = 2
)

// SeedCatalog stores three products, oldest first:
//
//	1 Iris Poudre      female EDP 300 4.5 floral   spring        office
//	2 Tobacco Vanille  unisex EDP 450 4.8 oriental autumn,winter evening
//	3 Sauvage          male   EDT 120 4.0 fresh    spring,summer office,evening
func SeedCatalog(t testing.TB, db *gorm.DB) []catalogEntity.Product {
	t.Helper()
	for _, name := range []string{"Floral", "Oriental", "Fresh"} {
		require.NoError(t, db.Create(&catalogEntity.FragranceFamily{Name: name}).Error)
	}
	for _, name := range []string{"Spring", "Summer", "Autumn", "Winter"} {
		require.NoError(t, db.Create(&catalogEntity.Season{Name: name}).Error)
	}
	for _, name := range []string{"Office", "Evening"} {
		require.NoError(t, db.Create(&catalogEntity.Occasion{Name: name}).Error)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []catalogEntity.Product{
		{
			SKU: "P1", Name: "Iris Poudre", Brand: "Frederic Malle", Gender: "female", Concentration: "edp",
			Price: decimal.NewFromInt(300), Rating: 4.5, FragranceFamilyID: ptr(Floral),
			Notes:   []string{"iris", "musk"},
			Seasons: seasons(Spring), Occasions: occasions(Office),
			CreatedAt: base,
		},
		{
			SKU: "P2", Name: "Tobacco Vanille", Brand: "Tom Ford", Gender: "unisex", Concentration: "edp",
			Price: decimal.NewFromInt(450), Rating: 4.8, FragranceFamilyID: ptr(Oriental),
			Notes:   []string{"tobacco", "vanilla"},
			Seasons: seasons(Autumn, Winter), Occasions: occasions(Evening),
			CreatedAt: base.Add(time.Hour),
		},
		{
			SKU: "P3", Name: "Sauvage", Brand: "Dior", Gender: "male", Concentration: "edt",
			Price: decimal.NewFromInt(120), Rating: 4.0, FragranceFamilyID: ptr(Fresh),
			Notes:   []string{"bergamot", "pepper"},
			Seasons: seasons(Spring, Summer), Occasions: occasions(Office, Evening),
			CreatedAt: base.Add(2 * time.Hour),
		},
	}
	repo := catalogRepo.NewProductRepository(db)
	for i := range products {
		_, err := repo.Save(context.Background(), &products[i])
		require.NoError(t, err)
	}
	return products
}

func ptr(v uint) *uint { return &v }

func seasons(ids ...uint) []catalogEntity.Season {
	out := make([]catalogEntity.Season, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalogEntity.Season{ID: id})
	}
	return out
}

func occasions(ids ...uint) []catalogEntity.Occasion {
	out := make([]catalogEntity.Occasion, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalogEntity.Occasion{ID: id})
	}
	return out
}
